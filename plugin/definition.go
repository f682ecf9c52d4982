// Package plugin implements plugin definitions: a class matcher together
// with the ordered intercept points for the constructors and methods of
// the matched types.
//
// Definitions are built once, usually at init time, and never change
// afterwards. They are safe for concurrent use.
//
// Within one definition, the first point (in declaration order) whose
// matcher accepts a member is the one that applies to it; later points are
// never consulted for that member.
package plugin

import (
	"fmt"

	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
	"go.uber.org/multierr"
)

// Definition is an immutable plugin definition.
type Definition struct {
	name         string
	classMatcher match.ClassMatcher
	constructors []ConstructorPoint
	methods      []MethodPoint
}

// Builder builds a Definition. Create one using Define.
type Builder struct {
	name         string
	classMatcher match.ClassMatcher
	constructors []ConstructorPoint
	methods      []MethodPoint
}

// Define starts building a definition called name, enhancing the types
// matched by classMatcher.
func Define(name string, classMatcher match.ClassMatcher) *Builder {
	return &Builder{name: name, classMatcher: classMatcher}
}

// Constructors appends constructor intercept points, in order.
func (b *Builder) Constructors(points ...ConstructorPoint) *Builder {
	b.constructors = append(b.constructors, points...)
	return b
}

// Methods appends method intercept points, in order.
func (b *Builder) Methods(points ...MethodPoint) *Builder {
	b.methods = append(b.methods, points...)
	return b
}

// Build validates the definition. All problems found are returned together,
// each as a *DefinitionError.
func (b *Builder) Build() (*Definition, error) {
	var errs error
	add := func(where string, err error) {
		if err != nil {
			errs = multierr.Append(errs, &DefinitionError{Plugin: b.name, Where: where, Err: err})
		}
	}

	if len(b.name) == 0 {
		add("name", errEmptyName)
	}
	add("class matcher", match.Validate(b.classMatcher))
	for i, p := range b.constructors {
		where := fmt.Sprintf("constructors[%d]", i)
		add(where, match.Validate(p.matcher))
		add(where, validateRef(p.interceptor))
	}
	for i, p := range b.methods {
		where := fmt.Sprintf("methods[%d]", i)
		add(where, match.Validate(p.matcher))
		add(where, validateRef(p.interceptor))
	}
	if errs != nil {
		return nil, errs
	}

	return &Definition{
		name:         b.name,
		classMatcher: b.classMatcher,
		constructors: append([]ConstructorPoint(nil), b.constructors...),
		methods:      append([]MethodPoint(nil), b.methods...),
	}, nil
}

// MustBuild is like Build, but panics on error. It is meant for
// package-level definitions.
func (b *Builder) MustBuild() *Definition {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the name of the definition.
func (d *Definition) Name() string { return d.name }

// ClassMatcher returns the matcher selecting the types to enhance.
func (d *Definition) ClassMatcher() match.ClassMatcher { return d.classMatcher }

// ConstructorPoints returns the constructor intercept points in declaration
// order. An empty list means no constructor is enhanced.
func (d *Definition) ConstructorPoints() []ConstructorPoint {
	return append([]ConstructorPoint(nil), d.constructors...)
}

// MethodPoints returns the method intercept points in declaration order.
func (d *Definition) MethodPoints() []MethodPoint {
	return append([]MethodPoint(nil), d.methods...)
}

// MatchesClass returns true if the type t should be enhanced by d.
func (d *Definition) MatchesClass(t *match.TypeDescription) bool {
	return d.classMatcher.Matches(t)
}

// ResolveConstructor returns the first constructor point matching the
// constructor m, and false if none does.
func (d *Definition) ResolveConstructor(m *match.MemberDescription) (ConstructorPoint, bool) {
	for _, p := range d.constructors {
		if p.Matches(m) {
			return p, true
		}
	}
	return ConstructorPoint{}, false
}

// ResolveMethod returns the first method point matching the method m, and
// false if none does.
func (d *Definition) ResolveMethod(m *match.MemberDescription) (MethodPoint, bool) {
	for _, p := range d.methods {
		if p.Matches(m) {
			return p, true
		}
	}
	return MethodPoint{}, false
}

func (d *Definition) String() string { return d.name }

func validateRef(ref interceptor.Ref) error {
	if len(ref) == 0 {
		return errEmptyRef
	}
	return nil
}
