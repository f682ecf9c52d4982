// Package match implements predicates selecting which loaded types, and
// which of their constructors and methods, get enhanced.
//
// Types and members are described by name (see TypeDescription and
// MemberDescription), and matchers never need anything but those
// descriptions. All matchers in this package are immutable after
// construction and safe for concurrent use.
package match

import (
	"strings"

	"github.com/gobwas/glob"
)

// ClassMatcher decides whether a loaded type is a candidate for
// enhancement. Implementations must be pure: the same description always
// yields the same answer.
type ClassMatcher interface {
	Matches(t *TypeDescription) bool
}

// NameMatcher is a ClassMatcher that matches a fixed set of exact type
// names. Engines can use ClassNames to index definitions instead of asking
// every matcher about every type.
type NameMatcher interface {
	ClassMatcher
	ClassNames() []string
}

// ClassMatcherFunc adapts a function to a ClassMatcher.
type ClassMatcherFunc func(t *TypeDescription) bool

// Matches implements ClassMatcher.
func (f ClassMatcherFunc) Matches(t *TypeDescription) bool { return t != nil && f(t) }

var _ NameMatcher = nameMatcher{}

// ByName matches the type with exactly the given fully-qualified name.
func ByName(name string) NameMatcher { return nameMatcher{name} }

// ByNames matches any type with one of the given fully-qualified names.
func ByNames(names ...string) NameMatcher {
	return nameMatcher(append([]string(nil), names...))
}

type nameMatcher []string

func (m nameMatcher) Matches(t *TypeDescription) bool { return t != nil && contains(m, t.Name) }
func (m nameMatcher) ClassNames() []string           { return append([]string(nil), m...) }

func (m nameMatcher) validate() error {
	if len(m) == 0 {
		return invalid("ByNames", "no names given")
	}
	for _, name := range m {
		if len(name) == 0 {
			return invalid("ByName", "empty name")
		}
	}
	return nil
}

// ByPrefix matches types whose name starts with prefix.
func ByPrefix(prefix string) ClassMatcher { return prefixMatcher(prefix) }

type prefixMatcher string

func (m prefixMatcher) Matches(t *TypeDescription) bool {
	return t != nil && strings.HasPrefix(t.Name, string(m))
}

func (m prefixMatcher) validate() error {
	if len(m) == 0 {
		return invalid("ByPrefix", "empty prefix")
	}
	return nil
}

// ByPattern matches type names against a glob pattern, where '.' separates
// name segments: "io.grpc.stub.*" matches the types directly in
// io.grpc.stub, and "io.grpc.**" anything below io.grpc. An invalid pattern
// is reported here, when the definition is built.
func ByPattern(pattern string) (ClassMatcher, error) {
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return nil, invalid("ByPattern", err.Error())
	}
	return &patternMatcher{pattern, g}, nil
}

// MustPattern is like ByPattern, but panics on an invalid pattern.
func MustPattern(pattern string) ClassMatcher {
	m, err := ByPattern(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

type patternMatcher struct {
	pattern string
	g       glob.Glob
}

func (m *patternMatcher) Matches(t *TypeDescription) bool { return t != nil && m.g.Match(t.Name) }

// ByAnnotation matches types carrying all of the given annotations.
func ByAnnotation(annotations ...string) ClassMatcher {
	return annotationMatcher(append([]string(nil), annotations...))
}

type annotationMatcher []string

func (m annotationMatcher) Matches(t *TypeDescription) bool {
	if t == nil {
		return false
	}
	for _, a := range m {
		if !contains(t.Annotations, a) {
			return false
		}
	}
	return true
}

func (m annotationMatcher) validate() error {
	if len(m) == 0 {
		return invalid("ByAnnotation", "no annotations given")
	}
	return nil
}

// BySuperclass matches types that extend the named class, directly or
// further up the hierarchy.
func BySuperclass(name string) ClassMatcher { return hierarchyMatcher{name: name, super: true} }

// ByInterface matches types that implement the named interface.
func ByInterface(name string) ClassMatcher { return hierarchyMatcher{name: name} }

type hierarchyMatcher struct {
	name  string
	super bool
}

func (m hierarchyMatcher) Matches(t *TypeDescription) bool {
	if t == nil {
		return false
	}
	if m.super {
		return contains(t.Superclasses, m.name)
	}
	return contains(t.Interfaces, m.name)
}

func (m hierarchyMatcher) validate() error {
	if len(m.name) == 0 {
		return invalid("ByHierarchy", "empty type name")
	}
	return nil
}

// AllClasses matches types matched by every one of ms.
func AllClasses(ms ...ClassMatcher) ClassMatcher {
	return &classComposite{op: "AllClasses", all: true, ms: append([]ClassMatcher(nil), ms...)}
}

// AnyClass matches types matched by at least one of ms.
func AnyClass(ms ...ClassMatcher) ClassMatcher {
	return &classComposite{op: "AnyClass", ms: append([]ClassMatcher(nil), ms...)}
}

type classComposite struct {
	op  string
	all bool
	ms  []ClassMatcher
}

func (c *classComposite) Matches(t *TypeDescription) bool {
	for _, m := range c.ms {
		if m.Matches(t) != c.all {
			return !c.all
		}
	}
	return c.all && len(c.ms) != 0
}

func (c *classComposite) validate() error {
	if len(c.ms) == 0 {
		return invalid(c.op, "no operands")
	}
	for _, m := range c.ms {
		if err := Validate(m); err != nil {
			return err
		}
	}
	return nil
}

// NotClass matches types m doesn't match.
func NotClass(m ClassMatcher) ClassMatcher { return notClass{m} }

type notClass struct{ m ClassMatcher }

func (n notClass) Matches(t *TypeDescription) bool { return t != nil && !n.m.Matches(t) }
func (n notClass) validate() error                  { return Validate(n.m) }
