// Package manifest declares plugin definitions and type catalogs in YAML
// or JSON.
//
// A manifest lists plugins. Each plugin selects classes with a
// ClassSelector and lists constructor and method points, each selecting
// members with a MemberSelector. All fields set on one selector must match
// (they are ANDed); a selector with no fields set is an error, so that an
// empty or misspelled selector never matches everything.
//
//	plugins:
//	- name: grpc-unary-client-call-listener
//	  class:
//	    name: io.grpc.stub.ClientCalls$UnaryStreamToFuture
//	  methods:
//	  - match:
//	      name: onClose
//	    interceptor: org.skywalking.apm.plugin.grpc.v1.UnaryClientOnCloseInterceptor
package manifest

import (
	"errors"
	"fmt"

	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
	"github.com/luxas/deklarative/instrument/plugin"
	"go.uber.org/multierr"
)

// Manifest is a list of plugin declarations.
type Manifest struct {
	Plugins []Plugin `json:"plugins"`
}

// Plugin declares one plugin definition.
type Plugin struct {
	Name         string        `json:"name"`
	Class        ClassSelector `json:"class"`
	Constructors []Point       `json:"constructors,omitempty"`
	Methods      []Point       `json:"methods,omitempty"`
}

// ClassSelector selects types. The set fields are ANDed.
type ClassSelector struct {
	Name        string   `json:"name,omitempty"`
	Names       []string `json:"names,omitempty"`
	Prefix      string   `json:"prefix,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
	Superclass  string   `json:"superclass,omitempty"`
	Interface   string   `json:"interface,omitempty"`
}

// MemberSelector selects constructors or methods. The set fields are
// ANDed.
type MemberSelector struct {
	// Any matches every member. It can't be combined with other fields.
	Any   bool     `json:"any,omitempty"`
	Name  string   `json:"name,omitempty"`
	Names []string `json:"names,omitempty"`
	// Arguments is the exact number of parameters.
	Arguments  *int       `json:"arguments,omitempty"`
	Argument   []Argument `json:"argument,omitempty"`
	Annotation string     `json:"annotation,omitempty"`
}

// Argument selects members by the type of one parameter. Exactly one of
// Type and TypeName must be set.
type Argument struct {
	Index int `json:"index"`
	// Type is compared like match.TakesArgument, for example
	// "java.util.Set" or "java.util.Set<redis.clients.jedis.HostAndPort>".
	Type string `json:"type,omitempty"`
	// TypeName is compared like match.TakesArgumentWithType.
	TypeName string `json:"typeName,omitempty"`
}

// Point declares one intercept point.
type Point struct {
	Match       MemberSelector  `json:"match"`
	Interceptor interceptor.Ref `json:"interceptor"`
	// OverrideArgs is only allowed for method points.
	OverrideArgs bool `json:"overrideArgs,omitempty"`
}

// Catalog describes loaded types. It is the input the weaving engine
// plans enhancements for.
type Catalog struct {
	Types []match.TypeDescription `json:"types"`
}

//nolint:gochecknoglobals
var (
	errEmptySelector = errors.New("selector has no fields set")
	errAnyCombined   = errors.New("any can't be combined with other fields")
	errCtorOverride  = errors.New("constructor points can't override arguments")
)

// DecodeManifest decodes a YAML or JSON manifest.
func DecodeManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := Decode(data, m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return m, nil
}

// DecodeCatalog decodes a YAML or JSON type catalog.
func DecodeCatalog(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := Decode(data, c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return c, nil
}

// Definitions builds the declared plugin definitions, in order. A plugin
// that fails to build is left out, and its errors are returned combined
// with those of the other failing plugins, so one bad plugin doesn't
// prevent the others from being used.
func (m *Manifest) Definitions() ([]*plugin.Definition, error) {
	defs := make([]*plugin.Definition, 0, len(m.Plugins))
	var errs error
	for i := range m.Plugins {
		d, err := m.Plugins[i].Definition()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		defs = append(defs, d)
	}
	return defs, errs
}

// Definition builds the plugin definition p declares.
func (p *Plugin) Definition() (*plugin.Definition, error) {
	var errs error
	wrap := func(where string, err error) {
		errs = multierr.Append(errs, &plugin.DefinitionError{Plugin: p.Name, Where: where, Err: err})
	}

	classMatcher, err := p.Class.Matcher()
	if err != nil {
		wrap("class", err)
	}
	ctors := make([]plugin.ConstructorPoint, 0, len(p.Constructors))
	for i, pt := range p.Constructors {
		if pt.OverrideArgs {
			wrap(fmt.Sprintf("constructors[%d]", i), errCtorOverride)
		}
		m, err := pt.Match.Matcher()
		if err != nil {
			wrap(fmt.Sprintf("constructors[%d]", i), err)
			continue
		}
		ctors = append(ctors, plugin.Constructor(m, pt.Interceptor))
	}
	methods := make([]plugin.MethodPoint, 0, len(p.Methods))
	for i, pt := range p.Methods {
		m, err := pt.Match.Matcher()
		if err != nil {
			wrap(fmt.Sprintf("methods[%d]", i), err)
			continue
		}
		mp := plugin.Method(m, pt.Interceptor)
		if pt.OverrideArgs {
			mp = mp.WithOverrideArgs()
		}
		methods = append(methods, mp)
	}
	if errs != nil {
		return nil, errs
	}
	return plugin.Define(p.Name, classMatcher).Constructors(ctors...).Methods(methods...).Build()
}

// Matcher returns the class matcher s declares.
func (s ClassSelector) Matcher() (match.ClassMatcher, error) {
	var ms []match.ClassMatcher
	if len(s.Name) != 0 {
		ms = append(ms, match.ByName(s.Name))
	}
	if len(s.Names) != 0 {
		ms = append(ms, match.ByNames(s.Names...))
	}
	if len(s.Prefix) != 0 {
		ms = append(ms, match.ByPrefix(s.Prefix))
	}
	if len(s.Pattern) != 0 {
		m, err := match.ByPattern(s.Pattern)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if len(s.Annotations) != 0 {
		ms = append(ms, match.ByAnnotation(s.Annotations...))
	}
	if len(s.Superclass) != 0 {
		ms = append(ms, match.BySuperclass(s.Superclass))
	}
	if len(s.Interface) != 0 {
		ms = append(ms, match.ByInterface(s.Interface))
	}
	switch len(ms) {
	case 0:
		return nil, errEmptySelector
	case 1:
		// Keeps a single name matcher indexable.
		return ms[0], nil
	default:
		return match.AllClasses(ms...), nil
	}
}

// Matcher returns the member matcher s declares.
func (s MemberSelector) Matcher() (match.MemberMatcher, error) {
	var ms []match.MemberMatcher
	if len(s.Name) != 0 {
		ms = append(ms, match.Named(s.Name))
	}
	if len(s.Names) != 0 {
		ms = append(ms, match.NamedOneOf(s.Names...))
	}
	if s.Arguments != nil {
		ms = append(ms, match.TakesArguments(*s.Arguments))
	}
	for _, a := range s.Argument {
		m, err := a.matcher()
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if len(s.Annotation) != 0 {
		ms = append(ms, match.AnnotatedWith(s.Annotation))
	}

	if s.Any {
		if len(ms) != 0 {
			return nil, errAnyCombined
		}
		return match.AnyMember(), nil
	}
	switch len(ms) {
	case 0:
		return nil, errEmptySelector
	case 1:
		return ms[0], nil
	default:
		return match.All(ms...), nil
	}
}

func (a Argument) matcher() (match.MemberMatcher, error) {
	switch {
	case len(a.Type) != 0 && len(a.TypeName) != 0:
		return nil, fmt.Errorf("argument %d: type and typeName are mutually exclusive", a.Index)
	case len(a.Type) != 0:
		ref, err := match.ParseTypeRef(a.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", a.Index, err)
		}
		return match.TakesArgument(a.Index, ref), nil
	case len(a.TypeName) != 0:
		return match.TakesArgumentWithType(a.Index, a.TypeName), nil
	default:
		return nil, fmt.Errorf("argument %d: one of type and typeName is required", a.Index)
	}
}
