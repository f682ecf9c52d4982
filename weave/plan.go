package weave

import (
	"fmt"

	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
)

// Plan lists the bindings that enhancing a type would produce.
type Plan struct {
	// Type is the name of the planned type.
	Type string
	// Plugins are the names of the matching definitions, in registration
	// order.
	Plugins []string
	// Bindings are ordered by member, constructors first, in the order the
	// type declares them. Bindings of the same member are in registration
	// order of their definitions.
	Bindings []Binding
}

// Empty tells whether no member would be enhanced.
func (p *Plan) Empty() bool { return len(p.Bindings) == 0 }

// For returns the bindings of member m.
func (p *Plan) For(m *match.MemberDescription) []Binding {
	var out []Binding
	for _, b := range p.Bindings {
		if b.Member == m || (b.Member != nil && m != nil && b.Member.Signature() == m.Signature()) {
			out = append(out, b)
		}
	}
	return out
}

// Binding is a member bound to an interceptor by a definition.
type Binding struct {
	Plugin       string
	Kind         interceptor.Kind
	Member       *match.MemberDescription
	Interceptor  interceptor.Ref
	OverrideArgs bool
}

func (b Binding) String() string {
	s := fmt.Sprintf("%s %s -> %s (%s)", b.Kind, b.Member.Signature(), b.Interceptor, b.Plugin)
	if b.OverrideArgs {
		s += " [override args]"
	}
	return s
}

// ErrBinding is the sentinel for *BindingError.
//nolint:gochecknoglobals
var ErrBinding = &BindingError{}

// BindingError is returned by Engine.Enhance for every binding that
// couldn't be applied.
type BindingError struct {
	Type    string
	Binding Binding
	Err     error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Binding, e.Err)
}

// Unwrap returns the underlying error.
func (e *BindingError) Unwrap() error { return e.Err }

// Is returns true if target is a *BindingError.
func (e *BindingError) Is(target error) bool {
	_, ok := target.(*BindingError) //nolint:errorlint
	return ok
}
