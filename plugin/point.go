package plugin

import (
	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
)

// ConstructorPoint binds a constructor matcher to a constructor
// interceptor. Constructor interceptors only observe, so there is no way of
// allowing them to replace arguments.
type ConstructorPoint struct {
	matcher     match.MemberMatcher
	interceptor interceptor.Ref
}

// Constructor returns a ConstructorPoint wiring the constructors matched by
// m to the interceptor registered as ref.
func Constructor(m match.MemberMatcher, ref interceptor.Ref) ConstructorPoint {
	return ConstructorPoint{matcher: m, interceptor: ref}
}

// Matcher returns the constructor matcher.
func (p ConstructorPoint) Matcher() match.MemberMatcher { return p.matcher }

// Interceptor returns the reference of the interceptor to wire.
func (p ConstructorPoint) Interceptor() interceptor.Ref { return p.interceptor }

// Matches returns true if p applies to the constructor m.
func (p ConstructorPoint) Matches(m *match.MemberDescription) bool {
	return m != nil && m.IsConstructor() && p.matcher.Matches(m)
}

// MethodPoint binds a method matcher to a method interceptor, and declares
// whether the interceptor may replace the arguments of the call.
type MethodPoint struct {
	matcher      match.MemberMatcher
	interceptor  interceptor.Ref
	overrideArgs bool
}

// Method returns a MethodPoint wiring the methods matched by m to the
// interceptor registered as ref. The interceptor may not replace arguments
// unless WithOverrideArgs is used.
func Method(m match.MemberMatcher, ref interceptor.Ref) MethodPoint {
	return MethodPoint{matcher: m, interceptor: ref}
}

// WithOverrideArgs returns a copy of p that allows the interceptor to
// replace the call's arguments before the original method runs.
func (p MethodPoint) WithOverrideArgs() MethodPoint {
	p.overrideArgs = true
	return p
}

// Matcher returns the method matcher.
func (p MethodPoint) Matcher() match.MemberMatcher { return p.matcher }

// Interceptor returns the reference of the interceptor to wire.
func (p MethodPoint) Interceptor() interceptor.Ref { return p.interceptor }

// OverrideArgs tells whether the interceptor may replace arguments.
func (p MethodPoint) OverrideArgs() bool { return p.overrideArgs }

// Matches returns true if p applies to the method m.
func (p MethodPoint) Matches(m *match.MemberDescription) bool {
	return m != nil && !m.IsConstructor() && p.matcher.Matches(m)
}
