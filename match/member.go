package match

// MemberMatcher decides whether a constructor or method of an already
// matched type gets intercepted. Implementations must be pure.
type MemberMatcher interface {
	Matches(m *MemberDescription) bool
}

// MemberMatcherFunc adapts a function to a MemberMatcher.
type MemberMatcherFunc func(m *MemberDescription) bool

// Matches implements MemberMatcher.
func (f MemberMatcherFunc) Matches(m *MemberDescription) bool { return m != nil && f(m) }

// Named matches members with the given name.
func Named(name string) MemberMatcher { return namedMatcher{name} }

// NamedOneOf matches members whose name is one of names.
func NamedOneOf(names ...string) MemberMatcher {
	return namedMatcher(append([]string(nil), names...))
}

type namedMatcher []string

func (n namedMatcher) Matches(m *MemberDescription) bool { return m != nil && contains(n, m.Name) }

func (n namedMatcher) validate() error {
	if len(n) == 0 {
		return invalid("NamedOneOf", "no names given")
	}
	for _, name := range n {
		if len(name) == 0 {
			return invalid("Named", "empty name")
		}
	}
	return nil
}

// TakesArguments matches members declaring exactly n parameters.
func TakesArguments(n int) MemberMatcher { return arityMatcher(n) }

type arityMatcher int

func (a arityMatcher) Matches(m *MemberDescription) bool {
	return m != nil && len(m.Parameters) == int(a)
}

func (a arityMatcher) validate() error {
	if a < 0 {
		return invalid("TakesArguments", "negative argument count")
	}
	return nil
}

// TakesArgument matches members whose parameter at index i is ref. When
// ref has no type arguments, only the raw types are compared, so
// TakesArgument(0, Type("java.util.Set")) matches a Set<HostAndPort>
// parameter. When ref has type arguments, they must be equal too.
func TakesArgument(i int, ref TypeRef) MemberMatcher {
	return &argumentMatcher{index: i, ref: ref}
}

// TakesArgumentWithType matches members whose parameter at index i has the
// raw type named typeName. A Set<HostAndPort> parameter does not match
// TakesArgumentWithType(0, "redis.clients.jedis.HostAndPort").
func TakesArgumentWithType(i int, typeName string) MemberMatcher {
	return &argumentMatcher{index: i, ref: Type(typeName)}
}

type argumentMatcher struct {
	index int
	ref   TypeRef
}

func (a *argumentMatcher) Matches(m *MemberDescription) bool {
	if m == nil || a.index < 0 || a.index >= len(m.Parameters) {
		return false
	}
	p := m.Parameters[a.index]
	if len(a.ref.Arguments) == 0 {
		return p.Erasure() == a.ref.Erasure()
	}
	return p.Equal(a.ref)
}

func (a *argumentMatcher) validate() error {
	if a.index < 0 {
		return invalid("TakesArgument", "negative argument index")
	}
	if len(a.ref.Name) == 0 {
		return invalid("TakesArgument", "empty type name")
	}
	return nil
}

// AnnotatedWith matches members carrying the given annotation.
func AnnotatedWith(annotation string) MemberMatcher { return memberAnnotation(annotation) }

type memberAnnotation string

func (a memberAnnotation) Matches(m *MemberDescription) bool {
	return m != nil && contains(m.Annotations, string(a))
}

func (a memberAnnotation) validate() error {
	if len(a) == 0 {
		return invalid("AnnotatedWith", "empty annotation")
	}
	return nil
}

// AnyMember matches every member.
func AnyMember() MemberMatcher { return anyMember{} }

type anyMember struct{}

func (anyMember) Matches(m *MemberDescription) bool { return m != nil }

// All matches members matched by every one of ms.
func All(ms ...MemberMatcher) MemberMatcher {
	return &memberComposite{op: "All", all: true, ms: append([]MemberMatcher(nil), ms...)}
}

// Any matches members matched by at least one of ms.
func Any(ms ...MemberMatcher) MemberMatcher {
	return &memberComposite{op: "Any", ms: append([]MemberMatcher(nil), ms...)}
}

type memberComposite struct {
	op  string
	all bool
	ms  []MemberMatcher
}

func (c *memberComposite) Matches(m *MemberDescription) bool {
	for _, mm := range c.ms {
		if mm.Matches(m) != c.all {
			return !c.all
		}
	}
	return c.all && len(c.ms) != 0
}

func (c *memberComposite) validate() error {
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

// Not matches members m doesn't match.
func Not(m MemberMatcher) MemberMatcher { return notMember{m} }

type notMember struct{ m MemberMatcher }

func (n notMember) Matches(m *MemberDescription) bool { return m != nil && !n.m.Matches(m) }
func (n notMember) validate() error                   { return Validate(n.m) }
