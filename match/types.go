package match

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// ConstructorName is the member name constructors are described with.
const ConstructorName = "<init>"

// TypeRef refers to a type by its fully-qualified name, possibly with type
// arguments. Types are deliberately referred to by name, and not by any
// runtime type handle: the instrumented type usually comes from a library
// whose types can't be resolved by whoever does the matching.
type TypeRef struct {
	// Name is the fully-qualified name of the raw (erased) type, for
	// example "java.util.Set".
	Name string
	// Arguments are the type arguments, if known; for example
	// "redis.clients.jedis.HostAndPort" for a Set<HostAndPort>.
	Arguments []TypeRef
}

// Type returns a TypeRef without type arguments.
func Type(name string) TypeRef { return TypeRef{Name: name} }

// Erasure returns the name of the raw type.
func (r TypeRef) Erasure() string { return r.Name }

// Equal returns true if r and o have the same name and type arguments.
func (r TypeRef) Equal(o TypeRef) bool {
	if r.Name != o.Name || len(r.Arguments) != len(o.Arguments) {
		return false
	}
	for i := range r.Arguments {
		if !r.Arguments[i].Equal(o.Arguments[i]) {
			return false
		}
	}
	return true
}

// String formats r like "java.util.Map<java.lang.String,java.lang.Object>".
func (r TypeRef) String() string {
	if len(r.Arguments) == 0 {
		return r.Name
	}
	args := make([]string, 0, len(r.Arguments))
	for _, a := range r.Arguments {
		args = append(args, a.String())
	}
	return r.Name + "<" + strings.Join(args, ",") + ">"
}

// MarshalJSON encodes r as its String form.
func (r TypeRef) MarshalJSON() ([]byte, error) { return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(r.String()) }

// UnmarshalJSON decodes r from its String form.
func (r *TypeRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTypeRef(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseTypeRef parses the String form of a TypeRef. Whitespace around names
// is ignored.
func ParseTypeRef(s string) (TypeRef, error) {
	p := &typeRefParser{in: s}
	ref, err := p.parse()
	if err != nil {
		return TypeRef{}, fmt.Errorf("invalid type reference %q: %w", s, err)
	}
	if p.pos != len(p.in) {
		return TypeRef{}, fmt.Errorf("invalid type reference %q: unexpected %q at offset %d", s, p.in[p.pos], p.pos)
	}
	return ref, nil
}

// MustParseTypeRef is like ParseTypeRef, but panics on error.
func MustParseTypeRef(s string) TypeRef {
	ref, err := ParseTypeRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

type typeRefParser struct {
	in  string
	pos int
}

func (p *typeRefParser) parse() (TypeRef, error) {
	start := p.pos
	for p.pos < len(p.in) && !strings.ContainsRune("<>,", rune(p.in[p.pos])) {
		p.pos++
	}
	name := strings.TrimSpace(p.in[start:p.pos])
	if len(name) == 0 {
		return TypeRef{}, fmt.Errorf("empty type name at offset %d", start)
	}
	ref := TypeRef{Name: name}
	if p.pos == len(p.in) || p.in[p.pos] != '<' {
		return ref, nil
	}

	p.pos++ // '<'
	for {
		arg, err := p.parse()
		if err != nil {
			return TypeRef{}, err
		}
		ref.Arguments = append(ref.Arguments, arg)
		if p.pos == len(p.in) {
			return TypeRef{}, fmt.Errorf("unterminated type arguments of %q", name)
		}
		c := p.in[p.pos]
		p.pos++
		if c == '>' {
			break
		}
		if c != ',' {
			return TypeRef{}, fmt.Errorf("unexpected %q at offset %d", c, p.pos-1)
		}
	}
	// Allow "A<B> " with trailing spaces before a closing bracket or comma.
	for p.pos < len(p.in) && p.in[p.pos] == ' ' {
		p.pos++
	}
	return ref, nil
}

// MemberDescription describes a constructor or method of a loaded type.
type MemberDescription struct {
	// Name is the method name, or ConstructorName for constructors.
	Name string `json:"name"`
	// Parameters are the declared parameter types in order.
	Parameters []TypeRef `json:"parameters,omitempty"`
	// Annotations are the fully-qualified names of the annotations present
	// on the member.
	Annotations []string `json:"annotations,omitempty"`
}

// Constructor describes a constructor taking the given parameters.
func Constructor(params ...TypeRef) *MemberDescription {
	return &MemberDescription{Name: ConstructorName, Parameters: params}
}

// Method describes a method taking the given parameters.
func Method(name string, params ...TypeRef) *MemberDescription {
	return &MemberDescription{Name: name, Parameters: params}
}

// IsConstructor returns true if m describes a constructor.
func (m *MemberDescription) IsConstructor() bool { return m.Name == ConstructorName }

// Signature formats m like "get(java.lang.String)", which identifies the
// member within its type.
func (m *MemberDescription) Signature() string {
	params := make([]string, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		params = append(params, p.String())
	}
	return m.Name + "(" + strings.Join(params, ",") + ")"
}

// TypeDescription describes a loaded type by name, together with the
// structural facts class matchers may look at, and the members member
// matchers are evaluated against.
type TypeDescription struct {
	// Name is the fully-qualified type name.
	Name string `json:"name"`
	// Superclasses lists the fully-qualified names of all superclasses,
	// nearest first.
	Superclasses []string `json:"superclasses,omitempty"`
	// Interfaces lists the fully-qualified names of all implemented
	// interfaces, including inherited ones.
	Interfaces []string `json:"interfaces,omitempty"`
	// Annotations lists the fully-qualified names of the type's annotations.
	Annotations []string `json:"annotations,omitempty"`

	Constructors []*MemberDescription `json:"constructors,omitempty"`
	Methods      []*MemberDescription `json:"methods,omitempty"`
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
