package interceptor

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps Refs to interceptor implementations. It is safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	impl map[Ref]interface{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{impl: make(map[Ref]interface{})}
}

// Register binds ref to impl, which must implement ConstructorInterceptor,
// MethodInterceptor, or both. A Ref can only be registered once.
func (r *Registry) Register(ref Ref, impl interface{}) error {
	if len(ref) == 0 {
		return fmt.Errorf("interceptor ref must not be empty")
	}
	_, isCtor := impl.(ConstructorInterceptor)
	_, isMethod := impl.(MethodInterceptor)
	if !isCtor && !isMethod {
		return fmt.Errorf("interceptor %q: %T implements neither ConstructorInterceptor nor MethodInterceptor", ref, impl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.impl[ref]; ok {
		return fmt.Errorf("interceptor %q is already registered", ref)
	}
	r.impl[ref] = impl
	return nil
}

// MustRegister is like Register, but panics on error.
func (r *Registry) MustRegister(ref Ref, impl interface{}) {
	if err := r.Register(ref, impl); err != nil {
		panic(err)
	}
}

// Constructor resolves ref to a ConstructorInterceptor.
func (r *Registry) Constructor(ref Ref) (ConstructorInterceptor, error) {
	impl, ok := r.get(ref)
	if ci, isCtor := impl.(ConstructorInterceptor); isCtor {
		return ci, nil
	}
	return nil, &UnresolvedError{Ref: ref, Kind: KindConstructor, Registered: ok}
}

// Method resolves ref to a MethodInterceptor.
func (r *Registry) Method(ref Ref) (MethodInterceptor, error) {
	impl, ok := r.get(ref)
	if mi, isMethod := impl.(MethodInterceptor); isMethod {
		return mi, nil
	}
	return nil, &UnresolvedError{Ref: ref, Kind: KindMethod, Registered: ok}
}

// Refs returns the registered refs, sorted.
func (r *Registry) Refs() []Ref {
	r.mu.RLock()
	defer r.mu.RUnlock()
	refs := make([]Ref, 0, len(r.impl))
	for ref := range r.impl {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs
}

func (r *Registry) get(ref Ref) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	impl, ok := r.impl[ref]
	return impl, ok
}
