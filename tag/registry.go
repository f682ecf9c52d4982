package tag

import "sync"

// Registry maps tag names to Tags. Tags are declared into a registry once,
// typically during package initialization, and looked up by name
// afterwards. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tags  map[string]*Tag
	names []string
}

// NewRegistry returns an empty *Registry.
func NewRegistry() *Registry {
	return &Registry{tags: make(map[string]*Tag)}
}

// Default is the registry the built-in tags of this package are declared in.
//nolint:gochecknoglobals
var Default = NewRegistry()

// Declare declares a Tag and registers it. See Register for what happens
// if the name is already taken.
func (r *Registry) Declare(name string, kind Kind, opts ...Option) (*Tag, error) {
	t, err := Declare(name, kind, opts...)
	if err != nil {
		return nil, err
	}
	return r.Register(t)
}

// Register adds t to the registry. Registering a tag identical to an
// already registered one returns the existing *Tag, so that declarations
// are idempotent. Registering a different tag under an existing name fails
// with a *DuplicateTagError.
func (r *Registry) Register(t *Tag) (*Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.tags[t.name]; ok {
		if existing.sameAs(t) {
			return existing, nil
		}
		return nil, &DuplicateTagError{Name: t.name, Existing: existing}
	}
	r.tags[t.name] = t
	r.names = append(r.names, t.name)
	return t, nil
}

// Lookup returns the Tag registered under name.
func (r *Registry) Lookup(name string) (*Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tags[name]
	return t, ok
}

// Tags returns all registered tags in registration order.
func (r *Registry) Tags() []*Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tag, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.tags[name])
	}
	return out
}

func builtin(t *Tag) *Tag {
	registered, err := Default.Register(t)
	if err != nil {
		panic(err)
	}
	return registered
}
