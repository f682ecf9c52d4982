// Package weave is an in-process weaving engine for plugin definitions.
//
// An Engine holds a set of definitions and an interceptor registry. Given
// the description of a loaded type, it finds the definitions matching it,
// plans which interceptor each member is bound to, and enhances the type
// into a Class. Calls are then dispatched explicitly through the Class,
// which runs the bound interceptors around the original code.
//
// Several definitions may bind the same member. All of them are applied,
// nested in registration order: before-hooks run in registration order and
// after-hooks in reverse.
package weave

import (
	"fmt"
	"sort"

	"github.com/go-logr/logr"
	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
	"github.com/luxas/deklarative/instrument/plugin"
	"github.com/luxas/deklarative/instrument/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	log logr.Logger
	reg prometheus.Registerer
}

// WithLogger sets the Logger the engine logs enhancement decisions and
// interceptor failures to. Defaults to tracing.GetGlobalLogger().
func WithLogger(log logr.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithRegisterer registers the engine metrics with reg. By default the
// metrics are registered with a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// Engine enhances types using a fixed set of definitions. It is safe for
// concurrent use.
type Engine struct {
	defs     []*plugin.Definition
	byName   map[string][]int
	scanned  []int
	registry *interceptor.Registry
	log      logr.Logger
	metrics  *metrics
}

// New returns an Engine for defs, resolving interceptor refs against
// registry. Definitions must be non-nil and have unique names.
func New(defs []*plugin.Definition, registry *interceptor.Registry, opts ...Option) (*Engine, error) {
	o := &options{log: tracing.GetGlobalLogger()}
	for _, opt := range opts {
		opt(o)
	}
	if o.reg == nil {
		o.reg = prometheus.NewRegistry()
	}
	if registry == nil {
		return nil, fmt.Errorf("interceptor registry must not be nil")
	}

	e := &Engine{
		byName:   make(map[string][]int),
		registry: registry,
		log:      o.log.WithName("weave"),
	}

	var errs error
	seen := make(map[string]bool, len(defs))
	for i, def := range defs {
		if def == nil {
			errs = multierr.Append(errs, fmt.Errorf("definitions[%d] is nil", i))
			continue
		}
		if seen[def.Name()] {
			errs = multierr.Append(errs, fmt.Errorf("definitions[%d]: duplicate plugin name %q", i, def.Name()))
			continue
		}
		seen[def.Name()] = true

		idx := len(e.defs)
		e.defs = append(e.defs, def)
		if nm, ok := def.ClassMatcher().(match.NameMatcher); ok {
			for _, name := range nm.ClassNames() {
				e.byName[name] = append(e.byName[name], idx)
			}
			continue
		}
		e.scanned = append(e.scanned, idx)
	}
	if errs != nil {
		return nil, errs
	}

	m, err := newMetrics(o.reg)
	if err != nil {
		return nil, err
	}
	e.metrics = m
	return e, nil
}

// Definitions returns the definitions of the engine in registration order.
func (e *Engine) Definitions() []*plugin.Definition {
	return append([]*plugin.Definition(nil), e.defs...)
}

// Find returns the definitions whose class matcher matches t, in
// registration order.
func (e *Engine) Find(t *match.TypeDescription) []*plugin.Definition {
	if t == nil {
		return nil
	}
	candidates := append(append([]int(nil), e.byName[t.Name]...), e.scanned...)
	sort.Ints(candidates)

	var found []*plugin.Definition
	for i, idx := range candidates {
		// A definition may list the same name twice.
		if i > 0 && candidates[i-1] == idx {
			continue
		}
		if def := e.defs[idx]; def.MatchesClass(t) {
			found = append(found, def)
		}
	}
	return found
}

// Plan returns which interceptor each member of t would be bound to. No
// interceptor is resolved.
func (e *Engine) Plan(t *match.TypeDescription) *Plan {
	p := &Plan{}
	if t == nil {
		return p
	}
	p.Type = t.Name

	defs := e.Find(t)
	for _, def := range defs {
		p.Plugins = append(p.Plugins, def.Name())
	}
	for _, ctor := range t.Constructors {
		for _, def := range defs {
			if point, ok := def.ResolveConstructor(ctor); ok {
				p.Bindings = append(p.Bindings, Binding{
					Plugin:      def.Name(),
					Kind:        interceptor.KindConstructor,
					Member:      ctor,
					Interceptor: point.Interceptor(),
				})
			}
		}
	}
	for _, method := range t.Methods {
		for _, def := range defs {
			if point, ok := def.ResolveMethod(method); ok {
				p.Bindings = append(p.Bindings, Binding{
					Plugin:       def.Name(),
					Kind:         interceptor.KindMethod,
					Member:       method,
					Interceptor:  point.Interceptor(),
					OverrideArgs: point.OverrideArgs(),
				})
			}
		}
	}
	return p
}

// Enhance resolves the interceptors planned for t and returns the enhanced
// Class. A binding whose interceptor can't be resolved is skipped, and the
// rest of the class is still enhanced; all resolution failures are
// combined in the returned error, which then accompanies a usable Class.
func (e *Engine) Enhance(t *match.TypeDescription) (*Class, error) {
	p := e.Plan(t)
	c := newClass(t, e)

	var errs error
	for _, b := range p.Bindings {
		log := e.log.WithValues("type", p.Type, "plugin", b.Plugin, "member", b.Member.Signature(), "interceptor", b.Interceptor)
		if err := c.bind(e.registry, b); err != nil {
			log.Error(err, "skipping member")
			e.metrics.unresolved.WithLabelValues(b.Plugin).Inc()
			errs = multierr.Append(errs, &BindingError{Type: p.Type, Binding: b, Err: err})
			continue
		}
		log.V(1).Info("enhanced member", "kind", b.Kind.String())
		e.metrics.enhanced.WithLabelValues(b.Plugin, b.Kind.String()).Inc()
	}
	return c, errs
}
