// Package command implements the instrument-plan command.
package command

import (
	"context"
	"fmt"
	"io"
	golog "log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
	"github.com/luxas/deklarative/instrument/plugin"
	"github.com/luxas/deklarative/instrument/plugin/manifest"
	"github.com/luxas/deklarative/instrument/plugins/grpc"
	"github.com/luxas/deklarative/instrument/plugins/jedis"
	"github.com/luxas/deklarative/instrument/tracing"
	"github.com/luxas/deklarative/instrument/tracing/zaplog"
	"github.com/luxas/deklarative/instrument/weave"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.uber.org/multierr"
)

// Log formats.
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
	LogFormatText    = "text"
)

type params struct {
	catalog   string
	manifests []string
	builtin   bool
	strict    bool
	logFormat string
	verbosity int
	trace     string
	traceSeed int64
}

// RootCommand returns the instrument-plan command. The plan is written to
// out, logs to errOut.
func RootCommand(out, errOut io.Writer) *cobra.Command {
	var p params
	cmd := &cobra.Command{
		Use:   "instrument-plan --catalog FILE [--manifest FILE]...",
		Short: "Prints which interceptors would be bound to the members of a type catalog",
		Long: `instrument-plan matches the types of a catalog against plugin definitions,
and prints the binding of every enhanced constructor and method.

Definitions come from the bundled gRPC and Jedis plugins, and from any number
of YAML or JSON manifests. Every binding is also resolved against the bundled
interceptors; bindings that can't be resolved are listed as unresolved.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(errOut, p.logFormat, p.verbosity)
			if err != nil {
				return err
			}
			tracing.SetGlobalLogger(log)
			return runTraced(cmd.Context(), out, log, &p)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&p.catalog, "catalog", "c", "", "path to the YAML or JSON type catalog")
	flags.StringArrayVarP(&p.manifests, "manifest", "m", nil, "path to a YAML or JSON plugin manifest; may be repeated")
	flags.BoolVar(&p.builtin, "builtin", true, "include the bundled plugin definitions")
	flags.BoolVar(&p.strict, "strict", false, "fail if any binding can't be resolved")
	flags.StringVar(&p.logFormat, "log-format", LogFormatText, fmt.Sprintf("log format (%q, %q or %q)", LogFormatText, LogFormatJSON, LogFormatConsole))
	flags.IntVarP(&p.verbosity, "verbosity", "v", 0, "log verbosity")
	flags.StringVar(&p.trace, "trace", "", "write a span per planned type as JSON to this file")
	flags.Int64Var(&p.traceSeed, "trace-seed", 0, "if non-zero, seed for deterministic trace and span IDs")
	if err := cmd.MarkFlagRequired("catalog"); err != nil {
		panic(err)
	}
	return cmd
}

func newLogger(w io.Writer, format string, verbosity int) (logr.Logger, error) {
	switch format {
	case LogFormatText:
		stdr.SetVerbosity(verbosity)
		return stdr.New(golog.New(w, "", golog.LstdFlags)), nil
	case LogFormatJSON:
		return zaplog.NewZap().LogTo(w).Verbosity(verbosity).Build(), nil
	case LogFormatConsole:
		return zaplog.NewZap().LogTo(w).Console().Verbosity(verbosity).Build(), nil
	default:
		return logr.Discard(), fmt.Errorf("unknown log format %q", format)
	}
}

// runTraced runs the command with a TracerProvider exporting to the
// --trace file, if set. The provider is shut down, and thereby flushed,
// before returning.
func runTraced(ctx context.Context, out io.Writer, log logr.Logger, p *params) (retErr error) {
	if len(p.trace) == 0 {
		return run(ctx, out, log, p)
	}

	f, err := os.Create(p.trace)
	if err != nil {
		return err
	}
	defer func() { retErr = multierr.Append(retErr, f.Close()) }()

	b := tracing.Provider().
		WithServiceName("instrument-plan").
		WithStdoutExporter(stdouttrace.WithWriter(f))
	if p.traceSeed != 0 {
		b = b.DeterministicIDs(p.traceSeed)
	}
	tp, err := b.Build()
	if err != nil {
		return err
	}
	defer func() { retErr = multierr.Append(retErr, tp.Shutdown(context.Background())) }()

	return run(tracing.Context().From(ctx).WithTracerProvider(tp).Build(), out, log, p)
}

func run(ctx context.Context, out io.Writer, log logr.Logger, p *params) error {
	defs, err := definitions(log, p)
	if err != nil {
		return err
	}
	catalog, err := readCatalog(p.catalog)
	if err != nil {
		return err
	}

	registry := interceptor.NewRegistry()
	if err := multierr.Combine(grpc.Register(registry), jedis.Register(registry)); err != nil {
		return err
	}
	engine, err := weave.New(defs, registry, weave.WithLogger(log))
	if err != nil {
		return err
	}
	log.V(1).Info("loaded", "definitions", len(defs), "types", len(catalog.Types))

	var unresolved int
	for i := range catalog.Types {
		n, err := printType(ctx, out, engine, &catalog.Types[i])
		if err != nil {
			return err
		}
		unresolved += n
	}
	if p.strict && unresolved != 0 {
		return fmt.Errorf("%d binding(s) could not be resolved", unresolved)
	}
	return nil
}

// definitions returns the bundled definitions, if enabled, and those of
// the manifests. Invalid manifest plugins are logged and skipped, unless
// p.strict is set.
func definitions(log logr.Logger, p *params) ([]*plugin.Definition, error) {
	var defs []*plugin.Definition
	if p.builtin {
		defs = append(defs, grpc.Definition(), jedis.Definition())
	}
	for _, path := range p.manifests {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		m, err := manifest.DecodeManifest(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		mdefs, err := m.Definitions()
		if err != nil {
			if p.strict {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			for _, e := range multierr.Errors(err) {
				log.Error(e, "skipping invalid plugin", "manifest", path)
			}
		}
		defs = append(defs, mdefs...)
	}
	return defs, nil
}

func readCatalog(path string) (*manifest.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := manifest.DecodeCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// printType prints the plan of t and returns the number of bindings that
// couldn't be resolved.
func printType(ctx context.Context, out io.Writer, engine *weave.Engine, t *match.TypeDescription) (n int, err error) {
	_, span := tracing.Tracer().
		WithActor("instrument-plan").
		WithAttributes(attribute.String("type", t.Name)).
		Capture(&err).
		Start(ctx, "plan")
	defer span.End()

	p := engine.Plan(t)
	span.SetAttributes(attribute.Int("bindings", len(p.Bindings)))
	if p.Empty() {
		_, err := fmt.Fprintf(out, "%s\n  not enhanced\n", t.Name)
		return 0, err
	}
	if _, err := fmt.Fprintf(out, "%s %v\n", t.Name, p.Plugins); err != nil {
		return 0, err
	}
	for _, b := range p.Bindings {
		if _, err := fmt.Fprintf(out, "  %s\n", b); err != nil {
			return 0, err
		}
	}

	_, enhanceErr := engine.Enhance(t)
	errs := multierr.Errors(enhanceErr)
	span.SetAttributes(attribute.Int("unresolved", len(errs)))
	for _, e := range errs {
		if _, err := fmt.Fprintf(out, "  unresolved: %v\n", e); err != nil {
			return 0, err
		}
	}
	return len(errs), nil
}
