package tracing_test

import (
	"context"
	"errors"
	"fmt"
	golog "log"

	"github.com/luxas/deklarative/instrument/tag"
	"github.com/luxas/deklarative/instrument/tracing"
	"github.com/luxas/deklarative/instrument/tracing/traceyaml"
)

func Example_interceptorSpan() {
	// Record all spans in memory, and log to os.Stdout.
	rec := traceyaml.NewRecorder(nil)
	tp, err := tracing.Provider().Synchronous().Record(rec).Build()
	if err != nil {
		golog.Fatal(err)
	}
	log := tracing.NewZap().Example().Verbosity(1).Build()

	get := func(ctx context.Context, key string) (retErr error) {
		ctx, span, log := tracing.Tracer().
			WithActor("org.example.JedisMethodInterceptor").
			WithLayer(tag.LayerDB).
			Capture(&retErr).
			Trace(ctx, "get")
		defer span.End()

		if err := tag.DBStatement.Set(span, "get "+key); err != nil {
			return err
		}
		log.V(1).Info("executing", "key", key)

		return errors.New("connection refused") //nolint:goerr113
	}

	ctx := tracing.Context().WithLogger(log).WithTracerProvider(tp).Build()
	_ = get(ctx, "user:1")

	if err := tp.Shutdown(ctx); err != nil {
		golog.Fatal(err)
	}

	span := rec.Find("org.example.JedisMethodInterceptor.get")
	for _, key := range []string{"span.layer", "db.statement", "error"} {
		attr, _ := span.Attribute(key)
		fmt.Printf("%s=%v (%s)\n", attr.Key, attr.Value, attr.Type)
	}
	fmt.Println(span.StatusChanges[0].Code, len(span.Errors))

	// Output:
	// {"level":"info(v=0)","logger":"org.example.JedisMethodInterceptor.get","msg":"starting span","span-attr-span.layer":"db"}
	// {"level":"info(v=0)","logger":"org.example.JedisMethodInterceptor.get","msg":"span attribute change","span-attr-db.statement":"get user:1"}
	// {"level":"debug(v=1)","logger":"org.example.JedisMethodInterceptor.get","msg":"executing","key":"user:1"}
	// {"level":"error","logger":"org.example.JedisMethodInterceptor.get","msg":"span error","error":"connection refused"}
	// {"level":"info(v=0)","logger":"org.example.JedisMethodInterceptor.get","msg":"span status change","span-status-code":"Error","span-status-description":"connection refused"}
	// {"level":"info(v=0)","logger":"org.example.JedisMethodInterceptor.get","msg":"span attribute change","span-attr-error":true}
	// {"level":"info(v=0)","logger":"org.example.JedisMethodInterceptor.get","msg":"ending span"}
	// span.layer=db (STRING)
	// db.statement=get user:1 (STRING)
	// error=true (BOOL)
	// Error 1
}
