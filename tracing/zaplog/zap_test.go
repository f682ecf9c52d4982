package zaplog

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/assert"
)

func ExampleBuilder_json() {
	// Build an example logger called weave that logs levels <= 1.
	log := NewZap().Example().Verbosity(1).Build().WithName("weave")

	log.Info("enhanced class", "class", "redis.clients.jedis.JedisCluster")
	log.WithValues("plugin", "jedis-2.x").V(1).Info("resolved interceptor")

	err := errors.New("no interceptor registered") //nolint:goerr113
	log.Error(err, "unresolved interceptor", "after", time.Second)

	// v=2 is discarded, but v=1 is enabled
	log.V(1).Info("enabled?", "enabled", log.V(1).Enabled())
	log.V(2).Info("enabled?", "enabled", log.V(2).Enabled())

	// Output:
	// {"level":"info(v=0)","logger":"weave","msg":"enhanced class","class":"redis.clients.jedis.JedisCluster"}
	// {"level":"debug(v=1)","logger":"weave","msg":"resolved interceptor","plugin":"jedis-2.x"}
	// {"level":"error","logger":"weave","msg":"unresolved interceptor","after":"1s","error":"no interceptor registered"}
	// {"level":"debug(v=1)","logger":"weave","msg":"enabled?","enabled":true}
}

func ExampleBuilder_console() {
	log := NewZap().Example().Console().Verbosity(1).Build().WithName("weave")

	log.Info("enhanced class", "class", "redis.clients.jedis.JedisCluster")
	log.WithValues("plugin", "jedis-2.x").V(1).Info("resolved interceptor")

	err := errors.New("no interceptor registered") //nolint:goerr113
	log.Error(err, "unresolved interceptor", "after", time.Second)

	// Output:
	// INFO(v=0)	weave	enhanced class	{"class": "redis.clients.jedis.JedisCluster"}
	// DEBUG(v=1)	weave	resolved interceptor	{"plugin": "jedis-2.x"}
	// ERROR	weave	unresolved interceptor	{"after": "1s", "error": "no interceptor registered"}
}

func ExampleBuilder_custom() {
	var buf bytes.Buffer
	log := NewZap().
		Example().
		WithEncoderConfig(DevelopmentEncoderConfig()).
		WithLogrOptions(zapr.ErrorKey("err")).
		LogTo(&buf).
		Build().
		WithName("grpc")

	log.Info("span started", "peer", "localhost:50051")
	err := errors.New("UNAVAILABLE") //nolint:goerr113
	log.Error(err, "call failed")

	fmt.Print(buf.String())
	// Output:
	// {"L":"info(v=0)","N":"grpc","M":"span started","peer":"localhost:50051"}
	// {"L":"error","N":"grpc","M":"call failed","err":"UNAVAILABLE"}
}

func TestBuilder_Verbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		enabled   []bool
	}{
		{name: "default", verbosity: 0, enabled: []bool{true, false, false}},
		{name: "one", verbosity: 1, enabled: []bool{true, true, false}},
		{name: "two", verbosity: 2, enabled: []bool{true, true, true}},
		{name: "negative is ignored", verbosity: -3, enabled: []bool{true, false, false}},
	}
	for _, rt := range tests {
		t.Run(rt.name, func(t *testing.T) {
			log := NewZap().LogTo(&bytes.Buffer{}).Verbosity(rt.verbosity).Build()
			for v, want := range rt.enabled {
				assert.Equal(t, want, log.V(v).Enabled(), "V(%d)", v)
			}
		})
	}
}

func TestFilterStacktraceOrigins(t *testing.T) {
	in := "ERROR\tweave\tfailed\nmain.main\n\t/usr/local/go/src/main.go:12\nruntime.main\n"
	assert.Equal(t, "ERROR\tweave\tfailed\nmain.main\nruntime.main\n", string(FilterStacktraceOrigins([]byte(in))))
}
