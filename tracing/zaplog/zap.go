// Package zaplog provides a builder-pattern constructor for creating a
// logr.Logger implementation using Zap with some commonly-good defaults.
//
// The agent logs through logr everywhere; this package is the only place
// that knows that the backend is zap.
package zaplog

import (
	"io"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/luxas/deklarative/instrument/tracing/filetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	// Encoder is a symbolic link to zapcore.Encoder.
	Encoder = zapcore.Encoder
	// EncoderConfig is a symbolic link to zapcore.EncoderConfig.
	EncoderConfig = zapcore.EncoderConfig
	// LevelEncoder is a symbolic link to zapcore.LevelEncoder.
	LevelEncoder = zapcore.LevelEncoder

	// EncoderConfigOption mutates the EncoderConfig at Build() time.
	EncoderConfigOption func(*EncoderConfig)
	// EncoderCreator creates an Encoder from a populated EncoderConfig.
	EncoderCreator func(EncoderConfig) Encoder
)

// JSONEncoderCreator is a symbolic link to zapcore.NewJSONEncoder.
func JSONEncoderCreator() EncoderCreator { return zapcore.NewJSONEncoder }

// ConsoleEncoderCreator is a symbolic link to zapcore.NewConsoleEncoder.
func ConsoleEncoderCreator() EncoderCreator { return zapcore.NewConsoleEncoder }

// ProductionEncoderConfig is a symbolic link to zap.NewProductionEncoderConfig().
func ProductionEncoderConfig() EncoderConfig { return zap.NewProductionEncoderConfig() }

// DevelopmentEncoderConfig is a symbolic link to zap.NewDevelopmentEncoderConfig().
func DevelopmentEncoderConfig() EncoderConfig { return zap.NewDevelopmentEncoderConfig() }

// LowercaseLevelEncoder is the default LevelEncoder. Info and debug levels
// are suffixed with "(v={V})" where {V} is the logr verbosity, and all
// levels below debug are shown as debug.
func LowercaseLevelEncoder() LevelEncoder { return verbosityLevelEncoder(zapcore.Level.String) }

// CapitalLevelEncoder is like LowercaseLevelEncoder, but with capital
// level names.
func CapitalLevelEncoder() LevelEncoder { return verbosityLevelEncoder(zapcore.Level.CapitalString) }

func verbosityLevelEncoder(name func(zapcore.Level) string) LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		str := name(l)
		if l < zap.DebugLevel {
			str = name(zap.DebugLevel)
		}
		if l <= zap.InfoLevel {
			str += "(v=" + strconv.Itoa(-int(l)) + ")"
		}
		enc.AppendString(str)
	}
}

// NewZap returns a new *Builder using the default configuration.
func NewZap() *Builder {
	return (&Builder{
		outW:           os.Stdout,
		encoderCfg:     ProductionEncoderConfig(),
		encoderCreator: JSONEncoderCreator(),
	}).WithLevelEncoder(LowercaseLevelEncoder())
}

// Builder is a builder-pattern struct for building a logr.Logger
// using go.uber.org/zap.
//
// The default configuration uses the production encoder configuration,
// writes JSON, includes the V log levels in the level name, and logs to os.Stdout.
type Builder struct {
	outW              io.Writer
	encoderCfg        EncoderConfig
	encoderCfgOptions []EncoderConfigOption
	encoderCreator    EncoderCreator
	level             zapcore.Level
	opts              []zap.Option
	logrOpts          []zapr.Option
}

// LogTo specifies where to write logs. The writer is wrapped using
// zapcore.AddSync unless it is a zapcore.WriteSyncer, and locked with
// zapcore.Lock.
//
// Defaults to os.Stdout.
//
// A call to this function overwrites any previous value.
func (b *Builder) LogTo(w io.Writer) *Builder {
	b.outW = w
	return b
}

// WithEncoderConfig lets the user fine-tune how to encode/format logs.
//
// Defaults to zap.NewProductionEncoderConfig().
//
// A call to this function overwrites any previous value.
func (b *Builder) WithEncoderConfig(cfg EncoderConfig) *Builder {
	b.encoderCfg = cfg
	return b
}

// WithEncoderConfigOption registers functions patching the EncoderConfig
// at Build() time.
//
// A call to this function appends to the list of previous values.
func (b *Builder) WithEncoderConfigOption(opts ...EncoderConfigOption) *Builder {
	b.encoderCfgOptions = append(b.encoderCfgOptions, opts...)
	return b
}

// WithEncoderCreator uses a specific EncoderCreator to create the encoder.
//
// Defaults to JSONEncoderCreator().
//
// A call to this function overwrites any previous value.
func (b *Builder) WithEncoderCreator(encoderCreator EncoderCreator) *Builder {
	b.encoderCreator = encoderCreator
	return b
}

// Verbosity specifies the highest logr level that is output. Zap and
// logr levels relate as follows:
//
//	Level	Zap	Logr
//		-N	N
//	Debug	-1	1
//	Info	0	0	(default)
//	Error	2	N/A
//
// Negative values are ignored, as logr disallows negative levels.
//
// A call to this function overwrites any previous value.
func (b *Builder) Verbosity(v int) *Builder {
	if v >= 0 {
		b.level = zapcore.Level(-v)
	}
	return b
}

// WithOptions appends options for configuring zap.
//
// Options by default applied in Build() are:
//
//	zap.AddStacktrace(zap.ErrorLevel)
//	zap.ErrorOutput(sink)
//
// A call to this function appends to the list of previous values.
func (b *Builder) WithOptions(opts ...zap.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// WithLogrOptions appends options for the zapr logr.LogSink, for example
// zapr.ErrorKey("err").
//
// A call to this function appends to the list of previous values.
func (b *Builder) WithLogrOptions(opts ...zapr.Option) *Builder {
	b.logrOpts = append(b.logrOpts, opts...)
	return b
}

// Console is a shorthand for:
//
//	WithEncoderCreator(ConsoleEncoderCreator()).
//	HumanFriendlyTime().
//	WithLevelEncoder(CapitalLevelEncoder())
func (b *Builder) Console() *Builder {
	return b.WithEncoderCreator(ConsoleEncoderCreator()).
		HumanFriendlyTime().
		WithLevelEncoder(CapitalLevelEncoder())
}

// Example is a shorthand for
//
//	HumanFriendlyTime().
//	NoTimestamps().
//	NoStacktraceOnError()
func (b *Builder) Example() *Builder {
	return b.HumanFriendlyTime().
		NoTimestamps().
		NoStacktraceOnError()
}

// Test makes the logger log to a golden file named after the test with a
// ".log" suffix. Stack trace origins are filtered, as they vary across Go
// versions.
func (b *Builder) Test(g *filetest.Tester) *Builder {
	return b.LogTo(g.AddTestFile(".log").Filter(FilterStacktraceOrigins).Writer())
}

// NoStacktraceOnError only outputs stack traces for the DPanicLevel or
// higher (zap) levels.
func (b *Builder) NoStacktraceOnError() *Builder {
	return b.WithOptions(zap.AddStacktrace(zap.DPanicLevel))
}

// WithLevelEncoder customizes how the log level is encoded.
//
// The default is LowercaseLevelEncoder.
//
// A call to this function overwrites any previous value.
func (b *Builder) WithLevelEncoder(levelEnc LevelEncoder) *Builder {
	return b.WithEncoderConfigOption(func(ec *EncoderConfig) {
		ec.EncodeLevel = levelEnc
	})
}

// NoTimestamps omits timestamps in the logs, by setting
// EncoderConfig.TimeKey = zapcore.OmitKey.
func (b *Builder) NoTimestamps() *Builder {
	return b.WithEncoderConfigOption(func(ec *EncoderConfig) {
		ec.TimeKey = zapcore.OmitKey
	})
}

// HumanFriendlyTime encodes time.Time as ISO8601 with millisecond
// precision, and time.Duration using its String method.
func (b *Builder) HumanFriendlyTime() *Builder {
	return b.WithEncoderConfigOption(func(ec *EncoderConfig) {
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeDuration = zapcore.StringDurationEncoder
	})
}

// Build builds the logger with the configured options.
//
// By default the logger name is an empty string, and the log level is 0.
func (b *Builder) Build() logr.Logger {
	sink := zapcore.Lock(zapcore.AddSync(b.outW))

	encCfg := b.encoderCfg
	for _, mutFn := range b.encoderCfgOptions {
		mutFn(&encCfg)
	}
	encoder := b.encoderCreator(encCfg)

	// Defaults go first so that b.opts can override them.
	opts := []zap.Option{
		zap.AddStacktrace(zap.ErrorLevel),
		zap.ErrorOutput(sink),
	}
	opts = append(opts, b.opts...)

	return zapr.NewLoggerWithOptions(
		zap.New(zapcore.NewCore(encoder, sink, b.level), opts...),
		b.logrOpts...,
	)
}

// FilterStacktraceOrigins removes every line in content that starts with
// a tab, that is the file:line origins of a zap console stack trace.
func FilterStacktraceOrigins(content []byte) []byte {
	return filetest.DropLines("\t")(content)
}
