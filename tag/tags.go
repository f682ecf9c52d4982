package tag

import "fmt"

// The tags every interceptor may write. All of them are registered in
// Default.
//nolint:gochecknoglobals
var (
	// URL records the url of the incoming request.
	URL = StringTag{builtin(MustDeclare("url", KindString))}
	// StatusCode records the HTTP status code of the response.
	StatusCode = IntTag{builtin(MustDeclare("status_code", KindInt))}
	// Component is a low-cardinality identifier of the instrumented library,
	// for example "Redis" or "gRPC".
	Component = StringTag{builtin(MustDeclare("component", KindString))}
	// Error tells whether the span ended in an error state. It defaults to
	// false until an interceptor observes a failure.
	Error = BoolTag{builtin(MustDeclare("error", KindBool, WithDefault(false)))}
	// DBType records the database type, such as sql, redis or cassandra.
	DBType = StringTag{builtin(MustDeclare("db.type", KindString))}
	// DBInstance records the database instance name.
	DBInstance = StringTag{builtin(MustDeclare("db.instance", KindString))}
	// DBStatement records the statement of the database access.
	DBStatement = StringTag{builtin(MustDeclare("db.statement", KindString))}

	// HTTP groups the tags describing HTTP exchanges.
	HTTP = struct {
		// Method records the HTTP method of the request.
		Method StringTag
	}{
		Method: StringTag{builtin(MustDeclare("http.method", KindString))},
	}

	spanLayer = builtin(MustDeclare("span.layer", KindString,
		WithVocabulary(LayerDB.String(), LayerRPCFramework.String(), LayerHTTP.String())))
	spanKind = builtin(MustDeclare("span.kind", KindString,
		WithVocabulary(SpanKindServer.String(), SpanKindClient.String())))
)

// Layer is the layer a span belongs to. The set of layers is closed, and
// SetLayer is the only way of writing the span.layer tag with a Layer.
type Layer int

const (
	// LayerDB is database access.
	LayerDB Layer = 1 + iota
	// LayerRPCFramework is a remote procedure call framework, like gRPC or
	// Thrift.
	LayerRPCFramework
	// LayerHTTP is HTTP access.
	LayerHTTP
)

func (l Layer) String() string {
	switch l {
	case LayerDB:
		return "db"
	case LayerRPCFramework:
		return "rpc"
	case LayerHTTP:
		return "http"
	default:
		return ""
	}
}

// LayerTag returns the tag SetLayer writes.
func LayerTag() *Tag { return spanLayer }

// SetLayer marks span as belonging to layer l.
func SetLayer(span Span, l Layer) error {
	if l.String() == "" {
		return fmt.Errorf("invalid layer %d", int(l))
	}
	return spanLayer.Set(span, l.String())
}

// SpanKind hints at the relationship between spans.
type SpanKind int

const (
	// SpanKindServer marks a span handling an incoming request.
	SpanKindServer SpanKind = 1 + iota
	// SpanKindClient marks a span making an outgoing request.
	SpanKindClient
)

func (k SpanKind) String() string {
	switch k {
	case SpanKindServer:
		return "server"
	case SpanKindClient:
		return "client"
	default:
		return ""
	}
}

// SpanKindTag returns the tag SetSpanKind writes.
func SpanKindTag() *Tag { return spanKind }

// SetSpanKind marks span with kind k.
func SetSpanKind(span Span, k SpanKind) error {
	if k.String() == "" {
		return fmt.Errorf("invalid span kind %d", int(k))
	}
	return spanKind.Set(span, k.String())
}
