package tracing

import (
	"context"
	"io"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	jaeger "github.com/uber/jaeger-client-go"
	jaegerzap "github.com/uber/jaeger-client-go/log/zap"
	"go.uber.org/zap"
)

// ChildSpan creates a child span given a context. If the context has no
// span, a root span is started with the global tracer.
func ChildSpan(ctx context.Context, name string) (opentracing.Span, context.Context) {
	var opts []opentracing.StartSpanOption

	tracer := opentracing.GlobalTracer()
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		tracer = parent.Tracer()
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}

	span := tracer.StartSpan(name, opts...)

	childCtx := opentracing.ContextWithSpan(ctx, span)
	return span, childCtx
}

// Init creates a Jaeger tracer that reports spans to a UDP agent. Reporter
// diagnostics are written to logger.
func Init(service, agent string, logger *zap.Logger) (opentracing.Tracer, io.Closer, error) {
	sender, err := jaeger.NewUDPTransport(agent, 0)
	if err != nil {
		return nil, nil, errors.Wrap(err, "initializing UDP sender")
	}

	reporter := jaeger.NewRemoteReporter(
		sender,
		jaeger.ReporterOptions.BufferFlushInterval(1*time.Second),
		jaeger.ReporterOptions.Logger(jaegerzap.NewLogger(logger)),
	)

	tracer, closer := jaeger.NewTracer(
		service,
		jaeger.NewConstSampler(true),
		reporter,
	)

	return tracer, closer, nil
}
