package tracing

import (
	"context"
	"testing"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChildSpan(t *testing.T) {
	tracer := mocktracer.New()
	parent := tracer.StartSpan("parent")
	ctx := opentracing.ContextWithSpan(context.Background(), parent)

	span, childCtx := ChildSpan(ctx, "child")
	span.Finish()
	parent.Finish()

	assert.Equal(t, span, opentracing.SpanFromContext(childCtx))

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].OperationName)
	assert.Equal(t, spans[1].SpanContext.SpanID, spans[0].ParentID)
}

func TestChildSpan_without_parent(t *testing.T) {
	tracer := mocktracer.New()
	prev := opentracing.GlobalTracer()
	opentracing.SetGlobalTracer(tracer)
	defer opentracing.SetGlobalTracer(prev)

	span, ctx := ChildSpan(context.Background(), "root")
	span.Finish()

	assert.NotNil(t, opentracing.SpanFromContext(ctx))

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "root", spans[0].OperationName)
	assert.Equal(t, 0, spans[0].ParentID)
}

func TestInit(t *testing.T) {
	tracer, closer, err := Init("solidity-language-server", "127.0.0.1:6831", zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tracer)
	require.NoError(t, closer.Close())
}
