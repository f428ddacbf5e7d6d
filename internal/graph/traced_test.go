package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(context.Background()))
	})
	return sr, tp
}

func TestTracedSessionRecordsSpan(t *testing.T) {
	ctx := context.Background()
	sr, tp := newTestTracer(t)

	client := NewMemoryClient()
	sess := NewTracedSession(client.Session(ctx), tp.Tracer("test"))

	res, err := sess.Run(ctx, "CREATE (n:User) RETURN n", map[string]any{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "twigslot.graph.run", span.Name())

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "neo4j", attrs["db.system"].AsString())
	assert.Equal(t, "CREATE (n:User) RETURN n", attrs["db.statement"].AsString())
	assert.Equal(t, int64(1), attrs["db.records_returned"].AsInt64())
	assert.Equal(t, int64(1), attrs["db.nodes_created"].AsInt64())
}

func TestTracedSessionRecordsError(t *testing.T) {
	ctx := context.Background()
	sr, tp := newTestTracer(t)

	client := NewMemoryClient()
	sess := NewTracedSession(client.Session(ctx), tp.Tracer("test"))

	_, err := sess.Run(ctx, "THIS IS NOT CYPHER", map[string]any{})
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, codes.Error, span.Status().Code)
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "exception", span.Events()[0].Name)
}
