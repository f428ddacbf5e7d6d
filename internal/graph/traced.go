package graph

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedSession wraps a Session with OpenTelemetry tracing. Each Run produces
// a span named "twigslot.graph.run" carrying the statement text and result
// counts.
//
// Thread-safety: same contract as the inner session (sequential reuse only).
type TracedSession struct {
	inner  Session
	tracer trace.Tracer
}

// NewTracedSession wraps the given session with tracing.
func NewTracedSession(inner Session, tracer trace.Tracer) *TracedSession {
	return &TracedSession{
		inner:  inner,
		tracer: tracer,
	}
}

// Run executes the statement on the inner session inside a span.
func (s *TracedSession) Run(ctx context.Context, cypher string, params map[string]any) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "twigslot.graph.run",
		trace.WithAttributes(
			attribute.String("db.system", "neo4j"),
			attribute.String("db.statement", cypher),
			attribute.Int("db.parameter_count", len(params)),
		))
	defer span.End()

	result, err := s.inner.Run(ctx, cypher, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("db.records_returned", len(result.Records)),
		attribute.Int("db.nodes_created", result.Summary.NodesCreated),
		attribute.Int("db.relationships_created", result.Summary.RelationshipsCreated),
	)
	return result, nil
}

// Close closes the inner session.
func (s *TracedSession) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}
