package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsErrors(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartSpan(context.Background(), "airtable.fetch")
	assert.True(t, span.SpanContext().IsValid())
	_, child := StartSpan(ctx, "airtable.page")
	EndSpan(child, nil)
	EndSpan(span, errors.New("502"))

	ended := rec.Ended()
	assert.Len(t, ended, 2)
	assert.Equal(t, "airtable.page", ended[0].Name())
	assert.Equal(t, ended[1].SpanContext().TraceID(), ended[0].SpanContext().TraceID())
	assert.Equal(t, "502", ended[1].Status().Description)
}
