package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNilObservabilityIsSafe(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.RecordSubmission(context.Background(), "accepted")
		o.RecordSinkDuration(context.Background(), "crm", time.Second, true)
		o.Shutdown()
	})
}

func TestStartSpan_RecordsErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartSpan(context.Background(), "sink.crm", attribute.String("sink", "crm"))
	EndSpan(span, errors.New("502"))

	spans := recorder.Ended()
	assert.Len(t, spans, 1)
	assert.Equal(t, "sink.crm", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
