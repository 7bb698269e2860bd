package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the OpenTelemetry meter and tracer providers. A nil
// *Observability is valid and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider shutdowner
	meter          otelmetric.Meter
	submitted      otelmetric.Int64Counter
	sinkDuration   otelmetric.Float64Histogram
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// New installs a meter provider backed by the Prometheus exporter and a tracer
// provider sampling at sampleRatio. Exporter failures degrade to a no-op value.
func New(serviceName string, sampleRatio float64) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	submitted, err := meter.Int64Counter(
		"leads.submitted",
		otelmetric.WithDescription("Lead submissions by terminal state"),
	)
	if err != nil {
		return &Observability{}, err
	}

	sinkDuration, err := meter.Float64Histogram(
		"leads.sink.duration",
		otelmetric.WithDescription("Secondary sink settle time"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return &Observability{}, err
	}

	return &Observability{
		meterProvider:  provider,
		tracerProvider: newTracerProvider(serviceName, sampleRatio),
		meter:          meter,
		submitted:      submitted,
		sinkDuration:   sinkDuration,
	}, nil
}

// RecordSubmission counts a submission in its terminal state.
func (o *Observability) RecordSubmission(ctx context.Context, status string) {
	if o == nil || o.submitted == nil {
		return
	}
	o.submitted.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordSinkDuration records how long one sink took to settle.
func (o *Observability) RecordSinkDuration(ctx context.Context, sink string, duration time.Duration, success bool) {
	if o == nil || o.sinkDuration == nil {
		return
	}
	o.sinkDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("sink", sink),
		attribute.Bool("success", success),
	))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
