// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability exposes the flow metrics through the Prometheus exporter.
// A zero-value instance is safe to call and records nothing.
type Observability struct {
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	transitionCounter otelmetric.Int64Counter
	stepDuration      otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	transitionCounter, _ := meter.Int64Counter(
		"flow.transitions",
		otelmetric.WithDescription("Number of wizard step transitions"),
	)

	stepDuration, _ := meter.Float64Histogram(
		"flow.step.duration",
		otelmetric.WithDescription("Step transition processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		transitionCounter: transitionCounter,
		stepDuration:      stepDuration,
	}
}

// RecordTransition counts one step transition attempt. outcome is one of
// "advanced", "blocked", "back".
func (o *Observability) RecordTransition(ctx context.Context, step, outcome string) {
	if o.transitionCounter != nil {
		o.transitionCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("step", step),
			attribute.String("outcome", outcome),
		))
	}
}

// RecordStepDuration records how long a transition took to process.
func (o *Observability) RecordStepDuration(ctx context.Context, step string, d time.Duration) {
	if o.stepDuration != nil {
		o.stepDuration.Record(ctx, float64(d.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("step", step),
		))
	}
}

// Shutdown flushes the meter provider.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.meterProvider != nil {
		return o.meterProvider.Shutdown(ctx)
	}
	return nil
}
