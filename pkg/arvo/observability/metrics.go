package observability

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records arvo metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEventCreated records a successfully built event.
	RecordEventCreated(ctx context.Context, eventType, domain string)

	// RecordSubjectEncoded records a minted subject token and its size.
	RecordSubjectEncoded(ctx context.Context, tokenBytes int)

	// RecordSubjectDecodeFailure records a subject token that failed to parse.
	RecordSubjectDecodeFailure(ctx context.Context)

	// RecordContractResolution records a contract version resolution.
	RecordContractResolution(ctx context.Context, contractURI, version string, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsCreated  metric.Int64Counter
	subjectsMinted metric.Int64Counter
	subjectBytes   metric.Int64Histogram
	decodeFailures metric.Int64Counter
	resolutions    metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("arvo")

	eventsCreated, err := meter.Int64Counter("arvo.events.created",
		metric.WithDescription("Number of events built by factories"),
	)
	if err != nil {
		return nil, err
	}

	subjectsMinted, err := meter.Int64Counter("arvo.subjects.encoded",
		metric.WithDescription("Number of subject tokens minted"),
	)
	if err != nil {
		return nil, err
	}

	subjectBytes, err := meter.Int64Histogram("arvo.subject.token_bytes",
		metric.WithDescription("Encoded subject token size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	decodeFailures, err := meter.Int64Counter("arvo.subjects.decode_failures",
		metric.WithDescription("Number of subject tokens that failed to parse"),
	)
	if err != nil {
		return nil, err
	}

	resolutions, err := meter.Int64Counter("arvo.contracts.resolutions",
		metric.WithDescription("Number of contract version resolutions"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsCreated:  eventsCreated,
		subjectsMinted: subjectsMinted,
		subjectBytes:   subjectBytes,
		decodeFailures: decodeFailures,
		resolutions:    resolutions,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordEventCreated records a successfully built event.
func (m *otelMetrics) RecordEventCreated(ctx context.Context, eventType, domain string) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
	}
	if domain != "" {
		attrs = append(attrs, attribute.String("domain", domain))
	}
	m.eventsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSubjectEncoded records a minted subject token.
func (m *otelMetrics) RecordSubjectEncoded(ctx context.Context, tokenBytes int) {
	m.subjectsMinted.Add(ctx, 1)
	m.subjectBytes.Record(ctx, int64(tokenBytes))
}

// RecordSubjectDecodeFailure records a failed subject parse.
func (m *otelMetrics) RecordSubjectDecodeFailure(ctx context.Context) {
	m.decodeFailures.Add(ctx, 1)
}

// RecordContractResolution records a contract version resolution.
func (m *otelMetrics) RecordContractResolution(ctx context.Context, contractURI, version string, err error) {
	m.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("contract_uri", contractURI),
		attribute.String("version", version),
		attribute.Bool("success", err == nil),
	))
}
