package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a function to collect metrics.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	// Save the original provider
	originalProvider := otel.GetMeterProvider()

	// Set test provider
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	// NewMetricsRecorder uses the global provider
	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	// Should not be a noop (instrument creation cannot fail here)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordEventCreated(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	// Create a fresh metrics instance using the test provider
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records event count with type attribute", func(t *testing.T) {
		m.RecordEventCreated(ctx, "com.example.order.reserve", "")

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "arvo.events.created")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "event_type" && attr.Value.AsString() == "com.example.order.reserve" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "Expected datapoint for event_type")
	})

	t.Run("records domain attribute when present", func(t *testing.T) {
		m.RecordEventCreated(ctx, "com.example.order.reserve", "analytics")

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "arvo.events.created")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "domain" && attr.Value.AsString() == "analytics" {
					found = true
				}
			}
		}
		assert.True(t, found, "Expected datapoint with domain attribute")
	})
}

func TestRecordSubjectEncoded(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records mint count", func(t *testing.T) {
		m.RecordSubjectEncoded(ctx, 96)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "arvo.subjects.encoded")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.NotEmpty(t, sum.DataPoints)
		assert.GreaterOrEqual(t, sum.DataPoints[0].Value, int64(1))
	})

	t.Run("records token size histogram", func(t *testing.T) {
		m.RecordSubjectEncoded(ctx, 128)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "arvo.subject.token_bytes")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[int64])
		require.True(t, ok, "Expected Histogram[int64] type")
		require.NotEmpty(t, hist.DataPoints)
		assert.Greater(t, hist.DataPoints[0].Count, uint64(0))
	})
}

func TestRecordSubjectDecodeFailure(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordSubjectDecodeFailure(context.Background())

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "arvo.subjects.decode_failures")
	require.NotNil(t, metric)

	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)
	assert.GreaterOrEqual(t, sum.DataPoints[0].Value, int64(1))
}

func TestRecordContractResolution(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records success", func(t *testing.T) {
		m.RecordContractResolution(ctx, "#/obs/orders", "1.0.0", nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "arvo.contracts.resolutions")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok)

		found := false
		for _, dp := range sum.DataPoints {
			var uri string
			success := false
			for _, attr := range dp.Attributes.ToSlice() {
				switch attr.Key {
				case "contract_uri":
					uri = attr.Value.AsString()
				case "success":
					success = attr.Value.AsBool()
				}
			}
			if uri == "#/obs/orders" && success {
				found = true
			}
		}
		assert.True(t, found, "Expected success datapoint")
	})

	t.Run("records failure", func(t *testing.T) {
		m.RecordContractResolution(ctx, "#/obs/orders", "9.9.9", errors.New("no such version"))

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "arvo.contracts.resolutions")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok)

		found := false
		for _, dp := range sum.DataPoints {
			var version string
			success := true
			for _, attr := range dp.Attributes.ToSlice() {
				switch attr.Key {
				case "version":
					version = attr.Value.AsString()
				case "success":
					success = attr.Value.AsBool()
				}
			}
			if version == "9.9.9" && !success {
				found = true
			}
		}
		assert.True(t, found, "Expected failure datapoint")
	})
}

func TestOtelMetrics_AllMethods(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()

	m.RecordEventCreated(ctx, "com.example.order.reserve", "region1")
	m.RecordSubjectEncoded(ctx, 80)
	m.RecordSubjectDecodeFailure(ctx)
	m.RecordContractResolution(ctx, "#/obs/orders", "1.0.0", nil)

	rm := collectMetrics(t, reader)

	assert.NotNil(t, findMetric(rm, "arvo.events.created"))
	assert.NotNil(t, findMetric(rm, "arvo.subjects.encoded"))
	assert.NotNil(t, findMetric(rm, "arvo.subject.token_bytes"))
	assert.NotNil(t, findMetric(rm, "arvo.subjects.decode_failures"))
	assert.NotNil(t, findMetric(rm, "arvo.contracts.resolutions"))
}

func TestNewOtelMetrics_Creation(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	// Verify all metric instruments were created
	assert.NotNil(t, m.eventsCreated)
	assert.NotNil(t, m.subjectsMinted)
	assert.NotNil(t, m.subjectBytes)
	assert.NotNil(t, m.decodeFailures)
	assert.NotNil(t, m.resolutions)
}
