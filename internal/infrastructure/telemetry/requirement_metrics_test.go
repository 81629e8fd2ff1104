package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reqtrace/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRequirementMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewRequirementMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCreated(ctx, "p-1")
	m.RecordCreated(ctx, "p-2")
	m.RecordChange(ctx, "STATUS_CHANGED")
	m.RecordVersionConflict(ctx)
	m.RecordTaskLink(ctx, "linked")
	m.RecordTaskLink(ctx, "unlinked")
	m.RecordComment(ctx)
	m.RecordDeleted(ctx)
	m.RecordExport(ctx, 300*time.Millisecond, nil)
	m.RecordExport(ctx, time.Second, errors.New("chrome gone"))

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, data["reqtrace_requirements_created_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["reqtrace_requirement_changes_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["reqtrace_requirement_version_conflicts_total"]))
	assert.Equal(t, int64(2), sumOf(t, data["reqtrace_requirement_task_links_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["reqtrace_requirement_comments_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["reqtrace_requirements_deleted_total"]))

	hist, ok := data["reqtrace_matrix_export_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)
}

func TestNewRequirementMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewRequirementMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, m)
}

func TestRequirementMetrics_NilReceiver(t *testing.T) {
	var m *telemetry.RequirementMetrics
	assert.NotPanics(t, func() {
		m.RecordCreated(context.Background(), "p")
		m.RecordExport(context.Background(), time.Second, nil)
	})
}
