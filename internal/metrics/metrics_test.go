package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lms-service/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupMetrics(t *testing.T) (*metrics.Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := metrics.New(provider.Meter("lms-test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()

	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_Counters(t *testing.T) {
	m, reader := setupMetrics(t)
	ctx := context.Background()

	m.RecordRegistration(ctx)
	m.RecordRegistration(ctx)
	m.RecordLogin(ctx, true)
	m.RecordLogin(ctx, false)
	m.RecordCoursesListViewed(ctx)
	m.RecordCourseViewed(ctx)
	m.RecordSubmission(ctx)
	m.RecordAdminAction(ctx, "delete_course")

	data := collect(t, reader)

	assert.Equal(t, int64(2), sumOf(t, data["lms.users.registered"]))
	assert.Equal(t, int64(2), sumOf(t, data["lms.logins"]))
	assert.Equal(t, int64(1), sumOf(t, data["lms.courses.list_viewed"]))
	assert.Equal(t, int64(1), sumOf(t, data["lms.courses.viewed"]))
	assert.Equal(t, int64(1), sumOf(t, data["lms.assignments.submitted"]))
	assert.Equal(t, int64(1), sumOf(t, data["lms.admin.actions"]))
}

func TestDatabaseMetrics_RecordQuery(t *testing.T) {
	m, reader := setupMetrics(t)
	ctx := context.Background()

	m.Database.RecordQuery(ctx, "select", "courses", 3*time.Millisecond, nil)
	m.Database.RecordQuery(ctx, "insert", "courses", 5*time.Millisecond, errors.New("boom"))

	data := collect(t, reader)

	hist, ok := data["db.query.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
	assert.Equal(t, int64(1), sumOf(t, data["db.query.errors"]))
}

func TestMessagingMetrics_RecordPublish(t *testing.T) {
	m, reader := setupMetrics(t)
	ctx := context.Background()

	m.Messaging.RecordPublish(ctx, "kafka", "lms.submissions", 2*time.Millisecond, nil)
	m.Messaging.RecordPublish(ctx, "kafka", "lms.submissions", 3*time.Millisecond, nil)
	m.Messaging.RecordPublish(ctx, "kafka", "lms.submissions", time.Millisecond, errors.New("broker down"))

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, data["messaging.messages.published"]))
	assert.Equal(t, int64(1), sumOf(t, data["messaging.publish.errors"]))

	hist, ok := data["messaging.message.publish_duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(3), hist.DataPoints[0].Count)
}

func TestRuntimeMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	_, err := metrics.NewRuntimeMetrics(provider.Meter("lms-test"))
	require.NoError(t, err)

	data := collect(t, reader)
	gauge, ok := data["runtime.go.goroutines"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Positive(t, gauge.DataPoints[0].Value)
	assert.Contains(t, data, "service.uptime")
}

func TestMock_IsNoop(t *testing.T) {
	m := metrics.NewMock()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordRegistration(ctx)
		m.RecordLogin(ctx, true)
		m.RecordSubmission(ctx)
		m.RecordAdminAction(ctx, "toggle_admin")
		m.Database.RecordQuery(ctx, "select", "users", time.Millisecond, nil)
		m.Messaging.RecordPublish(ctx, "nats", "lms.submissions", time.Millisecond, nil)
	})

	var nilMetrics *metrics.Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordCourseViewed(ctx) })
}
