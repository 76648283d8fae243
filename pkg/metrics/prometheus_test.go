package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCallMetrics(t *testing.T) {
	m := NewCallMetrics("metrics_test_calls", "name", "test calls")

	m.Observe("a", time.Millisecond, nil)
	m.Observe("a", time.Millisecond, nil)
	m.Observe("a", time.Millisecond, errors.New("failed"))
	m.Observe("b", time.Millisecond, nil)

	assert.EqualValues(t, 2, testutil.ToFloat64(m.counts.WithLabelValues("a", ResultSuccess)))
	assert.EqualValues(t, 1, testutil.ToFloat64(m.counts.WithLabelValues("a", ResultFailure)))
	assert.EqualValues(t, 1, testutil.ToFloat64(m.counts.WithLabelValues("b", ResultSuccess)))

	// Registering the same collectors again shares state.
	other := NewCallMetrics("metrics_test_calls", "name", "test calls")
	other.Observe("b", time.Millisecond, nil)
	assert.EqualValues(t, 2, testutil.ToFloat64(m.counts.WithLabelValues("b", ResultSuccess)))
}

func TestTracing_NoTransaction(t *testing.T) {
	tracer := TraceMethodCall(context.Background(), "metrics", "TestTracing")
	assert.Nil(t, tracer)

	// All methods are safe on a nil tracer.
	tracer.AddAttribute("key", "value")
	tracer.OnError(errors.New("failed"))
	tracer.End()

	ctx, end := StartTransaction(context.Background(), nil, "test")
	assert.NotNil(t, ctx)
	end()

	RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})
	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)
}
