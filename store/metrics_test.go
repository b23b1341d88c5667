package store

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestInstrumentedStore_RecordsOperations(t *testing.T) {
	ctx := context.Background()
	metrics := NewStoreMetrics(prometheus.NewRegistry())
	inner := &flakyStore{}
	s := NewInstrumentedStore(inner, metrics)

	require.NoError(t, s.Set(ctx, sampleSuggestions()))
	_, err := s.Get(ctx)
	require.NoError(t, err)

	inner.failing = true
	_, err = s.Get(ctx)
	assert.Error(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(metrics.opLatency))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.opErrors.WithLabelValues("flaky", "get")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.opErrors.WithLabelValues("flaky", "set")))
	assert.Equal(t, "flaky", s.Type())
	assert.Same(t, inner, s.Unwrap())
}
