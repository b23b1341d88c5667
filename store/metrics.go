package store

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tadweer/tadweer-site/types"
)

// Ensure InstrumentedStore implements SuggestionStore
var _ SuggestionStore = (*InstrumentedStore)(nil)

// StoreMetrics holds Prometheus metrics for storage operations.
type StoreMetrics struct {
	opLatency *prometheus.HistogramVec
	opErrors  *prometheus.CounterVec
}

// NewStoreMetrics creates and registers the storage metrics with reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tadweer_store_operation_duration_seconds",
			Help:    "Time taken by suggestion store operations",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"backend", "op"}),
		opErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tadweer_store_operation_errors_total",
			Help: "Total number of failed suggestion store operations",
		}, []string{"backend", "op"}),
	}

	reg.MustRegister(m.opLatency)
	reg.MustRegister(m.opErrors)
	return m
}

// InstrumentedStore records latency and errors for every Get and Set.
type InstrumentedStore struct {
	next    SuggestionStore
	metrics *StoreMetrics
}

// NewInstrumentedStore wraps next with metrics.
func NewInstrumentedStore(next SuggestionStore, metrics *StoreMetrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: metrics}
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	backend := s.next.Type()
	s.metrics.opLatency.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.opErrors.WithLabelValues(backend, op).Inc()
	}
}

func (s *InstrumentedStore) Get(ctx context.Context) ([]types.Suggestion, error) {
	start := time.Now()
	suggestions, err := s.next.Get(ctx)
	s.observe("get", start, err)
	return suggestions, err
}

func (s *InstrumentedStore) Set(ctx context.Context, suggestions []types.Suggestion) error {
	start := time.Now()
	err := s.next.Set(ctx, suggestions)
	s.observe("set", start, err)
	return err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *InstrumentedStore) Type() string {
	return s.next.Type()
}

// Unwrap returns the wrapped store.
func (s *InstrumentedStore) Unwrap() SuggestionStore {
	return s.next
}
