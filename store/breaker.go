package store

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/tadweer/tadweer-site/types"
)

// Ensure BreakerStore implements SuggestionStore
var _ SuggestionStore = (*BreakerStore)(nil)

// BreakerSettings configures BreakerStore.
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
}

// BreakerStore fails fast while a remote backend keeps erroring. It never retries.
type BreakerStore struct {
	next    SuggestionStore
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps next with a circuit breaker.
func NewBreakerStore(next SuggestionStore, settings BreakerSettings, log *zap.SugaredLogger) *BreakerStore {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        next.Type(),
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("Storage circuit breaker state changed",
				"backend", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerStore{next: next, breaker: cb}
}

func (s *BreakerStore) Get(ctx context.Context) ([]types.Suggestion, error) {
	res, err := s.breaker.Execute(func() (any, error) {
		return s.next.Get(ctx)
	})
	if err != nil {
		return nil, translateBreakerErr(err)
	}
	return res.([]types.Suggestion), nil
}

func (s *BreakerStore) Set(ctx context.Context, suggestions []types.Suggestion) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.next.Set(ctx, suggestions)
	})
	return translateBreakerErr(err)
}

// Ping bypasses the breaker so readiness probes always see the real backend state.
func (s *BreakerStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *BreakerStore) Type() string {
	return s.next.Type()
}

// State exposes the breaker state for health reporting.
func (s *BreakerStore) State() string {
	return s.breaker.State().String()
}

func translateBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrBackendUnavailable
	}
	return err
}
