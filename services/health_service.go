package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tadweer/tadweer-site/logger"
	"github.com/tadweer/tadweer-site/store"
	"github.com/tadweer/tadweer-site/types"
)

// HealthService reports liveness and the state of the suggestion store.
type HealthService struct {
	store     store.SuggestionStore
	version   string
	log       *zap.SugaredLogger
	startTime time.Time
}

func NewHealthService(s store.SuggestionStore, version string) *HealthService {
	return &HealthService{
		store:     s,
		version:   version,
		log:       logger.GetLogger(),
		startTime: time.Now(),
	}
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	storeStatus := h.checkStore(ctx)

	return types.HealthCheck{
		Status:     storeStatus.Status,
		Storage:    h.store.Type(),
		Components: map[string]types.HealthComponent{types.ComponentStore: storeStatus},
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkStore(ctx context.Context) types.HealthComponent {
	backend := h.store.Type()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Errorw("Store health check failed", "backend", backend, "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: backend + " store unreachable",
		}
	}

	if store.BreakerState(h.store) == "open" {
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: backend + " store circuit breaker open",
		}
	}

	if backend == store.TypeMemory {
		return types.HealthComponent{
			Status:  types.HealthStatusUp,
			Details: "memory store, suggestions are lost on restart",
		}
	}

	return types.HealthComponent{
		Status:  types.HealthStatusUp,
		Details: backend,
	}
}
