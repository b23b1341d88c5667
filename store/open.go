package store

import (
	"context"
	"fmt"
	"time"

	"github.com/tadweer/tadweer-site/config"
	"github.com/tadweer/tadweer-site/logger"
)

// Open builds the store selected by cfg.Storage.Backend. Remote backends are
// pinged once and wrapped in a circuit breaker when enabled. Any failure to
// set a remote backend up degrades to an in-process MemoryStore, so Open
// always returns a usable store.
func Open(ctx context.Context, cfg *config.Config) SuggestionStore {
	log := logger.GetLogger()

	backend := resolveBackend(cfg)
	if backend == config.BackendMemory {
		log.Infow("Using in-memory suggestion store", "requested", cfg.Storage.Backend)
		return NewMemoryStore()
	}

	remote, err := openRemote(backend, cfg)
	if err == nil {
		err = pingWithTimeout(ctx, remote, cfg.Storage.PingTimeoutSeconds)
	}
	if err != nil {
		log.Warnw("Storage backend unavailable, falling back to in-memory store",
			"backend", backend,
			"error", err)
		return NewMemoryStore()
	}

	log.Infow("Suggestion store ready", "backend", remote.Type())
	if !cfg.Breaker.Enabled {
		return remote
	}
	return NewBreakerStore(remote, BreakerSettings{
		FailureThreshold: uint32(cfg.Breaker.FailureThreshold),
		OpenTimeout:      time.Duration(cfg.Breaker.OpenSeconds) * time.Second,
	}, log)
}

// resolveBackend turns "auto" into a concrete backend name.
func resolveBackend(cfg *config.Config) string {
	switch cfg.Storage.Backend {
	case "", config.BackendAuto:
		if cfg.KV.Configured() {
			return config.BackendRedis
		}
		return config.BackendMemory
	default:
		return cfg.Storage.Backend
	}
}

func openRemote(backend string, cfg *config.Config) (SuggestionStore, error) {
	switch backend {
	case config.BackendRedis:
		if !cfg.KV.Configured() {
			return nil, fmt.Errorf("kv url and token are required: %w", ErrNotConfigured)
		}
		client, err := NewRedisClient(cfg.KV.URL, cfg.KV.Token)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.KV.Key), nil
	case config.BackendSupabase:
		return NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey, cfg.Supabase.Table)
	case config.BackendObject:
		return NewObjectStore(ObjectStoreConfig{
			Endpoint:        cfg.Object.Endpoint,
			Region:          cfg.Object.Region,
			Bucket:          cfg.Object.Bucket,
			Key:             cfg.Object.Key,
			AccessKeyID:     cfg.Object.AccessKeyID,
			SecretAccessKey: cfg.Object.SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func pingWithTimeout(ctx context.Context, s SuggestionStore, seconds int) error {
	if seconds <= 0 {
		seconds = 3
	}
	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
	defer cancel()

	if err := s.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping %s: %w", s.Type(), err)
	}
	return nil
}

// BreakerState reports the breaker state of s, or "" when s has no breaker.
func BreakerState(s SuggestionStore) string {
	for {
		switch v := s.(type) {
		case *BreakerStore:
			return v.State()
		case *InstrumentedStore:
			s = v.Unwrap()
		default:
			return ""
		}
	}
}
