package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/redis/go-redis/v9"

	"github.com/tadweer/tadweer-site/types"
)

// Ensure RedisStore implements SuggestionStore
var _ SuggestionStore = (*RedisStore)(nil)

// RedisStore keeps the collection as a JSON array under one Redis key.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisStore creates a store over an existing Redis client.
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// NewRedisClient builds a client from a redis:// or rediss:// URL, using token
// as the password. Managed KV providers hand out the URL and token separately.
// An https:// REST endpoint (Vercel KV, Upstash) is reached over the Redis
// protocol on the same host with TLS, as user "default".
func NewRedisClient(kvURL, token string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL(kvURL))
	if err != nil {
		return nil, fmt.Errorf("invalid kv url: %w", err)
	}
	if token != "" {
		opts.Password = token
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = 3
	}
	return redis.NewClient(opts), nil
}

// redisURL maps an http(s) REST endpoint to the matching Redis protocol URL.
// Anything else is returned unchanged for redis.ParseURL to judge.
func redisURL(kvURL string) string {
	u, err := url.Parse(kvURL)
	if err != nil || u.Host == "" {
		return kvURL
	}

	scheme := ""
	switch u.Scheme {
	case "https":
		scheme = "rediss"
	case "http":
		scheme = "redis"
	default:
		return kvURL
	}

	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "6379")
	}
	return (&url.URL{Scheme: scheme, User: url.User("default"), Host: host}).String()
}

func (s *RedisStore) Get(ctx context.Context) ([]types.Suggestion, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []types.Suggestion{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	suggestions := []types.Suggestion{}
	if err := json.Unmarshal(raw, &suggestions); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}
	return suggestions, nil
}

func (s *RedisStore) Set(ctx context.Context, suggestions []types.Suggestion) error {
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	if err := s.client.Set(ctx, s.key, string(raw), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Type() string {
	return TypeKV
}
