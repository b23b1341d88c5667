// Package store persists the suggestion collection. Every backend keeps the
// whole collection as one value under a single fixed key: callers read it all,
// change it in memory and write it all back. Nothing serializes concurrent
// read-modify-write cycles, so the last Set wins.
package store

import (
	"context"

	"github.com/tadweer/tadweer-site/types"
)

// Backend type names reported to clients in the submission response.
const (
	TypeKV       = "kv"
	TypeMemory   = "memory"
	TypeSupabase = "supabase"
	TypeObject   = "object"
)

// SuggestionStore reads and writes the full suggestion collection, most recent first.
type SuggestionStore interface {
	// Get returns the stored collection, or an empty slice when nothing is stored yet.
	Get(ctx context.Context) ([]types.Suggestion, error)
	// Set replaces the stored collection.
	Set(ctx context.Context, suggestions []types.Suggestion) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Type names the backend.
	Type() string
}
