package store

import (
	"context"
	"sync"

	"github.com/tadweer/tadweer-site/types"
)

// Ensure MemoryStore implements SuggestionStore
var _ SuggestionStore = (*MemoryStore)(nil)

// MemoryStore keeps the collection in process memory. It starts empty and is
// lost on restart. The mutex only guards the slice header; it does not make a
// caller's Get-modify-Set cycle atomic.
type MemoryStore struct {
	mu          sync.RWMutex
	suggestions []types.Suggestion
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) ([]types.Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Suggestion, len(s.suggestions))
	copy(out, s.suggestions)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, suggestions []types.Suggestion) error {
	cp := make([]types.Suggestion, len(suggestions))
	copy(cp, suggestions)

	s.mu.Lock()
	s.suggestions = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Type() string {
	return TypeMemory
}
