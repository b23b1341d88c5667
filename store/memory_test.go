package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tadweer/tadweer-site/types"
)

func TestMemoryStore_StartsEmpty(t *testing.T) {
	s := NewMemoryStore()

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, TypeMemory, s.Type())
	assert.NoError(t, s.Ping(context.Background()))
}

func TestMemoryStore_SetReplacesCollection(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, sampleSuggestions()))
	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSuggestions(), got)

	require.NoError(t, s.Set(ctx, nil))
	got, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStore_CallersCannotMutateStoredSlice(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := sampleSuggestions()
	require.NoError(t, s.Set(ctx, in))
	in[0].Status = types.SuggestionStatusDeclined

	got, err := s.Get(ctx)
	require.NoError(t, err)
	got[0].Category = "changed"

	again, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.SuggestionStatusNew, again[0].Status)
	assert.Equal(t, "general", again[0].Category)
}
