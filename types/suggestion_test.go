package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestionStatus_IsValid(t *testing.T) {
	for _, s := range []SuggestionStatus{
		SuggestionStatusNew, SuggestionStatusReviewing, SuggestionStatusImplemented, SuggestionStatusDeclined,
	} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, SuggestionStatus("archived").IsValid())
	assert.False(t, SuggestionStatus("").IsValid())
	assert.False(t, SuggestionStatus("NEW").IsValid())
}

func TestSuggestion_TrackOmitsSubmitterFields(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := Suggestion{
		ID:         "0b7c1f9e-2f1d-4e8a-9b1c-3d2e4f5a6b7c",
		TrackingID: "TDW-ABC234",
		Name:       "Layla",
		Email:      "layla@example.com",
		Category:   "recycling",
		Suggestion: "Add more bins near the park entrance",
		Status:     SuggestionStatusReviewing,
		PageURL:    "https://tadweer.org/events",
		CreatedAt:  created,
	}

	raw, err := json.Marshal(s.Track())
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.Len(t, fields, 4)
	assert.Equal(t, "TDW-ABC234", fields["tracking_id"])
	assert.Equal(t, "recycling", fields["category"])
	assert.Equal(t, "reviewing", fields["status"])
	assert.Contains(t, fields, "created_at")
	for _, hidden := range []string{"id", "name", "email", "suggestion", "page_url"} {
		assert.NotContains(t, fields, hidden)
	}
}

func TestSuggestion_UpdatedAtOmittedUntilSet(t *testing.T) {
	raw, err := json.Marshal(Suggestion{ID: "x"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "updated_at")

	now := time.Now().UTC()
	raw, err = json.Marshal(Suggestion{ID: "x", UpdatedAt: &now})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "updated_at")
}
