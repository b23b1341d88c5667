package handlers

import (
	"context"

	"github.com/tadweer/tadweer-site/types"
)

// SuggestionServiceInterface is what SuggestionHandler needs from the suggestion service.
type SuggestionServiceInterface interface {
	Create(ctx context.Context, input types.SuggestionCreate) (*types.SuggestionCreated, error)
	ListAll(ctx context.Context, authorization string) ([]types.Suggestion, error)
	TrackByPublicID(ctx context.Context, trackingID string) ([]types.TrackedSuggestion, error)
	UpdateStatus(ctx context.Context, authorization string, update types.SuggestionStatusUpdate) error
	Authorize(authorization string) error
}

// HealthServiceInterface is what HealthHandler needs from the health service.
type HealthServiceInterface interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}
