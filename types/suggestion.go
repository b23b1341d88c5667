package types

import "time"

// SuggestionStatus is the review state of a suggestion. Admins may move a
// suggestion between any two statuses.
type SuggestionStatus string

const (
	SuggestionStatusNew         SuggestionStatus = "new"
	SuggestionStatusReviewing   SuggestionStatus = "reviewing"
	SuggestionStatusImplemented SuggestionStatus = "implemented"
	SuggestionStatusDeclined    SuggestionStatus = "declined"
)

// IsValid reports whether s is one of the known statuses.
func (s SuggestionStatus) IsValid() bool {
	switch s {
	case SuggestionStatusNew, SuggestionStatusReviewing, SuggestionStatusImplemented, SuggestionStatusDeclined:
		return true
	}
	return false
}

// Suggestion is a visitor suggestion as persisted in the store.
type Suggestion struct {
	ID         string           `json:"id"`
	TrackingID string           `json:"tracking_id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Category   string           `json:"category"`
	Suggestion string           `json:"suggestion"`
	Status     SuggestionStatus `json:"status"`
	PageURL    string           `json:"page_url"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  *time.Time       `json:"updated_at,omitempty"`
}

// SuggestionCreate is the public submission payload.
type SuggestionCreate struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`
	PageURL    string `json:"page_url"`
	// WebsiteURL is a honeypot: the widget hides it, so only bots fill it in.
	WebsiteURL string `json:"website_url"`
}

// SuggestionStatusUpdate is the admin payload for changing a suggestion's status.
type SuggestionStatusUpdate struct {
	ID     string           `json:"id" validate:"required"`
	Status SuggestionStatus `json:"status" validate:"required,oneof=new reviewing implemented declined"`
}

// TrackedSuggestion is what an unauthenticated caller may see about a suggestion.
// It deliberately carries nothing that identifies the submitter.
type TrackedSuggestion struct {
	TrackingID string           `json:"tracking_id"`
	Category   string           `json:"category"`
	Status     SuggestionStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Track projects a suggestion to its public fields.
func (s Suggestion) Track() TrackedSuggestion {
	return TrackedSuggestion{
		TrackingID: s.TrackingID,
		Category:   s.Category,
		Status:     s.Status,
		CreatedAt:  s.CreatedAt,
	}
}

// SuggestionCreated is returned after a successful submission.
type SuggestionCreated struct {
	Success    bool   `json:"success"`
	TrackingID string `json:"tracking_id"`
	Storage    string `json:"storage,omitempty"`
}

// SuccessResponse acknowledges an admin mutation.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the error envelope written by the error handler middleware.
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
