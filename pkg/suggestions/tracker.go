package suggestions

import (
	"context"
	"errors"
	"time"

	"github.com/tadweer/tadweer-site/logger"
	"github.com/tadweer/tadweer-site/types"
)

// Where a tracking answer came from.
const (
	SourceServer = "server"
	SourceLocal  = "local"
)

// ErrNoBackend is returned by Tracker.Submit when neither the API nor an owner email is configured.
var ErrNoBackend = errors.New("no suggestions API or owner email configured")

// SubmitResult describes the outcome of Tracker.Submit. Exactly one of
// TrackingID and MailtoURL is set.
type SubmitResult struct {
	TrackingID string
	Storage    string
	// MailtoURL is a pre-filled email to the owner, set when the API could not be reached.
	MailtoURL string
}

// TrackResult is the answer to a tracking lookup.
type TrackResult struct {
	Suggestions []types.TrackedSuggestion
	Source      string
}

// Tracker combines the API client with the local submission history.
type Tracker struct {
	client     ClientInterface
	cache      *TrackingCache
	ownerEmail string
	now        func() time.Time
}

// NewTracker creates a Tracker. client may be nil when no API is configured.
func NewTracker(client ClientInterface, cache *TrackingCache, ownerEmail string) *Tracker {
	return &Tracker{
		client:     client,
		cache:      cache,
		ownerEmail: ownerEmail,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit sends the suggestion and remembers its tracking id. A rejection by
// the API (4xx) is returned as is. Any other failure yields a mailto fallback.
func (t *Tracker) Submit(ctx context.Context, input types.SuggestionCreate) (*SubmitResult, error) {
	log := logger.GetLogger()

	if t.client != nil {
		created, err := t.client.Submit(ctx, input)
		if err == nil {
			entry := types.TrackedSuggestion{
				TrackingID: created.TrackingID,
				Category:   withDefault(input.Category, "general"),
				Status:     types.SuggestionStatusNew,
				CreatedAt:  t.now(),
			}
			if cacheErr := t.cache.Add(entry); cacheErr != nil {
				log.Warnw("Failed to remember tracking id", "trackingID", created.TrackingID, "error", cacheErr)
			}
			return &SubmitResult{TrackingID: created.TrackingID, Storage: created.Storage}, nil
		}
		if IsClientError(err) {
			return nil, err
		}
		log.Warnw("Suggestions API unreachable, falling back to email", "error", err)
	}

	if t.ownerEmail == "" {
		return nil, ErrNoBackend
	}
	return &SubmitResult{MailtoURL: MailtoLink(t.ownerEmail, input)}, nil
}

// Track asks the server first. When the server cannot answer, or does not
// know the id, a locally remembered submission is returned instead with
// Source set to SourceLocal. An empty server answer is treated like a miss
// because a server running on the memory store forgets every submission
// when it restarts.
func (t *Tracker) Track(ctx context.Context, trackingID string) (*TrackResult, error) {
	if t.client != nil {
		tracked, err := t.client.Track(ctx, trackingID)
		switch {
		case err == nil && len(tracked) > 0:
			return &TrackResult{Suggestions: tracked, Source: SourceServer}, nil
		case err != nil && IsClientError(err):
			return nil, err
		case err != nil:
			logger.GetLogger().Warnw("Tracking lookup failed, using local history", "error", err)
		}
	}

	if entry, ok := t.cache.Find(trackingID); ok {
		return &TrackResult{Suggestions: []types.TrackedSuggestion{entry}, Source: SourceLocal}, nil
	}

	source := SourceLocal
	if t.client != nil {
		source = SourceServer
	}
	return &TrackResult{Suggestions: []types.TrackedSuggestion{}, Source: source}, nil
}

// History returns the locally remembered submissions, most recent first.
func (t *Tracker) History() []types.TrackedSuggestion {
	return t.cache.Entries()
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
