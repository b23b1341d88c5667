package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	apperrors "github.com/tadweer/tadweer-site/errors"
	"github.com/tadweer/tadweer-site/logger"
	"github.com/tadweer/tadweer-site/store"
	"github.com/tadweer/tadweer-site/types"
)

const (
	MinSuggestionLength = 10
	MaxSuggestionLength = 2000

	defaultName     = "Anonymous"
	defaultCategory = "general"

	notifyTimeout = 15 * time.Second
)

type SuggestionMetrics struct {
	created       prometheus.Counter
	rejected      *prometheus.CounterVec
	statusUpdates *prometheus.CounterVec
	lookups       *prometheus.CounterVec
}

func newSuggestionMetrics(reg prometheus.Registerer) *SuggestionMetrics {
	m := &SuggestionMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tadweer_suggestions_created_total",
			Help: "Total number of stored suggestions",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tadweer_suggestions_rejected_total",
			Help: "Total number of rejected submissions by reason",
		}, []string{"reason"}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tadweer_suggestion_status_updates_total",
			Help: "Total number of status changes by new status",
		}, []string{"status"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tadweer_tracking_lookups_total",
			Help: "Total number of public tracking lookups by result",
		}, []string{"result"}),
	}

	reg.MustRegister(m.created, m.rejected, m.statusUpdates, m.lookups)
	return m
}

// SuggestionService implements submission, tracking and moderation on top of
// a SuggestionStore. Every mutation reads the whole collection, changes it and
// writes it back; concurrent mutations are not serialized and the last write wins.
type SuggestionService struct {
	store    store.SuggestionStore
	adminKey string
	notifier Notifier
	metrics  *SuggestionMetrics
	validate *validator.Validate
	log      *zap.SugaredLogger

	now           func() time.Time
	newID         func() string
	newTrackingID func() (string, error)

	notifyWG sync.WaitGroup
}

// NewSuggestionService creates the service. An empty adminKey makes every
// admin operation fail with an authentication error. notifier may be nil.
func NewSuggestionService(s store.SuggestionStore, adminKey string, notifier Notifier, reg prometheus.Registerer) *SuggestionService {
	return &SuggestionService{
		store:         s,
		adminKey:      adminKey,
		notifier:      notifier,
		metrics:       newSuggestionMetrics(reg),
		validate:      validator.New(),
		log:           logger.GetLogger(),
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
		newTrackingID: NewTrackingID,
	}
}

// StorageType names the active storage backend.
func (s *SuggestionService) StorageType() string {
	return s.store.Type()
}

// Create validates a public submission, stores it at the head of the
// collection and returns its tracking id.
func (s *SuggestionService) Create(ctx context.Context, input types.SuggestionCreate) (*types.SuggestionCreated, error) {
	if input.WebsiteURL != "" {
		s.metrics.rejected.WithLabelValues("honeypot").Inc()
		s.log.Infow("Rejected submission with honeypot field set", "category", input.Category)
		return nil, apperrors.ValidationFailed("Invalid submission", "")
	}

	length := utf8.RuneCountInString(input.Suggestion)
	if length < MinSuggestionLength {
		s.metrics.rejected.WithLabelValues("too_short").Inc()
		return nil, apperrors.ValidationFailed("Suggestion too short", "")
	}
	if length > MaxSuggestionLength {
		s.metrics.rejected.WithLabelValues("too_long").Inc()
		return nil, apperrors.ValidationFailed("Suggestion too long", "")
	}

	trackingID, err := s.newTrackingID()
	if err != nil {
		s.log.Errorw("Failed to generate tracking id", "error", err)
		return nil, apperrors.InternalServerError("Internal server error")
	}

	suggestion := types.Suggestion{
		ID:         s.newID(),
		TrackingID: trackingID,
		Name:       withDefault(input.Name, defaultName),
		Email:      input.Email,
		Category:   withDefault(input.Category, defaultCategory),
		Suggestion: input.Suggestion,
		Status:     types.SuggestionStatusNew,
		PageURL:    input.PageURL,
		CreatedAt:  s.now(),
	}

	existing, err := s.store.Get(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	updated := make([]types.Suggestion, 0, len(existing)+1)
	updated = append(updated, suggestion)
	updated = append(updated, existing...)

	if err := s.store.Set(ctx, updated); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	s.metrics.created.Inc()
	s.log.Infow("Suggestion stored",
		"trackingID", suggestion.TrackingID,
		"category", suggestion.Category,
		"storage", s.store.Type())

	s.notify(ctx, suggestion)

	return &types.SuggestionCreated{
		Success:    true,
		TrackingID: suggestion.TrackingID,
		Storage:    s.store.Type(),
	}, nil
}

// notify hands the suggestion to the notifier in the background. Failures are
// logged by the notifier and never reach the submitter.
func (s *SuggestionService) notify(ctx context.Context, suggestion types.Suggestion) {
	if s.notifier == nil {
		return
	}

	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyNewSuggestion(notifyCtx, suggestion); err != nil {
			s.log.Warnw("Suggestion notification failed", "trackingID", suggestion.TrackingID, "error", err)
		}
	}()
}

// Wait blocks until background notifications have finished.
func (s *SuggestionService) Wait() {
	s.notifyWG.Wait()
}

// ListAll returns every stored suggestion, most recent first, to an admin caller.
func (s *SuggestionService) ListAll(ctx context.Context, authorization string) ([]types.Suggestion, error) {
	if err := s.Authorize(authorization); err != nil {
		return nil, err
	}

	suggestions, err := s.store.Get(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return suggestions, nil
}

// TrackByPublicID looks a suggestion up by tracking id, ignoring case and
// surrounding whitespace. A miss yields an empty slice, not an error.
func (s *SuggestionService) TrackByPublicID(ctx context.Context, trackingID string) ([]types.TrackedSuggestion, error) {
	trackingID = strings.ToUpper(strings.TrimSpace(trackingID))
	result := []types.TrackedSuggestion{}
	if trackingID == "" {
		s.metrics.lookups.WithLabelValues("miss").Inc()
		return result, nil
	}

	suggestions, err := s.store.Get(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	for _, suggestion := range suggestions {
		if suggestion.TrackingID == trackingID {
			s.metrics.lookups.WithLabelValues("hit").Inc()
			return append(result, suggestion.Track()), nil
		}
	}

	s.metrics.lookups.WithLabelValues("miss").Inc()
	return result, nil
}

// UpdateStatus changes the status of the suggestion with the given id.
// Authorization is checked before the payload.
func (s *SuggestionService) UpdateStatus(ctx context.Context, authorization string, update types.SuggestionStatusUpdate) error {
	if err := s.Authorize(authorization); err != nil {
		return err
	}
	if err := s.validateStatusUpdate(update); err != nil {
		return err
	}

	suggestions, err := s.store.Get(ctx)
	if err != nil {
		return apperrors.NewStorageError(err)
	}

	index := -1
	for i := range suggestions {
		if suggestions[i].ID == update.ID {
			index = i
			break
		}
	}
	if index < 0 {
		return apperrors.NotFound("Suggestion", update.ID)
	}

	now := s.now()
	suggestions[index].Status = update.Status
	suggestions[index].UpdatedAt = &now

	if err := s.store.Set(ctx, suggestions); err != nil {
		return apperrors.NewStorageError(err)
	}

	s.metrics.statusUpdates.WithLabelValues(string(update.Status)).Inc()
	s.log.Infow("Suggestion status updated",
		"id", update.ID,
		"trackingID", suggestions[index].TrackingID,
		"status", update.Status)
	return nil
}

func (s *SuggestionService) validateStatusUpdate(update types.SuggestionStatusUpdate) error {
	err := s.validate.Struct(update)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.ValidationFailed("Missing id or status", err.Error())
	}
	for _, fe := range validationErrs {
		if fe.Tag() == "required" {
			return apperrors.ValidationFailed("Missing id or status", "")
		}
	}
	return apperrors.ValidationFailed("Invalid status", "status must be one of: new, reviewing, implemented, declined")
}

// Authorize accepts only "Bearer <admin key>". With no admin key configured
// nothing is accepted.
func (s *SuggestionService) Authorize(authorization string) error {
	if s.adminKey == "" {
		s.log.Warnw("Admin request rejected: no admin key configured")
		return apperrors.AuthenticationFailed("Unauthorized")
	}

	expected := "Bearer " + s.adminKey
	if subtle.ConstantTimeCompare([]byte(authorization), []byte(expected)) != 1 {
		return apperrors.AuthenticationFailed("Unauthorized")
	}
	return nil
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
