package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tadweer/tadweer-site/errors"
	"github.com/tadweer/tadweer-site/store"
	"github.com/tadweer/tadweer-site/types"
)

const testAdminKey = "test-admin-key-0123456789"

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type recordingNotifier struct {
	notified chan types.Suggestion
	err      error
}

func (n *recordingNotifier) NotifyNewSuggestion(_ context.Context, s types.Suggestion) error {
	n.notified <- s
	return n.err
}

// failingStore fails every Get and Set.
type failingStore struct{}

func (failingStore) Get(context.Context) ([]types.Suggestion, error) {
	return nil, errors.New("dial tcp: connection refused")
}
func (failingStore) Set(context.Context, []types.Suggestion) error {
	return errors.New("dial tcp: connection refused")
}
func (failingStore) Ping(context.Context) error { return errors.New("down") }
func (failingStore) Type() string               { return store.TypeKV }

func newTestService(t *testing.T, s store.SuggestionStore, adminKey string, notifier Notifier) *SuggestionService {
	t.Helper()
	svc := NewSuggestionService(s, adminKey, notifier, prometheus.NewRegistry())
	svc.now = func() time.Time { return fixedNow }

	ids := 0
	svc.newID = func() string {
		ids++
		return "00000000-0000-4000-8000-00000000000" + string(rune('0'+ids))
	}
	codes := []string{"TDW-AAAAAA", "TDW-BBBBBB", "TDW-CCCCCC"}
	svc.newTrackingID = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}
	return svc
}

func assertAppError(t *testing.T, err error, errType apperrors.ErrorType, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, errType, appErr.Type)
	assert.Equal(t, message, appErr.Message)
}

func TestCreate_AppliesDefaultsAndPrepends(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := newTestService(t, mem, testAdminKey, nil)

	first, err := svc.Create(ctx, types.SuggestionCreate{Suggestion: "Add a dark mode to the site"})
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, "TDW-AAAAAA", first.TrackingID)
	assert.Equal(t, store.TypeMemory, first.Storage)

	_, err = svc.Create(ctx, types.SuggestionCreate{
		Name:       "Layla",
		Email:      "layla@example.com",
		Category:   "content",
		Suggestion: "Publish the glossary as a PDF",
		PageURL:    "https://tadweer.org/glossary",
	})
	require.NoError(t, err)

	all, err := mem.Get(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, "TDW-BBBBBB", all[0].TrackingID)
	assert.Equal(t, "Layla", all[0].Name)
	assert.Equal(t, "content", all[0].Category)
	assert.Equal(t, "https://tadweer.org/glossary", all[0].PageURL)

	assert.Equal(t, "TDW-AAAAAA", all[1].TrackingID)
	assert.Equal(t, "Anonymous", all[1].Name)
	assert.Equal(t, "", all[1].Email)
	assert.Equal(t, "general", all[1].Category)
	assert.Equal(t, "", all[1].PageURL)
	assert.Equal(t, types.SuggestionStatusNew, all[1].Status)
	assert.Equal(t, fixedNow, all[1].CreatedAt)
	assert.Nil(t, all[1].UpdatedAt)
	assert.NotEqual(t, all[0].ID, all[1].ID)
}

func TestCreate_LengthBounds(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{name: "empty", text: "", wantErr: "Suggestion too short"},
		{name: "nine characters", text: strings.Repeat("a", 9), wantErr: "Suggestion too short"},
		{name: "ten characters", text: strings.Repeat("a", 10)},
		{name: "two thousand characters", text: strings.Repeat("a", 2000)},
		{name: "two thousand and one characters", text: strings.Repeat("a", 2001), wantErr: "Suggestion too long"},
		{name: "ten arabic letters", text: strings.Repeat("ت", 10)},
		{name: "nine arabic letters", text: strings.Repeat("ت", 9), wantErr: "Suggestion too short"},
		{name: "two thousand arabic letters", text: strings.Repeat("ت", 2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, store.NewMemoryStore(), testAdminKey, nil)
			res, err := svc.Create(context.Background(), types.SuggestionCreate{Suggestion: tt.text})
			if tt.wantErr != "" {
				assertAppError(t, err, apperrors.ValidationError, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, res.TrackingID)
		})
	}
}

func TestCreate_HoneypotRejectsBeforeOtherChecks(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := newTestService(t, mem, testAdminKey, nil)

	for _, text := range []string{"short", "A perfectly valid suggestion text"} {
		_, err := svc.Create(ctx, types.SuggestionCreate{Suggestion: text, WebsiteURL: "http://spam.example"})
		assertAppError(t, err, apperrors.ValidationError, "Invalid submission")
	}

	all, err := mem.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, float64(2), testutil.ToFloat64(svc.metrics.rejected.WithLabelValues("honeypot")))
}

func TestCreate_StorageFailureIsGeneric(t *testing.T) {
	svc := newTestService(t, failingStore{}, testAdminKey, nil)

	_, err := svc.Create(context.Background(), types.SuggestionCreate{Suggestion: "A perfectly valid suggestion"})
	assertAppError(t, err, apperrors.StorageError, "Internal server error")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Empty(t, appErr.Detail)
}

func TestCreate_NotifiesOwner(t *testing.T) {
	notifier := &recordingNotifier{notified: make(chan types.Suggestion, 1), err: errors.New("resend down")}
	svc := newTestService(t, store.NewMemoryStore(), testAdminKey, notifier)

	res, err := svc.Create(context.Background(), types.SuggestionCreate{Suggestion: "Add a search box to the archive"})
	require.NoError(t, err, "notification failures never reach the submitter")
	svc.Wait()

	select {
	case got := <-notifier.notified:
		assert.Equal(t, res.TrackingID, got.TrackingID)
		assert.Equal(t, "Add a search box to the archive", got.Suggestion)
	default:
		t.Fatal("notifier was not called")
	}
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.created))
}

func TestNewTrackingID_Format(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := NewTrackingID()
		require.NoError(t, err)
		require.Len(t, id, 10)
		assert.True(t, strings.HasPrefix(id, "TDW-"))
		for _, r := range id[4:] {
			assert.Contains(t, trackingAlphabet, string(r))
		}
		seen[id] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestListAll_Authorization(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := newTestService(t, mem, testAdminKey, nil)
	_, err := svc.Create(ctx, types.SuggestionCreate{Suggestion: "Add a dark mode to the site"})
	require.NoError(t, err)

	for _, header := range []string{"", testAdminKey, "Bearer wrong", "bearer " + testAdminKey, "Bearer " + testAdminKey + " "} {
		_, err := svc.ListAll(ctx, header)
		assertAppError(t, err, apperrors.AuthError, "Unauthorized")
	}

	all, err := svc.ListAll(ctx, "Bearer "+testAdminKey)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Anonymous", all[0].Name)
}

func TestAdminOperations_FailClosedWithoutKey(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore(), "", nil)

	for _, header := range []string{"", "Bearer ", "Bearer admin"} {
		_, err := svc.ListAll(ctx, header)
		assertAppError(t, err, apperrors.AuthError, "Unauthorized")

		err = svc.UpdateStatus(ctx, header, types.SuggestionStatusUpdate{ID: "x", Status: types.SuggestionStatusDeclined})
		assertAppError(t, err, apperrors.AuthError, "Unauthorized")
	}
}

func TestTrackByPublicID(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore(), testAdminKey, nil)
	_, err := svc.Create(ctx, types.SuggestionCreate{
		Name:       "Layla",
		Email:      "layla@example.com",
		Category:   "content",
		Suggestion: "Publish the glossary as a PDF",
	})
	require.NoError(t, err)

	for _, query := range []string{"TDW-AAAAAA", "tdw-aaaaaa", "  TDW-aaaaaa "} {
		got, err := svc.TrackByPublicID(ctx, query)
		require.NoError(t, err)
		require.Len(t, got, 1, query)
		assert.Equal(t, types.TrackedSuggestion{
			TrackingID: "TDW-AAAAAA",
			Category:   "content",
			Status:     types.SuggestionStatusNew,
			CreatedAt:  fixedNow,
		}, got[0])
	}

	for _, query := range []string{"TDW-ZZZZZZ", "", "   "} {
		got, err := svc.TrackByPublicID(ctx, query)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := newTestService(t, mem, testAdminKey, nil)
	_, err := svc.Create(ctx, types.SuggestionCreate{Suggestion: "Add a dark mode to the site"})
	require.NoError(t, err)
	all, err := mem.Get(ctx)
	require.NoError(t, err)
	id := all[0].ID

	later := fixedNow.Add(time.Hour)
	svc.now = func() time.Time { return later }

	auth := "Bearer " + testAdminKey
	require.NoError(t, svc.UpdateStatus(ctx, auth, types.SuggestionStatusUpdate{ID: id, Status: types.SuggestionStatusImplemented}))

	all, err = mem.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.SuggestionStatusImplemented, all[0].Status)
	require.NotNil(t, all[0].UpdatedAt)
	assert.Equal(t, later, *all[0].UpdatedAt)
	assert.Equal(t, fixedNow, all[0].CreatedAt)

	// any-to-any transitions
	require.NoError(t, svc.UpdateStatus(ctx, auth, types.SuggestionStatusUpdate{ID: id, Status: types.SuggestionStatusNew}))

	tracked, err := svc.TrackByPublicID(ctx, all[0].TrackingID)
	require.NoError(t, err)
	assert.Equal(t, types.SuggestionStatusNew, tracked[0].Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.statusUpdates.WithLabelValues("implemented")))
}

func TestUpdateStatus_EveryStatus(t *testing.T) {
	auth := "Bearer " + testAdminKey

	tests := []struct {
		name   string
		status types.SuggestionStatus
	}{
		{name: "new", status: types.SuggestionStatusNew},
		{name: "reviewing", status: types.SuggestionStatusReviewing},
		{name: "implemented", status: types.SuggestionStatusImplemented},
		{name: "declined", status: types.SuggestionStatusDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := store.NewMemoryStore()
			svc := newTestService(t, mem, testAdminKey, nil)
			_, err := svc.Create(ctx, types.SuggestionCreate{Suggestion: "Publish the meeting minutes"})
			require.NoError(t, err)
			all, err := mem.Get(ctx)
			require.NoError(t, err)

			require.NoError(t, svc.UpdateStatus(ctx, auth, types.SuggestionStatusUpdate{ID: all[0].ID, Status: tt.status}))

			all, err = mem.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.status, all[0].Status)
			assert.NotNil(t, all[0].UpdatedAt)
			assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.statusUpdates.WithLabelValues(string(tt.status))))
		})
	}
}

func TestUpdateStatus_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore(), testAdminKey, nil)
	auth := "Bearer " + testAdminKey

	tests := []struct {
		name     string
		auth     string
		update   types.SuggestionStatusUpdate
		wantType apperrors.ErrorType
		wantMsg  string
	}{
		{name: "bad auth with bad payload", auth: "Bearer nope", update: types.SuggestionStatusUpdate{}, wantType: apperrors.AuthError, wantMsg: "Unauthorized"},
		{name: "missing id", auth: auth, update: types.SuggestionStatusUpdate{Status: types.SuggestionStatusDeclined}, wantType: apperrors.ValidationError, wantMsg: "Missing id or status"},
		{name: "missing status", auth: auth, update: types.SuggestionStatusUpdate{ID: "abc"}, wantType: apperrors.ValidationError, wantMsg: "Missing id or status"},
		{name: "unknown status", auth: auth, update: types.SuggestionStatusUpdate{ID: "abc", Status: "archived"}, wantType: apperrors.ValidationError, wantMsg: "Invalid status"},
		{name: "unknown id", auth: auth, update: types.SuggestionStatusUpdate{ID: "abc", Status: types.SuggestionStatusDeclined}, wantType: apperrors.NotFoundError, wantMsg: "Suggestion not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdateStatus(ctx, tt.auth, tt.update)
			assertAppError(t, err, tt.wantType, tt.wantMsg)
		})
	}
}
