package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/supabase-community/supabase-go"

	"github.com/tadweer/tadweer-site/types"
)

// Ensure SupabaseStore implements SuggestionStore
var _ SuggestionStore = (*SupabaseStore)(nil)

// SupabaseStore keeps one row per suggestion in a Supabase (PostgREST) table.
// Set upserts on id; records are never deleted.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

// NewSupabaseStore creates a store backed by the given table using a service role key.
func NewSupabaseStore(url, serviceKey, table string) (*SupabaseStore, error) {
	if url == "" || serviceKey == "" {
		return nil, fmt.Errorf("supabase store: url and service key are required: %w", ErrNotConfigured)
	}
	if table == "" {
		table = "suggestions"
	}

	client, err := supabase.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseStore{client: client, table: table}, nil
}

// Get returns all rows, newest first.
func (s *SupabaseStore) Get(ctx context.Context) ([]types.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	suggestions := []types.Suggestion{}
	if _, err := s.client.From(s.table).Select("*", "", false).ExecuteTo(&suggestions); err != nil {
		return nil, fmt.Errorf("supabase select %s: %w", s.table, err)
	}
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].CreatedAt.After(suggestions[j].CreatedAt)
	})
	return suggestions, nil
}

func (s *SupabaseStore) Set(ctx context.Context, suggestions []types.Suggestion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(suggestions) == 0 {
		return nil
	}

	if _, _, err := s.client.From(s.table).Upsert(supabaseRows(suggestions), "id", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("supabase upsert %s: %w", s.table, err)
	}
	return nil
}

// supabaseRow is the upsert shape of a suggestion. PostgREST rejects bulk
// writes whose objects have different keys, so updated_at is always sent.
type supabaseRow struct {
	ID         string                 `json:"id"`
	TrackingID string                 `json:"tracking_id"`
	Name       string                 `json:"name"`
	Email      string                 `json:"email"`
	Category   string                 `json:"category"`
	Suggestion string                 `json:"suggestion"`
	Status     types.SuggestionStatus `json:"status"`
	PageURL    string                 `json:"page_url"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  *time.Time             `json:"updated_at"`
}

func supabaseRows(suggestions []types.Suggestion) []supabaseRow {
	rows := make([]supabaseRow, len(suggestions))
	for i, sg := range suggestions {
		rows[i] = supabaseRow{
			ID:         sg.ID,
			TrackingID: sg.TrackingID,
			Name:       sg.Name,
			Email:      sg.Email,
			Category:   sg.Category,
			Suggestion: sg.Suggestion,
			Status:     sg.Status,
			PageURL:    sg.PageURL,
			CreatedAt:  sg.CreatedAt,
			UpdatedAt:  sg.UpdatedAt,
		}
	}
	return rows
}

func (s *SupabaseStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := s.client.From(s.table).Select("id", "", false).Limit(1, "").Execute()
	return err
}

func (s *SupabaseStore) Type() string {
	return TypeSupabase
}
