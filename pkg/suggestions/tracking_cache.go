package suggestions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tadweer/tadweer-site/types"
)

// MaxCachedSubmissions is how many of the user's own submissions are remembered.
const MaxCachedSubmissions = 20

// TrackingCache remembers the tracking ids this user submitted, most recent
// first, in a JSON file. It is a convenience mirror: the server's record wins
// whenever the server can answer.
type TrackingCache struct {
	path string
	mu   sync.Mutex
}

// DefaultCachePath returns ~/.tadweer/tracking.json.
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".tadweer", "tracking.json"), nil
}

func NewTrackingCache(path string) *TrackingCache {
	return &TrackingCache{path: path}
}

// Entries returns the cached submissions. A missing or unreadable file is an empty cache.
func (c *TrackingCache) Entries() []types.TrackedSuggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Add records a submission at the front, dropping an older entry with the
// same tracking id and anything beyond MaxCachedSubmissions.
func (c *TrackingCache) Add(entry types.TrackedSuggestion) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.TrackingID = normalizeTrackingID(entry.TrackingID)
	entries := []types.TrackedSuggestion{entry}
	for _, existing := range c.load() {
		if existing.TrackingID != entry.TrackingID {
			entries = append(entries, existing)
		}
	}
	if len(entries) > MaxCachedSubmissions {
		entries = entries[:MaxCachedSubmissions]
	}
	return c.save(entries)
}

// Find returns the cached entry for trackingID, ignoring case.
func (c *TrackingCache) Find(trackingID string) (types.TrackedSuggestion, bool) {
	trackingID = normalizeTrackingID(trackingID)
	for _, entry := range c.Entries() {
		if entry.TrackingID == trackingID {
			return entry, true
		}
	}
	return types.TrackedSuggestion{}, false
}

func (c *TrackingCache) load() []types.TrackedSuggestion {
	entries := []types.TrackedSuggestion{}
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return entries
	}
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return []types.TrackedSuggestion{}
	}
	return entries
}

func (c *TrackingCache) save(entries []types.TrackedSuggestion) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tracking cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write tracking cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace tracking cache: %w", err)
	}
	return nil
}

func normalizeTrackingID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
