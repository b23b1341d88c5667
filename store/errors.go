package store

import "errors"

// Error Handling Guidelines:
// - Stores: use fmt.Errorf("context: %w", err) for wrapping backend errors
// - Services: translate store errors with apperrors.NewStorageError
// - Handlers: push apperrors.* values with c.Error

// Predefined errors for the store layer.
var (
	// ErrBackendUnavailable is returned while the circuit breaker around a remote backend is open.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrNotConfigured indicates a backend was selected without the settings it needs.
	ErrNotConfigured = errors.New("storage backend not configured")
)
