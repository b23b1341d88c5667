package types

// HealthStatus is the coarse state reported by /health and its components.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "UP"
	HealthStatusDown     HealthStatus = "DOWN"
	HealthStatusDegraded HealthStatus = "DEGRADED"
)

// ComponentStore names the suggestion store entry in HealthCheck.Components.
const ComponentStore = "store"

type HealthComponent struct {
	Status  HealthStatus `json:"status"`
	Details string       `json:"details,omitempty"`
}

// HealthCheck is the body of GET /health. Storage echoes the backend that
// actually serves suggestions, which differs from the configured one after a
// fallback to memory.
type HealthCheck struct {
	Status     HealthStatus               `json:"status"`
	Storage    string                     `json:"storage"`
	Components map[string]HealthComponent `json:"components"`
	Version    string                     `json:"version"`
	Timestamp  string                     `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
}
