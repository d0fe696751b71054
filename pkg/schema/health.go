package schema

import (
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// HealthResponse represents the readiness of the service and its
// dependencies
type HealthResponse struct {
	Status   string            `json:"status"` // healthy, degraded, unhealthy
	Version  string            `json:"version,omitempty"`
	Services map[string]string `json:"services,omitempty"` // per-dependency status
	Uptime   float64           `json:"uptime_seconds,omitempty"`
	Checked  time.Time         `json:"checked,omitzero"`
}

///////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Healthy returns true when the service reports full health
func (r *HealthResponse) Healthy() bool {
	return r.Status == StatusHealthy
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r HealthResponse) String() string {
	return types.Stringify(r)
}
