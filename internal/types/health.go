package types

import "time"

// HealthState represents the health state of a dependency such as the graph store.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// String returns the string representation of HealthState
func (s HealthState) String() string {
	return string(s)
}

// HealthStatus is the result of a single health probe.
type HealthStatus struct {
	State     HealthState   `json:"state" yaml:"state"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty"`
	Latency   time.Duration `json:"latency_ns,omitempty" yaml:"latency,omitempty"`
	CheckedAt time.Time     `json:"checked_at" yaml:"checked_at"`
}

// Healthy creates a HealthStatus in the healthy state.
func Healthy(message string) HealthStatus {
	return HealthStatus{State: HealthStateHealthy, Message: message, CheckedAt: time.Now()}
}

// Unhealthy creates a HealthStatus in the unhealthy state.
func Unhealthy(message string) HealthStatus {
	return HealthStatus{State: HealthStateUnhealthy, Message: message, CheckedAt: time.Now()}
}

// WithLatency returns a copy of h carrying the probe round-trip time.
func (h HealthStatus) WithLatency(d time.Duration) HealthStatus {
	h.Latency = d
	return h
}

// IsHealthy returns true if the health state is healthy.
func (h HealthStatus) IsHealthy() bool {
	return h.State == HealthStateHealthy
}
