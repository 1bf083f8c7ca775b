package models

// Health is the body of the liveness and readiness probes.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus is the body of GET /v1/ops/status.
type SystemStatus struct {
	Status HealthStatus `json:"status"`
	Time   Timestamp    `json:"time"`

	Dataset  DatasetStatus  `json:"dataset"`
	Sessions SessionsStatus `json:"sessions"`

	Subsystems             []SubsystemStatus `json:"subsystems"`
	Providers              []ProviderStatus  `json:"providers"`
	ActiveDegradationFlags []string          `json:"activeDegradationFlags,omitempty"`
}

// DatasetStatus describes the store collection currently served.
type DatasetStatus struct {
	Loaded   bool       `json:"loaded"`
	Version  uint64     `json:"version"`
	Points   int        `json:"points"`
	LoadedAt *Timestamp `json:"loadedAt,omitempty"`
}

// SessionsStatus describes the live dashboard sessions.
type SessionsStatus struct {
	Active int `json:"active"`
}

// SubsystemStatus is the rolled-up state of one internal dependency.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus is the state of an outbound provider and its circuit.
type ProviderStatus struct {
	Provider string       `json:"provider"`
	Status   HealthStatus `json:"status"`

	// Circuit is "closed", "half-open" or "open".
	Circuit             string     `json:"circuit"`
	Trips               int        `json:"trips"`
	ConsecutiveFailures uint32     `json:"consecutiveFailures"`
	LastStateChangeAt   *Timestamp `json:"lastStateChangeAt,omitempty"`

	LastSuccessAt *Timestamp `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp `json:"lastFailureAt,omitempty"`
	Message       *string    `json:"message,omitempty"`
}
