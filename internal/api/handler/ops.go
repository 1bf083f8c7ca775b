// Package handler provides HTTP handlers for the RADAR API.
package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/storeradar/radar/internal/api/models"
	"github.com/storeradar/radar/internal/api/response"
	"github.com/storeradar/radar/internal/dashboard"
	"github.com/storeradar/radar/internal/dataset"
	"github.com/storeradar/radar/internal/provider/resilience"
)

// OpsConfig holds the dependencies of the ops endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string

	Dataset  *dataset.Store
	Sessions *dashboard.Manager
	Registry *resilience.Registry

	// ConfigError is the startup configuration error, if any.
	ConfigError error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - ready once the dataset is loaded
// and the service is configured.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	status := http.StatusOK

	details := map[string]interface{}{}
	if h.cfg.Dataset == nil || !h.cfg.Dataset.Loaded() {
		details["dataset"] = "not loaded"
	}
	if h.cfg.ConfigError != nil {
		details["config"] = h.cfg.ConfigError.Error()
	}
	if len(details) > 0 {
		health.Status = models.HealthStatusFail
		health.Details = details
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, r, status, health)
}

// SystemStatus handles GET /v1/ops/status - dataset, session and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		Dataset:   h.dataset(),
		Sessions:  models.SessionsStatus{Active: h.activeSessions()},
		Providers: h.providerStatuses(),
	}
	status.Subsystems = []models.SubsystemStatus{
		datasetSubsystem(status.Dataset),
		{Name: "sessions", Status: models.HealthStatusOK, Detail: ptr(fmt.Sprintf("%d active", status.Sessions.Active))},
		h.configSubsystem(),
	}

	for _, s := range status.Subsystems {
		status.Status = status.Status.Worse(s.Status)
	}
	for _, p := range status.Providers {
		if p.Status != models.HealthStatusOK {
			// A broken provider only disables searches or submissions.
			status.Status = status.Status.Worse(models.HealthStatusDegraded)
			status.ActiveDegradationFlags = append(status.ActiveDegradationFlags, "provider:"+p.Provider)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) dataset() models.DatasetStatus {
	if h.cfg.Dataset == nil {
		return models.DatasetStatus{}
	}
	snap := h.cfg.Dataset.Snapshot()
	return models.DatasetStatus{
		Loaded:   snap.Version > 0,
		Version:  snap.Version,
		Points:   len(snap.Points),
		LoadedAt: models.NewTimestamp(snap.LoadedAt),
	}
}

func datasetSubsystem(ds models.DatasetStatus) models.SubsystemStatus {
	if !ds.Loaded {
		return models.SubsystemStatus{Name: "dataset", Status: models.HealthStatusFail, Detail: ptr("not loaded")}
	}
	return models.SubsystemStatus{
		Name:   "dataset",
		Status: models.HealthStatusOK,
		Detail: ptr(fmt.Sprintf("version %d, %d stores", ds.Version, ds.Points)),
	}
}

func (h *OpsHandler) activeSessions() int {
	if h.cfg.Sessions == nil {
		return 0
	}
	return h.cfg.Sessions.Count()
}

func (h *OpsHandler) configSubsystem() models.SubsystemStatus {
	if h.cfg.ConfigError != nil {
		return models.SubsystemStatus{Name: "config", Status: models.HealthStatusFail, Detail: ptr(h.cfg.ConfigError.Error())}
	}
	return models.SubsystemStatus{Name: "config", Status: models.HealthStatusOK}
}

func (h *OpsHandler) providerStatuses() []models.ProviderStatus {
	if h.cfg.Registry == nil {
		return []models.ProviderStatus{}
	}

	all := h.cfg.Registry.All()
	out := make([]models.ProviderStatus, 0, len(all))
	for _, ph := range all {
		ps := models.ProviderStatus{
			Provider:            ph.Name,
			Status:              models.HealthStatusOK,
			Circuit:             ph.CircuitState.String(),
			Trips:               ph.Trips,
			ConsecutiveFailures: ph.Counts.ConsecutiveFailures,
		}
		switch {
		case ph.IsUnhealthy():
			ps.Status = models.HealthStatusFail
		case ph.IsDegraded():
			ps.Status = models.HealthStatusDegraded
		}
		if ph.LastStateChangeAt != nil {
			ps.LastStateChangeAt = models.NewTimestamp(*ph.LastStateChangeAt)
		}
		if ph.LastSuccessAt != nil {
			ps.LastSuccessAt = models.NewTimestamp(*ph.LastSuccessAt)
		}
		if ph.LastFailureAt != nil {
			ps.LastFailureAt = models.NewTimestamp(*ph.LastFailureAt)
		}
		if ph.LastError != "" {
			ps.Message = ptr(ph.LastError)
		}
		out = append(out, ps)
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
