package server

import (
	"context"
	"net/http"
	"time"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
	"lead-intake/pkg/registry"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SinkChecker is satisfied by *leads.Orchestrator.
type SinkChecker interface {
	CheckSinks(ctx context.Context) []leads.CheckResult
}

type HealthHandler struct {
	db       Pinger
	checker  SinkChecker
	registry *registry.SinkRegistry
	logger   logger.Logger
}

type IntegrationStatus struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Category    string `json:"category,omitempty"`
	Configured  bool   `json:"configured"`
	Healthy     bool   `json:"healthy"`
	Error       string `json:"error,omitempty"`
}

func NewHealthHandler(db Pinger, checker SinkChecker, reg *registry.SinkRegistry, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:       db,
		checker:  checker,
		registry: reg,
		logger:   log.WithFields(map[string]interface{}{"component": "health"}),
	}
}

// Live always answers 200 while the process serves requests.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready answers 503 until the primary store is reachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.pingDB(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", map[string]interface{}{"error": err})
		apperrors.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Leads reports whether lead submissions can currently be stored.
func (h *HealthHandler) Leads(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"success":   true,
		"service":   "leads",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err := h.pingDB(r.Context()); err != nil {
		h.logger.Warn("lead store unreachable", map[string]interface{}{"error": err})
		body["success"] = false
		body["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	apperrors.WriteJSON(w, status, body)
}

// Integrations probes every sink and annotates it with catalog metadata.
func (h *HealthHandler) Integrations(w http.ResponseWriter, r *http.Request) {
	results := h.checker.CheckSinks(r.Context())

	out := make([]IntegrationStatus, len(results))
	for i, res := range results {
		status := IntegrationStatus{
			Name:        res.Name,
			DisplayName: res.Name,
			Configured:  res.Configured,
			Healthy:     res.Healthy,
			Error:       res.Error,
		}
		if meta, ok := h.registry.Lookup(res.Name); ok {
			status.DisplayName = meta.DisplayName
			status.Category = meta.Category
		}
		out[i] = status
	}

	apperrors.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"integrations": out,
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.db.PingContext(ctx)
}
