// Package health implements the liveness/readiness HTTP surface used by
// orchestrators to probe whether the runtime is up and its transport is
// listening.
package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	"github.com/edgeiiot/opcua-runtime/internal/session"
	"github.com/edgeiiot/opcua-runtime/internal/sessionmgr"
)

// Status is the health check response body.
type Status struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Handler serves liveness and readiness probes.
type Handler struct {
	transportReady bool
	startTime      time.Time
	store          *addrspace.Store
	sessions       *sessionmgr.Manager
}

// NewHandler constructs a Handler whose uptime clock starts now. store and
// sessions back the node-store and session-manager readiness checks; either
// may be nil, in which case that check is omitted.
func NewHandler(store *addrspace.Store, sessions *sessionmgr.Manager) *Handler {
	return &Handler{startTime: time.Now(), store: store, sessions: sessions}
}

// SetTransportReady marks whether the server transport is listening.
func (h *Handler) SetTransportReady(ready bool) {
	h.transportReady = ready
}

// HandleLive reports 200 whenever the process is running.
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	status := Status{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// HandleReady reports 200 only once the server transport is listening,
// the node store and session manager (when present) report healthy, and
// the startup grace period has elapsed.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	allHealthy := true

	if h.transportReady {
		checks["server_transport"] = "healthy"
	} else {
		checks["server_transport"] = "not_ready"
		allHealthy = false
	}

	if h.store != nil {
		checks["node_store"] = fmt.Sprintf("%d namespaces", h.store.NamespaceCount())
	}

	if h.sessions != nil {
		sessions := h.sessions.All()
		faulted := 0
		for _, s := range sessions {
			if s.State() == session.StateFaulted {
				faulted++
			}
		}
		if faulted == 0 {
			checks["session_manager"] = fmt.Sprintf("%d sessions, none faulted", len(sessions))
		} else {
			checks["session_manager"] = fmt.Sprintf("%d of %d sessions faulted", faulted, len(sessions))
			allHealthy = false
		}
	}

	uptime := time.Since(h.startTime)
	if uptime > 5*time.Second {
		checks["startup"] = "complete"
	} else {
		checks["startup"] = "in_progress"
		allHealthy = false
	}

	status := Status{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	if allHealthy {
		status.Status = "ready"
		w.WriteHeader(http.StatusOK)
	} else {
		status.Status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

// HandleHealth is the combined endpoint used by container HEALTHCHECK
// directives.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.HandleReady(w, r)
}
