// Package adminapi implements the read-only JSON introspection surface
// used by operators: a snapshot of session and subscription state over
// HTTP.
package adminapi

import (
	"encoding/json"
	"net/http"

	"github.com/edgeiiot/opcua-runtime/internal/sessionmgr"
	"github.com/edgeiiot/opcua-runtime/internal/subscription"
)

// SubscriptionSummary is the wire shape of one subscription in the
// status response.
type SubscriptionSummary struct {
	ID             uint32 `json:"id"`
	State          string `json:"state"`
	MonitoredItems int    `json:"monitoredItems"`
	Priority       uint8  `json:"priority"`
}

// SessionSummary is the wire shape of one client session in the status
// response.
type SessionSummary struct {
	EndpointURI string `json:"endpointUri"`
	State       string `json:"state"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	ApplicationName string                `json:"applicationName"`
	Subscriptions   []SubscriptionSummary `json:"subscriptions"`
	Sessions        []SessionSummary      `json:"sessions"`
}

// Handler serves the admin introspection endpoints.
type Handler struct {
	applicationName string
	subs            *subscription.Store
	sessions        *sessionmgr.Manager
}

// NewHandler constructs a Handler over the subscription store and
// session manager it reports on.
func NewHandler(applicationName string, subs *subscription.Store, sessions *sessionmgr.Manager) *Handler {
	return &Handler{applicationName: applicationName, subs: subs, sessions: sessions}
}

func subscriptionStateName(s subscription.State) string {
	switch s {
	case subscription.StateCreated:
		return "Created"
	case subscription.StateActive:
		return "Active"
	case subscription.StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// HandleStatus handles GET /api/status: a snapshot of every
// subscription and client session currently tracked by the runtime.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := StatusResponse{ApplicationName: h.applicationName}

	if h.subs != nil {
		for _, sub := range h.subs.All() {
			resp.Subscriptions = append(resp.Subscriptions, SubscriptionSummary{
				ID:             sub.ID,
				State:          subscriptionStateName(sub.State()),
				MonitoredItems: len(sub.Items()),
				Priority:       sub.Params.Priority,
			})
		}
	}

	if h.sessions != nil {
		for _, s := range h.sessions.All() {
			resp.Sessions = append(resp.Sessions, SessionSummary{
				EndpointURI: s.EndpointURI(),
				State:       s.State().String(),
			})
		}
	}

	h.writeJSON(w, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
