package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/livedesk/relay/internal/hub"
	"github.com/livedesk/relay/internal/registry"
)

// StatusHandler serves the read-only monitoring snapshot. It is a pure
// projection of registry and roster state and never mutates either.
type StatusHandler struct {
	reg       *registry.Registry
	hub       *hub.Hub
	startedAt time.Time
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(reg *registry.Registry, h *hub.Hub) *StatusHandler {
	return &StatusHandler{
		reg:       reg,
		hub:       h,
		startedAt: time.Now(),
	}
}

// RegisterRoutes registers the status route.
func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/status", h.GetStatus)
}

type sessionSummary struct {
	ID           string    `json:"id"`
	Customer     string    `json:"customer,omitempty"`
	Agent        string    `json:"agent,omitempty"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type agentSummary struct {
	Name        string    `json:"name"`
	Origin      string    `json:"origin"`
	ConnectedAt time.Time `json:"connected_at"`
}

type statusResponse struct {
	UptimeSeconds   int64            `json:"uptime_seconds"`
	ActiveSessions  int              `json:"active_sessions"`
	ConnectedAgents int              `json:"connected_agents"`
	TotalMessages   int              `json:"total_messages"`
	Sessions        []sessionSummary `json:"sessions"`
	Agents          []agentSummary   `json:"agents"`
}

// GetStatus returns process uptime and per-session/per-agent summaries.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	sessions := h.reg.ListAll()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	resp := statusResponse{
		UptimeSeconds:   int64(time.Since(h.startedAt).Seconds()),
		ActiveSessions:  len(sessions),
		ConnectedAgents: h.hub.AgentCount(),
		Sessions:        make([]sessionSummary, 0, len(sessions)),
	}
	for _, sess := range sessions {
		resp.TotalMessages += len(sess.Messages)
		resp.Sessions = append(resp.Sessions, sessionSummary{
			ID:           sess.ID,
			Customer:     sess.Customer.Name,
			Agent:        sess.Agent,
			MessageCount: len(sess.Messages),
			CreatedAt:    sess.CreatedAt,
		})
	}

	agents := h.hub.Agents()
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].ConnectedAt.Before(agents[j].ConnectedAt)
	})
	resp.Agents = make([]agentSummary, 0, len(agents))
	for _, ac := range agents {
		resp.Agents = append(resp.Agents, agentSummary{
			Name:        ac.Name,
			Origin:      ac.Origin,
			ConnectedAt: ac.ConnectedAt,
		})
	}

	JSON(w, http.StatusOK, resp)
}
