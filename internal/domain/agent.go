package domain

import (
	"time"
)

// AgentConnection tracks one live agent connection. It exists only for the
// life of the connection and is never persisted.
type AgentConnection struct {
	ConnectionID string    `json:"connection_id"`
	AgentID      string    `json:"agent_id"`
	Name         string    `json:"name"`
	Origin       string    `json:"origin"`
	ConnectedAt  time.Time `json:"connected_at"`
}
