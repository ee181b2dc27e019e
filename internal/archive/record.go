// Package archive persists point-in-time session snapshots: remote store
// first, local durable fallback when the remote write fails.
package archive

import (
	"time"

	"github.com/livedesk/relay/internal/domain"
)

// Session status recorded at save time.
const (
	StatusClosed  = "closed"  // an agent was assigned when the snapshot was taken
	StatusPending = "pending" // no agent attached yet
)

// Record is the durable representation of a session submitted downstream.
// It is built from a deep copy of the session and never read back into the
// registry.
type Record struct {
	SessionID     string              `json:"session_id"`
	Agent         *string             `json:"agent"`
	Customer      domain.CustomerInfo `json:"customer"`
	RemoteAddr    string              `json:"remote_addr"`
	ConnectionID  string              `json:"connection_id"`
	Status        string              `json:"status"`
	LastMessageAt time.Time           `json:"last_message_at"`
	Messages      []domain.Message    `json:"messages"`
}

// Snapshot builds a Record from a session copy. The caller is responsible
// for the copy being taken atomically with respect to session mutation.
func Snapshot(sess domain.ChatSession) Record {
	rec := Record{
		SessionID:     sess.ID,
		Customer:      sess.Customer,
		RemoteAddr:    sess.RemoteAddr,
		ConnectionID:  sess.ConnectionID,
		Status:        StatusPending,
		LastMessageAt: sess.LastMessageAt(),
		Messages:      sess.Messages,
	}
	if sess.HasAgent() {
		agent := sess.Agent
		rec.Agent = &agent
		rec.Status = StatusClosed
	}
	return rec
}
