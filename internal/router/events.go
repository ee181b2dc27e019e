package router

import (
	"github.com/livedesk/relay/internal/domain"
)

// Outbound event types.
const (
	EventAgentEligible        = "agent_eligible"
	EventSessionCreated       = "session_created"
	EventNewSession           = "new_session"
	EventSessionList          = "session_list"
	EventNewMessage           = "new_message"
	EventTyping               = "typing"
	EventStopTyping           = "stop_typing"
	EventAgentJoined          = "agent_joined"
	EventCustomerInfoUpdated  = "customer_info_updated"
	EventMissedMessages       = "missed_messages"
	EventSaveResult           = "save_result"
	EventSessionClosed        = "session_closed"
	EventCustomerDisconnected = "customer_disconnected"
	EventAuthError            = "auth_error"
	EventNotFound             = "not_found"
)

// AgentEligibleEvent tells a connection its origin pre-authorizes it to
// join as an agent. The connection is not an agent until it does.
type AgentEligibleEvent struct {
	Type string `json:"type"`
}

// SessionCreatedEvent acknowledges a started session to the customer.
type SessionCreatedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// NewSessionEvent announces a freshly started session to all agents.
type NewSessionEvent struct {
	Type    string             `json:"type"`
	Session domain.ChatSession `json:"session"`
}

// SessionListEvent carries the full active backlog to a newly joined agent.
type SessionListEvent struct {
	Type     string               `json:"type"`
	Sessions []domain.ChatSession `json:"sessions"`
}

// NewMessageEvent carries one appended message to the session's room.
type NewMessageEvent struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id"`
	Message   domain.Message `json:"message"`
}

// TypingEvent is the stateless typing/stop-typing pass-through.
type TypingEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// AgentJoinedEvent is emitted exactly once, when an agent is first
// assigned to a session.
type AgentJoinedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Agent     string `json:"agent"`
}

// CustomerInfoUpdatedEvent broadcasts the merged customer view to agents.
type CustomerInfoUpdatedEvent struct {
	Type      string              `json:"type"`
	SessionID string              `json:"session_id"`
	Customer  domain.CustomerInfo `json:"customer"`
}

// MissedMessagesEvent replays messages after the caller's last-seen id.
type MissedMessagesEvent struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
}

// SaveResultEvent reports the outcome of a manual save.
type SaveResultEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// SessionClosedEvent tells room members the session has been closed.
type SessionClosedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// CustomerDisconnectedEvent tells agents the customer connection dropped.
// The session stays live for reconnection and replay.
type CustomerDisconnectedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// AuthErrorEvent reports a role/origin refusal to the caller.
type AuthErrorEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// NotFoundEvent reports an unknown session id on an interactive event.
type NotFoundEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func authError(reason string) AuthErrorEvent {
	return AuthErrorEvent{Type: EventAuthError, Reason: reason}
}

func notFound(sessionID string) NotFoundEvent {
	return NotFoundEvent{Type: EventNotFound, SessionID: sessionID}
}
