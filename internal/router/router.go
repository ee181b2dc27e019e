// Package router turns validated inbound events into session mutation and
// outbound multicasts, enforcing role rules along the way.
package router

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/livedesk/relay/internal/domain"
	"github.com/livedesk/relay/internal/hub"
	"github.com/livedesk/relay/internal/origin"
	"github.com/livedesk/relay/internal/registry"
	"github.com/livedesk/relay/internal/shortid"
)

// Scheduler is the persistence trigger surface the router depends on.
type Scheduler interface {
	Activity(sessionID string)
	SaveNow(ctx context.Context, sessionID string) error
	Cancel(sessionID string)
}

// Router routes events between customers, agents, the registry, and the
// persistence scheduler. Every method is a complete handler for one event:
// it finishes its state changes before emitting multicasts, and multicasts
// are fire-and-forget.
type Router struct {
	reg   *registry.Registry
	hub   *hub.Hub
	gate  *origin.Gatekeeper
	sched Scheduler
}

// New creates a router.
func New(reg *registry.Registry, h *hub.Hub, gate *origin.Gatekeeper, sched Scheduler) *Router {
	return &Router{reg: reg, hub: h, gate: gate, sched: sched}
}

// Connected records the handshake origin for the connection and, when the
// origin is agent-eligible, tells the connection so. Classification here is
// distinct from registration: the connection becomes an agent only via
// JoinAgent.
func (r *Router) Connected(connID, originHeader string) {
	r.gate.Record(connID, originHeader)
	if r.gate.IsAgentOrigin(originHeader) {
		r.hub.ToConn(connID, AgentEligibleEvent{Type: EventAgentEligible})
	}
}

// StartSession creates a new session for a customer connection.
func (r *Router) StartSession(connID, remoteAddr string, info domain.CustomerInfo) {
	if err := r.gate.AuthorizeCustomer(connID); err != nil {
		slog.Warn("agent-eligible connection refused customer action", "conn_id", connID, "action", "start_session")
		r.hub.ToConn(connID, authError("agent origins cannot start customer sessions"))
		return
	}

	sess := r.reg.Create(info, connID, remoteAddr)
	r.hub.Join(sess.ID, connID)

	slog.Info("session started", "session_id", sess.ID, "conn_id", connID, "customer", sess.CustomerDisplayName())

	r.hub.ToConn(connID, SessionCreatedEvent{Type: EventSessionCreated, SessionID: sess.ID})
	r.hub.ToAgents(NewSessionEvent{Type: EventNewSession, Session: sess.Clone()})
}

// CustomerMessage appends a customer message and multicasts it to the room.
// Only agent-handled sessions trigger the persistence scheduler.
func (r *Router) CustomerMessage(connID, sessionID, content string) {
	if err := r.gate.AuthorizeCustomer(connID); err != nil {
		r.hub.ToConn(connID, authError("agent origins cannot send customer messages"))
		return
	}

	sess, ok := r.reg.Clone(sessionID)
	if !ok {
		slog.Warn("message for unknown session", "session_id", sessionID, "conn_id", connID)
		r.hub.ToConn(connID, notFound(sessionID))
		return
	}

	msg := domain.Message{
		ID:      shortid.New(),
		Content: content,
		Role:    domain.RoleCustomer,
		Sender:  sess.CustomerDisplayName(),
		SentAt:  time.Now(),
	}
	if err := r.reg.AppendMessage(sessionID, msg); err != nil {
		r.hub.ToConn(connID, notFound(sessionID))
		return
	}

	// Reconnected customers re-enter the room on their first send.
	r.hub.Join(sessionID, connID)
	r.hub.ToRoom(sessionID, NewMessageEvent{Type: EventNewMessage, SessionID: sessionID, Message: msg})

	if sess.HasAgent() {
		r.sched.Activity(sessionID)
	}
}

// AgentMessage appends an agent message. The first agent reply assigns the
// agent and emits agent_joined to the customer side exactly once.
func (r *Router) AgentMessage(connID, sessionID, content string) {
	ac, ok := r.hub.Agent(connID)
	if !ok {
		slog.Warn("agent message from unregistered connection", "conn_id", connID)
		r.hub.ToConn(connID, authError("connection is not a registered agent"))
		return
	}

	if _, found := r.reg.Get(sessionID); !found {
		slog.Warn("agent message for unknown session", "session_id", sessionID, "agent", ac.Name)
		r.hub.ToConn(connID, notFound(sessionID))
		return
	}

	msg := domain.Message{
		ID:      shortid.New(),
		Content: content,
		Role:    domain.RoleAgent,
		Sender:  ac.Name,
		SentAt:  time.Now(),
	}
	if err := r.reg.AppendMessage(sessionID, msg); err != nil {
		r.hub.ToConn(connID, notFound(sessionID))
		return
	}
	r.hub.Join(sessionID, connID)

	assigned, err := r.reg.AssignAgent(sessionID, ac.Name)
	if err == nil && assigned {
		slog.Info("agent assigned", "session_id", sessionID, "agent", ac.Name)
		r.hub.ToRoomCustomers(sessionID, AgentJoinedEvent{Type: EventAgentJoined, SessionID: sessionID, Agent: ac.Name})
	}

	r.hub.ToRoom(sessionID, NewMessageEvent{Type: EventNewMessage, SessionID: sessionID, Message: msg})
	r.sched.Activity(sessionID)
}

// Typing re-multicasts a typing or stop-typing signal to the room,
// excluding the sender. Stateless; unknown sessions are dropped silently.
func (r *Router) Typing(connID, sessionID string, stop bool) {
	if _, ok := r.reg.Get(sessionID); !ok {
		slog.Debug("typing signal for unknown session", "session_id", sessionID)
		return
	}
	eventType := EventTyping
	if stop {
		eventType = EventStopTyping
	}
	r.hub.ToRoomExcept(sessionID, connID, TypingEvent{Type: eventType, SessionID: sessionID})
}

// UpdateCustomerInfo merges non-empty customer fields and broadcasts the
// merged view to all agents. Roster changes are not room-scoped.
func (r *Router) UpdateCustomerInfo(connID, sessionID string, partial domain.CustomerInfo) {
	if err := r.gate.AuthorizeCustomer(connID); err != nil {
		r.hub.ToConn(connID, authError("agent origins cannot update customer info"))
		return
	}

	merged, err := r.reg.UpdateCustomerInfo(sessionID, partial)
	if err != nil {
		slog.Warn("customer info update for unknown session", "session_id", sessionID)
		r.hub.ToConn(connID, notFound(sessionID))
		return
	}

	r.hub.ToAgents(CustomerInfoUpdatedEvent{Type: EventCustomerInfoUpdated, SessionID: sessionID, Customer: merged.Customer})
}

// MissedMessages replays the messages after the caller's last-seen id and
// re-enters the connection into the session's room. An unrecognized id
// yields the full sequence.
func (r *Router) MissedMessages(connID, sessionID, lastMessageID string) {
	if err := r.gate.AuthorizeCustomer(connID); err != nil {
		r.hub.ToConn(connID, authError("agent origins cannot request customer replay"))
		return
	}

	sess, ok := r.reg.Clone(sessionID)
	if !ok {
		r.hub.ToConn(connID, notFound(sessionID))
		return
	}

	r.hub.Join(sessionID, connID)
	r.hub.ToConn(connID, MissedMessagesEvent{
		Type:      EventMissedMessages,
		SessionID: sessionID,
		Messages:  sess.MessagesAfter(lastMessageID),
	})
}

// JoinAgent registers the connection as an agent, authorized against the
// origin recorded at handshake time, and hands it the full active backlog.
func (r *Router) JoinAgent(connID, agentID, name string) {
	if err := r.gate.AuthorizeAgent(connID); err != nil {
		slog.Warn("agent join refused", "conn_id", connID, "agent_id", agentID)
		r.hub.ToConn(connID, authError("origin is not agent-eligible"))
		return
	}

	connOrigin, _ := r.gate.OriginOf(connID)
	r.hub.RegisterAgent(&domain.AgentConnection{
		ConnectionID: connID,
		AgentID:      agentID,
		Name:         name,
		Origin:       connOrigin,
		ConnectedAt:  time.Now(),
	})
	slog.Info("agent joined", "agent_id", agentID, "name", name, "conn_id", connID)

	backlog := r.reg.ListAll()
	sort.Slice(backlog, func(i, j int) bool {
		return backlog[i].CreatedAt.Before(backlog[j].CreatedAt)
	})
	r.hub.ToConn(connID, SessionListEvent{Type: EventSessionList, Sessions: backlog})
}

// ManualSave persists the session immediately on explicit agent request
// and reports the outcome to the requester.
func (r *Router) ManualSave(ctx context.Context, connID, sessionID string) {
	if _, ok := r.hub.Agent(connID); !ok {
		r.hub.ToConn(connID, authError("connection is not a registered agent"))
		return
	}

	result := SaveResultEvent{Type: EventSaveResult, SessionID: sessionID, OK: true}
	if err := r.sched.SaveNow(ctx, sessionID); err != nil {
		slog.Error("manual save failed", "session_id", sessionID, "error", err)
		result.OK = false
		result.Error = err.Error()
	}
	r.hub.ToConn(connID, result)
}

// CloseSession persists the session, cancels its timer, removes it from
// the registry, and notifies the room. Closing an unassigned session still
// archives it, with a pending status.
func (r *Router) CloseSession(ctx context.Context, connID, sessionID string) {
	if _, ok := r.hub.Agent(connID); !ok {
		r.hub.ToConn(connID, authError("connection is not a registered agent"))
		return
	}

	if _, ok := r.reg.Get(sessionID); !ok {
		r.hub.ToConn(connID, notFound(sessionID))
		return
	}

	if err := r.sched.SaveNow(ctx, sessionID); err != nil {
		slog.Error("save on close failed", "session_id", sessionID, "error", err)
	}
	r.sched.Cancel(sessionID)

	r.hub.ToRoom(sessionID, SessionClosedEvent{Type: EventSessionClosed, SessionID: sessionID})
	r.reg.Remove(sessionID)
	r.hub.CloseRoom(sessionID)
	slog.Info("session closed", "session_id", sessionID)
}

// Disconnected tears down a connection. An agent disconnect best-effort
// saves every session assigned to that agent; a customer disconnect only
// notifies agents and leaves the session live for reconnection.
func (r *Router) Disconnected(ctx context.Context, connID string) {
	if ac, ok := r.hub.Agent(connID); ok {
		for _, sess := range r.reg.ListAll() {
			if sess.Agent != ac.Name || len(sess.Messages) == 0 {
				continue
			}
			if err := r.sched.SaveNow(ctx, sess.ID); err != nil {
				slog.Error("save on agent disconnect failed", "session_id", sess.ID, "agent", ac.Name, "error", err)
			}
		}
		slog.Info("agent disconnected", "agent", ac.Name, "conn_id", connID)
	} else {
		for _, sessionID := range r.hub.RoomsOf(connID) {
			r.hub.ToAgents(CustomerDisconnectedEvent{Type: EventCustomerDisconnected, SessionID: sessionID})
		}
	}

	r.hub.Unregister(connID)
	r.gate.Forget(connID)
}
