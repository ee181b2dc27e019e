// Package hub tracks live connections, room membership, and the agent
// roster, and multicasts outbound events to them.
package hub

import (
	"sync"

	"github.com/livedesk/relay/internal/domain"
)

// Peer is one live connection able to receive outbound events. Send is
// fire-and-forget: delivery failures are the transport's concern and are
// never observed by routing logic.
type Peer interface {
	Send(v any)
}

// Hub owns the connection, room, and agent maps.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]Peer
	rooms  map[string]map[string]struct{} // session id -> member connection ids
	agents map[string]*domain.AgentConnection
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{
		conns:  make(map[string]Peer),
		rooms:  make(map[string]map[string]struct{}),
		agents: make(map[string]*domain.AgentConnection),
	}
}

// Register adds a live connection.
func (h *Hub) Register(connID string, p Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connID] = p
}

// Unregister removes a connection, its room memberships, and any agent
// roster entry.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
	delete(h.agents, connID)
	for sessionID, members := range h.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, sessionID)
		}
	}
}

// Join subscribes a connection to a session's room. Idempotent.
func (h *Hub) Join(sessionID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[sessionID]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[sessionID] = members
	}
	members[connID] = struct{}{}
}

// Leave unsubscribes a connection from a session's room.
func (h *Hub) Leave(sessionID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[sessionID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, sessionID)
		}
	}
}

// CloseRoom drops the room entirely. Member connections stay registered.
func (h *Hub) CloseRoom(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, sessionID)
}

// RoomsOf returns the session ids whose rooms include the connection.
func (h *Hub) RoomsOf(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []string
	for sessionID, members := range h.rooms {
		if _, ok := members[connID]; ok {
			out = append(out, sessionID)
		}
	}
	return out
}

// ToConn sends an event to one connection.
func (h *Hub) ToConn(connID string, v any) {
	h.mu.RLock()
	p, ok := h.conns[connID]
	h.mu.RUnlock()
	if ok {
		p.Send(v)
	}
}

// ToRoom multicasts an event to every member of a session's room.
func (h *Hub) ToRoom(sessionID string, v any) {
	h.ToRoomExcept(sessionID, "", v)
}

// ToRoomExcept multicasts to a session's room, skipping one connection.
func (h *Hub) ToRoomExcept(sessionID, exceptConnID string, v any) {
	h.mu.RLock()
	var peers []Peer
	for connID := range h.rooms[sessionID] {
		if connID == exceptConnID {
			continue
		}
		if p, ok := h.conns[connID]; ok {
			peers = append(peers, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range peers {
		p.Send(v)
	}
}

// ToRoomCustomers multicasts to the room members that are not registered
// agents. One-time session notices address the customer side of the room
// only, no matter which agent connections are subscribed.
func (h *Hub) ToRoomCustomers(sessionID string, v any) {
	h.mu.RLock()
	var peers []Peer
	for connID := range h.rooms[sessionID] {
		if _, isAgent := h.agents[connID]; isAgent {
			continue
		}
		if p, ok := h.conns[connID]; ok {
			peers = append(peers, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range peers {
		p.Send(v)
	}
}

// ToAgents broadcasts an event to every registered agent connection,
// regardless of room membership. Roster-level changes go to all agents.
func (h *Hub) ToAgents(v any) {
	h.mu.RLock()
	var peers []Peer
	for connID := range h.agents {
		if p, ok := h.conns[connID]; ok {
			peers = append(peers, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range peers {
		p.Send(v)
	}
}

// RegisterAgent adds a connection to the agent roster.
func (h *Hub) RegisterAgent(ac *domain.AgentConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.agents[ac.ConnectionID] = ac
}

// Agent returns the roster entry for a connection, if it is an agent.
func (h *Hub) Agent(connID string) (*domain.AgentConnection, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ac, ok := h.agents[connID]
	return ac, ok
}

// Agents returns a snapshot of the agent roster.
func (h *Hub) Agents() []domain.AgentConnection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.AgentConnection, 0, len(h.agents))
	for _, ac := range h.agents {
		out = append(out, *ac)
	}
	return out
}

// AgentCount returns the number of connected agents.
func (h *Hub) AgentCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.agents)
}
