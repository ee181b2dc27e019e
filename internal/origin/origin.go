// Package origin classifies connection origins and binds them to connection
// ids for the life of the connection.
package origin

import (
	"errors"
	"strings"
	"sync"
)

// ErrNotAuthorized is returned when a connection attempts an action its
// recorded origin does not permit.
var ErrNotAuthorized = errors.New("origin not authorized for this action")

// Gatekeeper decides which connections may act as agents. Role checks are
// made against the origin captured at handshake time, never against values
// supplied later in event payloads.
type Gatekeeper struct {
	agentPrefixes []string

	mu      sync.RWMutex
	origins map[string]string // connection id -> handshake origin
}

// NewGatekeeper creates a gatekeeper with the configured agent-eligible
// origin prefixes.
func NewGatekeeper(agentPrefixes []string) *Gatekeeper {
	return &Gatekeeper{
		agentPrefixes: agentPrefixes,
		origins:       make(map[string]string),
	}
}

// IsAgentOrigin reports whether the origin is non-empty and starts with any
// configured agent-origin prefix.
func (g *Gatekeeper) IsAgentOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	for _, prefix := range g.agentPrefixes {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// Record binds the handshake origin to a connection id.
func (g *Gatekeeper) Record(connID, origin string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.origins[connID] = origin
}

// OriginOf returns the origin recorded for a connection at handshake time.
func (g *Gatekeeper) OriginOf(connID string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	origin, ok := g.origins[connID]
	return origin, ok
}

// Forget removes the binding for a disconnected connection.
func (g *Gatekeeper) Forget(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.origins, connID)
}

// AuthorizeAgent returns ErrNotAuthorized unless the connection's recorded
// origin is agent-eligible.
func (g *Gatekeeper) AuthorizeAgent(connID string) error {
	origin, ok := g.OriginOf(connID)
	if !ok || !g.IsAgentOrigin(origin) {
		return ErrNotAuthorized
	}
	return nil
}

// AuthorizeCustomer returns ErrNotAuthorized when the connection's recorded
// origin is agent-eligible. Agent consoles must not start or continue
// customer chats.
func (g *Gatekeeper) AuthorizeCustomer(connID string) error {
	origin, ok := g.OriginOf(connID)
	if ok && g.IsAgentOrigin(origin) {
		return ErrNotAuthorized
	}
	return nil
}
