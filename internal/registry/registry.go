// Package registry owns all active chat sessions and their activity
// timestamps. All state lives behind the Registry's methods; raw maps are
// never exposed, so session mutation and snapshot-for-save remain a single
// locked step.
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/livedesk/relay/internal/domain"
	"github.com/livedesk/relay/internal/shortid"
)

// ErrSessionNotFound is returned for operations referencing a session id
// that was never created or has been removed.
var ErrSessionNotFound = errors.New("session not found")

// Registry is the exclusive owner of active sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession
	activity map[string]time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[string]*domain.ChatSession),
		activity: make(map[string]time.Time),
	}
}

// Create stores a new session with a fresh id and an empty message log.
// Id uniqueness is the generator's contract; collisions are treated as
// never occurring at this id-space size.
func (r *Registry) Create(info domain.CustomerInfo, connID, remoteAddr string) *domain.ChatSession {
	sess := &domain.ChatSession{
		ID:           shortid.New(),
		Customer:     info,
		RemoteAddr:   remoteAddr,
		ConnectionID: connID,
		CreatedAt:    time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
	r.activity[sess.ID] = sess.CreatedAt
	return sess
}

// Get returns the live session for an id.
func (r *Registry) Get(id string) (*domain.ChatSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// Clone returns a point-in-time deep copy of a session, taken under the
// registry lock so a save snapshot can never observe a half-applied append.
func (r *Registry) Clone(id string) (domain.ChatSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return domain.ChatSession{}, false
	}
	return sess.Clone(), true
}

// AppendMessage appends a message to the session's log and stamps activity.
func (r *Registry) AppendMessage(id string, msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Messages = append(sess.Messages, msg)
	r.activity[id] = time.Now()
	return nil
}

// AssignAgent sets the session's agent only when currently unassigned and
// reports whether an assignment actually occurred. The agent field never
// transitions back or to a different name while the session is active.
func (r *Registry) AssignAgent(id, agentName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return false, ErrSessionNotFound
	}
	if sess.Agent != "" {
		return false, nil
	}
	sess.Agent = agentName
	return true, nil
}

// UpdateCustomerInfo merges non-empty fields into the stored customer info
// and returns a copy of the resulting session.
func (r *Registry) UpdateCustomerInfo(id string, partial domain.CustomerInfo) (domain.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return domain.ChatSession{}, ErrSessionNotFound
	}
	sess.Customer.Merge(partial)
	return sess.Clone(), nil
}

// Remove deletes the session and its activity timestamp. Idempotent.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	delete(r.activity, id)
}

// ListAll returns a snapshot of all active sessions.
func (r *Registry) ListAll() []domain.ChatSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ChatSession, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess.Clone())
	}
	return out
}

// Touch stamps the session's last-activity time to now. No-op for unknown
// ids.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; ok {
		r.activity[id] = time.Now()
	}
}

// LastActivity returns the recorded last-activity time for a session.
func (r *Registry) LastActivity(id string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ts, ok := r.activity[id]
	return ts, ok
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
