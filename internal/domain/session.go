// Package domain contains core domain types for the relay.
package domain

import (
	"time"
)

// Role identifies which side of a conversation sent a message.
type Role string

const (
	// RoleCustomer marks messages sent from the chat widget.
	RoleCustomer Role = "customer"
	// RoleAgent marks messages sent by a support agent.
	RoleAgent Role = "agent"
)

// CustomerInfo holds the identity fields a widget may report for its visitor.
// All fields are optional and may arrive incrementally.
type CustomerInfo struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Merge overwrites each field only when the incoming value is non-empty.
func (c *CustomerInfo) Merge(in CustomerInfo) {
	if in.ID != "" {
		c.ID = in.ID
	}
	if in.Name != "" {
		c.Name = in.Name
	}
	if in.Email != "" {
		c.Email = in.Email
	}
	if in.Phone != "" {
		c.Phone = in.Phone
	}
}

// Message is a single chat message. Immutable once appended to a session.
type Message struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Role    Role      `json:"role"`
	Sender  string    `json:"sender"`
	SentAt  time.Time `json:"sent_at"`
}

// ChatSession is one customer-to-agent conversation thread.
type ChatSession struct {
	ID           string       `json:"id"`
	Customer     CustomerInfo `json:"customer"`
	RemoteAddr   string       `json:"remote_addr"`
	ConnectionID string       `json:"connection_id"`
	Agent        string       `json:"agent,omitempty"`
	Messages     []Message    `json:"messages"`
	CreatedAt    time.Time    `json:"created_at"`
}

// HasAgent reports whether an agent has been assigned to the session.
func (s *ChatSession) HasAgent() bool {
	return s.Agent != ""
}

// LastMessageAt returns the timestamp of the most recent message,
// or the session creation time when no messages exist.
func (s *ChatSession) LastMessageAt() time.Time {
	if len(s.Messages) == 0 {
		return s.CreatedAt
	}
	return s.Messages[len(s.Messages)-1].SentAt
}

// MessagesAfter returns a copy of the messages strictly after the message
// with the given id, in sequence order. When the id is not present the full
// sequence is returned: an unrecognized reference means the caller has no
// usable position, so it gets everything.
func (s *ChatSession) MessagesAfter(lastID string) []Message {
	start := 0
	for i, m := range s.Messages {
		if m.ID == lastID {
			start = i + 1
			break
		}
	}
	out := make([]Message, len(s.Messages)-start)
	copy(out, s.Messages[start:])
	return out
}

// CustomerDisplayName returns the name to attribute customer messages to.
func (s *ChatSession) CustomerDisplayName() string {
	if s.Customer.Name != "" {
		return s.Customer.Name
	}
	return "Customer"
}

// Clone returns a deep copy of the session. The message slice is copied so
// later appends to the live session cannot alter the clone.
func (s *ChatSession) Clone() ChatSession {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}
