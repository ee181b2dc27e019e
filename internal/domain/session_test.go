package domain

import (
	"testing"
	"time"
)

func testSession() *ChatSession {
	return &ChatSession{
		ID:        "s1",
		CreatedAt: time.Now(),
		Messages: []Message{
			{ID: "m1", Content: "hello", Role: RoleCustomer, SentAt: time.Now()},
			{ID: "m2", Content: "hi", Role: RoleAgent, SentAt: time.Now()},
			{ID: "m3", Content: "thanks", Role: RoleCustomer, SentAt: time.Now()},
		},
	}
}

func TestMessagesAfter(t *testing.T) {
	t.Parallel()

	sess := testSession()

	got := sess.MessagesAfter("m1")
	if len(got) != 2 || got[0].ID != "m2" || got[1].ID != "m3" {
		t.Fatalf("MessagesAfter(m1) = %v, want [m2 m3]", got)
	}

	if got := sess.MessagesAfter("m3"); len(got) != 0 {
		t.Fatalf("MessagesAfter(m3) = %v, want empty", got)
	}
}

func TestMessagesAfterUnknownIDReturnsFullSequence(t *testing.T) {
	t.Parallel()

	sess := testSession()
	got := sess.MessagesAfter("no-such-id")
	if len(got) != 3 {
		t.Fatalf("expected full sequence for unknown reference id, got %d messages", len(got))
	}
}

func TestCustomerInfoMergeKeepsStoredFieldsOnEmptyInput(t *testing.T) {
	t.Parallel()

	info := CustomerInfo{ID: "c1", Name: "Alice", Email: "alice@example.com"}
	info.Merge(CustomerInfo{Name: "Alice Smith", Phone: "555-0100"})

	if info.ID != "c1" {
		t.Errorf("ID overwritten: %q", info.ID)
	}
	if info.Name != "Alice Smith" {
		t.Errorf("Name not updated: %q", info.Name)
	}
	if info.Email != "alice@example.com" {
		t.Errorf("Email overwritten by empty value: %q", info.Email)
	}
	if info.Phone != "555-0100" {
		t.Errorf("Phone not set: %q", info.Phone)
	}
}

func TestCloneIsIndependentOfLaterAppends(t *testing.T) {
	t.Parallel()

	sess := testSession()
	clone := sess.Clone()

	sess.Messages = append(sess.Messages, Message{ID: "m4", Content: "late"})
	sess.Messages[0].Content = "mutated"

	if len(clone.Messages) != 3 {
		t.Fatalf("clone grew with the live session: %d messages", len(clone.Messages))
	}
	if clone.Messages[0].Content != "hello" {
		t.Fatalf("clone observed mutation of the live session: %q", clone.Messages[0].Content)
	}
}

func TestLastMessageAt(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sess := &ChatSession{ID: "s1", CreatedAt: created}
	if got := sess.LastMessageAt(); !got.Equal(created) {
		t.Fatalf("empty session should report creation time, got %v", got)
	}

	last := created.Add(5 * time.Minute)
	sess.Messages = []Message{
		{ID: "m1", SentAt: created.Add(time.Minute)},
		{ID: "m2", SentAt: last},
	}
	if got := sess.LastMessageAt(); !got.Equal(last) {
		t.Fatalf("LastMessageAt = %v, want %v", got, last)
	}
}

func TestCustomerDisplayName(t *testing.T) {
	t.Parallel()

	sess := &ChatSession{}
	if got := sess.CustomerDisplayName(); got != "Customer" {
		t.Fatalf("expected fallback display name, got %q", got)
	}
	sess.Customer.Name = "Alice"
	if got := sess.CustomerDisplayName(); got != "Alice" {
		t.Fatalf("expected customer name, got %q", got)
	}
}
