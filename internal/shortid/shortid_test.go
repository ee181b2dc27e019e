package shortid

import (
	"testing"
)

func TestNewReturnsDistinctIDs(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 10000; i++ {
		id := New()
		if id == "" {
			t.Fatal("expected non-empty id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewLength(t *testing.T) {
	t.Parallel()

	id := New()
	if len(id) != idBytes*2 {
		t.Fatalf("expected %d hex chars, got %d (%q)", idBytes*2, len(id), id)
	}
}
