package archive

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteSaveIsAppendOnly(t *testing.T) {
	t.Parallel()

	store, err := NewSQLite(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	rec := testRecord()
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	n, err := store.SavedCount(context.Background(), rec.SessionID)
	if err != nil {
		t.Fatalf("SavedCount failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 archived snapshots, got %d", n)
	}

	n, err = store.SavedCount(context.Background(), "other")
	if err != nil {
		t.Fatalf("SavedCount failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 snapshots for unrelated session, got %d", n)
	}
}

func TestSQLiteSavePendingRecord(t *testing.T) {
	t.Parallel()

	store, err := NewSQLite(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	rec := testRecord()
	rec.Agent = nil
	rec.Status = StatusPending
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save with nil agent failed: %v", err)
	}
}
