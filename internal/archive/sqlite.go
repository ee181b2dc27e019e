package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/livedesk/relay/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the local durable fallback. Saves are append-only rows
// keyed by session id and write timestamp, so repeated saves of the same
// session never overwrite an earlier snapshot.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the fallback database.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode so a save never blocks behind a status read.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS session_archive (
		session_id TEXT NOT NULL,
		saved_at INTEGER NOT NULL,
		status TEXT NOT NULL,
		agent TEXT,
		record TEXT NOT NULL,
		PRIMARY KEY (session_id, saved_at)
	);
	CREATE INDEX IF NOT EXISTS idx_session_archive_saved ON session_archive(saved_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save appends the record. The write timestamp in the key uses nanosecond
// resolution so back-to-back saves of one session stay distinct rows.
// SQLITE_BUSY conflicts are retried with exponential backoff; losing a
// fallback snapshot to a transient lock would defeat its purpose.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode archive record: %w", err)
	}

	var agent any
	if rec.Agent != nil {
		agent = *rec.Agent
	}

	query := `
	INSERT INTO session_archive (session_id, saved_at, status, agent, record)
	VALUES (?, ?, ?, ?, ?)`

	maxRetries := 3
	baseDelay := 100 * time.Millisecond
	for i := 0; i < maxRetries; i++ {
		_, err = s.db.ExecContext(ctx, query,
			rec.SessionID, time.Now().UnixNano(), rec.Status, agent, string(payload),
		)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxRetries-1 {
			break
		}
		delay := baseDelay * time.Duration(1<<i)
		slog.Debug("fallback write hit a locked database, retrying",
			"session_id", rec.SessionID, "attempt", i+1, "delay", delay)
		time.Sleep(delay)
	}
	return fmt.Errorf("insert archive record: %w", err)
}

// SavedCount returns the number of archived snapshots for a session.
func (s *SQLiteStore) SavedCount(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_archive WHERE session_id = ?`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count archive records: %w", err)
	}
	return n, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
