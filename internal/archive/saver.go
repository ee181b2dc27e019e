package archive

import (
	"context"
	"fmt"
	"log/slog"
)

// Saver performs one durable save per trigger: remote store first, local
// fallback on any remote failure. A snapshot is never silently dropped;
// failure is reported only when the fallback write fails too.
type Saver struct {
	remote   Store // nil when no remote endpoint is configured
	fallback Store
}

// NewSaver creates a saver. remote may be nil; every save then goes
// straight to the fallback.
func NewSaver(remote, fallback Store) *Saver {
	return &Saver{remote: remote, fallback: fallback}
}

// Save writes the record remotely, falling back to the local store when the
// remote write fails or no remote is configured.
func (s *Saver) Save(ctx context.Context, rec Record) error {
	var remoteErr error
	if s.remote == nil {
		remoteErr = fmt.Errorf("no remote archive configured")
	} else {
		remoteErr = s.remote.Save(ctx, rec)
		if remoteErr == nil {
			slog.Info("session archived", "session_id", rec.SessionID, "status", rec.Status, "messages", len(rec.Messages))
			return nil
		}
	}

	slog.Warn("remote archive failed, writing local fallback", "session_id", rec.SessionID, "error", remoteErr)

	if err := s.fallback.Save(ctx, rec); err != nil {
		return fmt.Errorf("fallback archive for session %s: %w (remote: %v)", rec.SessionID, err, remoteErr)
	}
	slog.Info("session archived to fallback", "session_id", rec.SessionID, "status", rec.Status, "messages", len(rec.Messages))
	return nil
}
