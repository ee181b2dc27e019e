package archive

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/livedesk/relay/internal/registry"
)

const saveTimeout = 15 * time.Second

// Scheduler debounces per-session auto-saves and runs the periodic sweep.
// It references sessions only by id; the registry stays the exclusive owner.
//
// Each agent-assigned session moves Idle -> TimerArmed on activity; the
// timer either fires a save or is replaced by the next activity update.
// The sweep is intentionally redundant with the timers: armed timers are
// lost on restart, the sweep is not.
type Scheduler struct {
	reg   *registry.Registry
	saver *Saver
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler creates a scheduler with the configured inactivity delay.
func NewScheduler(reg *registry.Registry, saver *Saver, delay time.Duration) *Scheduler {
	return &Scheduler{
		reg:    reg,
		saver:  saver,
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Activity rearms the session's inactivity timer. Callers invoke this only
// for agent-assigned sessions; unassigned conversations are never
// auto-saved.
func (s *Scheduler) Activity(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
	}
	s.timers[sessionID] = time.AfterFunc(s.delay, func() {
		s.fire(sessionID)
	})
}

// Cancel drops any pending inactivity timer for the session.
func (s *Scheduler) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

// fire runs on timer expiry. The session is re-checked at fire time: it may
// have been removed, or may never have reached save-worthy state. A
// successful save re-stamps the session's activity so the sweep does not
// re-archive the idle window the timer already covered.
func (s *Scheduler) fire(sessionID string) {
	s.mu.Lock()
	delete(s.timers, sessionID)
	s.mu.Unlock()

	sess, ok := s.reg.Clone(sessionID)
	if !ok || !sess.HasAgent() || len(sess.Messages) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.saver.Save(ctx, Snapshot(sess)); err != nil {
		slog.Error("inactivity save failed", "session_id", sessionID, "error", err)
		return
	}
	s.reg.Touch(sessionID)
}

// SaveNow persists the session immediately, regardless of timer state.
// The snapshot is taken before any I/O, so messages appended during the
// write never leak into it.
func (s *Scheduler) SaveNow(ctx context.Context, sessionID string) error {
	sess, ok := s.reg.Clone(sessionID)
	if !ok {
		return registry.ErrSessionNotFound
	}
	return s.saver.Save(ctx, Snapshot(sess))
}

// StartSweep runs the periodic safety-net pass until ctx is done.
func (s *Scheduler) StartSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("archive sweep started", "interval", interval, "inactivity_delay", s.delay)

		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-ctx.Done():
				slog.Info("archive sweep shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// sweep persists every agent-assigned session idle past the inactivity
// threshold, then stamps its activity to now to prevent an immediate
// re-trigger on the next pass.
func (s *Scheduler) sweep(ctx context.Context) {
	now := time.Now()
	saved := 0
	for _, sess := range s.reg.ListAll() {
		if !sess.HasAgent() || len(sess.Messages) == 0 {
			continue
		}
		last, ok := s.reg.LastActivity(sess.ID)
		if !ok || now.Sub(last) <= s.delay {
			continue
		}

		if err := s.saver.Save(ctx, Snapshot(sess)); err != nil {
			slog.Error("sweep save failed", "session_id", sess.ID, "error", err)
			continue
		}
		s.reg.Touch(sess.ID)
		saved++
	}
	if saved > 0 {
		slog.Info("archive sweep completed", "saved", saved)
	}
}
