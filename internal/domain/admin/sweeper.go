package admin

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically removes expired sessions from stores that do not expire
// entries on their own. Redis-backed sessions carry a TTL and need no sweeper.
type Sweeper struct {
	store    ExpiringStore
	interval time.Duration
	now      func() time.Time
}

// NewSweeper creates a new session sweeper.
func NewSweeper(store ExpiringStore, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the sweep loop. It blocks until the context is cancelled.
// Should be called in a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("session sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep performs one cycle.
func (s *Sweeper) sweep(ctx context.Context) int {
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		slog.Error("session sweeper: failed to delete expired sessions", "error", err)
		return 0
	}

	if removed > 0 {
		slog.Info("session sweeper: sweep complete", "removed", removed)
	}
	return removed
}
