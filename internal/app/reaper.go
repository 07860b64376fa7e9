package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emolinam31/Tickio/internal/clock"
	"github.com/emolinam31/Tickio/internal/metrics"
)

type expiredHoldDeleter interface {
	DeleteExpiredHolds(ctx context.Context, now time.Time) (int64, error)
}

// Reaper physically deletes expired holds on a fixed interval. Every reader
// already filters on expires_at > now, so a missed or delayed sweep can only
// cause storage bloat, never wrong availability. Failures are logged and
// retried on the next tick.
type Reaper struct {
	repo     expiredHoldDeleter
	clock    clock.Clock
	interval time.Duration
	log      *logrus.Logger
	metrics  *metrics.Metrics
}

func NewReaper(repo expiredHoldDeleter, clk clock.Clock, interval time.Duration, log *logrus.Logger, m *metrics.Metrics) *Reaper {
	return &Reaper{
		repo:     repo,
		clock:    clk,
		interval: interval,
		log:      log,
		metrics:  m,
	}
}

// Start blocks until ctx is done, sweeping once per interval.
func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.WithField("interval", r.interval.String()).Info("hold reaper started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info("hold reaper stopped")
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick performs one sweep.
func (r *Reaper) Tick(ctx context.Context) {
	deleted, err := r.repo.DeleteExpiredHolds(ctx, r.clock.Now())
	if err != nil {
		r.log.WithError(err).Error("failed to delete expired holds")
		return
	}
	if deleted > 0 {
		if r.metrics != nil {
			r.metrics.HoldsReaped.Add(float64(deleted))
		}
		r.log.WithField("count", deleted).Info("expired holds deleted")
	}
}
