package services

import (
	"context"
	"time"

	"github.com/nimasrn/debt-ledger/pkg/logger"
)

type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) ([]string, error)
}

// PurgeSweeper runs the recycle bin purge on a fixed interval.
type PurgeSweeper struct {
	purger   Purger
	interval time.Duration
	now      func() time.Time
}

func NewPurgeSweeper(purger Purger, interval time.Duration) *PurgeSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PurgeSweeper{
		purger:   purger,
		interval: interval,
		now:      time.Now,
	}
}

// Sweep runs a single purge pass.
func (p *PurgeSweeper) Sweep(ctx context.Context) int {
	purged, err := p.purger.PurgeExpired(ctx, p.now())
	if err != nil {
		logger.Error("purge sweep failed", "error", err)
		return 0
	}
	return len(purged)
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (p *PurgeSweeper) Run(ctx context.Context) {
	logger.Info("purge sweeper started", "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("purge sweeper stopped")
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}
