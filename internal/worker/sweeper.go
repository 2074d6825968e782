package worker

// sweeper.go
// Background goroutine that force-closes past register days left open:
// days with recorded sales but no closed cash session report. Runs once at
// startup and then on a fixed interval.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// CashSweeper is the slice of the cash service the sweeper needs.
type CashSweeper interface {
	SweepStaleDays(ctx context.Context) (int, error)
}

// StartSweeper launches the auto-close goroutine. It sweeps immediately so a
// restart after downtime catches up without waiting a full interval, then
// ticks every interval. Respects the context for graceful shutdown.
func StartSweeper(ctx context.Context, cash CashSweeper, interval time.Duration) {
	go func() {
		log.Info().Dur("interval", interval).Msg("sweeper: started")

		sweep(ctx, cash)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sweeper: shutting down")
				return
			case <-ticker.C:
				sweep(ctx, cash)
			}
		}
	}()
}

func sweep(ctx context.Context, cash CashSweeper) {
	closed, err := cash.SweepStaleDays(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweeper: sweep failed")
		return
	}
	if closed > 0 {
		log.Info().Int("days_closed", closed).Msg("sweeper: stale days closed")
	}
}
