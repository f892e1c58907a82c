// README: Cron-driven sweep of expired in-memory sessions.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type sweeper interface {
	Sweep(now time.Time) int
}

// RunSweeper sweeps on the cron schedule (e.g. "@every 10m") until ctx is done.
func RunSweeper(ctx context.Context, spec string, store sweeper, log *zap.Logger) error {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(spec, func() {
		if n := store.Sweep(time.Now()); n > 0 {
			log.Debug("swept expired bookings", zap.Int("removed", n))
		}
	})
	if err != nil {
		return fmt.Errorf("sweeper spec %q: %w", spec, err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
