// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run starts the ticker loop until ctx ends. Each probe result goes to out
// when out is non-nil. A second 1 Hz ticker ages the presence tracker.
// One goroutine. No overlap.
func (p *Poller) Run(ctx context.Context, out chan<- PollResult) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-secTicker.C:
			p.tracker.Tick()

		case <-ticker.C:
			res := p.PollOnce(ctx)
			if out == nil {
				continue
			}
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}
