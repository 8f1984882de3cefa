// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/charger-bridge/internal/config"
	"github.com/tamzrod/charger-bridge/internal/status"
)

// Build constructs a Poller from the monitor section.
// The client's lifecycle belongs to the caller.
func Build(m cfg.MonitorConfig, client Client, tracker *status.Tracker) (*Poller, error) {
	return New(
		Config{
			Interval: time.Duration(m.IntervalMs) * time.Millisecond,
		},
		client,
		tracker,
	)
}
