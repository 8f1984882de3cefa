// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/charger-bridge/internal/model"
)

// PollResult is the outcome of one presence probe.
type PollResult struct {
	At   time.Time
	Info model.DeviceInfo // valid only when Err is nil
	Err  error            // non-nil means the probe failed after retries
}
