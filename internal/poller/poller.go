// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/charger-bridge/internal/comms"
	"github.com/tamzrod/charger-bridge/internal/model"
	"github.com/tamzrod/charger-bridge/internal/status"
)

// Client runs a charger conversation with exclusive access.
// *exclusive.Guard implements it.
type Client interface {
	Do(ctx context.Context, name string, fn func(m *comms.Manager) error) error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration
}

// Poller is a dumb, clock-driven presence probe. It reads the identity
// block so charger presence stays current between API requests.
type Poller struct {
	cfg     Config
	client  Client
	tracker *status.Tracker
}

// New creates a poller with immutable config.
func New(cfg Config, client Client, tracker *status.Tracker) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	if tracker == nil {
		return nil, errors.New("poller: tracker required")
	}
	return &Poller{cfg: cfg, client: client, tracker: tracker}, nil
}

// PollOnce performs exactly one probe.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{At: time.Now()}

	var info model.DeviceInfo
	err := p.client.Do(ctx, "presence probe", func(m *comms.Manager) error {
		var err error
		info, err = m.GetDeviceInfo()
		return err
	})
	if err != nil {
		res.Err = err
		return res
	}

	res.Info = info
	return res
}
