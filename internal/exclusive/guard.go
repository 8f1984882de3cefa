// internal/exclusive/guard.go

// Package exclusive serializes every charger conversation behind one lock
// and retries conversations that fail at the transport.
package exclusive

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/charger-bridge/internal/comms"
	"github.com/tamzrod/charger-bridge/internal/segment"
	"github.com/tamzrod/charger-bridge/internal/status"
)

// ErrRetriesExhausted wraps the last transport error once Limit attempts failed.
var ErrRetriesExhausted = errors.New("exclusive: retries exhausted")

type Config struct {
	Limit    int
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Guard owns the Manager. Nothing else may call it.
type Guard struct {
	mu      sync.Mutex
	mgr     *comms.Manager
	cfg     Config
	tracker *status.Tracker
	log     logrus.FieldLogger
}

func New(mgr *comms.Manager, cfg Config, tracker *status.Tracker, log logrus.FieldLogger) (*Guard, error) {
	if mgr == nil {
		return nil, errors.New("exclusive: manager required")
	}
	if cfg.Limit < 1 {
		return nil, errors.New("exclusive: retry limit must be >= 1")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Guard{mgr: mgr, cfg: cfg, tracker: tracker, log: log}, nil
}

// Do runs fn with exclusive use of the charger. A transport error resets
// the transport and reruns fn from the start, up to Limit attempts.
// Any other error returns at once. ctx only bounds the waits between
// attempts; a running conversation is never interrupted.
func (g *Guard) Do(ctx context.Context, name string, fn func(m *comms.Manager) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := &backoff.Backoff{
		Min:    g.cfg.MinDelay,
		Max:    g.cfg.MaxDelay,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = fn(g.mgr)
		if err == nil {
			g.success(name, attempt)
			return nil
		}
		if !segment.IsTransport(err) {
			// The charger answered; it is present.
			g.success(name, attempt)
			return err
		}

		g.failure(name, attempt, err)
		if attempt >= g.cfg.Limit {
			break
		}

		if rerr := g.mgr.Reset(); rerr != nil {
			g.log.WithError(rerr).WithField("op", name).Warn("transport reset failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}

	return errors.Join(ErrRetriesExhausted, err)
}

func (g *Guard) success(name string, attempt int) {
	if g.tracker != nil && g.tracker.Success() {
		g.log.WithFields(logrus.Fields{"op": name, "attempt": attempt}).Info("charger connected")
	}
}

func (g *Guard) failure(name string, attempt int, err error) {
	entry := g.log.WithError(err).WithFields(logrus.Fields{
		"op":      name,
		"attempt": attempt,
		"limit":   g.cfg.Limit,
	})
	if g.tracker != nil && g.tracker.Failure(err) {
		entry.Warn("charger disconnected")
		return
	}
	entry.Debug("transport error")
}
