// internal/exclusive/guard_test.go
package exclusive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/charger-bridge/internal/comms"
	"github.com/tamzrod/charger-bridge/internal/model"
	"github.com/tamzrod/charger-bridge/internal/segment"
	"github.com/tamzrod/charger-bridge/internal/segment/segmenttest"
	"github.com/tamzrod/charger-bridge/internal/status"
)

func quietLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newGuard(t *testing.T, limit int) (*Guard, *segmenttest.Memory, *status.Tracker) {
	t.Helper()

	mem := segmenttest.NewMemory()
	tr := status.NewTracker(model.ChannelCount)
	g, err := New(comms.New(mem, quietLog()), Config{
		Limit:    limit,
		MinDelay: time.Millisecond,
		MaxDelay: 2 * time.Millisecond,
	}, tr, quietLog())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return g, mem, tr
}

func transportErr() error {
	return &segment.TransportError{Op: "read", Address: 0, Quantity: 13, Err: errors.New("timeout")}
}

func TestDo_Success(t *testing.T) {
	g, mem, tr := newGuard(t, 3)

	calls := 0
	err := g.Do(context.Background(), "probe", func(m *comms.Manager) error {
		calls++
		_, err := m.GetDeviceInfo()
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || mem.Resets() != 0 {
		t.Fatalf("calls=%d resets=%d", calls, mem.Resets())
	}
	if tr.Presence().ChargerPresence != status.PresenceConnected {
		t.Fatalf("expected connected")
	}
}

func TestDo_RetriesTransportThenSucceeds(t *testing.T) {
	g, mem, tr := newGuard(t, 5)

	calls := 0
	err := g.Do(context.Background(), "probe", func(m *comms.Manager) error {
		calls++
		if calls < 3 {
			return transportErr()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if mem.Resets() != 2 {
		t.Fatalf("expected 2 resets, got %d", mem.Resets())
	}
	if !tr.Snapshot().Connected() {
		t.Fatalf("expected connected after recovery")
	}
}

func TestDo_BusinessErrorNotRetried(t *testing.T) {
	g, mem, tr := newGuard(t, 5)

	calls := 0
	err := g.Do(context.Background(), "get preset", func(m *comms.Manager) error {
		calls++
		return fmt.Errorf("%w: slot 9", model.ErrNotFound)
	})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls != 1 || mem.Resets() != 0 {
		t.Fatalf("calls=%d resets=%d", calls, mem.Resets())
	}
	if !tr.Snapshot().Connected() {
		t.Fatalf("a business error still means the charger answered")
	}
}

func TestDo_LimitExhausted(t *testing.T) {
	g, mem, tr := newGuard(t, 3)

	calls := 0
	err := g.Do(context.Background(), "probe", func(m *comms.Manager) error {
		calls++
		return transportErr()
	})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if !segment.IsTransport(err) {
		t.Fatalf("expected the transport error to stay visible, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if mem.Resets() != 2 {
		t.Fatalf("expected 2 resets, got %d", mem.Resets())
	}

	s := tr.Snapshot()
	if s.Connected() || s.ConsecutiveFailures != 3 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
}

func TestDo_ContextCancelStopsWaiting(t *testing.T) {
	mem := segmenttest.NewMemory()
	g, err := New(comms.New(mem, quietLog()), Config{
		Limit:    10,
		MinDelay: time.Hour,
		MaxDelay: time.Hour,
	}, nil, quietLog())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err = g.Do(ctx, "probe", func(m *comms.Manager) error {
		calls++
		cancel()
		return transportErr()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
}

func TestDo_Exclusive(t *testing.T) {
	g, _, _ := newGuard(t, 1)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Do(context.Background(), "probe", func(m *comms.Manager) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					cur := atomic.LoadInt32(&maxInside)
					if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("expected one caller inside at a time, saw %d", maxInside)
	}
}

func TestNew_Rejects(t *testing.T) {
	mgr := comms.New(segmenttest.NewMemory(), quietLog())

	if _, err := New(nil, Config{Limit: 1}, nil, nil); err == nil {
		t.Fatalf("expected error for nil manager")
	}
	if _, err := New(mgr, Config{Limit: 0}, nil, nil); err == nil {
		t.Fatalf("expected error for zero limit")
	}
}
