// internal/status/tracker.go
package status

import (
	"errors"
	"sync"

	"github.com/goburrow/modbus"
)

// Tracker owns the presence Snapshot. Transaction outcomes and a 1 Hz tick
// move it; readers get copies.
type Tracker struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewTracker starts in HealthUnknown with the given channel count.
func NewTracker(channelCount int) *Tracker {
	return &Tracker{snap: Snapshot{
		Health:       HealthUnknown,
		ChannelCount: channelCount,
	}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Presence returns the current presence payload.
func (t *Tracker) Presence() Presence {
	return Encode(t.Snapshot())
}

// Success records a completed transaction. It reports whether the charger
// was not connected before.
func (t *Tracker) Success() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	recovered := t.snap.Health != HealthOK

	t.snap.Health = HealthOK
	t.snap.LastErrorCode = 0
	t.snap.LastError = ""
	t.snap.SecondsInError = 0
	t.snap.ConsecutiveFailures = 0

	return recovered
}

// Failure records a transaction that failed at the transport. It reports
// whether the charger was connected before.
func (t *Tracker) Failure(err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	lost := t.snap.Health == HealthOK

	t.snap.Health = HealthError
	t.snap.LastErrorCode = errorCode(err)
	if err != nil {
		t.snap.LastError = err.Error()
	}
	t.snap.ConsecutiveFailures++

	return lost
}

// Tick advances SecondsInError while not OK. Call it once per second.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.Health != HealthOK && t.snap.SecondsInError < MaxSecondsInError {
		t.snap.SecondsInError++
	}
}

// errorCode extracts a best-effort code without assuming concrete types.
// Modbus exceptions report their exception code; anything else is generic.
func errorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		return uint16(mbErr.ExceptionCode)
	}

	type coder interface{ Code() uint16 }
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	return ErrorCodeGeneric
}
