// internal/comms/manager.go
package comms

import (
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/charger-bridge/internal/segment"
)

// Transport is the register transport plus reconnect.
type Transport interface {
	segment.Registers
	Reset() error
}

// Manager translates between device registers and the domain model.
//
// It holds no decoded state: every result is built from registers read
// during the call. Methods are not safe for concurrent use; callers must
// hold one process-wide guard for the full duration of each call.
type Manager struct {
	regs Transport
	log  logrus.FieldLogger
}

func New(t Transport, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{regs: t, log: log}
}

// Reset reconnects the transport.
func (m *Manager) Reset() error {
	if err := m.regs.Reset(); err != nil {
		return &segment.TransportError{Op: "reset", Err: err}
	}
	return nil
}

// ---- order lock ----

// withOrderLock takes the lock, runs fn, and clears the lock on every
// path once it was taken.
func (m *Manager) withOrderLock(reason string, fn func() error) (err error) {
	m.log.WithField("reason", reason).Info("taking out order lock")

	if _, err := segment.WriteWords(m.regs, orderAddr, OrderLock); err != nil {
		return err
	}

	defer func() {
		if _, rerr := segment.WriteWords(m.regs, orderAddr, 0); rerr != nil {
			if err == nil {
				err = rerr
				return
			}
			m.log.WithError(rerr).WithField("reason", reason).Warn("order lock release failed")
		}
	}()

	return fn()
}

// commit issues a flash/system order at the order register.
func (m *Manager) commit(reason string, order Order) error {
	return m.withOrderLock(reason, func() error {
		_, err := segment.WriteWords(m.regs, orderAddr, OrderLock, uint16(order), 0, 0)
		return err
	})
}
