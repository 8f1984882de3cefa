// internal/segment/segmenttest/memory.go

// Package segmenttest provides an in-memory register file for tests.
package segmenttest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tamzrod/charger-bridge/internal/segment"
)

// Call records one transaction.
type Call struct {
	Write   bool
	FC      segment.FunctionCode
	Address uint16
	Regs    []uint16 // written registers; read quantity is len(Regs) for reads
}

// Memory is a flat register file that echoes writes back on reads.
// Holding and input tables share one address space.
type Memory struct {
	mu    sync.Mutex
	regs  map[uint16]uint16
	calls []Call

	// FailAfter, when > 0, makes the n-th and later transactions fail.
	FailAfter int
	// FailOn, when set, fails any transaction it returns an error for.
	FailOn func(c Call) error
	// OnWrite runs after every successful write, under no lock.
	OnWrite func(addr uint16, regs []uint16)

	resets int
}

// ErrInjected is returned by transactions past FailAfter.
var ErrInjected = errors.New("segmenttest: injected failure")

func NewMemory() *Memory {
	return &Memory{regs: make(map[uint16]uint16)}
}

// Poke sets registers without recording a call.
func (m *Memory) Poke(addr uint16, regs ...uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range regs {
		m.regs[addr+uint16(i)] = r
	}
}

// Peek reads registers without recording a call.
func (m *Memory) Peek(addr, qty uint16) []uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint16, qty)
	for i := range out {
		out[i] = m.regs[addr+uint16(i)]
	}
	return out
}

func (m *Memory) ReadRegisters(fc segment.FunctionCode, addr, qty uint16) ([]uint16, error) {
	m.mu.Lock()
	if err := m.fail(Call{FC: fc, Address: addr, Regs: make([]uint16, qty)}); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	out := make([]uint16, qty)
	for i := range out {
		out[i] = m.regs[addr+uint16(i)]
	}
	m.calls = append(m.calls, Call{FC: fc, Address: addr, Regs: append([]uint16(nil), out...)})
	m.mu.Unlock()
	return out, nil
}

func (m *Memory) WriteRegisters(addr uint16, regs []uint16) (segment.Ack, error) {
	m.mu.Lock()
	if err := m.fail(Call{Write: true, Address: addr, Regs: regs}); err != nil {
		m.mu.Unlock()
		return segment.Ack{}, err
	}
	for i, r := range regs {
		m.regs[addr+uint16(i)] = r
	}
	m.calls = append(m.calls, Call{Write: true, Address: addr, Regs: append([]uint16(nil), regs...)})
	hook := m.OnWrite
	m.mu.Unlock()

	if hook != nil {
		hook(addr, regs)
	}
	return segment.Ack{Address: addr, Quantity: uint16(len(regs))}, nil
}

func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	return nil
}

func (m *Memory) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

// Calls returns the transaction log.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Writes returns only the write transactions.
func (m *Memory) Writes() []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Write {
			out = append(out, c)
		}
	}
	return out
}

// ClearCalls empties the transaction log.
func (m *Memory) ClearCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *Memory) fail(c Call) error {
	if m.FailOn != nil {
		if err := m.FailOn(c); err != nil {
			return err
		}
	}
	if m.FailAfter > 0 && len(m.calls)+1 >= m.FailAfter {
		return fmt.Errorf("%w at transaction %d", ErrInjected, len(m.calls)+1)
	}
	return nil
}
