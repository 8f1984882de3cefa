// internal/segment/segment.go
package segment

import (
	"errors"
	"fmt"

	"github.com/tamzrod/charger-bridge/internal/layout"
)

// FunctionCode selects the register table a read targets.
type FunctionCode uint8

const (
	ReadHolding FunctionCode = 3
	ReadInput   FunctionCode = 4
)

// Ack is the device acknowledgment of a multi-register write.
type Ack struct {
	Address  uint16 `json:"address"`
	Quantity uint16 `json:"quantity"`
}

// Registers is the blocking register transport segments run on.
// Implementations do not retry.
type Registers interface {
	ReadRegisters(fc FunctionCode, addr, qty uint16) ([]uint16, error)
	WriteRegisters(addr uint16, regs []uint16) (Ack, error)
}

// Span is the address geometry of one completed transaction.
type Span struct {
	Base  uint16
	Words uint16
}

// Next is the address immediately after the span.
func (s Span) Next() uint16 { return s.Base + s.Words }

// Segment is one decoded read.
type Segment struct {
	Span
	Values *layout.Values
}

// Written is one encoded write.
type Written struct {
	Span
	Ack Ack
}

// ---- reads ----

// Read performs exactly one read of l at addr.
func Read(r Registers, fc FunctionCode, l *layout.Layout, addr uint16) (Segment, error) {
	qty := l.Words()

	regs, err := r.ReadRegisters(fc, addr, qty)
	if err != nil {
		return Segment{}, &TransportError{Op: "read", Address: addr, Quantity: qty, Err: err}
	}
	if len(regs) < int(qty) {
		return Segment{}, &TransportError{
			Op: "read", Address: addr, Quantity: qty,
			Err: fmt.Errorf("short response: got %d registers", len(regs)),
		}
	}

	v, err := layout.Decode(l, regs)
	if err != nil {
		return Segment{}, err
	}

	return Segment{Span: Span{Base: addr, Words: qty}, Values: v}, nil
}

// ReadAfter reads l at the address following prev.
func ReadAfter(r Registers, fc FunctionCode, l *layout.Layout, prev Span) (Segment, error) {
	return Read(r, fc, l, prev.Next())
}

// ReadChain reads each layout back to back starting at addr.
// The first failure aborts the chain.
func ReadChain(r Registers, fc FunctionCode, addr uint16, ls ...*layout.Layout) ([]Segment, error) {
	out := make([]Segment, 0, len(ls))
	next := addr
	for _, l := range ls {
		seg, err := Read(r, fc, l, next)
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
		next = seg.Next()
	}
	return out, nil
}

// ---- writes ----

// Write encodes v and performs exactly one write at addr.
func Write(r Registers, v *layout.Values, addr uint16) (Written, error) {
	l := v.Layout()

	regs, err := layout.Encode(l, v)
	if err != nil {
		return Written{}, err
	}

	ack, err := WriteWords(r, addr, regs...)
	if err != nil {
		return Written{}, err
	}

	return Written{Span: Span{Base: addr, Words: l.Words()}, Ack: ack}, nil
}

// WriteAfter writes v at the address following prev.
func WriteAfter(r Registers, v *layout.Values, prev Span) (Written, error) {
	return Write(r, v, prev.Next())
}

// WriteChain writes each value set back to back starting at addr.
// Earlier writes are not undone when a later one fails.
func WriteChain(r Registers, addr uint16, vs ...*layout.Values) ([]Written, error) {
	out := make([]Written, 0, len(vs))
	next := addr
	for _, v := range vs {
		w, err := Write(r, v, next)
		if err != nil {
			return out, err
		}
		out = append(out, w)
		next = w.Next()
	}
	return out, nil
}

// WriteWords writes raw registers at addr.
func WriteWords(r Registers, addr uint16, regs ...uint16) (Ack, error) {
	qty := uint16(len(regs))
	if qty == 0 {
		return Ack{}, errors.New("segment: empty write")
	}

	ack, err := r.WriteRegisters(addr, regs)
	if err != nil {
		return Ack{}, &TransportError{Op: "write", Address: addr, Quantity: qty, Err: err}
	}
	return ack, nil
}
