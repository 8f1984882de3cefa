// internal/segment/segment_test.go
package segment_test

import (
	"errors"
	"testing"

	"github.com/tamzrod/charger-bridge/internal/layout"
	"github.com/tamzrod/charger-bridge/internal/segment"
	"github.com/tamzrod/charger-bridge/internal/segment/segmenttest"
)

var (
	first  = layout.MustNew("first", layout.Uint16s("a", 3))
	second = layout.MustNew("second", layout.Uint8s("b", 3)) // 2 words
	third  = layout.MustNew("third", layout.Uint16("c"))
)

func TestReadAfter_ChainsAddress(t *testing.T) {
	mem := segmenttest.NewMemory()
	mem.Poke(0x100, 1, 2, 3, 0x0504, 0x0006, 7)

	s1, err := segment.Read(mem, segment.ReadHolding, first, 0x100)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	s2, err := segment.ReadAfter(mem, segment.ReadHolding, second, s1.Span)
	if err != nil {
		t.Fatalf("ReadAfter err=%v", err)
	}
	s3, err := segment.ReadAfter(mem, segment.ReadHolding, third, s2.Span)
	if err != nil {
		t.Fatalf("ReadAfter err=%v", err)
	}

	if s2.Base != 0x103 || s3.Base != 0x105 {
		t.Fatalf("chain bases: got=%#x,%#x want=0x103,0x105", s2.Base, s3.Base)
	}
	if b := s2.Values.Ints("b"); b[0] != 4 || b[1] != 5 || b[2] != 6 {
		t.Fatalf("second values: got=%v", b)
	}
	if s3.Values.Int("c") != 7 {
		t.Fatalf("third value: got=%d want=7", s3.Values.Int("c"))
	}

	calls := mem.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(calls))
	}
}

func TestReadChain_MatchesReadAfter(t *testing.T) {
	mem := segmenttest.NewMemory()

	segs, err := segment.ReadChain(mem, segment.ReadInput, 0x200, first, second, third)
	if err != nil {
		t.Fatalf("ReadChain err=%v", err)
	}

	want := []uint16{0x200, 0x203, 0x205}
	for i, s := range segs {
		if s.Base != want[i] {
			t.Fatalf("segment %d base: got=%#x want=%#x", i, s.Base, want[i])
		}
	}
	for _, c := range mem.Calls() {
		if c.FC != segment.ReadInput {
			t.Fatalf("function code: got=%d want=%d", c.FC, segment.ReadInput)
		}
	}
}

func TestWriteChain_EncodesAndChains(t *testing.T) {
	mem := segmenttest.NewMemory()

	w, err := segment.WriteChain(mem, 0x8C00,
		layout.NewValues(first).Set("a", 10, 11, 12),
		layout.NewValues(second).Set("b", 1, 2, 3),
	)
	if err != nil {
		t.Fatalf("WriteChain err=%v", err)
	}
	if len(w) != 2 || w[1].Base != 0x8C03 {
		t.Fatalf("unexpected chain: %+v", w)
	}

	got := mem.Peek(0x8C00, 5)
	want := []uint16{10, 11, 12, 0x0201, 0x0003}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reg %d: got=%#x want=%#x", i, got[i], want[i])
		}
	}
}

func TestRead_TransportFaultIsTyped(t *testing.T) {
	mem := segmenttest.NewMemory()
	mem.FailAfter = 1

	_, err := segment.Read(mem, segment.ReadHolding, first, 0)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !segment.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, segmenttest.ErrInjected) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWriteChain_NoRollbackOnPartialFailure(t *testing.T) {
	mem := segmenttest.NewMemory()
	mem.FailAfter = 2

	done, err := segment.WriteChain(mem, 0,
		layout.NewValues(first).Set("a", 1, 1, 1),
		layout.NewValues(third).Set("c", 9),
	)
	if !segment.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(done) != 1 {
		t.Fatalf("expected 1 completed write, got %d", len(done))
	}
	if got := mem.Peek(0, 1)[0]; got != 1 {
		t.Fatalf("first write should persist: got=%d", got)
	}
}
