// internal/comms/device_test.go
package comms

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/charger-bridge/internal/layout"
	"github.com/tamzrod/charger-bridge/internal/model"
	"github.com/tamzrod/charger-bridge/internal/segment"
	"github.com/tamzrod/charger-bridge/internal/segment/segmenttest"
)

// ---- simulated charger ----

// fakeCharger layers slot selection and flash commit on top of a flat
// register file: selecting a slot loads its flash copy into the RAM view at
// presetAddr, and a WriteMem order stores the RAM view back.
type fakeCharger struct {
	t        *testing.T
	mem      *segmenttest.Memory
	flash    map[int][]uint16
	selected int
}

func presetWords() uint16 {
	var n uint16
	for _, l := range model.PresetLayouts {
		n += l.Words()
	}
	return n
}

func newFakeCharger(t *testing.T) *fakeCharger {
	t.Helper()

	d := &fakeCharger{
		t:     t,
		mem:   segmenttest.NewMemory(),
		flash: make(map[int][]uint16),
	}
	d.mem.OnWrite = d.onWrite
	d.setIndex()
	return d
}

func (d *fakeCharger) onWrite(addr uint16, regs []uint16) {
	switch {
	case addr == selectAddr && len(regs) >= 1:
		d.selected = int(regs[0])
		words, ok := d.flash[d.selected]
		if !ok {
			words = make([]uint16, presetWords())
			words[0] = model.UseFlagEmpty
		}
		d.mem.Poke(presetAddr, words...)

	case addr == orderAddr && len(regs) >= 2 && regs[0] == OrderLock && Order(regs[1]) == OrderWriteMem:
		d.flash[d.selected] = d.mem.Peek(presetAddr, presetWords())
	}
}

func (d *fakeCharger) manager() *Manager {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(d.mem, log)
}

func (d *fakeCharger) encode(l *layout.Layout, v *layout.Values) []uint16 {
	d.t.Helper()
	regs, err := layout.Encode(l, v)
	if err != nil {
		d.t.Fatalf("encode %s: %v", l.Name(), err)
	}
	return regs
}

func (d *fakeCharger) putPreset(slot int, p model.Preset) {
	var words []uint16
	for i, v := range p.WriteValues() {
		words = append(words, d.encode(model.PresetLayouts[i], v)...)
	}
	d.flash[slot] = words
}

func (d *fakeCharger) preset(slot int) model.Preset {
	d.t.Helper()
	words := d.flash[slot]
	var parts []*layout.Values
	for _, l := range model.PresetLayouts {
		v, err := layout.Decode(l, words)
		if err != nil {
			d.t.Fatalf("decode slot %d: %v", slot, err)
		}
		parts = append(parts, v)
		words = words[l.Words():]
	}
	p, err := model.DecodePreset(slot, parts...)
	if err != nil {
		d.t.Fatalf("decode slot %d: %v", slot, err)
	}
	return p
}

func (d *fakeCharger) setIndex(slots ...int) {
	idx := model.NewPresetIndex()
	for i, s := range slots {
		idx.Indexes[i] = uint8(s)
	}
	idx.Count = len(slots)

	head, tail := idx.WriteValues()
	d.mem.Poke(presetIndexAddr, d.encode(model.PresetIndexHeadLayout, head)...)
	d.mem.Poke(presetIndexAddr+model.PresetIndexHeadLayout.Words(), d.encode(model.PresetIndexTailLayout, tail)...)
}

func (d *fakeCharger) index() model.PresetIndex {
	d.t.Helper()
	count, _ := layout.Decode(model.PresetCountLayout, d.mem.Peek(presetIndexAddr, 1))
	head, _ := layout.Decode(model.PresetHalfLayout, d.mem.Peek(presetIndexAddr+1, 16))
	tail, _ := layout.Decode(model.PresetHalfLayout, d.mem.Peek(presetIndexAddr+17, 16))
	idx, err := model.DecodePresetIndex(count, head, tail)
	if err != nil {
		d.t.Fatalf("decode index: %v", err)
	}
	return idx
}

func (d *fakeCharger) setStatus(ch1, ch2 uint16) {
	v := layout.NewValues(model.DeviceInfoLayout).
		Set("device_id", 64).
		SetString("device_sn", "4010DUO0001").
		Set("ch1_status", int64(ch1)).
		Set("ch2_status", int64(ch2))
	d.mem.Poke(deviceInfoAddr, d.encode(model.DeviceInfoLayout, v)...)
}

// ---- transaction log helpers ----

func writesAt(calls []segmenttest.Call, addr uint16) [][]uint16 {
	var out [][]uint16
	for _, c := range calls {
		if c.Write && c.Address == addr {
			out = append(out, c.Regs)
		}
	}
	return out
}

func countWrites(calls []segmenttest.Call, addr uint16, regs ...uint16) int {
	n := 0
	for _, w := range writesAt(calls, addr) {
		if equalRegs(w, regs) {
			n++
		}
	}
	return n
}

func equalRegs(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func writesInRange(calls []segmenttest.Call, from, to uint16) int {
	n := 0
	for _, c := range calls {
		if c.Write && c.Address >= from && c.Address < to {
			n++
		}
	}
	return n
}

func userPreset(name string) model.Preset {
	return model.Preset{
		UseFlag:       model.UseFlagUsed,
		Name:          name,
		Capacity:      2200,
		Type:          model.LiPo,
		LiCell:        4,
		ChargeCurrent: 220,
		CycleCount:    1,
	}
}

var _ segment.Registers = (*segmenttest.Memory)(nil)
