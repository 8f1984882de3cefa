// internal/model/model_test.go
package model

import (
	"errors"
	"testing"

	"github.com/tamzrod/charger-bridge/internal/layout"
)

// ---- device status ----

func TestDeviceStatus_Flags(t *testing.T) {
	s := NewDeviceStatus(5)
	if !s.Run || s.Err || !s.DlgBoxStatus {
		t.Fatalf("unexpected flags for 5: %+v", s)
	}
	if !s.NeedsDialogClose() {
		t.Fatalf("dialog flag should require close")
	}
}

func TestDeviceStatus_Validate(t *testing.T) {
	for _, v := range []uint16{0, 0x40, 0x7F} {
		if err := NewDeviceStatus(v).Validate(); err != nil {
			t.Fatalf("value %#x: unexpected error: %v", v, err)
		}
	}
	if err := NewDeviceStatus(0xFF).Validate(); err == nil {
		t.Fatalf("value 0xff: expected error, got nil")
	}
}

func TestClampChannel(t *testing.T) {
	cases := map[int]int{-3: 0, 0: 0, 1: 1, 7: 1}
	for in, want := range cases {
		if got := ClampChannel(in); got != want {
			t.Fatalf("ClampChannel(%d): got=%d want=%d", in, got, want)
		}
	}
}

// ---- channel status ----

func TestDecodeChannelStatus(t *testing.T) {
	volts := layout.NewValues(CellVoltageLayout).Set("cells", 4200, 4190)
	bal := layout.NewValues(CellBalanceLayout).Set("cells", 1)
	ir := layout.NewValues(CellIRLayout).Set("cells", 30, 31)
	header := layout.NewValues(ChannelHeaderLayout).Set("output_voltage", 8390)
	footer := layout.NewValues(ChannelFooterLayout).Set("dlg_box_id", 3)

	cs, err := DecodeChannelStatus(1, header, volts, bal, ir, footer)
	if err != nil {
		t.Fatalf("DecodeChannelStatus err=%v", err)
	}
	if cs.Channel != 1 || cs.OutputVoltage != 8390 || cs.DialogBoxID != 3 {
		t.Fatalf("unexpected status: %+v", cs)
	}
	if len(cs.CellVoltage) != CellCount || cs.CellVoltage[1] != 4190 || cs.CellBalance[0] != 1 || cs.CellIR[1] != 31 {
		t.Fatalf("unexpected cells: %+v", cs)
	}

	if _, err := DecodeChannelStatus(2, header, volts, bal, ir, footer); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("channel 2: expected ErrBadRequest, got %v", err)
	}
}

// ---- system storage ----

func TestSystemChunks_MirrorConsistent(t *testing.T) {
	var next uint16
	for _, c := range SystemReadChunks {
		if c.Offset != next {
			t.Fatalf("read chunk %s at %d, want %d", c.Layout.Name(), c.Offset, next)
		}
		next += c.Layout.Words()
	}
	readEnd := next

	next = 0
	for _, c := range SystemWriteChunks {
		if c.Offset != next {
			t.Fatalf("write chunk %s at %d, want %d", c.Layout.Name(), c.Offset, next)
		}
		next += c.Layout.Words()
	}
	if next != readEnd {
		t.Fatalf("write coverage %d != read coverage %d", next, readEnd)
	}

	// every field sits at the same record offset in both tables
	offsets := func(chunks []Chunk) map[string]uint16 {
		out := map[string]uint16{}
		for _, c := range chunks {
			for _, f := range c.Layout.Fields() {
				off, err := c.Layout.WordOffset(f.Name)
				if err != nil {
					t.Fatalf("WordOffset(%s): %v", f.Name, err)
				}
				out[f.Name] = c.Offset + off
			}
		}
		return out
	}
	r, w := offsets(SystemReadChunks), offsets(SystemWriteChunks)
	if len(r) != len(w) {
		t.Fatalf("field count: read=%d write=%d", len(r), len(w))
	}
	for name, off := range r {
		if w[name] != off {
			t.Fatalf("field %s: read offset %d, write offset %d", name, off, w[name])
		}
	}

	if BeepChunk.Offset != 13 || BeepChunk.Layout.Words() != 8 {
		t.Fatalf("beep chunk: offset=%d words=%d", BeepChunk.Offset, BeepChunk.Layout.Words())
	}
}

func TestBeepBlock_SetOnlyTarget(t *testing.T) {
	b := BeepBlock{
		Enabled: [BeepChannels]uint16{1, 1, 1, 1},
		Volume:  [BeepChannels]uint16{3, 3, 3, 3},
	}
	if err := b.Set(2, Beep{Enabled: false, Volume: 9}); err != nil {
		t.Fatalf("Set err=%v", err)
	}
	if b.Enabled != [BeepChannels]uint16{1, 1, 0, 1} || b.Volume != [BeepChannels]uint16{3, 3, 9, 3} {
		t.Fatalf("unexpected block: %+v", b)
	}
	if err := b.Set(4, Beep{}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("index 4: expected ErrBadRequest, got %v", err)
	}
}

// ---- preset index ----

func fullIndex() PresetIndex {
	p := NewPresetIndex()
	p.Count = MaxPresets
	for i := range p.Indexes {
		p.Indexes[i] = uint8(i)
	}
	return p
}

func TestPresetIndex_FullHasNoEmptySlot(t *testing.T) {
	p := fullIndex()
	if p.NumberOfPresets() != MaxPresets {
		t.Fatalf("count: got=%d", p.NumberOfPresets())
	}
	if _, ok := p.FirstEmptySlot(); ok {
		t.Fatalf("full index should have no empty slot")
	}
	if _, err := p.Add(); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("Add on full index: expected ErrBadRequest, got %v", err)
	}
}

func TestPresetIndex_EmptyFirstSlot(t *testing.T) {
	p := fullIndex()
	p.Count = 0
	slot, ok := p.FirstEmptySlot()
	if !ok || slot != int(p.Indexes[0]) {
		t.Fatalf("empty index: got slot=%d ok=%v want %d", slot, ok, p.Indexes[0])
	}
}

func TestPresetIndex_AddSkipsUsedSlots(t *testing.T) {
	p := NewPresetIndex()
	p.Count = 2
	p.Indexes[0], p.Indexes[1] = 0, 2

	slot, err := p.Add()
	if err != nil {
		t.Fatalf("Add err=%v", err)
	}
	if slot != 1 || p.Count != 3 || p.Indexes[2] != 1 {
		t.Fatalf("unexpected add: slot=%d index=%+v", slot, p)
	}
}

func TestPresetIndex_AddAfterDeleteReusesFreedSlot(t *testing.T) {
	p := NewPresetIndex()
	for i := 0; i < 3; i++ {
		if _, err := p.Add(); err != nil {
			t.Fatalf("Add %d err=%v", i, err)
		}
	}
	if err := p.DeleteAt(0); err != nil {
		t.Fatalf("DeleteAt err=%v", err)
	}

	slot, err := p.Add()
	if err != nil {
		t.Fatalf("Add err=%v", err)
	}
	if slot != 0 {
		t.Fatalf("expected freed slot 0, got %d", slot)
	}
	if got := p.Range(); len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 0 {
		t.Fatalf("unexpected index %v", got)
	}
}

func TestPresetIndex_DeleteCompacts(t *testing.T) {
	p := NewPresetIndex()
	p.Count = 2
	p.Indexes[0], p.Indexes[1] = 5, 9

	pos, ok := p.IndexOf(5)
	if !ok || pos != 0 {
		t.Fatalf("IndexOf(5): got=%d,%v", pos, ok)
	}
	if err := p.DeleteAt(pos); err != nil {
		t.Fatalf("DeleteAt err=%v", err)
	}

	want := NewPresetIndex()
	want.Count = 1
	want.Indexes[0] = 9
	if p != want {
		t.Fatalf("after delete: got=%+v want=%+v", p, want)
	}
}

func TestPresetIndex_DeleteLastLeavesNoGaps(t *testing.T) {
	for n := 1; n <= MaxPresets; n++ {
		p := fullIndex()
		p.Count = n
		for i := n; i < MaxPresets; i++ {
			p.Indexes[i] = UnusedSlot
		}
		before := p.Range()

		if err := p.DeleteAt(n - 1); err != nil {
			t.Fatalf("n=%d: DeleteAt err=%v", n, err)
		}
		if p.Count != n-1 {
			t.Fatalf("n=%d: count=%d", n, p.Count)
		}
		for i := 0; i < p.Count; i++ {
			if p.Indexes[i] == UnusedSlot || int(p.Indexes[i]) != before[i] {
				t.Fatalf("n=%d: gap or change at %d", n, i)
			}
		}
		for i := p.Count; i < MaxPresets; i++ {
			if p.Indexes[i] != UnusedSlot {
				t.Fatalf("n=%d: position %d should be unused", n, i)
			}
		}
	}
}

func TestPresetIndex_Validate(t *testing.T) {
	p := NewPresetIndex()
	p.Count = 2
	p.Indexes[0], p.Indexes[1] = 3, 3
	if err := p.Validate(); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("duplicate slots: expected ErrBadRequest, got %v", err)
	}
	p.Count = 65
	if err := p.Validate(); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("count 65: expected ErrBadRequest, got %v", err)
	}
}

func TestPresetIndex_WriteValuesDecodeRoundTrip(t *testing.T) {
	p := NewPresetIndex()
	p.Count = 3
	p.Indexes[0], p.Indexes[1], p.Indexes[2] = 7, 40, 1

	head, tail := p.WriteValues()

	count := layout.NewValues(PresetCountLayout).Set("count", head.Int("count"))
	h := layout.NewValues(PresetHalfLayout).Set("slots", head.Ints("slots")...)

	back, err := DecodePresetIndex(count, h, tail)
	if err != nil {
		t.Fatalf("DecodePresetIndex err=%v", err)
	}
	if back != p {
		t.Fatalf("round trip: got=%+v want=%+v", back, p)
	}
}

// ---- preset ----

func TestPreset_SegmentWidths(t *testing.T) {
	want := []uint16{28, 11, 15, 16, 13}
	for i, l := range PresetLayouts {
		if l.Words() != want[i] {
			t.Fatalf("segment %d: got=%d words want=%d", i, l.Words(), want[i])
		}
	}
}

func TestPreset_Flags(t *testing.T) {
	p := Preset{UseFlag: UseFlagFixed}
	if !p.IsFixed() || !errors.Is(p.VerifyCanBeWrittenOrDeleted(), ErrProtectedObject) {
		t.Fatalf("fixed preset should be protected")
	}
	p.UseFlag = UseFlagEmpty
	if !p.IsUnused() || p.VerifyCanBeWrittenOrDeleted() != nil {
		t.Fatalf("empty preset should be unused and writable")
	}
}

func TestPreset_Validate(t *testing.T) {
	cases := []Preset{
		{Name: "this name is far too long to fit the device buffer"},
		{Name: "bad\x01"},
		{Name: "ok", Type: NiZn + 1},
		{Name: "ok", LiCell: 17},
	}
	for i, p := range cases {
		if err := p.Validate(); !errors.Is(err, ErrBadRequest) {
			t.Fatalf("case %d: expected ErrBadRequest, got %v", i, err)
		}
	}
	if err := (Preset{Name: "LiPo 4S", Type: LiPo, LiCell: 4}).Validate(); err != nil {
		t.Fatalf("valid preset: %v", err)
	}
}
