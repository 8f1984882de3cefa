// internal/model/preset_index.go
package model

import (
	"fmt"

	"github.com/tamzrod/charger-bridge/internal/layout"
)

const (
	// MaxPresets is the number of index entries and memory slots.
	MaxPresets = 64

	// UnusedSlot marks an index entry past the used count.
	UnusedSlot = 0xFF

	presetHalf = MaxPresets / 2
)

// Preset index layouts. Reads fetch the count and each half separately;
// writes send count+head in one transaction and chain the tail after it.
var (
	PresetCountLayout     = layout.MustNew("preset_count", layout.Uint16("count"))
	PresetHalfLayout      = layout.MustNew("preset_half", layout.Uint8s("slots", presetHalf))
	PresetIndexHeadLayout = layout.MustNew("preset_index_head", layout.Uint16("count"), layout.Uint8s("slots", presetHalf))
	PresetIndexTailLayout = layout.MustNew("preset_index_tail", layout.Uint8s("slots", presetHalf))
)

// PresetIndex maps index position to memory slot. Positions [0,Count)
// are live; the rest hold UnusedSlot.
type PresetIndex struct {
	Count   int               `json:"count"`
	Indexes [MaxPresets]uint8 `json:"indexes"`
}

// NewPresetIndex returns an empty index.
func NewPresetIndex() PresetIndex {
	var p PresetIndex
	for i := range p.Indexes {
		p.Indexes[i] = UnusedSlot
	}
	return p
}

// DecodePresetIndex assembles the count read and the two half reads.
func DecodePresetIndex(count, head, tail *layout.Values) (PresetIndex, error) {
	p := PresetIndex{Count: int(count.Int("count"))}

	slots := append(head.Ints("slots"), tail.Ints("slots")...)
	for i := range p.Indexes {
		p.Indexes[i] = uint8(slots[i])
	}

	if p.Count > MaxPresets {
		return PresetIndex{}, fmt.Errorf("preset index: count %d exceeds %d", p.Count, MaxPresets)
	}
	return p, nil
}

// Validate checks the structural invariants: count in range, every used
// entry a distinct real slot.
func (p PresetIndex) Validate() error {
	if p.Count < 0 || p.Count > MaxPresets {
		return fmt.Errorf("%w: preset count %d out of range 0..%d", ErrBadRequest, p.Count, MaxPresets)
	}
	seen := make(map[uint8]bool, p.Count)
	for i := 0; i < p.Count; i++ {
		s := p.Indexes[i]
		if int(s) >= MaxPresets {
			return fmt.Errorf("%w: index position %d holds invalid slot %d", ErrBadRequest, i, s)
		}
		if seen[s] {
			return fmt.Errorf("%w: slot %d appears twice in index", ErrBadRequest, s)
		}
		seen[s] = true
	}
	return nil
}

// NumberOfPresets is the used count.
func (p PresetIndex) NumberOfPresets() int { return p.Count }

// Range returns the used slot ids in index order.
func (p PresetIndex) Range() []int {
	out := make([]int, 0, p.Count)
	for i := 0; i < p.Count && i < MaxPresets; i++ {
		out = append(out, int(p.Indexes[i]))
	}
	return out
}

// IndexOf returns the position of slot among the used entries.
func (p PresetIndex) IndexOf(slot int) (int, bool) {
	for i := 0; i < p.Count && i < MaxPresets; i++ {
		if int(p.Indexes[i]) == slot {
			return i, true
		}
	}
	return 0, false
}

// FirstEmptySlot returns the lowest memory slot not referenced by a used
// entry, or false when every slot is taken. The first unused position is
// not a slot id: after a delete it can name a slot still in use.
func (p PresetIndex) FirstEmptySlot() (int, bool) {
	if p.Count >= MaxPresets {
		return 0, false
	}
	var used [MaxPresets]bool
	for _, s := range p.Range() {
		if s < MaxPresets {
			used[s] = true
		}
	}
	for s := 0; s < MaxPresets; s++ {
		if !used[s] {
			return s, true
		}
	}
	return 0, false
}

// Add allocates the first empty slot and appends it to the used entries.
func (p *PresetIndex) Add() (int, error) {
	slot, ok := p.FirstEmptySlot()
	if !ok {
		return 0, fmt.Errorf("%w: Presets full", ErrBadRequest)
	}
	p.Indexes[p.Count] = uint8(slot)
	p.Count++
	return slot, nil
}

// DeleteAt removes the used entry at position, shifting later entries
// down and marking the vacated tail position unused.
func (p *PresetIndex) DeleteAt(position int) error {
	if position < 0 || position >= p.Count {
		return fmt.Errorf("%w: index position %d outside 0..%d", ErrNotFound, position, p.Count-1)
	}
	copy(p.Indexes[position:p.Count], p.Indexes[position+1:p.Count])
	p.Count--
	for i := p.Count; i < MaxPresets; i++ {
		p.Indexes[i] = UnusedSlot
	}
	return nil
}

// WriteValues returns the head (count + first half) and tail value sets.
func (p PresetIndex) WriteValues() (head, tail *layout.Values) {
	h := make([]int64, presetHalf)
	t := make([]int64, presetHalf)
	for i := 0; i < presetHalf; i++ {
		h[i] = int64(p.Indexes[i])
		t[i] = int64(p.Indexes[presetHalf+i])
	}

	head = layout.NewValues(PresetIndexHeadLayout).
		Set("count", int64(p.Count)).
		Set("slots", h...)
	tail = layout.NewValues(PresetIndexTailLayout).
		Set("slots", t...)
	return head, tail
}
