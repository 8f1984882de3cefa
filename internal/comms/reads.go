// internal/comms/reads.go
package comms

import (
	"fmt"

	"github.com/tamzrod/charger-bridge/internal/layout"
	"github.com/tamzrod/charger-bridge/internal/model"
	"github.com/tamzrod/charger-bridge/internal/segment"
)

// GetDeviceInfo reads the identity block and both channels' status flags.
func (m *Manager) GetDeviceInfo() (model.DeviceInfo, error) {
	seg, err := segment.Read(m.regs, segment.ReadInput, model.DeviceInfoLayout, deviceInfoAddr)
	if err != nil {
		return model.DeviceInfo{}, err
	}
	return model.DecodeDeviceInfo(seg.Values), nil
}

// GetChannelStatus reads the telemetry of channel 0 or 1.
// The channel is not re-validated here; anything but 0 reads channel 1.
func (m *Manager) GetChannelStatus(channel int) (model.ChannelStatus, error) {
	base := channelBase(channel)

	parts := []struct {
		offset uint16
		layout *layout.Layout
	}{
		{channelHeaderOffset, model.ChannelHeaderLayout},
		{channelCellVoltOffset, model.CellVoltageLayout},
		{channelCellBalanceOffset, model.CellBalanceLayout},
		{channelCellIROffset, model.CellIRLayout},
		{channelFooterOffset, model.ChannelFooterLayout},
	}

	vals := make([]*layout.Values, 0, len(parts))
	for _, p := range parts {
		seg, err := segment.Read(m.regs, segment.ReadInput, p.layout, base+p.offset)
		if err != nil {
			return model.ChannelStatus{}, err
		}
		vals = append(vals, seg.Values)
	}

	return model.DecodeChannelStatus(channel, vals[0], vals[1], vals[2], vals[3], vals[4])
}

// GetControlRegister reads the 7-word command block.
func (m *Manager) GetControlRegister() (model.Control, error) {
	seg, err := segment.Read(m.regs, segment.ReadHolding, model.ControlLayout, commandAddr)
	if err != nil {
		return model.Control{}, err
	}
	return model.DecodeControl(seg.Values), nil
}

// GetSystemStorage reads the system area as three chained chunks.
func (m *Manager) GetSystemStorage() (model.SystemStorage, error) {
	ls := make([]*layout.Layout, 0, len(model.SystemReadChunks))
	for _, c := range model.SystemReadChunks {
		ls = append(ls, c.Layout)
	}

	segs, err := segment.ReadChain(m.regs, segment.ReadHolding, systemAddr, ls...)
	if err != nil {
		return model.SystemStorage{}, err
	}

	return model.DecodeSystemStorage(values(segs)...)
}

// GetFullPresetList reads the count word and both 32-entry halves.
func (m *Manager) GetFullPresetList() (model.PresetIndex, error) {
	segs, err := segment.ReadChain(m.regs, segment.ReadHolding, presetIndexAddr,
		model.PresetCountLayout,
		model.PresetHalfLayout,
		model.PresetHalfLayout,
	)
	if err != nil {
		return model.PresetIndex{}, err
	}
	return model.DecodePresetIndex(segs[0].Values, segs[1].Values, segs[2].Values)
}

// GetPreset loads the preset in slot. The slot must be live in the index.
// Selecting the slot leaves it as the device's active preset.
func (m *Manager) GetPreset(slot int) (model.Preset, error) {
	index, err := m.GetFullPresetList()
	if err != nil {
		return model.Preset{}, err
	}
	if _, ok := index.IndexOf(slot); !ok {
		return model.Preset{}, fmt.Errorf("%w: no preset is mapped with slot number %d", model.ErrNotFound, slot)
	}

	if _, err := m.SelectMemoryProgram(slot, 0); err != nil {
		return model.Preset{}, err
	}

	return m.readSelectedPreset(slot)
}

func (m *Manager) readSelectedPreset(slot int) (model.Preset, error) {
	segs, err := segment.ReadChain(m.regs, segment.ReadHolding, presetAddr, model.PresetLayouts...)
	if err != nil {
		return model.Preset{}, err
	}
	return model.DecodePreset(slot, values(segs)...)
}

func values(segs []segment.Segment) []*layout.Values {
	out := make([]*layout.Values, len(segs))
	for i, s := range segs {
		out[i] = s.Values
	}
	return out
}
