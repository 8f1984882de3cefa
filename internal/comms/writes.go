// internal/comms/writes.go
package comms

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/charger-bridge/internal/model"
	"github.com/tamzrod/charger-bridge/internal/segment"
)

// ---- system storage ----

// SetBeepProperties rewrites one beep source. The device only accepts the
// whole enabled+volume block, so the block is read, patched and written back.
func (m *Manager) SetBeepProperties(index int, enabled bool, volume uint16) (segment.Ack, error) {
	addr := systemAddr + model.BeepChunk.Offset

	seg, err := segment.Read(m.regs, segment.ReadHolding, model.BeepChunk.Layout, addr)
	if err != nil {
		return segment.Ack{}, err
	}

	block := model.DecodeBeepBlock(seg.Values)
	if err := block.Set(index, model.Beep{Enabled: enabled, Volume: volume}); err != nil {
		return segment.Ack{}, err
	}

	w, err := segment.Write(m.regs, block.Values(), addr)
	if err != nil {
		return segment.Ack{}, err
	}
	return w.Ack, nil
}

// SaveSystemStorage writes the system area to RAM, then commits it to flash.
func (m *Manager) SaveSystemStorage(s model.SystemStorage) error {
	for i, v := range s.WriteValues() {
		c := model.SystemWriteChunks[i]
		if _, err := segment.Write(m.regs, v, systemAddr+c.Offset); err != nil {
			return err
		}
	}

	return m.commit("save system configuration", OrderWriteSys)
}

// ---- command block ----

// SetActiveChannel points the device UI at channel 0 or 1.
func (m *Manager) SetActiveChannel(channel int) (segment.Ack, error) {
	if err := model.ValidChannel(channel); err != nil {
		return segment.Ack{}, err
	}
	return segment.WriteWords(m.regs, stopAddr, uint16(channel))
}

// SelectMemoryProgram makes slot the device's active preset for subsequent
// RAM reads and writes.
func (m *Manager) SelectMemoryProgram(slot, channel int) (segment.Ack, error) {
	var ack segment.Ack
	err := m.withOrderLock(fmt.Sprintf("selecting memory slot %d", slot), func() error {
		var err error
		ack, err = segment.WriteWords(m.regs, selectAddr, uint16(slot), uint16(channel))
		return err
	})
	return ack, err
}

// CloseMessageBox dismisses a dialog or error shown on the device.
func (m *Manager) CloseMessageBox() error {
	return m.commit("close messagebox", OrderMsgBoxNo)
}

// ---- preset index ----

// SaveFullPresetList writes the index to RAM, then commits it to flash.
func (m *Manager) SaveFullPresetList(index model.PresetIndex) error {
	if err := index.Validate(); err != nil {
		return err
	}

	head, tail := index.WriteValues()

	w, err := segment.Write(m.regs, head, presetIndexAddr)
	if err != nil {
		return err
	}
	if _, err := segment.WriteAfter(m.regs, tail, w.Span); err != nil {
		return err
	}

	return m.commit("save preset index", OrderWriteMemHead)
}

// ---- presets ----

// SavePresetToMemorySlot writes p into slot and commits it to flash.
// With verify set the existing preset is loaded first and a fixed one is
// refused; without it the slot is selected blindly, for slots known empty.
// It never allocates a slot or touches the index.
func (m *Manager) SavePresetToMemorySlot(p model.Preset, slot int, verify bool) error {
	if verify {
		existing, err := m.GetPreset(slot)
		if err != nil {
			return err
		}
		if err := existing.VerifyCanBeWrittenOrDeleted(); err != nil {
			return err
		}
	} else if _, err := m.SelectMemoryProgram(slot, 0); err != nil {
		return err
	}

	p.MemorySlot = slot
	if _, err := segment.WriteChain(m.regs, presetAddr, p.WriteValues()...); err != nil {
		return err
	}

	return m.commit("save preset, writing preset to flash", OrderWriteMem)
}

// AddNewPreset stores p in the first free slot, appends the slot to the
// index and returns the preset as read back from the device.
func (m *Manager) AddNewPreset(p model.Preset) (model.Preset, error) {
	index, err := m.GetFullPresetList()
	if err != nil {
		return model.Preset{}, err
	}

	slot, err := index.Add()
	if err != nil {
		return model.Preset{}, err
	}

	p.MemorySlot = slot
	p.UseFlag = model.UseFlagUsed

	m.log.WithFields(logrus.Fields{
		"slot":    slot,
		"presets": index.NumberOfPresets(),
	}).Info("adding new preset")

	if err := m.SavePresetToMemorySlot(p, slot, false); err != nil {
		return model.Preset{}, err
	}
	if err := m.SaveFullPresetList(index); err != nil {
		return model.Preset{}, err
	}

	return m.GetPreset(slot)
}

// DeletePresetAtIndex removes the preset in slot. The index is compacted
// and committed before the slot is cleared, so a failure part way never
// leaves a used-looking slot missing from the index.
func (m *Manager) DeletePresetAtIndex(slot int) error {
	index, err := m.GetFullPresetList()
	if err != nil {
		return err
	}

	position, ok := index.IndexOf(slot)
	if !ok {
		return fmt.Errorf("%w: cannot find preset with memory slot %d", model.ErrNotFound, slot)
	}

	m.log.WithFields(logrus.Fields{
		"slot":     slot,
		"position": position,
	}).Info("removing preset")

	existing, err := m.GetPreset(slot)
	if err != nil {
		return err
	}
	if err := existing.VerifyCanBeWrittenOrDeleted(); err != nil {
		return err
	}

	if err := index.DeleteAt(position); err != nil {
		return err
	}
	if err := m.SaveFullPresetList(index); err != nil {
		return err
	}

	m.log.WithField("slot", slot).Info("setting slot unused flag")
	if _, err := m.SelectMemoryProgram(slot, 0); err != nil {
		return err
	}
	if _, err := segment.WriteWords(m.regs, presetAddr, model.UseFlagEmpty); err != nil {
		return err
	}

	return m.commit("delete preset, writing preset to flash", OrderWriteMem)
}

// ---- run / stop ----

// StopOperation stops channel (clamped to 0 or 1). If the device then shows
// a dialog or an error, a close-dialog order follows.
func (m *Manager) StopOperation(channel int) (model.OperationResponse, error) {
	ch := model.ClampChannel(channel)
	resp := model.OperationResponse{Channel: ch}

	err := m.withOrderLock("stop", func() error {
		ack, err := segment.WriteWords(m.regs, stopAddr, uint16(ch), OrderLock, uint16(OrderStop), 0, 0)
		if err != nil {
			return err
		}
		resp.Ack = ack

		info, err := m.GetDeviceInfo()
		if err != nil {
			return err
		}
		resp.Status = info.Status(ch)
		return nil
	})
	if err != nil {
		return resp, err
	}

	m.log.WithFields(logrus.Fields{
		"channel": ch,
		"status":  resp.Status.Value(),
	}).Info("stopped")

	if resp.Status.NeedsDialogClose() {
		m.log.WithField("channel", ch).Info("dialog showing, attempting to close dialog")
		if err := m.CloseMessageBox(); err != nil {
			return resp, err
		}
	}

	return resp, nil
}

// RunOperation starts op on channel (clamped to 0 or 1) using the preset in
// slot. The preset is loaded first, which also selects it on the device.
func (m *Manager) RunOperation(op Operation, channel, slot int) (model.DeviceStatus, error) {
	ch := model.ClampChannel(channel)

	m.log.WithFields(logrus.Fields{
		"operation": op,
		"channel":   ch,
		"slot":      slot,
	}).Info("begin operation")

	p, err := m.GetPreset(slot)
	if err != nil {
		return model.DeviceStatus{}, err
	}
	if p.IsUnused() {
		return model.DeviceStatus{}, fmt.Errorf("%w: preset in slot %d is marked as unused", model.ErrNotFound, slot)
	}

	err = m.withOrderLock(op.String(), func() error {
		_, err := segment.WriteWords(m.regs, runAddr,
			uint16(op), uint16(slot), uint16(ch), OrderLock, uint16(OrderRun))
		return err
	})
	if err != nil {
		return model.DeviceStatus{}, err
	}

	info, err := m.GetDeviceInfo()
	if err != nil {
		return model.DeviceStatus{}, err
	}
	return info.Status(ch), nil
}
