// internal/model/device.go
package model

import (
	"fmt"

	"github.com/tamzrod/charger-bridge/internal/layout"
)

// ChannelCount is the number of output channels on the device.
const ChannelCount = 2

// DeviceInfoLayout is the read-only identity block.
var DeviceInfoLayout = layout.MustNew("device_info",
	layout.Int16("device_id"),
	layout.Text("device_sn", 12),
	layout.Uint16("sw_version"),
	layout.Uint16("hw_version"),
	layout.Uint16("system_length"),
	layout.Uint16("memory_length"),
	layout.Uint16("ch1_status"),
	layout.Uint16("ch2_status"),
)

// ---- status flag word ----

const (
	statusRun       = 0x01
	statusErr       = 0x02
	statusDlgBox    = 0x04
	statusCellVolt  = 0x08
	statusRunStatus = 0x10
	statusBalance   = 0x20
	statusCtrl      = 0x40
	statusValidMask = 0x7F
)

// DeviceStatus is the per-channel status flag word.
type DeviceStatus struct {
	Run            bool `json:"run"`
	Err            bool `json:"err"`
	DlgBoxStatus   bool `json:"dlg_box_status"`
	CellVoltStatus bool `json:"cell_volt_status"`
	RunStatus      bool `json:"run_status"`
	Balance        bool `json:"balance"`
	CtrlStatus     bool `json:"ctrl_status"`

	value uint16
}

func NewDeviceStatus(v uint16) DeviceStatus {
	return DeviceStatus{
		Run:            v&statusRun != 0,
		Err:            v&statusErr != 0,
		DlgBoxStatus:   v&statusDlgBox != 0,
		CellVoltStatus: v&statusCellVolt != 0,
		RunStatus:      v&statusRunStatus != 0,
		Balance:        v&statusBalance != 0,
		CtrlStatus:     v&statusCtrl != 0,
		value:          v,
	}
}

// Value is the raw flag word as read.
func (s DeviceStatus) Value() uint16 { return s.value }

func (s DeviceStatus) Validate() error {
	if s.value&^statusValidMask != 0 {
		return fmt.Errorf("device status: invalid flag word 0x%04X", s.value)
	}
	return nil
}

// NeedsDialogClose reports whether the device shows a dialog or an error.
func (s DeviceStatus) NeedsDialogClose() bool {
	return s.DlgBoxStatus || s.Err
}

// DeviceInfo is the device identity plus both channels' status flags.
type DeviceInfo struct {
	DeviceID        int16  `json:"device_id"`
	SerialNumber    string `json:"device_sn"`
	SoftwareVersion uint16 `json:"software_version"`
	HardwareVersion uint16 `json:"hardware_version"`
	SystemLength    uint16 `json:"system_length"`
	MemoryLength    uint16 `json:"memory_length"`
	ChannelCount    int    `json:"channel_count"`

	Ch1Status DeviceStatus `json:"ch1_status"`
	Ch2Status DeviceStatus `json:"ch2_status"`
}

func DecodeDeviceInfo(v *layout.Values) DeviceInfo {
	return DeviceInfo{
		DeviceID:        int16(v.Int("device_id")),
		SerialNumber:    v.String("device_sn"),
		SoftwareVersion: uint16(v.Int("sw_version")),
		HardwareVersion: uint16(v.Int("hw_version")),
		SystemLength:    uint16(v.Int("system_length")),
		MemoryLength:    uint16(v.Int("memory_length")),
		ChannelCount:    ChannelCount,
		Ch1Status:       NewDeviceStatus(uint16(v.Int("ch1_status"))),
		Ch2Status:       NewDeviceStatus(uint16(v.Int("ch2_status"))),
	}
}

// Status returns the flags of channel 0 or 1. Any other value reads channel 1.
func (d DeviceInfo) Status(channel int) DeviceStatus {
	if channel == 0 {
		return d.Ch1Status
	}
	return d.Ch2Status
}

// ClampChannel forces a channel number into {0,1}.
func ClampChannel(channel int) int {
	if channel < 0 {
		return 0
	}
	if channel > ChannelCount-1 {
		return ChannelCount - 1
	}
	return channel
}

// ValidChannel rejects anything but 0 and 1.
func ValidChannel(channel int) error {
	if channel < 0 || channel >= ChannelCount {
		return fmt.Errorf("%w: channel number must be 0 or 1, got %d", ErrBadRequest, channel)
	}
	return nil
}
