// internal/model/system.go
package model

import (
	"fmt"

	"github.com/tamzrod/charger-bridge/internal/layout"
)

// BeepChannels is the number of beep sources in the system block.
const BeepChannels = 4

// systemRecord is the whole 51-word system storage area. The read and
// write chunks below are cut from it, so every field is written back at
// the offset it was read from.
var systemRecord = layout.MustNew("system_storage",
	layout.Uint16("temp_unit"),
	layout.Uint16("temp_stop"),
	layout.Uint16("temp_fans_on"),
	layout.Uint16("temp_reduce"),
	layout.Uint16("reserved_1"),
	layout.Uint16("fans_off_delay"),
	layout.Uint16("lcd_contrast"),
	layout.Uint16("light_value"),
	layout.Uint16("reserved_2"),
	layout.Uint16s("beep_type", BeepChannels),
	layout.Uint16s("beep_enabled", BeepChannels),
	layout.Uint16s("beep_volume", BeepChannels),
	layout.Uint16("reserved_3"),
	layout.Uint16("calibration"),
	layout.Uint16("reserved_4"),
	layout.Uint16("selected_input_source"),
	layout.Uint16("dc_input_low_volt"),
	layout.Uint16("dc_input_over_volt"),
	layout.Uint16("dc_input_current_limit"),
	layout.Uint16("batt_input_low_volt"),
	layout.Uint16("batt_input_over_volt"),
	layout.Uint16("batt_input_current_limit"),
	layout.Uint16("regen_enable"),
	layout.Uint16("regen_volt_limit"),
	layout.Uint16("regen_current_limit"),
	layout.Uint16s("charger_power", ChannelCount),
	layout.Uint16s("discharge_power", ChannelCount),
	layout.Uint16("pro_power"),
	layout.Uint16s("monitor_log_interval", ChannelCount),
	layout.Uint16s("monitor_save_to_sd", ChannelCount),
	layout.Uint16("servo_type"),
	layout.Uint16("servo_user_center"),
	layout.Uint16("servo_user_rate"),
	layout.Uint16("servo_user_op_angle"),
	layout.Uint16("modbus_mode"),
	layout.Uint16("modbus_address"),
	layout.Uint16("modbus_baud_rate"),
	layout.Uint16("modbus_serial_parity"),
)

// Chunk is a layout placed at a register offset inside a record.
type Chunk struct {
	Offset uint16
	Layout *layout.Layout
}

func chunk(name string, from, to uint16) Chunk {
	return Chunk{Offset: from, Layout: systemRecord.MustSub(name, from, to)}
}

// SystemReadChunks are read back to back from the system storage base.
var SystemReadChunks = []Chunk{
	chunk("system_read_1", 0, 21),
	chunk("system_read_2", 21, 34),
	chunk("system_read_3", 34, 51),
}

// SystemWriteChunks are written at their offsets from the system storage base.
var SystemWriteChunks = []Chunk{
	chunk("system_write_1", 0, 5),
	chunk("system_write_2", 5, 9),
	chunk("system_write_3", 9, 22),
	chunk("system_write_4", 22, 24),
	chunk("system_write_5", 24, 34),
	chunk("system_write_6", 34, 51),
}

// BeepChunk is the enabled + volume block, the narrowest writable beep range.
var BeepChunk = chunk("system_beep", 13, 21)

// SystemStorage is the global device configuration.
type SystemStorage struct {
	TempUnit     uint16 `json:"temp_unit"`
	TempStop     uint16 `json:"temp_stop"`
	TempFansOn   uint16 `json:"temp_fans_on"`
	TempReduce   uint16 `json:"temp_reduce"`
	FansOffDelay uint16 `json:"fans_off_delay"`
	LcdContrast  uint16 `json:"lcd_contrast"`
	LightValue   uint16 `json:"light_value"`

	BeepType    [BeepChannels]uint16 `json:"beep_type"`
	BeepEnabled [BeepChannels]uint16 `json:"beep_enabled"`
	BeepVolume  [BeepChannels]uint16 `json:"beep_volume"`

	Calibration uint16 `json:"calibration"`

	SelectedInputSource   uint16 `json:"selected_input_source"`
	DCInputLowVolt        uint16 `json:"dc_input_low_volt"`
	DCInputOverVolt       uint16 `json:"dc_input_over_volt"`
	DCInputCurrentLimit   uint16 `json:"dc_input_current_limit"`
	BattInputLowVolt      uint16 `json:"batt_input_low_volt"`
	BattInputOverVolt     uint16 `json:"batt_input_over_volt"`
	BattInputCurrentLimit uint16 `json:"batt_input_current_limit"`
	RegenEnable           uint16 `json:"regen_enable"`
	RegenVoltLimit        uint16 `json:"regen_volt_limit"`
	RegenCurrentLimit     uint16 `json:"regen_current_limit"`

	ChargerPower       [ChannelCount]uint16 `json:"charger_power"`
	DischargePower     [ChannelCount]uint16 `json:"discharge_power"`
	ProPower           uint16               `json:"pro_power"`
	MonitorLogInterval [ChannelCount]uint16 `json:"monitor_log_interval"`
	MonitorSaveToSD    [ChannelCount]uint16 `json:"monitor_save_to_sd"`

	ServoType        uint16 `json:"servo_type"`
	ServoUserCenter  uint16 `json:"servo_user_center"`
	ServoUserRate    uint16 `json:"servo_user_rate"`
	ServoUserOpAngle uint16 `json:"servo_user_op_angle"`

	ModbusMode         uint16 `json:"modbus_mode"`
	ModbusAddress      uint16 `json:"modbus_address"`
	ModbusBaudRate     uint16 `json:"modbus_baud_rate"`
	ModbusSerialParity uint16 `json:"modbus_serial_parity"`

	// Undocumented words, carried so a save writes back what was read.
	Reserved [4]uint16 `json:"reserved"`
}

func (s *SystemStorage) bindings() []binding {
	return []binding{
		bindU16("temp_unit", &s.TempUnit),
		bindU16("temp_stop", &s.TempStop),
		bindU16("temp_fans_on", &s.TempFansOn),
		bindU16("temp_reduce", &s.TempReduce),
		bindU16("reserved_1", &s.Reserved[0]),
		bindU16("fans_off_delay", &s.FansOffDelay),
		bindU16("lcd_contrast", &s.LcdContrast),
		bindU16("light_value", &s.LightValue),
		bindU16("reserved_2", &s.Reserved[1]),
		bindU16s("beep_type", s.BeepType[:]),
		bindU16s("beep_enabled", s.BeepEnabled[:]),
		bindU16s("beep_volume", s.BeepVolume[:]),
		bindU16("reserved_3", &s.Reserved[2]),
		bindU16("calibration", &s.Calibration),
		bindU16("reserved_4", &s.Reserved[3]),
		bindU16("selected_input_source", &s.SelectedInputSource),
		bindU16("dc_input_low_volt", &s.DCInputLowVolt),
		bindU16("dc_input_over_volt", &s.DCInputOverVolt),
		bindU16("dc_input_current_limit", &s.DCInputCurrentLimit),
		bindU16("batt_input_low_volt", &s.BattInputLowVolt),
		bindU16("batt_input_over_volt", &s.BattInputOverVolt),
		bindU16("batt_input_current_limit", &s.BattInputCurrentLimit),
		bindU16("regen_enable", &s.RegenEnable),
		bindU16("regen_volt_limit", &s.RegenVoltLimit),
		bindU16("regen_current_limit", &s.RegenCurrentLimit),
		bindU16s("charger_power", s.ChargerPower[:]),
		bindU16s("discharge_power", s.DischargePower[:]),
		bindU16("pro_power", &s.ProPower),
		bindU16s("monitor_log_interval", s.MonitorLogInterval[:]),
		bindU16s("monitor_save_to_sd", s.MonitorSaveToSD[:]),
		bindU16("servo_type", &s.ServoType),
		bindU16("servo_user_center", &s.ServoUserCenter),
		bindU16("servo_user_rate", &s.ServoUserRate),
		bindU16("servo_user_op_angle", &s.ServoUserOpAngle),
		bindU16("modbus_mode", &s.ModbusMode),
		bindU16("modbus_address", &s.ModbusAddress),
		bindU16("modbus_baud_rate", &s.ModbusBaudRate),
		bindU16("modbus_serial_parity", &s.ModbusSerialParity),
	}
}

// DecodeSystemStorage assembles the read chunks, in SystemReadChunks order.
func DecodeSystemStorage(parts ...*layout.Values) (SystemStorage, error) {
	if len(parts) != len(SystemReadChunks) {
		return SystemStorage{}, fmt.Errorf("system storage: got %d chunks want %d", len(parts), len(SystemReadChunks))
	}

	var s SystemStorage
	bs := s.bindings()
	for _, p := range parts {
		load(p, bs)
	}
	return s, nil
}

// WriteValues returns one value set per SystemWriteChunks entry.
func (s SystemStorage) WriteValues() []*layout.Values {
	bs := s.bindings()
	out := make([]*layout.Values, 0, len(SystemWriteChunks))
	for _, c := range SystemWriteChunks {
		out = append(out, store(c.Layout, bs))
	}
	return out
}

// ---- beep block ----

// Beep is one beep source's settings.
type Beep struct {
	Enabled bool   `json:"enabled"`
	Volume  uint16 `json:"volume"`
}

// BeepBlock is the decoded BeepChunk.
type BeepBlock struct {
	Enabled [BeepChannels]uint16
	Volume  [BeepChannels]uint16
}

func DecodeBeepBlock(v *layout.Values) BeepBlock {
	var b BeepBlock
	load(v, b.bindings())
	return b
}

func (b *BeepBlock) bindings() []binding {
	return []binding{
		bindU16s("beep_enabled", b.Enabled[:]),
		bindU16s("beep_volume", b.Volume[:]),
	}
}

// Set changes one source, leaving the others untouched.
func (b *BeepBlock) Set(index int, beep Beep) error {
	if index < 0 || index >= BeepChannels {
		return fmt.Errorf("%w: beep index must be 0..%d, got %d", ErrBadRequest, BeepChannels-1, index)
	}
	var enabled uint16
	if beep.Enabled {
		enabled = 1
	}
	b.Enabled[index] = enabled
	b.Volume[index] = beep.Volume
	return nil
}

func (b BeepBlock) Values() *layout.Values {
	return store(BeepChunk.Layout, b.bindings())
}
