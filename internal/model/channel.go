// internal/model/channel.go
package model

import (
	"fmt"

	"github.com/tamzrod/charger-bridge/internal/layout"
)

// CellCount is the fixed number of per-cell entries in channel telemetry.
const CellCount = 16

// Channel telemetry layouts, one per read.
var ChannelHeaderLayout = layout.MustNew("channel_header",
	layout.Uint32("timestamp"),
	layout.Int32("output_power"),
	layout.Int16("output_current"),
	layout.Uint16("input_voltage"),
	layout.Uint16("output_voltage"),
	layout.Int32("output_capacity"),
	layout.Int16("internal_temp"),
	layout.Int16("external_temp"),
)

var (
	CellVoltageLayout = layout.MustNew("cell_voltage", layout.Uint16s("cells", CellCount))
	CellBalanceLayout = layout.MustNew("cell_balance", layout.Uint8s("cells", CellCount))
	CellIRLayout      = layout.MustNew("cell_ir", layout.Uint16s("cells", CellCount))
)

var ChannelFooterLayout = layout.MustNew("channel_footer",
	layout.Uint16("total_ir"),
	layout.Uint16("line_ir"),
	layout.Uint16("cycle_count"),
	layout.Uint16("control_status"),
	layout.Uint16("run_status"),
	layout.Uint16("run_error"),
	layout.Uint16("dlg_box_id"),
)

// ChannelStatus is the live telemetry of one output channel.
// Voltages are mV, currents 10mA steps, temperatures 0.1 degree steps,
// resistances 0.1 mOhm steps, as reported by the device.
type ChannelStatus struct {
	Channel        int    `json:"channel"`
	Timestamp      uint32 `json:"timestamp"`
	OutputPower    int32  `json:"curr_out_power"`
	OutputCurrent  int16  `json:"curr_out_amps"`
	InputVoltage   uint16 `json:"curr_inp_volts"`
	OutputVoltage  uint16 `json:"curr_out_volts"`
	OutputCapacity int32  `json:"curr_out_capacity"`
	InternalTemp   int16  `json:"curr_int_temp"`
	ExternalTemp   int16  `json:"curr_ext_temp"`

	CellVoltage [CellCount]uint16 `json:"cell_voltage"`
	CellBalance [CellCount]uint8  `json:"cell_balance"`
	CellIR      [CellCount]uint16 `json:"cell_ir"`

	TotalIR       uint16 `json:"cell_total_ir"`
	LineIR        uint16 `json:"line_intern_resistance"`
	CycleCount    uint16 `json:"cycle_count"`
	ControlStatus uint16 `json:"control_status"`
	RunStatus     uint16 `json:"run_status"`
	RunError      uint16 `json:"run_error"`
	DialogBoxID   uint16 `json:"dlg_box_id"`
}

// DecodeChannelStatus assembles the five telemetry reads of one channel.
func DecodeChannelStatus(channel int, header, volts, balance, ir, footer *layout.Values) (ChannelStatus, error) {
	if err := ValidChannel(channel); err != nil {
		return ChannelStatus{}, err
	}

	cs := ChannelStatus{
		Channel:        channel,
		Timestamp:      uint32(header.Int("timestamp")),
		OutputPower:    int32(header.Int("output_power")),
		OutputCurrent:  int16(header.Int("output_current")),
		InputVoltage:   uint16(header.Int("input_voltage")),
		OutputVoltage:  uint16(header.Int("output_voltage")),
		OutputCapacity: int32(header.Int("output_capacity")),
		InternalTemp:   int16(header.Int("internal_temp")),
		ExternalTemp:   int16(header.Int("external_temp")),

		TotalIR:       uint16(footer.Int("total_ir")),
		LineIR:        uint16(footer.Int("line_ir")),
		CycleCount:    uint16(footer.Int("cycle_count")),
		ControlStatus: uint16(footer.Int("control_status")),
		RunStatus:     uint16(footer.Int("run_status")),
		RunError:      uint16(footer.Int("run_error")),
		DialogBoxID:   uint16(footer.Int("dlg_box_id")),
	}

	v, b, r := volts.Ints("cells"), balance.Ints("cells"), ir.Ints("cells")
	if len(v) != CellCount || len(b) != CellCount || len(r) != CellCount {
		return ChannelStatus{}, fmt.Errorf("channel %d: cell arrays must hold %d entries", channel, CellCount)
	}
	for i := 0; i < CellCount; i++ {
		cs.CellVoltage[i] = uint16(v[i])
		cs.CellBalance[i] = uint8(b[i])
		cs.CellIR[i] = uint16(r[i])
	}

	return cs, nil
}
