// internal/model/preset.go
package model

import (
	"fmt"

	"github.com/tamzrod/charger-bridge/internal/layout"
)

// Header use flags.
const (
	UseFlagFixed = 0x0000
	UseFlagUsed  = 0x55AA
	UseFlagEmpty = 0xFFFF
)

// PresetNameLength is the on-device name buffer, NUL included.
const PresetNameLength = 38

// Chemistry is the battery type of a preset.
type Chemistry uint8

const (
	LiPo Chemistry = iota
	LiLo
	LiFe
	LiHV
	NiMH
	NiCd
	Pb
	NiZn
)

// PresetLayouts are the five chained segments of one preset record.
var PresetLayouts = []*layout.Layout{
	layout.MustNew("preset_1",
		layout.Uint16("use_flag"),
		layout.Text("name", PresetNameLength),
		layout.Uint32("capacity"),
		layout.Uint8("auto_save"),
		layout.Uint8("li_balance_end_mode"),
		layout.Raw("reserved", 7),
		layout.Uint16("op_enable_mask"),
		layout.Uint8("channel_mode"),
	),
	layout.MustNew("preset_2",
		layout.Uint8("save_to_sd"),
		layout.Uint16("log_interval"),
		layout.Uint16("run_counter"),
		layout.Uint8("type"),
		layout.Uint8("li_cell"),
		layout.Uint8("ni_cell"),
		layout.Uint8("pb_cell"),
		layout.Uint8("li_mode_c"),
		layout.Uint8("li_mode_d"),
		layout.Uint8("ni_mode_c"),
		layout.Uint8("ni_mode_d"),
		layout.Uint8("pb_mode"),
		layout.Uint8("bal_speed"),
		layout.Uint8("bal_start_mode"),
		layout.Uint8("bal_timeout"),
		layout.Uint16("bal_start_voltage"),
		layout.Uint8("bal_diff"),
		layout.Uint8("bal_over_point"),
		layout.Uint8("bal_set_point"),
	),
	layout.MustNew("preset_3",
		layout.Uint8("bal_delay"),
		layout.Uint8("keep_charge_enable"),
		layout.Uint16("lipo_charge_cell_voltage"),
		layout.Uint16("lilo_charge_cell_voltage"),
		layout.Uint16("life_charge_cell_voltage"),
		layout.Uint16("lipo_storage_cell_voltage"),
		layout.Uint16("lilo_storage_cell_voltage"),
		layout.Uint16("life_storage_cell_voltage"),
		layout.Uint16("lipo_discharge_cell_voltage"),
		layout.Uint16("lilo_discharge_cell_voltage"),
		layout.Uint16("life_discharge_cell_voltage"),
		layout.Uint16("charge_current"),
		layout.Uint16("discharge_current"),
		layout.Uint16("end_charge"),
		layout.Uint16("end_discharge"),
		layout.Uint16("reg_discharge_mode"),
	),
	layout.MustNew("preset_4",
		layout.Uint16("ni_peak"),
		layout.Uint16("ni_peak_delay"),
		layout.Uint16("ni_trickle_enable"),
		layout.Uint16("ni_trickle_current"),
		layout.Uint16("ni_trickle_time"),
		layout.Uint16("ni_zero_enable"),
		layout.Uint16("ni_discharge_voltage"),
		layout.Uint16("pb_charge_voltage"),
		layout.Uint16("pb_discharge_voltage"),
		layout.Uint16("pb_cell_float_voltage"),
		layout.Uint16("pb_float_enable"),
		layout.Uint16("restore_voltage"),
		layout.Uint16("restore_time"),
		layout.Uint16("restore_current"),
		layout.Uint16("cycle_count"),
		layout.Uint16("cycle_delay"),
	),
	layout.MustNew("preset_5",
		layout.Uint8("cycle_mode"),
		layout.Uint16("safety_time_c"),
		layout.Uint16("safety_cap_c"),
		layout.Uint16("safety_temp_c"),
		layout.Uint16("safety_time_d"),
		layout.Uint16("safety_cap_d"),
		layout.Uint16("safety_temp_d"),
		layout.Uint8("reg_ch_mode"),
		layout.Uint16("reg_ch_volt"),
		layout.Uint16("reg_ch_current"),
		layout.Uint8("fast_store"),
		layout.Uint16("store_compensation"),
		layout.Uint16("ni_zn_charge_cell_volt"),
		layout.Uint16("ni_zn_dis_cell_volt"),
		layout.Uint8("ni_zn_cell"),
	),
}

// Preset is a named charge profile held in one memory slot.
type Preset struct {
	MemorySlot int `json:"memory_slot"`

	UseFlag          uint16  `json:"use_flag"`
	Name             string  `json:"name"`
	Capacity         uint32  `json:"capacity"`
	AutoSave         uint8   `json:"auto_save"`
	LiBalanceEndMode uint8   `json:"li_balance_end_mode"`
	Reserved         [7]byte `json:"-"`
	OpEnableMask     uint16  `json:"op_enable_mask"`
	ChannelMode      uint8   `json:"channel_mode"`

	SaveToSD        uint8     `json:"save_to_sd"`
	LogInterval     uint16    `json:"log_interval"`
	RunCounter      uint16    `json:"run_counter"`
	Type            Chemistry `json:"type"`
	LiCell          uint8     `json:"li_cell"`
	NiCell          uint8     `json:"ni_cell"`
	PbCell          uint8     `json:"pb_cell"`
	LiModeC         uint8     `json:"li_mode_c"`
	LiModeD         uint8     `json:"li_mode_d"`
	NiModeC         uint8     `json:"ni_mode_c"`
	NiModeD         uint8     `json:"ni_mode_d"`
	PbMode          uint8     `json:"pb_mode"`
	BalSpeed        uint8     `json:"bal_speed"`
	BalStartMode    uint8     `json:"bal_start_mode"`
	BalTimeout      uint8     `json:"bal_timeout"`
	BalStartVoltage uint16    `json:"bal_start_voltage"`
	BalDiff         uint8     `json:"bal_diff"`
	BalOverPoint    uint8     `json:"bal_over_point"`
	BalSetPoint     uint8     `json:"bal_set_point"`

	BalDelay                 uint8  `json:"bal_delay"`
	KeepChargeEnable         uint8  `json:"keep_charge_enable"`
	LipoChargeCellVoltage    uint16 `json:"lipo_charge_cell_voltage"`
	LiloChargeCellVoltage    uint16 `json:"lilo_charge_cell_voltage"`
	LifeChargeCellVoltage    uint16 `json:"life_charge_cell_voltage"`
	LipoStorageCellVoltage   uint16 `json:"lipo_storage_cell_voltage"`
	LiloStorageCellVoltage   uint16 `json:"lilo_storage_cell_voltage"`
	LifeStorageCellVoltage   uint16 `json:"life_storage_cell_voltage"`
	LipoDischargeCellVoltage uint16 `json:"lipo_discharge_cell_voltage"`
	LiloDischargeCellVoltage uint16 `json:"lilo_discharge_cell_voltage"`
	LifeDischargeCellVoltage uint16 `json:"life_discharge_cell_voltage"`
	ChargeCurrent            uint16 `json:"charge_current"`
	DischargeCurrent         uint16 `json:"discharge_current"`
	EndCharge                uint16 `json:"end_charge"`
	EndDischarge             uint16 `json:"end_discharge"`
	RegDischargeMode         uint16 `json:"reg_discharge_mode"`

	NiPeak             uint16 `json:"ni_peak"`
	NiPeakDelay        uint16 `json:"ni_peak_delay"`
	NiTrickleEnable    uint16 `json:"ni_trickle_enable"`
	NiTrickleCurrent   uint16 `json:"ni_trickle_current"`
	NiTrickleTime      uint16 `json:"ni_trickle_time"`
	NiZeroEnable       uint16 `json:"ni_zero_enable"`
	NiDischargeVoltage uint16 `json:"ni_discharge_voltage"`
	PbChargeVoltage    uint16 `json:"pb_charge_voltage"`
	PbDischargeVoltage uint16 `json:"pb_discharge_voltage"`
	PbCellFloatVoltage uint16 `json:"pb_cell_float_voltage"`
	PbFloatEnable      uint16 `json:"pb_float_enable"`
	RestoreVoltage     uint16 `json:"restore_voltage"`
	RestoreTime        uint16 `json:"restore_time"`
	RestoreCurrent     uint16 `json:"restore_current"`
	CycleCount         uint16 `json:"cycle_count"`
	CycleDelay         uint16 `json:"cycle_delay"`

	CycleMode          uint8  `json:"cycle_mode"`
	SafetyTimeC        uint16 `json:"safety_time_c"`
	SafetyCapC         uint16 `json:"safety_cap_c"`
	SafetyTempC        uint16 `json:"safety_temp_c"`
	SafetyTimeD        uint16 `json:"safety_time_d"`
	SafetyCapD         uint16 `json:"safety_cap_d"`
	SafetyTempD        uint16 `json:"safety_temp_d"`
	RegChMode          uint8  `json:"reg_ch_mode"`
	RegChVolt          uint16 `json:"reg_ch_volt"`
	RegChCurrent       uint16 `json:"reg_ch_current"`
	FastStore          uint8  `json:"fast_store"`
	StoreCompensation  uint16 `json:"store_compensation"`
	NiZnChargeCellVolt uint16 `json:"ni_zn_charge_cell_volt"`
	NiZnDisCellVolt    uint16 `json:"ni_zn_dis_cell_volt"`
	NiZnCell           uint8  `json:"ni_zn_cell"`
}

// IsFixed marks a factory preset that may not be deleted or overwritten.
func (p Preset) IsFixed() bool { return p.UseFlag == UseFlagFixed }

// IsUnused marks an empty slot.
func (p Preset) IsUnused() bool { return p.UseFlag == UseFlagEmpty }

// VerifyCanBeWrittenOrDeleted rejects fixed presets.
func (p Preset) VerifyCanBeWrittenOrDeleted() error {
	if p.IsFixed() {
		return fmt.Errorf("%w: preset %q in slot %d is fixed", ErrProtectedObject, p.Name, p.MemorySlot)
	}
	return nil
}

// Validate checks the fields a client may get wrong.
func (p Preset) Validate() error {
	if len(p.Name) >= PresetNameLength {
		return fmt.Errorf("%w: preset name longer than %d characters", ErrBadRequest, PresetNameLength-1)
	}
	for i := 0; i < len(p.Name); i++ {
		if p.Name[i] < 0x20 || p.Name[i] > 0x7E {
			return fmt.Errorf("%w: preset name must be printable ASCII", ErrBadRequest)
		}
	}
	if p.Type > NiZn {
		return fmt.Errorf("%w: unknown chemistry type %d", ErrBadRequest, p.Type)
	}
	if p.LiCell > CellCount {
		return fmt.Errorf("%w: li_cell %d exceeds %d", ErrBadRequest, p.LiCell, CellCount)
	}
	if p.NiCell > 25 {
		return fmt.Errorf("%w: ni_cell %d exceeds 25", ErrBadRequest, p.NiCell)
	}
	if p.PbCell > 12 {
		return fmt.Errorf("%w: pb_cell %d exceeds 12", ErrBadRequest, p.PbCell)
	}
	return nil
}

func (p *Preset) bindings() []binding {
	return []binding{
		bindU16("use_flag", &p.UseFlag),
		bindU32("capacity", &p.Capacity),
		bindU8("auto_save", &p.AutoSave),
		bindU8("li_balance_end_mode", &p.LiBalanceEndMode),
		bindU16("op_enable_mask", &p.OpEnableMask),
		bindU8("channel_mode", &p.ChannelMode),

		bindU8("save_to_sd", &p.SaveToSD),
		bindU16("log_interval", &p.LogInterval),
		bindU16("run_counter", &p.RunCounter),
		bindU8("type", (*uint8)(&p.Type)),
		bindU8("li_cell", &p.LiCell),
		bindU8("ni_cell", &p.NiCell),
		bindU8("pb_cell", &p.PbCell),
		bindU8("li_mode_c", &p.LiModeC),
		bindU8("li_mode_d", &p.LiModeD),
		bindU8("ni_mode_c", &p.NiModeC),
		bindU8("ni_mode_d", &p.NiModeD),
		bindU8("pb_mode", &p.PbMode),
		bindU8("bal_speed", &p.BalSpeed),
		bindU8("bal_start_mode", &p.BalStartMode),
		bindU8("bal_timeout", &p.BalTimeout),
		bindU16("bal_start_voltage", &p.BalStartVoltage),
		bindU8("bal_diff", &p.BalDiff),
		bindU8("bal_over_point", &p.BalOverPoint),
		bindU8("bal_set_point", &p.BalSetPoint),

		bindU8("bal_delay", &p.BalDelay),
		bindU8("keep_charge_enable", &p.KeepChargeEnable),
		bindU16("lipo_charge_cell_voltage", &p.LipoChargeCellVoltage),
		bindU16("lilo_charge_cell_voltage", &p.LiloChargeCellVoltage),
		bindU16("life_charge_cell_voltage", &p.LifeChargeCellVoltage),
		bindU16("lipo_storage_cell_voltage", &p.LipoStorageCellVoltage),
		bindU16("lilo_storage_cell_voltage", &p.LiloStorageCellVoltage),
		bindU16("life_storage_cell_voltage", &p.LifeStorageCellVoltage),
		bindU16("lipo_discharge_cell_voltage", &p.LipoDischargeCellVoltage),
		bindU16("lilo_discharge_cell_voltage", &p.LiloDischargeCellVoltage),
		bindU16("life_discharge_cell_voltage", &p.LifeDischargeCellVoltage),
		bindU16("charge_current", &p.ChargeCurrent),
		bindU16("discharge_current", &p.DischargeCurrent),
		bindU16("end_charge", &p.EndCharge),
		bindU16("end_discharge", &p.EndDischarge),
		bindU16("reg_discharge_mode", &p.RegDischargeMode),

		bindU16("ni_peak", &p.NiPeak),
		bindU16("ni_peak_delay", &p.NiPeakDelay),
		bindU16("ni_trickle_enable", &p.NiTrickleEnable),
		bindU16("ni_trickle_current", &p.NiTrickleCurrent),
		bindU16("ni_trickle_time", &p.NiTrickleTime),
		bindU16("ni_zero_enable", &p.NiZeroEnable),
		bindU16("ni_discharge_voltage", &p.NiDischargeVoltage),
		bindU16("pb_charge_voltage", &p.PbChargeVoltage),
		bindU16("pb_discharge_voltage", &p.PbDischargeVoltage),
		bindU16("pb_cell_float_voltage", &p.PbCellFloatVoltage),
		bindU16("pb_float_enable", &p.PbFloatEnable),
		bindU16("restore_voltage", &p.RestoreVoltage),
		bindU16("restore_time", &p.RestoreTime),
		bindU16("restore_current", &p.RestoreCurrent),
		bindU16("cycle_count", &p.CycleCount),
		bindU16("cycle_delay", &p.CycleDelay),

		bindU8("cycle_mode", &p.CycleMode),
		bindU16("safety_time_c", &p.SafetyTimeC),
		bindU16("safety_cap_c", &p.SafetyCapC),
		bindU16("safety_temp_c", &p.SafetyTempC),
		bindU16("safety_time_d", &p.SafetyTimeD),
		bindU16("safety_cap_d", &p.SafetyCapD),
		bindU16("safety_temp_d", &p.SafetyTempD),
		bindU8("reg_ch_mode", &p.RegChMode),
		bindU16("reg_ch_volt", &p.RegChVolt),
		bindU16("reg_ch_current", &p.RegChCurrent),
		bindU8("fast_store", &p.FastStore),
		bindU16("store_compensation", &p.StoreCompensation),
		bindU16("ni_zn_charge_cell_volt", &p.NiZnChargeCellVolt),
		bindU16("ni_zn_dis_cell_volt", &p.NiZnDisCellVolt),
		bindU8("ni_zn_cell", &p.NiZnCell),
	}
}

// DecodePreset assembles the five segment reads of the preset in slot.
func DecodePreset(slot int, parts ...*layout.Values) (Preset, error) {
	if len(parts) != len(PresetLayouts) {
		return Preset{}, fmt.Errorf("preset: got %d segments want %d", len(parts), len(PresetLayouts))
	}

	p := Preset{MemorySlot: slot}
	bs := p.bindings()
	for _, v := range parts {
		load(v, bs)
	}
	p.Name = parts[0].String("name")
	copy(p.Reserved[:], parts[0].Bytes("reserved"))
	return p, nil
}

// WriteValues returns one value set per PresetLayouts entry.
func (p Preset) WriteValues() []*layout.Values {
	bs := p.bindings()
	out := make([]*layout.Values, 0, len(PresetLayouts))
	for _, l := range PresetLayouts {
		out = append(out, store(l, bs))
	}
	out[0].SetString("name", p.Name)
	out[0].SetBytes("reserved", p.Reserved[:])
	return out
}

// PresetJSON adds the derived flags to the wire form.
type PresetJSON struct {
	Preset
	IsFixed  bool `json:"is_fixed"`
	IsUnused bool `json:"is_unused"`
}

func (p Preset) ToJSON() PresetJSON {
	return PresetJSON{Preset: p, IsFixed: p.IsFixed(), IsUnused: p.IsUnused()}
}
