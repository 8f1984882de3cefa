// internal/model/control.go
package model

import "github.com/tamzrod/charger-bridge/internal/layout"

// ControlLayout is the 7-word command block snapshot.
var ControlLayout = layout.MustNew("control",
	layout.Uint16("operation"),
	layout.Uint16("memory_slot"),
	layout.Uint16("channel"),
	layout.Uint16("order_lock"),
	layout.Uint16("order"),
	layout.Uint16("value1"),
	layout.Uint16("value2"),
)

// Control is the raw content of the command block.
type Control struct {
	Operation  uint16 `json:"op_operation"`
	MemorySlot uint16 `json:"op_memory"`
	Channel    uint16 `json:"op_channel"`
	OrderLock  uint16 `json:"op_order_lock"`
	Order      uint16 `json:"op_order"`
	Value1     uint16 `json:"op_value1"`
	Value2     uint16 `json:"op_value2"`
}

func DecodeControl(v *layout.Values) Control {
	var c Control
	load(v, c.bindings())
	return c
}

func (c *Control) bindings() []binding {
	return []binding{
		bindU16("operation", &c.Operation),
		bindU16("memory_slot", &c.MemorySlot),
		bindU16("channel", &c.Channel),
		bindU16("order_lock", &c.OrderLock),
		bindU16("order", &c.Order),
		bindU16("value1", &c.Value1),
		bindU16("value2", &c.Value2),
	}
}
