// internal/comms/registers.go
package comms

import (
	"fmt"
	"strings"

	"github.com/tamzrod/charger-bridge/internal/model"
)

// Register map. These values are fixed by the device firmware and MUST NOT
// be configurable.

// ---- input registers ----

const (
	deviceInfoAddr uint16 = 0x0000
	channel0Addr   uint16 = 0x0100
	channel1Addr   uint16 = 0x0200
)

// Channel telemetry offsets from the channel base.
const (
	channelHeaderOffset      uint16 = 0
	channelCellVoltOffset    uint16 = 11
	channelCellBalanceOffset uint16 = 27
	channelCellIROffset      uint16 = 35
	channelFooterOffset      uint16 = 51
)

// ---- holding registers ----

const (
	commandAddr     uint16 = 0x8000
	systemAddr      uint16 = 0x8400
	presetIndexAddr uint16 = 0x8800
	presetAddr      uint16 = 0x8C00
)

// Command block entry points.
const (
	runAddr    = commandAddr     // operation, slot, channel, lock, order
	selectAddr = commandAddr + 1 // slot, channel
	stopAddr   = commandAddr + 2 // channel, lock, order, value1, value2
	orderAddr  = commandAddr + 3 // lock, order, value1, value2
)

// OrderLock authorizes the order written with it.
const OrderLock uint16 = 0x55AA

// Order is a command code written to the order register.
type Order uint16

const (
	OrderStop Order = iota
	OrderRun
	OrderModify
	OrderWriteSys
	OrderWriteMemHead
	OrderWriteMem
	OrderTransLogOn
	OrderTransLogOff
	OrderMsgBoxYes
	OrderMsgBoxNo
)

var orderNames = [...]string{
	"stop", "run", "modify", "write-sys", "write-mem-head",
	"write-mem", "trans-log-on", "trans-log-off", "msgbox-yes", "msgbox-no",
}

func (o Order) String() string {
	if int(o) < len(orderNames) {
		return orderNames[o]
	}
	return fmt.Sprintf("order(%d)", uint16(o))
}

// Operation selects what a run order does.
type Operation uint16

const (
	OperationCharge Operation = iota
	OperationStorage
	OperationDischarge
	OperationCycle
	OperationBalance
)

var operationNames = [...]string{"charge", "storage", "discharge", "cycle", "balance"}

func (o Operation) String() string {
	if int(o) < len(operationNames) {
		return operationNames[o]
	}
	return fmt.Sprintf("operation(%d)", uint16(o))
}

// ParseOperation maps an operation name to its code.
func ParseOperation(name string) (Operation, error) {
	for i, n := range operationNames {
		if strings.EqualFold(n, name) {
			return Operation(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown operation %q", model.ErrBadRequest, name)
}

func channelBase(channel int) uint16 {
	if channel == 0 {
		return channel0Addr
	}
	return channel1Addr
}
