// internal/transport/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/charger-bridge/internal/segment"
)

// Client is a Modbus RTU connection to one charger over a serial line.
// It serializes requests: the line carries one transaction at a time.
// This adapter is geometry-only: it moves registers, never decodes them.
type Client struct {
	mu      sync.Mutex
	handler *modbus.RTUClientHandler
	client  modbus.Client
	logw    io.Closer
}

type Config struct {
	Device   string
	BaudRate int
	DataBits int
	Parity   string
	StopBits int
	SlaveID  uint8
	Timeout  time.Duration

	// Log, when set, receives the handler's frame trace at debug level.
	Log *logrus.Entry
}

// New opens the serial port and returns a connected client.
func New(cfg Config) (*Client, error) {
	if cfg.Device == "" {
		return nil, errors.New("transport modbus: device required")
	}

	h := modbus.NewRTUClientHandler(cfg.Device)
	h.Config = serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
		Timeout:  cfg.Timeout,
	}
	h.SlaveId = cfg.SlaveID

	c := &Client{handler: h}

	if cfg.Log != nil && cfg.Log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		w := cfg.Log.WriterLevel(logrus.DebugLevel)
		h.Logger = log.New(w, "", 0)
		c.logw = w
	}

	if err := h.Connect(); err != nil {
		c.closeLog()
		return nil, fmt.Errorf("transport modbus: open %s: %w", cfg.Device, err)
	}

	c.client = modbus.NewClient(h)
	return c, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.handler.Close()
	c.closeLog()
	return err
}

// Reset drops and reopens the serial port.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.handler.Close()
	return c.handler.Connect()
}

// ---- segment.Registers ----

func (c *Client) ReadRegisters(fc segment.FunctionCode, addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		data []byte
		err  error
	)
	switch fc {
	case segment.ReadHolding:
		data, err = c.client.ReadHoldingRegisters(addr, qty)
	case segment.ReadInput:
		data, err = c.client.ReadInputRegisters(addr, qty)
	default:
		return nil, fmt.Errorf("transport modbus: unsupported read function %d", fc)
	}
	if err != nil {
		return nil, err
	}

	regs := unpackRegisters(data)
	if len(regs) != int(qty) {
		return nil, fmt.Errorf("transport modbus: got %d registers want %d", len(regs), qty)
	}
	return regs, nil
}

func (c *Client) WriteRegisters(addr uint16, regs []uint16) (segment.Ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	qty := uint16(len(regs))
	payload := packRegisters(regs)

	results, err := c.client.WriteMultipleRegisters(addr, qty, payload)
	if err != nil {
		return segment.Ack{}, err
	}
	return ackFrom(addr, results)
}

// ---- helpers (pure geometry) ----

func (c *Client) closeLog() {
	if c.logw != nil {
		_ = c.logw.Close()
		c.logw = nil
	}
}

// ackFrom builds the write acknowledgement from the echoed quantity.
func ackFrom(addr uint16, results []byte) (segment.Ack, error) {
	if len(results) != 2 {
		return segment.Ack{}, fmt.Errorf("transport modbus: write response length %d, want 2", len(results))
	}
	return segment.Ack{
		Address:  addr,
		Quantity: uint16(results[0])<<8 | uint16(results[1]),
	}, nil
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
