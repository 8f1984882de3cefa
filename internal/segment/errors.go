// internal/segment/errors.go
package segment

import (
	"errors"
	"fmt"
)

// TransportError is a register I/O fault. It is the only error kind the
// retry wrapper treats as transient.
type TransportError struct {
	Op       string
	Address  uint16
	Quantity uint16
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s addr=0x%04X qty=%d: %v", e.Op, e.Address, e.Quantity, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err carries a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
