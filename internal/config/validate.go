// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
//
// Zero values mean "use the default" and are accepted; Normalize fills them.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	// ------------------------------------------------------------
	// CHARGER SERIAL LINE
	// ------------------------------------------------------------

	s := cfg.Charger.Serial

	if s.Device == "" {
		return errors.New("charger.serial.device is required")
	}
	if s.BaudRate < 0 {
		return fmt.Errorf("charger.serial.baud_rate must be > 0, got %d", s.BaudRate)
	}
	switch s.DataBits {
	case 0, 7, 8:
	default:
		return fmt.Errorf("charger.serial.data_bits must be 7 or 8, got %d", s.DataBits)
	}
	switch s.StopBits {
	case 0, 1, 2:
	default:
		return fmt.Errorf("charger.serial.stop_bits must be 1 or 2, got %d", s.StopBits)
	}
	switch strings.ToUpper(s.Parity) {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("charger.serial.parity must be N, E or O, got %q", s.Parity)
	}
	if s.TimeoutMs < 0 {
		return fmt.Errorf("charger.serial.timeout_ms must be > 0, got %d", s.TimeoutMs)
	}
	if cfg.Charger.SlaveID > 247 {
		return fmt.Errorf("charger.slave_id must be 1..247, got %d", cfg.Charger.SlaveID)
	}

	// ------------------------------------------------------------
	// RETRY
	// ------------------------------------------------------------

	r := cfg.Retry

	if r.Limit < 0 {
		return fmt.Errorf("retry.limit must be >= 1, got %d", r.Limit)
	}
	if r.MinDelayMs < 0 || r.MaxDelayMs < 0 {
		return errors.New("retry delays must not be negative")
	}
	if r.MinDelayMs > 0 && r.MaxDelayMs > 0 && r.MinDelayMs > r.MaxDelayMs {
		return fmt.Errorf(
			"retry.min_delay_ms (%d) must not exceed retry.max_delay_ms (%d)",
			r.MinDelayMs,
			r.MaxDelayMs,
		)
	}

	// ------------------------------------------------------------
	// MONITOR / LOGGING
	// ------------------------------------------------------------

	if cfg.Monitor.IntervalMs < 0 {
		return fmt.Errorf("monitor.interval_ms must be > 0, got %d", cfg.Monitor.IntervalMs)
	}

	if cfg.Logging.Level != "" {
		if _, err := logrus.ParseLevel(cfg.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}

	return nil
}
