// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultBaudRate   = 115200
	DefaultDataBits   = 8
	DefaultParity     = "N"
	DefaultStopBits   = 1
	DefaultTimeoutMs  = 1000
	DefaultSlaveID    = 1
	DefaultRetryLimit = 30
	DefaultMinDelayMs = 50
	DefaultMaxDelayMs = 2000
	DefaultIntervalMs = 2000
	DefaultListen     = ":5000"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	s := &cfg.Charger.Serial
	setInt(&s.BaudRate, DefaultBaudRate)
	setInt(&s.DataBits, DefaultDataBits)
	setInt(&s.StopBits, DefaultStopBits)
	setInt(&s.TimeoutMs, DefaultTimeoutMs)
	s.Parity = strings.ToUpper(s.Parity)
	if s.Parity == "" {
		s.Parity = DefaultParity
	}
	if cfg.Charger.SlaveID == 0 {
		cfg.Charger.SlaveID = DefaultSlaveID
	}

	r := &cfg.Retry
	setInt(&r.Limit, DefaultRetryLimit)
	setInt(&r.MinDelayMs, DefaultMinDelayMs)
	setInt(&r.MaxDelayMs, DefaultMaxDelayMs)
	// A lone min above the default max widens max.
	if r.MaxDelayMs < r.MinDelayMs {
		r.MaxDelayMs = r.MinDelayMs
	}

	setInt(&cfg.Monitor.IntervalMs, DefaultIntervalMs)

	if cfg.HTTP.Listen == "" {
		cfg.HTTP.Listen = DefaultListen
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

func setInt(p *int, def int) {
	if *p == 0 {
		*p = def
	}
}
