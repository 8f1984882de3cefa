// internal/config/config.go
package config

type Config struct {
	Charger ChargerConfig `yaml:"charger"`
	Retry   RetryConfig   `yaml:"retry"`
	Monitor MonitorConfig `yaml:"monitor"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// ---- CHARGER ----

type ChargerConfig struct {
	Serial  SerialConfig `yaml:"serial"`
	SlaveID uint8        `yaml:"slave_id"`
}

type SerialConfig struct {
	Device    string `yaml:"device"`
	BaudRate  int    `yaml:"baud_rate"`
	DataBits  int    `yaml:"data_bits"`
	Parity    string `yaml:"parity"` // N, E or O
	StopBits  int    `yaml:"stop_bits"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- RETRY ----

type RetryConfig struct {
	Limit      int `yaml:"limit"`
	MinDelayMs int `yaml:"min_delay_ms"`
	MaxDelayMs int `yaml:"max_delay_ms"`
}

// ---- MONITOR ----

type MonitorConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- HTTP ----

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // text or json
}
