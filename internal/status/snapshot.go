// internal/status/snapshot.go
package status

// Snapshot is the charger presence state at one instant.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health              uint16 `json:"health"`
	LastErrorCode       uint16 `json:"last_error_code"`
	LastError           string `json:"last_error,omitempty"`
	SecondsInError      uint16 `json:"seconds_in_error"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	ChannelCount        int    `json:"channel_count"`
}

// Connected reports whether the last transaction succeeded.
func (s Snapshot) Connected() bool {
	return s.Health == HealthOK
}
