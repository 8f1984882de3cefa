// internal/status/encode.go
package status

// Presence is the fragment merged into every API payload.
type Presence struct {
	ChargerPresence string `json:"charger_presence"`
	ChannelCount    int    `json:"channel_count"`
}

// Encode converts a Snapshot into its presence payload.
// No IO. No side effects.
func Encode(s Snapshot) Presence {
	p := Presence{
		ChargerPresence: PresenceDisconnected,
		ChannelCount:    s.ChannelCount,
	}
	if s.Connected() {
		p.ChargerPresence = PresenceConnected
	}
	return p
}
