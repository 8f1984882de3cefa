// internal/model/response.go
package model

import "github.com/tamzrod/charger-bridge/internal/segment"

// OperationResponse is the command write acknowledgment plus the channel
// status read back right after the command.
type OperationResponse struct {
	Ack     segment.Ack  `json:"ack"`
	Channel int          `json:"channel"`
	Status  DeviceStatus `json:"status"`
}
