package gateway

import (
	"github.com/rapidaid/rapidaid/internal/pkg/nsq"
	"github.com/rapidaid/rapidaid/services/realtime"
)

// EmergencyGW implements the emergency gateways interface
type EmergencyGW struct {
	producer *nsq.Producer
	bus      realtime.Bus
}

// NewEmergencyGW creates a new emergency gateway
func NewEmergencyGW(producer *nsq.Producer, bus realtime.Bus) *EmergencyGW {
	return &EmergencyGW{
		producer: producer,
		bus:      bus,
	}
}
