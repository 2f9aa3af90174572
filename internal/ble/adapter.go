// Package ble provides the BLE peripheral transport for the counter service.
// It handles adapter bring-up, advertising, GATT registration and value
// notification over Bluetooth Low Energy.
package ble

import (
	"errors"
	"fmt"
)

// Default counter service UUIDs.
const (
	ServiceUUID      = "19b10000-e8f2-537e-4f6c-d104768a1214"
	CounterCharUUID  = "19b10001-e8f2-537e-4f6c-d104768a1214"
	DefaultLocalName = "BLE Counter"
)

var (
	// ErrRSSIUnavailable is returned by SignalStrength when the stack does not
	// expose a signal reading for the peer.
	ErrRSSIUnavailable = errors.New("ble: rssi unavailable")
	// ErrNotInitialized is returned when an operation runs before Initialize.
	ErrNotInitialized = errors.New("ble: transport not initialized")
	// ErrUnsupported is returned on platforms without peripheral support.
	ErrUnsupported = errors.New("ble: peripheral mode not supported on this platform")
)

// Peer identifies a connected central by its opaque address.
type Peer struct {
	Address string
}

func (p Peer) String() string { return p.Address }

// Identity is the advertised name and primary service of the peripheral.
type Identity struct {
	LocalName   string
	ServiceUUID string
}

// CharacteristicSpec describes the single value characteristic.
type CharacteristicSpec struct {
	UUID     string
	Readable bool
	Notify   bool
}

// Transport abstracts the platform BLE stack for the session controller.
type Transport interface {
	// Initialize powers on the BLE adapter.
	Initialize() error
	// ConfigureIdentity sets the advertised local name and service.
	ConfigureIdentity(id Identity) error
	// RegisterCharacteristic adds the value characteristic to the service.
	RegisterCharacteristic(spec CharacteristicSpec) error
	// BeginAdvertising starts (or restarts) advertising.
	BeginAdvertising() error
	// PollConnectedPeer reports the currently connected central, if any.
	PollConnectedPeer() (Peer, bool)
	// PeerStillConnected reports whether peer is still connected.
	PeerStillConnected(peer Peer) bool
	// WriteValue stores value in the characteristic and notifies subscribers.
	WriteValue(value int32) error
	// SignalStrength returns the RSSI of peer in dBm.
	SignalStrength(peer Peer) (int, error)
}

// Begin runs the bring-up sequence: initialize, configure identity, register
// the characteristic and start advertising.
func Begin(t Transport, id Identity, spec CharacteristicSpec) error {
	if err := t.Initialize(); err != nil {
		return fmt.Errorf("ble: initialize: %w", err)
	}
	if err := t.ConfigureIdentity(id); err != nil {
		return fmt.Errorf("ble: configure identity: %w", err)
	}
	if err := t.RegisterCharacteristic(spec); err != nil {
		return fmt.Errorf("ble: register characteristic %s: %w", spec.UUID, err)
	}
	if err := t.BeginAdvertising(); err != nil {
		return fmt.Errorf("ble: begin advertising: %w", err)
	}
	return nil
}
