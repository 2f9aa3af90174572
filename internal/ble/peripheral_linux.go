//go:build linux

package ble

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/chaz8081/ble-counter/internal/ble/protocol"
	"tinygo.org/x/bluetooth"
)

// Peripheral wraps tinygo-org/bluetooth in peripheral (GATT server) mode on
// top of BlueZ. Central addresses are MAC address strings.
type Peripheral struct {
	adapter   *bluetooth.Adapter
	adapterID string

	adv         *bluetooth.Advertisement
	serviceUUID bluetooth.UUID
	char        bluetooth.Characteristic
	enabled     bool
	registered  bool
	advertising bool

	// mu protects central, which the stack's connect handler updates.
	mu      sync.Mutex
	central *Peer

	rssi bluezRSSI
}

// NewPeripheral creates a peripheral transport on the default adapter.
// adapterID names the BlueZ controller (e.g. "hci0") and is used for
// RSSI lookups.
func NewPeripheral(adapterID string) *Peripheral {
	return &Peripheral{
		adapter:   bluetooth.DefaultAdapter,
		adapterID: adapterID,
		rssi:      bluezRSSI{adapterID: adapterID},
	}
}

func (p *Peripheral) Initialize() error {
	if err := p.adapter.Enable(); err != nil {
		return err
	}

	// The stack calls this from its own goroutine; only the central slot is
	// touched here.
	p.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		p.setCentral(device.Address.String(), connected)
	})

	p.enabled = true
	return nil
}

func (p *Peripheral) ConfigureIdentity(id Identity) error {
	if !p.enabled {
		return ErrNotInitialized
	}
	svc, err := parseUUID(id.ServiceUUID)
	if err != nil {
		return err
	}
	p.serviceUUID = svc
	p.adv = p.adapter.DefaultAdvertisement()
	return p.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    id.LocalName,
		ServiceUUIDs: []bluetooth.UUID{svc},
	})
}

func (p *Peripheral) RegisterCharacteristic(spec CharacteristicSpec) error {
	if p.adv == nil {
		return ErrNotInitialized
	}
	charUUID, err := parseUUID(spec.UUID)
	if err != nil {
		return err
	}

	var flags bluetooth.CharacteristicPermissions
	if spec.Readable {
		flags |= bluetooth.CharacteristicReadPermission
	}
	if spec.Notify {
		flags |= bluetooth.CharacteristicNotifyPermission
	}

	err = p.adapter.AddService(&bluetooth.Service{
		UUID: p.serviceUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &p.char,
				UUID:   charUUID,
				Value:  protocol.EncodeValue(0),
				Flags:  flags,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ble: add service: %w", err)
	}
	p.registered = true
	return nil
}

// BeginAdvertising starts advertising. BlueZ keeps the advertisement
// registered across connections, so a restart unregisters it first.
func (p *Peripheral) BeginAdvertising() error {
	if p.adv == nil {
		return ErrNotInitialized
	}
	if p.advertising {
		if err := p.adv.Stop(); err != nil {
			slog.Debug("[BLE] stop advertisement before restart", "error", err)
		}
		p.advertising = false
	}
	if err := p.adv.Start(); err != nil {
		return err
	}
	p.advertising = true
	return nil
}

func (p *Peripheral) PollConnectedPeer() (Peer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.central == nil {
		return Peer{}, false
	}
	return *p.central, true
}

func (p *Peripheral) PeerStillConnected(peer Peer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.central != nil && p.central.Address == peer.Address
}

func (p *Peripheral) WriteValue(value int32) error {
	if !p.registered {
		return ErrNotInitialized
	}
	_, err := p.char.Write(protocol.EncodeValue(value))
	return err
}

func (p *Peripheral) SignalStrength(peer Peer) (int, error) {
	return p.rssi.Read(peer.Address)
}

// setCentral records a connect or disconnect reported by the stack. A
// disconnect from an address other than the tracked central is ignored.
func (p *Peripheral) setCentral(addr string, connected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if connected {
		if p.central == nil {
			p.central = &Peer{Address: addr}
		}
		return
	}
	if p.central != nil && p.central.Address == addr {
		p.central = nil
	}
}

// Compile-time check that Peripheral implements Transport.
var _ Transport = (*Peripheral)(nil)
