//go:build !linux

package ble

// Peripheral is unavailable off Linux; every operation fails with
// ErrUnsupported so bring-up takes the fatal path.
type Peripheral struct{}

// NewPeripheral returns a transport that reports ErrUnsupported.
func NewPeripheral(adapterID string) *Peripheral { return &Peripheral{} }

func (p *Peripheral) Initialize() error                                    { return ErrUnsupported }
func (p *Peripheral) ConfigureIdentity(id Identity) error                  { return ErrUnsupported }
func (p *Peripheral) RegisterCharacteristic(spec CharacteristicSpec) error { return ErrUnsupported }
func (p *Peripheral) BeginAdvertising() error                              { return ErrUnsupported }
func (p *Peripheral) PollConnectedPeer() (Peer, bool)                      { return Peer{}, false }
func (p *Peripheral) PeerStillConnected(peer Peer) bool                    { return false }
func (p *Peripheral) WriteValue(value int32) error                         { return ErrUnsupported }
func (p *Peripheral) SignalStrength(peer Peer) (int, error)                { return 0, ErrUnsupported }

var _ Transport = (*Peripheral)(nil)
