// Package bletest provides an in-memory ble.Transport for tests. It simulates
// connect, disconnect and write-failure sequences without hardware.
package bletest

import (
	"errors"
	"sync"

	"github.com/chaz8081/ble-counter/internal/ble"
)

// ErrWriteFailed is returned by WriteValue while failures are queued.
var ErrWriteFailed = errors.New("bletest: notify failed")

// Transport records every call made by the session controller.
type Transport struct {
	mu sync.Mutex

	// Errors returned by the bring-up steps.
	InitErr      error
	IdentityErr  error
	RegisterErr  error
	AdvertiseErr error

	// RSSI and RSSIErr are returned by SignalStrength.
	RSSI    int
	RSSIErr error

	Identity       ble.Identity
	Characteristic ble.CharacteristicSpec
	Steps          []string

	peer         *ble.Peer
	failWrites   int
	attempts     []int32
	delivered    []int32
	advertises   int
	polls        int
	rssiRequests int
}

// New returns a fake transport with no central connected.
func New() *Transport {
	return &Transport{RSSI: -60}
}

// Connect simulates a central connecting with the given address.
func (t *Transport) Connect(addr string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peer = &ble.Peer{Address: addr}
}

// Disconnect simulates the connected central going away.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peer = nil
}

// FailWrites makes the next n WriteValue calls fail.
func (t *Transport) FailWrites(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failWrites = n
}

func (t *Transport) Initialize() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Steps = append(t.Steps, "initialize")
	return t.InitErr
}

func (t *Transport) ConfigureIdentity(id ble.Identity) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Steps = append(t.Steps, "identity")
	t.Identity = id
	return t.IdentityErr
}

func (t *Transport) RegisterCharacteristic(spec ble.CharacteristicSpec) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Steps = append(t.Steps, "register")
	t.Characteristic = spec
	return t.RegisterErr
}

func (t *Transport) BeginAdvertising() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Steps = append(t.Steps, "advertise")
	t.advertises++
	return t.AdvertiseErr
}

func (t *Transport) PollConnectedPeer() (ble.Peer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.polls++
	if t.peer == nil {
		return ble.Peer{}, false
	}
	return *t.peer, true
}

func (t *Transport) PeerStillConnected(peer ble.Peer) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peer != nil && t.peer.Address == peer.Address
}

func (t *Transport) WriteValue(value int32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts = append(t.attempts, value)
	if t.failWrites > 0 {
		t.failWrites--
		return ErrWriteFailed
	}
	t.delivered = append(t.delivered, value)
	return nil
}

func (t *Transport) SignalStrength(peer ble.Peer) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rssiRequests++
	if t.RSSIErr != nil {
		return 0, t.RSSIErr
	}
	return t.RSSI, nil
}

// Attempts returns every value passed to WriteValue, including failed ones.
func (t *Transport) Attempts() []int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int32(nil), t.attempts...)
}

// Delivered returns the values whose write succeeded.
func (t *Transport) Delivered() []int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int32(nil), t.delivered...)
}

// Advertises returns how many times BeginAdvertising was called.
func (t *Transport) Advertises() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.advertises
}

// Polls returns how many times PollConnectedPeer was called.
func (t *Transport) Polls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.polls
}

// RSSIRequests returns how many times SignalStrength was called.
func (t *Transport) RSSIRequests() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rssiRequests
}

// Compile-time check that Transport implements ble.Transport.
var _ ble.Transport = (*Transport)(nil)
