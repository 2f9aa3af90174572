// Package session drives the peripheral's connection lifecycle: it polls the
// transport for a central, tracks the active session and pushes the counter
// on a fixed interval while a central is connected.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/chaz8081/ble-counter/internal/ble"
	"github.com/chaz8081/ble-counter/internal/diag"
)

// Status is the controller's connection state.
type Status int

const (
	// Idle means no central is connected and the peripheral is advertising.
	Idle Status = iota
	// Connected means a central is connected and values are being sent.
	Connected
)

func (s Status) String() string {
	return []string{"idle", "connected"}[s]
}

// Clock supplies monotonic timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// MemoryProbe samples memory for heartbeat diagnostics.
type MemoryProbe interface {
	Sample() (diag.Memory, error)
}

// Options configures the controller.
type Options struct {
	SendInterval      time.Duration // gap between counter sends (default 1s)
	HeartbeatInterval time.Duration // gap between diagnostic heartbeats (default 30s)
	PollDelay         time.Duration // sleep between loop iterations (default 50ms)
	CounterMax        int32         // counter wraps to 0 after this (default 100)

	Clock  Clock       // nil uses the system clock
	Memory MemoryProbe // nil omits memory from heartbeats
	Logger *slog.Logger
}

// DefaultOptions returns the production timings.
func DefaultOptions() Options {
	return Options{
		SendInterval:      time.Second,
		HeartbeatInterval: 30 * time.Second,
		PollDelay:         50 * time.Millisecond,
		CounterMax:        DefaultCounterMax,
	}
}

// Session is one active connection.
type Session struct {
	Peer      ble.Peer
	StartedAt time.Time
	Active    bool
}

// Duration returns how long the session has lasted at now.
func (s *Session) Duration(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// State is everything the controller mutates. It is owned by the loop
// goroutine.
type State struct {
	Session          *Session
	Counter          Counter
	Timer            SendTimer
	TotalConnections uint64

	lastHeartbeat time.Time
}

// Controller is the connection session state machine.
type Controller struct {
	transport ble.Transport
	clock     Clock
	memory    MemoryProbe
	log       *slog.Logger
	opts      Options

	state State
}

// New creates a controller for an already brought-up transport.
func New(transport ble.Transport, opts Options) *Controller {
	def := DefaultOptions()
	if opts.SendInterval <= 0 {
		opts.SendInterval = def.SendInterval
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = def.HeartbeatInterval
	}
	if opts.PollDelay <= 0 {
		opts.PollDelay = def.PollDelay
	}
	if opts.CounterMax <= 0 {
		opts.CounterMax = def.CounterMax
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		transport: transport,
		clock:     clock,
		memory:    opts.Memory,
		log:       logger,
		opts:      opts,
		state: State{
			Counter:       NewCounter(opts.CounterMax),
			Timer:         NewSendTimer(opts.SendInterval),
			lastHeartbeat: clock.Now(),
		},
	}
}

// Status reports whether a session is active.
func (c *Controller) Status() Status {
	if c.state.Session != nil {
		return Connected
	}
	return Idle
}

// State returns a copy of the controller state.
func (c *Controller) State() State {
	st := c.state
	if st.Session != nil {
		s := *st.Session
		st.Session = &s
	}
	return st
}

// Run services Tick until ctx is cancelled, sleeping PollDelay between
// iterations.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.PollDelay)
	defer ticker.Stop()

	c.log.Info("[SESSION] waiting for central", "send_interval", c.opts.SendInterval)
	for {
		c.Tick()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one iteration of the state machine.
func (c *Controller) Tick() {
	now := c.clock.Now()

	if c.state.Session == nil {
		peer, ok := c.transport.PollConnectedPeer()
		if ok {
			c.connect(peer, now)
			return
		}
		c.maybeHeartbeat(now)
		return
	}

	if !c.transport.PeerStillConnected(c.state.Session.Peer) {
		c.disconnect(now)
		return
	}

	c.maybeSend(now)
	c.maybeHeartbeat(now)
}

func (c *Controller) connect(peer ble.Peer, now time.Time) {
	c.state.Session = &Session{Peer: peer, StartedAt: now, Active: true}
	c.state.Timer.Arm(now)
	c.state.TotalConnections++
	c.state.lastHeartbeat = now

	c.log.Info("[SESSION] central connected",
		"peer", peer.Address,
		"connections", c.state.TotalConnections,
		"value", c.state.Counter.Value())
}

func (c *Controller) disconnect(now time.Time) {
	s := c.state.Session
	c.state.Session = nil
	c.state.lastHeartbeat = now

	c.log.Info("[SESSION] central disconnected",
		"peer", s.Peer.Address,
		"duration", s.Duration(now).Round(time.Millisecond))

	// Best effort, no retry.
	if err := c.transport.BeginAdvertising(); err != nil {
		c.log.Warn("[SESSION] restart advertising failed", "error", err)
		return
	}
	c.log.Info("[SESSION] advertising restarted")
}

// maybeSend pushes the next counter value once SendInterval has elapsed.
// The timer advances whether or not the write succeeds.
func (c *Controller) maybeSend(now time.Time) {
	if !c.state.Timer.Due(now) {
		return
	}
	value := c.state.Counter.Next()
	err := c.transport.WriteValue(value)
	c.state.Timer.Mark(now)

	if err != nil {
		c.log.Warn("[SESSION] notify failed", "value", value, "error", err)
		return
	}
	c.log.Debug("[SESSION] notified", "value", value)
}

func (c *Controller) maybeHeartbeat(now time.Time) {
	if now.Sub(c.state.lastHeartbeat) < c.opts.HeartbeatInterval {
		return
	}
	c.state.lastHeartbeat = now

	attrs := []any{
		"state", c.Status().String(),
		"connections", c.state.TotalConnections,
		"value", c.state.Counter.Value(),
	}
	if s := c.state.Session; s != nil {
		attrs = append(attrs,
			"peer", s.Peer.Address,
			"uptime", s.Duration(now).Round(time.Second))
		rssi, err := c.transport.SignalStrength(s.Peer)
		switch {
		case err == nil:
			attrs = append(attrs, "rssi", rssi)
		case errors.Is(err, ble.ErrRSSIUnavailable):
			attrs = append(attrs, "rssi", "unavailable")
		default:
			attrs = append(attrs, "rssi", "error")
			c.log.Debug("[SESSION] read rssi", "error", err)
		}
	}
	if c.memory != nil {
		m, err := c.memory.Sample()
		if err != nil {
			c.log.Debug("[SESSION] sample memory", "error", err)
		} else {
			attrs = append(attrs, "mem", m)
		}
	}

	c.log.Info("[SESSION] heartbeat", attrs...)
}
