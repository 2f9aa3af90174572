package session

import "time"

// SendTimer decides when the next value is due.
type SendTimer struct {
	last     time.Time
	interval time.Duration
}

// NewSendTimer returns a timer firing every interval.
func NewSendTimer(interval time.Duration) SendTimer {
	return SendTimer{interval: interval}
}

// Arm sets the reference point the first interval is measured from.
func (t *SendTimer) Arm(now time.Time) { t.last = now }

// Due reports whether at least one interval has elapsed since the last send.
func (t SendTimer) Due(now time.Time) bool {
	return now.Sub(t.last) >= t.interval
}

// Mark records a send attempt at now.
func (t *SendTimer) Mark(now time.Time) { t.last = now }

// Last returns the time of the last send attempt (or the arm time).
func (t SendTimer) Last() time.Time { return t.last }
