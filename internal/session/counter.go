package session

// DefaultCounterMax is the largest value the counter carries before wrapping.
const DefaultCounterMax int32 = 100

// Counter is a bounded value in [0, max] that wraps to 0 after max.
type Counter struct {
	value int32
	max   int32
}

// NewCounter returns a counter at 0 with the given upper bound.
func NewCounter(limit int32) Counter {
	return Counter{max: limit}
}

// Value returns the current value.
func (c Counter) Value() int32 { return c.value }

// Next advances the counter and returns the new value.
func (c *Counter) Next() int32 {
	c.value++
	if c.value > c.max {
		c.value = 0
	}
	return c.value
}
