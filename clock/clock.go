package clock

import "time"

// Clock abstracts time so the sampling and replay loops can run against
// virtual time in tests. All time-dependent code in padrec uses this
// interface instead of calling the time package directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
	// After returns a channel that receives the current time after duration d.
	After(d time.Duration) <-chan time.Time
}

// Real delegates to the standard time package. time.Time carries a
// monotonic reading, so elapsed calculations are immune to wall-clock
// adjustments.
type Real struct{}

func NewReal() *Real {
	return &Real{}
}

func (c *Real) Now() time.Time {
	return time.Now()
}

func (c *Real) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (c *Real) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
