package service

import "time"

// Clock supplies "today" to every engine call so results are deterministic
// and replayable in tests. The engines themselves never read the system
// clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, reading UTC wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always reports the same instant. For tests.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Time
}
