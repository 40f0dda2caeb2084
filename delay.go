package epd47

import "time"

// Delayer blocks the caller for a duration.
type Delayer interface {
	Delay(d time.Duration)
}

// DelayFunc adapts a function to Delayer.
type DelayFunc func(d time.Duration)

// Delay calls f(d).
func (f DelayFunc) Delay(d time.Duration) {
	f(d)
}

// SystemDelay sleeps with time.Sleep.
var SystemDelay Delayer = DelayFunc(time.Sleep)
