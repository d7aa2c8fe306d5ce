package ramp

import (
	"time"

	"github.com/chmanie/dac8564/x/mathx"
)

// Step applies a new level. Returning false aborts the ramp.
type Step func(level uint16) bool

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Linear walks from 'from' to 'to' in 'steps' evenly spaced levels over
// durationMs, calling tick before each one. Repeated levels are not re-sent.
// steps==0 or durationMs==0 snaps to 'to'. The final level is always 'to'.
// It reports whether the ramp ran to completion.
func Linear(from, to uint16, durationMs uint32, steps uint16, tick Tick, set Step) bool {
	if steps == 0 || durationMs == 0 {
		return set(to)
	}
	stepDurMs := mathx.Max(durationMs/uint32(steps), 1)
	stepDur := time.Duration(stepDurMs) * time.Millisecond

	last := from
	for i := uint32(1); i <= uint32(steps); i++ {
		if !tick(stepDur) {
			return false
		}
		lvl := uint16(int64(from) + (int64(to)-int64(from))*int64(i)/int64(steps))
		if lvl == last && i != uint32(steps) {
			continue
		}
		if !set(lvl) {
			return false
		}
		last = lvl
	}
	return true
}
