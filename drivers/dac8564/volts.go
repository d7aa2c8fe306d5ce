package dac8564

import (
	"github.com/chmanie/dac8564/x/mathx"
	"github.com/chmanie/dac8564/x/ramp"
)

// MilliVoltsToCode converts an output voltage to a DAC code for a reference of
// vref millivolts, rounding to nearest. Voltages above vref saturate.
func MilliVoltsToCode(mV, vref uint32) uint16 {
	return mathx.ScaleU16(mV, vref)
}

// WriteMilliVolts converts mV against the configured reference and writes the
// resulting code. It returns the code that was (or, before Enable, would have
// been) written.
func (d *Device) WriteMilliVolts(ch Channel, mV uint32) (uint16, error) {
	code := MilliVoltsToCode(mV, d.cfg.VRefMilliV)
	return code, d.WriteBlocking(ch, code)
}

// Ramp moves ch linearly from 'from' to 'to' over durationMs using 'steps'
// blocking writes. tick paces the steps and may cancel the ramp by returning
// false, leaving the output mid-way. The first bus error stops the ramp and is
// returned. last is the final level successfully written, or 'from' if none was.
func (d *Device) Ramp(ch Channel, from, to uint16, durationMs uint32, steps uint16, tick ramp.Tick) (last uint16, err error) {
	last = from
	ramp.Linear(from, to, durationMs, steps, tick, func(level uint16) bool {
		if err = d.WriteBlocking(ch, level); err != nil {
			return false
		}
		last = level
		return true
	})
	return last, err
}
