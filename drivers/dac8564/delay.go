package dac8564

// spinCount bounds Spin. Roughly tens of microseconds on a Cortex-M0+ at
// 125 MHz; there is no guarantee beyond "non-zero".
const spinCount = 10000

// spinSink keeps the loop from being optimised away.
var spinSink uint32

// Spin busy-waits for a short, uncalibrated period. It is only suitable for
// the LDAC pulse width in Enable.
func Spin() {
	var x uint32
	for x < spinCount {
		x++
	}
	spinSink = x
}
