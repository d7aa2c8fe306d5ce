// Package dac8564 provides a driver for the TI DAC8564 quad-channel 16-bit
// SPI DAC. The driver owns the SPI bus and the three control lines (SYNC,
// LDAC and ENABLE) handed to New and sequences them around every write:
//
//	d := dac8564.New(spi, sync, ldac, enable)
//	d.Enable()                           // reset handshake, once per attach
//	err := d.WriteBlocking(dac8564.B, v) // one 3-byte frame
//
// For DMA or interrupt-driven transports, PrepareTransfer frames the write and
// hands the encoded bytes to a caller-supplied initiator instead of writing
// them itself.
//
// Control-line writes are best effort. Errors returned by OutputPin.High and
// OutputPin.Low are discarded everywhere, including the enable handshake. On
// targets where a pin write can genuinely fail, the analog output may be wrong
// without any error reaching the caller.
//
// Writes issued before Enable are silent no-ops that report success.
package dac8564

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Errors returned by the driver.
var (
	ErrBusWrite       = errors.New("dac8564: bus write error")
	ErrInvalidChannel = errors.New("dac8564: invalid channel")
)

// BusError reports a failed SPI write. It matches ErrBusWrite under errors.Is
// and unwraps to the transport's error.
type BusError struct {
	Err error
}

func (e *BusError) Error() string {
	if e.Err == nil {
		return ErrBusWrite.Error()
	}
	return ErrBusWrite.Error() + ": " + e.Err.Error()
}

func (e *BusError) Is(target error) bool { return target == ErrBusWrite }
func (e *BusError) Unwrap() error        { return e.Err }

// DefaultVRefMilliV is the DAC8564 internal reference.
const DefaultVRefMilliV = 2500

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Delay separates the LDAC edges during Enable. Defaults to Spin.
	// Supply a platform timer here when a calibrated pulse width is needed.
	Delay func()
	// VRefMilliV is the reference voltage used by WriteMilliVolts.
	// Default 2500 mV.
	VRefMilliV uint32
}

// Device wraps an SPI connection and control lines to a DAC8564.
type Device struct {
	bus    drivers.SPI
	sync   OutputPin
	ldac   OutputPin
	enable OutputPin

	cfg    Config
	active bool
}

// New creates a DAC8564 driver. The SPI bus must already be configured
// (mode 1, MSB first). sync frames each write, ldac doubles as the register
// reset line during Enable, and enable gates the chip. New performs no I/O.
func New(bus drivers.SPI, sync, ldac, enable OutputPin) *Device {
	return &Device{
		bus:    bus,
		sync:   sync,
		ldac:   ldac,
		enable: enable,
		cfg: Config{
			Delay:      Spin,
			VRefMilliV: DefaultVRefMilliV,
		},
	}
}

// Configure applies optional config, replacing any earlier one. Zero fields
// take their defaults. It never touches the hardware.
func (d *Device) Configure(cfg Config) {
	if cfg.Delay == nil {
		cfg.Delay = Spin
	}
	if cfg.VRefMilliV == 0 {
		cfg.VRefMilliV = DefaultVRefMilliV
	}
	d.cfg = cfg
}

// Active reports whether Enable has run.
func (d *Device) Active() bool { return d.active }

// VRefMilliV returns the configured reference voltage.
func (d *Device) VRefMilliV() uint32 { return d.cfg.VRefMilliV }

// SetVRefMilliV changes only the reference used by WriteMilliVolts; the rest
// of the config, including an injected Delay, is kept. 0 restores the default.
func (d *Device) SetVRefMilliV(mV uint32) {
	if mV == 0 {
		mV = DefaultVRefMilliV
	}
	d.cfg.VRefMilliV = mV
}

// Enable pulses SYNC with the chip gated off, re-enables it, then drives LDAC
// low-high-low to reset the DAC registers. It may be called again; every call
// repeats the full handshake.
func (d *Device) Enable() {
	_ = d.enable.Low()
	_ = d.sync.Low()
	_ = d.sync.High()
	_ = d.enable.High()

	// Rising edge resets the DAC registers.
	_ = d.ldac.Low()
	d.cfg.Delay()
	_ = d.ldac.High()
	d.cfg.Delay()
	_ = d.ldac.Low()

	d.active = true
}

// WriteBlocking sends one frame setting ch to value and returns once the SPI
// transfer and the surrounding line sequencing are complete. value is passed
// through verbatim. Before Enable it returns nil without touching the bus.
// An undefined ch returns ErrInvalidChannel and nothing is sent.
func (d *Device) WriteBlocking(ch Channel, value uint16) error {
	if !d.active {
		return nil
	}
	if !ch.Valid() {
		return ErrInvalidChannel
	}
	frame := Encode(ch, value)

	d.assert()
	err := d.bus.Tx(frame[:], nil)
	d.release()

	if err != nil {
		return &BusError{Err: err}
	}
	return nil
}

// PrepareTransfer frames a write for a transport the driver does not drive
// itself (DMA, interrupt). It pulls ENABLE and SYNC low, calls start exactly
// once with the encoded frame, and raises SYNC and ENABLE as soon as start
// returns.
//
// The driver does not wait for the transfer to finish. start must either
// complete the transfer before returning or keep SYNC and ENABLE low itself
// until the asynchronous transfer is done. Before Enable, start is not called
// and nil is returned. An undefined ch returns ErrInvalidChannel without
// touching the lines.
func (d *Device) PrepareTransfer(ch Channel, value uint16, start func(Frame)) error {
	if !d.active {
		return nil
	}
	if !ch.Valid() {
		return ErrInvalidChannel
	}
	d.assert()
	start(Encode(ch, value))
	d.release()
	return nil
}

// assert and release bracket every frame. SYNC must rise before ENABLE.

func (d *Device) assert() {
	_ = d.enable.Low()
	_ = d.sync.Low()
}

func (d *Device) release() {
	_ = d.sync.High()
	_ = d.enable.High()
}
