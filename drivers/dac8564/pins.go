package dac8564

// OutputPin is a digital output line. Errors are accepted for portability but
// the driver never acts on them.
type OutputPin interface {
	High() error
	Low() error
}

// PinOutput adapts a level setter, such as machine.Pin.Set, to OutputPin.
type PinOutput func(level bool)

func (p PinOutput) High() error { p(true); return nil }
func (p PinOutput) Low() error  { p(false); return nil }
