//go:build linux

package linuxio

import (
	"os"

	"golang.org/x/sys/unix"
)

var (
	levelHigh = []byte{'1'}
	levelLow  = []byte{'0'}
)

// SysfsPin drives a GPIO through its sysfs value file, e.g.
// /sys/class/gpio/gpio17/value. The line must already be exported and set
// to "out". It satisfies dac8564.OutputPin.
type SysfsPin struct {
	fd   int
	path string
}

func OpenSysfsPin(path string) (*SysfsPin, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return &SysfsPin{fd: fd, path: path}, nil
}

func (p *SysfsPin) High() error { return p.set(levelHigh) }
func (p *SysfsPin) Low() error  { return p.set(levelLow) }

func (p *SysfsPin) set(v []byte) error {
	if p.fd < 0 {
		return os.ErrClosed
	}
	if _, err := unix.Pwrite(p.fd, v, 0); err != nil {
		return &os.PathError{Op: "write", Path: p.path, Err: err}
	}
	return nil
}

func (p *SysfsPin) Close() error {
	if p.fd < 0 {
		return nil
	}
	err := unix.Close(p.fd)
	p.fd = -1
	return err
}
