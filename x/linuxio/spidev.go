//go:build linux

// Package linuxio drives the DAC from a Linux host: a spidev node for the
// bus and sysfs GPIO value files for the control lines. Transfers use the
// node's current mode and speed; configure those with the board's device
// tree or spi-config before opening.
package linuxio

import (
	"errors"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrReadUnsupported is returned by Tx when a read buffer is supplied. The
// DAC has no data-out line so only write transfers are implemented.
var ErrReadUnsupported = errors.New("linuxio: full-duplex read not supported")

// SPIDev is a write-only spidev handle. It satisfies drivers.SPI.
type SPIDev struct {
	mu   sync.Mutex
	fd   int
	path string
}

// OpenSPIDev opens path (for example /dev/spidev0.0) for writing.
func OpenSPIDev(path string) (*SPIDev, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return &SPIDev{fd: fd, path: path}, nil
}

// Tx writes w in a single transfer. r must be nil or empty.
func (s *SPIDev) Tx(w, r []byte) error {
	if len(r) > 0 {
		return ErrReadUnsupported
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd < 0 {
		return os.ErrClosed
	}
	for len(w) > 0 {
		n, err := unix.Write(s.fd, w)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return &os.PathError{Op: "write", Path: s.path, Err: err}
		}
		w = w[n:]
	}
	return nil
}

// Transfer writes one byte. The returned byte is always 0.
func (s *SPIDev) Transfer(b byte) (byte, error) {
	return 0, s.Tx([]byte{b}, nil)
}

func (s *SPIDev) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}
