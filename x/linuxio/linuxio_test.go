//go:build linux

package linuxio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tinygo.org/x/drivers"

	"github.com/chmanie/dac8564/drivers/dac8564"
)

var (
	_ drivers.SPI       = (*SPIDev)(nil)
	_ dac8564.OutputPin = (*SysfsPin)(nil)
)

func tempFile(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSPIDev_WritesFrames(t *testing.T) {
	path := tempFile(t, "spidev")
	s, err := OpenSPIDev(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f := dac8564.Encode(dac8564.B, 0x1234)
	if err := s.Tx(f[:], nil); err != nil {
		t.Fatalf("tx: %v", err)
	}
	if _, err := s.Transfer(0xAA); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := s.Tx([]byte{1}, make([]byte, 1)); !errors.Is(err, ErrReadUnsupported) {
		t.Fatalf("read tx err=%v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Tx([]byte{1}, nil); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("tx after close err=%v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != string([]byte{0x12, 0x12, 0x34, 0xAA}) {
		t.Fatalf("written=% X", got)
	}
}

func TestSysfsPin_Levels(t *testing.T) {
	path := tempFile(t, "value")
	p, err := OpenSysfsPin(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer p.Close()

	check := func(want string) {
		t.Helper()
		got, _ := os.ReadFile(path)
		if string(got) != want {
			t.Fatalf("value=%q want %q", got, want)
		}
	}
	if err := p.High(); err != nil {
		t.Fatal(err)
	}
	check("1")
	if err := p.Low(); err != nil {
		t.Fatal(err)
	}
	check("0")
}

func TestOpen_MissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := OpenSPIDev(missing); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("spidev err=%v", err)
	}
	if _, err := OpenSysfsPin(missing); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pin err=%v", err)
	}
}

func TestDriverOverLinux(t *testing.T) {
	spiPath := tempFile(t, "spidev")
	s, err := OpenSPIDev(spiPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	pins := make([]*SysfsPin, 3)
	for i, name := range []string{"sync", "ldac", "enable"} {
		if pins[i], err = OpenSysfsPin(tempFile(t, name)); err != nil {
			t.Fatal(err)
		}
		defer pins[i].Close()
	}

	d := dac8564.New(s, pins[0], pins[1], pins[2])
	d.Enable()
	if err := d.WriteBlocking(dac8564.All, 0xFFFF); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, _ := os.ReadFile(spiPath)
	if string(got) != string([]byte{0x17, 0xFF, 0xFF}) {
		t.Fatalf("written=% X", got)
	}
}
