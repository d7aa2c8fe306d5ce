package console

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chmanie/dac8564/bus"
	"github.com/chmanie/dac8564/drivers/dac8564"
	"github.com/chmanie/dac8564/services/dac"
	"github.com/chmanie/dac8564/types"
)

// --- fake serial port ---

type fakePort struct {
	mu  sync.Mutex
	rx  chan []byte
	out bytes.Buffer
}

func newFakePort() *fakePort { return &fakePort{rx: make(chan []byte, 8)} }

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}

func (p *fakePort) RecvSomeContext(ctx context.Context, b []byte) (int, error) {
	select {
	case in := <-p.rx:
		return copy(b, in), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (p *fakePort) output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}

func waitFor(t *testing.T, p *fakePort, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(p.output(), want) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("output %q does not contain %q", p.output(), want)
}

// --- fake SPI for the end-to-end test ---

type nopSPI struct{}

func (nopSPI) Tx(w, r []byte) error           { return nil }
func (nopSPI) Transfer(b byte) (byte, error) { return 0, nil }

func nopPin() dac8564.OutputPin { return dac8564.PinOutput(func(bool) {}) }

// --- tests ---

func TestExec_Replies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(8)
	responder := b.NewConnection("fake-dac")
	sub := responder.Subscribe(dac.Base("main").Append(dac.TokControl, bus.SingleWild))
	go func() {
		for m := range sub.Channel() {
			switch m.Topic[len(m.Topic)-1] {
			case dac.CtrlEnable:
				responder.Reply(m, types.OKReply{OK: true}, false)
			case dac.CtrlSet:
				responder.Reply(m, types.DACSetReply{OK: true, Value: m.Payload.(types.DACSet).Value}, false)
			default:
				responder.Reply(m, types.ErrorReply{Error: "unsupported"}, false)
			}
		}
	}()
	defer responder.Unsubscribe(sub)

	p := newFakePort()
	c := New(b.NewConnection("console"), p, Config{Timeout: time.Second})

	c.Exec(ctx, "enable")
	c.Exec(ctx, "set a 0x10")
	c.Exec(ctx, "info")
	c.Exec(ctx, "bogus")
	c.Exec(ctx, "set a")
	c.Exec(ctx, "")

	want := "ok\nok 16\nerr unsupported\nerr unknown_command\nerr usage: set <ch> <value>\n"
	if got := p.output(); got != want {
		t.Fatalf("output:\n%q\nwant:\n%q", got, want)
	}
}

func TestExec_LocalCommands(t *testing.T) {
	p := newFakePort()
	c := New(bus.NewBus(8).NewConnection("console"), p, Config{Timeout: 20 * time.Millisecond})

	c.Exec(context.Background(), "frame b 0x1234")
	c.Exec(context.Background(), "frame all 65535")
	c.Exec(context.Background(), "frame e 1")
	c.Exec(context.Background(), `set "a 1`)

	want := "frame 12 12 34\nframe 17 FF FF\nerr invalid_channel\nerr bad_syntax\n"
	if got := p.output(); got != want {
		t.Fatalf("output:\n%q\nwant:\n%q", got, want)
	}
}

func TestExec_Timeout(t *testing.T) {
	b := bus.NewBus(8)
	p := newFakePort()
	c := New(b.NewConnection("console"), p, Config{Timeout: 20 * time.Millisecond})

	c.Exec(context.Background(), "enable")
	if got := p.output(); got != "err timeout\n" {
		t.Fatalf("output=%q", got)
	}
}

func TestExec_Help(t *testing.T) {
	p := newFakePort()
	c := New(bus.NewBus(8).NewConnection("console"), p, Config{})
	c.Exec(context.Background(), "help")
	if !strings.Contains(p.output(), "ramp <ch> <from> <to> <ms> <steps>") {
		t.Fatalf("help=%q", p.output())
	}
}

func TestRun_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(16)
	dev := dac8564.New(nopSPI{}, nopPin(), nopPin(), nopPin())
	svc := dac.New(b.NewConnection("dac"), dev, dac.Config{})

	ui := b.NewConnection("ui")
	state := ui.Subscribe(dac.Base("main").Append(dac.TokState))
	go svc.Run(ctx)
	select {
	case <-state.Channel():
	case <-time.After(time.Second):
		t.Fatal("dac service did not start")
	}
	ui.Unsubscribe(state)

	p := newFakePort()
	go New(b.NewConnection("console"), p, Config{Timeout: time.Second}).Run(ctx)

	p.rx <- []byte("set a 5\r\n")
	waitFor(t, p, "err not_enabled\n")

	// Split across reads.
	p.rx <- []byte("ena")
	p.rx <- []byte("ble\n")
	waitFor(t, p, "> ok\n")

	p.rx <- []byte("set a 5\ninfo\n")
	waitFor(t, p, "ok 5\n")
	waitFor(t, p, "dac8564 bits=16 vref=2500mV enabled=yes channels=a,b,c,d\n")

	p.rx <- []byte(strings.Repeat("x", MaxLine+1) + "\n")
	waitFor(t, p, "err line_too_long\n")
}
