// Package console is a line-oriented operator shell over a serial port. Each
// line becomes a request on the DAC capability's control topics and the
// reply is printed as "ok", "ok <value>" or "err <code>".
package console

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chmanie/dac8564/bus"
	"github.com/chmanie/dac8564/drivers/dac8564"
	"github.com/chmanie/dac8564/errcode"
	"github.com/chmanie/dac8564/services/dac"
	"github.com/chmanie/dac8564/types"
	"github.com/chmanie/dac8564/x/conv"
)

// MaxLine bounds one input line. Longer lines are discarded.
const MaxLine = 128

// Port is the serial surface the console needs. *uartx.UART satisfies it.
type Port interface {
	Write(p []byte) (int, error)
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

type Config struct {
	// Name of the DAC capability. Default "main".
	Name string
	// Timeout per request. Default 5s; ramps may need longer.
	Timeout time.Duration
	// Prompt printed before each line. Default "> ".
	Prompt string
}

type Console struct {
	conn *bus.Connection
	port Port
	cfg  Config
	out  []byte
}

func New(conn *bus.Connection, port Port, cfg Config) *Console {
	if cfg.Name == "" {
		cfg.Name = "main"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "> "
	}
	return &Console{conn: conn, port: port, cfg: cfg, out: make([]byte, 0, 96)}
}

// Run reads lines until ctx is cancelled.
func (c *Console) Run(ctx context.Context) {
	buf := make([]byte, 64)
	line := make([]byte, 0, MaxLine)
	overflow := false

	c.writeString(c.cfg.Prompt)
	for {
		n, err := c.port.RecvSomeContext(ctx, buf)
		if ctx.Err() != nil {
			return
		}
		if err != nil || n <= 0 {
			continue
		}
		for _, b := range buf[:n] {
			switch b {
			case '\r':
			case '\n':
				if overflow {
					c.writeString("err line_too_long\n")
				} else if len(line) > 0 {
					c.Exec(ctx, string(line))
				}
				line = line[:0]
				overflow = false
				c.writeString(c.cfg.Prompt)
			default:
				if len(line) < MaxLine {
					line = append(line, b)
				} else {
					overflow = true
				}
			}
		}
	}
}

// Exec runs one line and prints its result.
func (c *Console) Exec(ctx context.Context, line string) {
	cmd, err := Parse(line)
	switch {
	case errors.Is(err, ErrEmpty):
		return
	case err != nil:
		c.writeString("err " + err.Error() + "\n")
		return
	case cmd.Verb == VerbHelp:
		c.writeString(helpText)
		return
	case cmd.Verb == VerbFrame:
		c.printFrame(cmd.Payload.(types.DACSet))
		return
	}

	rctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	reply, err := c.conn.RequestWait(rctx, c.conn.NewMessage(dac.ControlTopic(c.cfg.Name, cmd.Verb), cmd.Payload, false))
	if err != nil {
		code := errcode.Timeout
		if errors.Is(err, context.Canceled) {
			code = errcode.Cancelled
		}
		c.writeString("err " + string(code) + "\n")
		return
	}
	c.print(reply.Payload)
}

func (c *Console) print(p any) {
	out := c.out[:0]
	switch v := p.(type) {
	case types.OKReply:
		out = append(out, "ok"...)
	case types.DACSetReply:
		out = append(out, "ok "...)
		out = conv.AppendUint(out, uint64(v.Value))
	case types.ErrorReply:
		out = append(out, "err "...)
		out = append(out, v.Error...)
	case types.Info:
		out = appendInfo(out, v)
	default:
		out = append(out, "err "...)
		out = append(out, string(errcode.InvalidPayload)...)
	}
	out = append(out, '\n')
	c.out = out
	_, _ = c.port.Write(out)
}

// printFrame shows the bytes a write would put on the wire, e.g. "frame 12 12 34".
func (c *Console) printFrame(p types.DACSet) {
	ch, err := dac8564.ParseChannel(p.Channel)
	if err != nil {
		c.writeString("err " + string(errcode.InvalidChannel) + "\n")
		return
	}
	out := append(c.out[:0], "frame"...)
	for _, b := range dac8564.Encode(ch, p.Value) {
		out = append(out, ' ')
		out = conv.AppendHex8(out, b)
	}
	out = append(out, '\n')
	c.out = out
	_, _ = c.port.Write(out)
}

func appendInfo(out []byte, v types.Info) []byte {
	out = append(out, v.Driver...)
	d, ok := v.Detail.(types.DACInfo)
	if !ok {
		return out
	}
	out = append(out, " bits="...)
	out = conv.AppendUint(out, uint64(d.Bits))
	out = append(out, " vref="...)
	out = conv.AppendUint(out, uint64(d.VRefMilliV))
	out = append(out, "mV enabled="...)
	if d.Enabled {
		out = append(out, "yes"...)
	} else {
		out = append(out, "no"...)
	}
	out = append(out, " channels="...)
	out = append(out, strings.Join(d.Channels, ",")...)
	return out
}

func (c *Console) writeString(s string) { _, _ = c.port.Write([]byte(s)) }
