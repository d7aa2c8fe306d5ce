// Package dac exposes a DAC8564 as a bus capability. The service owns the
// driver and runs every control on its own goroutine, so the driver is never
// entered concurrently.
//
// Topics, under hal/cap/dac/<name>:
//
//	control/<verb>  enable | set | set_mv | ramp | info   (request/reply)
//	value/<a..d>    types.DACValue                        (retained)
//	status          types.CapabilityStatus                (retained)
//	info            types.Info{Detail: types.DACInfo}     (retained)
//	state           types.ServiceState                    (retained)
package dac

import (
	"context"
	"time"

	"github.com/chmanie/dac8564/bus"
	"github.com/chmanie/dac8564/drivers/dac8564"
	"github.com/chmanie/dac8564/errcode"
	"github.com/chmanie/dac8564/types"
	"github.com/chmanie/dac8564/x/ramp"
)

// Control verbs
const (
	CtrlEnable = "enable"
	CtrlSet    = "set"
	CtrlSetMV  = "set_mv"
	CtrlRamp   = "ramp"
	CtrlInfo   = "info"
)

// Topic tokens
const (
	TokHAL     = "hal"
	TokCap     = "cap"
	TokControl = "control"
	TokValue   = "value"
	TokStatus  = "status"
	TokInfo    = "info"
	TokState   = "state"
)

// Config for the service. All fields are optional.
type Config struct {
	// Name is the capability name. Default "main".
	Name string
	// VRefMilliV overrides the driver's reference for set_mv. 0 keeps it.
	VRefMilliV uint32
	// AutoEnable runs the reset handshake when Run starts. A device that is
	// already enabled is reported ready without repeating it.
	AutoEnable bool
}

// Base returns the capability prefix hal/cap/dac/<name>.
func Base(name string) bus.Topic {
	if name == "" {
		name = "main"
	}
	return bus.T(TokHAL, TokCap, string(types.KindDAC), name)
}

// ControlTopic returns the request topic for verb.
func ControlTopic(name, verb string) bus.Topic { return Base(name).Append(TokControl, verb) }

// ValueTopic returns the retained value topic for ch (a..d).
func ValueTopic(name string, ch dac8564.Channel) bus.Topic {
	return Base(name).Append(TokValue, ch.String())
}

type Service struct {
	conn *bus.Connection
	dev  *dac8564.Device
	cfg  Config
	base bus.Topic

	status types.CapabilityStatus
}

// New binds dev to conn. The service takes over dev; callers must not use it
// after Run starts.
func New(conn *bus.Connection, dev *dac8564.Device, cfg Config) *Service {
	if cfg.Name == "" {
		cfg.Name = "main"
	}
	if cfg.VRefMilliV != 0 {
		dev.SetVRefMilliV(cfg.VRefMilliV)
	}
	return &Service{
		conn: conn,
		dev:  dev,
		cfg:  cfg,
		base: Base(cfg.Name),
	}
}

// Run serves controls until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	ctrl := s.conn.Subscribe(s.base.Append(TokControl, bus.SingleWild))
	defer s.conn.Unsubscribe(ctrl)

	s.setStatus(types.LinkDown, "")
	switch {
	case s.dev.Active():
		s.ready()
	case s.cfg.AutoEnable:
		s.enable()
	default:
		s.publishInfo()
		s.publishState("idle", "awaiting_enable", nil)
	}

	for {
		select {
		case <-ctx.Done():
			s.publishState("stopped", "context_cancelled", nil)
			return
		case msg, ok := <-ctrl.Channel():
			if !ok {
				s.publishState("stopped", "control_subscription_closed", nil)
				return
			}
			s.handle(ctx, msg)
		}
	}
}

func (s *Service) handle(ctx context.Context, msg *bus.Message) {
	verb, ok := msg.Topic[len(msg.Topic)-1].(string)
	if !ok {
		s.replyErr(msg, errcode.InvalidTopic)
		return
	}

	switch verb {
	case CtrlEnable:
		s.enable()
		s.conn.Reply(msg, types.OKReply{OK: true}, false)

	case CtrlInfo:
		s.conn.Reply(msg, s.info(), false)

	case CtrlSet:
		p, ok := asSet(msg.Payload)
		if !ok {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		ch, err := s.channel(p.Channel)
		if err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		if err := s.write(ch, p.Value, s.dev.WriteBlocking(ch, p.Value)); err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		s.conn.Reply(msg, types.DACSetReply{OK: true, Value: p.Value}, false)

	case CtrlSetMV:
		p, ok := asSetMV(msg.Payload)
		if !ok {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		ch, err := s.channel(p.Channel)
		if err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		code, werr := s.dev.WriteMilliVolts(ch, p.MilliV)
		if err := s.write(ch, code, werr); err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		s.conn.Reply(msg, types.DACSetReply{OK: true, Value: code}, false)

	case CtrlRamp:
		p, ok := asRamp(msg.Payload)
		if !ok {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		// Each step needs at least a millisecond.
		if p.Steps > 0 && p.DurationMs > 0 && uint32(p.Steps) > p.DurationMs {
			s.replyErr(msg, errcode.InvalidParams)
			return
		}
		ch, err := s.channel(p.Channel)
		if err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		// Blocks the control loop until the ramp ends or ctx is cancelled.
		var werr error
		done := ramp.Linear(p.From, p.To, p.DurationMs, p.Steps, sleepTick(ctx), func(level uint16) bool {
			werr = s.write(ch, level, s.dev.WriteBlocking(ch, level))
			return werr == nil
		})
		switch {
		case werr != nil:
			s.replyErr(msg, errcode.Of(werr))
		case !done:
			s.replyErr(msg, errcode.Cancelled)
		default:
			s.conn.Reply(msg, types.DACSetReply{OK: true, Value: p.To}, false)
		}

	default:
		s.replyErr(msg, errcode.Unsupported)
	}
}

// channel parses a channel name and checks the device is enabled.
func (s *Service) channel(name string) (dac8564.Channel, error) {
	ch, err := dac8564.ParseChannel(name)
	if err != nil {
		return 0, errcode.Wrap(errcode.InvalidChannel, "parse_channel", err)
	}
	if !s.dev.Active() {
		return 0, errcode.NotEnabled
	}
	return ch, nil
}

// write records the outcome of a driver write. On success the retained
// value(s) for ch are updated; on failure status goes degraded.
func (s *Service) write(ch dac8564.Channel, value uint16, err error) error {
	if err != nil {
		code := mapErr(err)
		s.setStatus(types.LinkDegraded, string(code))
		return errcode.Wrap(code, "write", err)
	}
	if s.status.Link != types.LinkUp {
		s.setStatus(types.LinkUp, "")
	}
	now := time.Now().UnixMilli()
	for _, c := range dac8564.Channels {
		if ch != dac8564.All && ch != c {
			continue
		}
		s.conn.Publish(s.conn.NewMessage(ValueTopic(s.cfg.Name, c),
			types.DACValue{Channel: c.String(), Value: value, TS: now}, true))
	}
	return nil
}

func (s *Service) enable() {
	s.dev.Enable()
	s.ready()
}

func (s *Service) ready() {
	s.setStatus(types.LinkUp, "")
	s.publishInfo()
	s.publishState("ready", "enabled", nil)
}

func (s *Service) info() types.Info {
	names := make([]string, 0, len(dac8564.Channels))
	for _, c := range dac8564.Channels {
		names = append(names, c.String())
	}
	return types.Info{
		SchemaVersion: 1,
		Driver:        "dac8564",
		Detail: types.DACInfo{
			Channels:   names,
			Bits:       16,
			VRefMilliV: s.dev.VRefMilliV(),
			Enabled:    s.dev.Active(),
		},
	}
}

// ---- publishing helpers ----

func (s *Service) publishInfo() {
	s.conn.Publish(s.conn.NewMessage(s.base.Append(TokInfo), s.info(), true))
}

func (s *Service) setStatus(link types.Link, code string) {
	s.status = types.CapabilityStatus{Link: link, TS: time.Now().UnixMilli(), Error: code}
	s.conn.Publish(s.conn.NewMessage(s.base.Append(TokStatus), s.status, true))
}

func (s *Service) publishState(level, status string, err error) {
	pl := types.ServiceState{Level: level, Status: status, TS: time.Now().UnixMilli()}
	if err != nil {
		pl.Error = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(s.base.Append(TokState), pl, true))
}

func (s *Service) replyErr(req *bus.Message, code errcode.Code) {
	if len(req.ReplyTo) == 0 {
		return
	}
	if code == "" || code == errcode.OK {
		code = errcode.Error
	}
	s.conn.Reply(req, types.ErrorReply{OK: false, Error: string(code)}, false)
}

// ---- helpers ----

func mapErr(err error) errcode.Code {
	return errcode.MapDriverErr(err,
		errcode.Rule{Match: dac8564.ErrBusWrite, Code: errcode.BusWrite},
		errcode.Rule{Match: dac8564.ErrInvalidChannel, Code: errcode.InvalidChannel},
	)
}

// sleepTick paces a ramp with real time and stops it when ctx ends.
func sleepTick(ctx context.Context) ramp.Tick {
	return func(d time.Duration) bool {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			return true
		}
	}
}

func asSet(p any) (types.DACSet, bool) {
	switch v := p.(type) {
	case types.DACSet:
		return v, true
	case *types.DACSet:
		if v != nil {
			return *v, true
		}
	}
	return types.DACSet{}, false
}

func asSetMV(p any) (types.DACSetMilliV, bool) {
	switch v := p.(type) {
	case types.DACSetMilliV:
		return v, true
	case *types.DACSetMilliV:
		if v != nil {
			return *v, true
		}
	}
	return types.DACSetMilliV{}, false
}

func asRamp(p any) (types.DACRamp, bool) {
	switch v := p.(type) {
	case types.DACRamp:
		return v, true
	case *types.DACRamp:
		if v != nil {
			return *v, true
		}
	}
	return types.DACRamp{}, false
}
