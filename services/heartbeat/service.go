// Package heartbeat publishes a liveness beat so an operator can see the
// firmware is still scheduling while the console is idle.
package heartbeat

import (
	"context"
	"time"

	"github.com/chmanie/dac8564/bus"
	"github.com/chmanie/dac8564/types"
)

var (
	TopicBeat   = bus.T("sys", "heartbeat")
	TopicConfig = bus.T("config", "heartbeat")
)

const DefaultInterval = time.Second

type Service struct {
	// Interval between beats. Default one second.
	Interval time.Duration
	// Print echoes each beat with println.
	Print bool
}

// Run publishes beats until ctx is cancelled.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(TopicConfig)
	defer conn.Unsubscribe(cfgSub)

	iv := s.Interval
	if iv <= 0 {
		iv = DefaultInterval
	}
	tick := time.NewTicker(iv)
	defer tick.Stop()

	start := time.Now()
	var seq uint32
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tick.C:
			seq++
			up := t.Sub(start).Milliseconds()
			conn.Publish(conn.NewMessage(TopicBeat, types.Heartbeat{Seq: seq, UptimeMs: up, TS: t.UnixMilli()}, true))
			if s.Print {
				println("[heartbeat]", int(seq), "uptime_ms", int(up))
			}
		case msg := <-cfgSub.Channel():
			if d, ok := interval(msg.Payload); ok {
				tick.Reset(d)
			}
		}
	}
}

func interval(p any) (time.Duration, bool) {
	var c types.HeartbeatConfig
	switch v := p.(type) {
	case types.HeartbeatConfig:
		c = v
	case *types.HeartbeatConfig:
		if v == nil {
			return 0, false
		}
		c = *v
	default:
		return 0, false
	}
	if c.IntervalMs == 0 {
		return 0, false
	}
	return time.Duration(c.IntervalMs) * time.Millisecond, true
}
