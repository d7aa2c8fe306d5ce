package heartbeat

import (
	"context"
	"testing"
	"time"

	"github.com/chmanie/dac8564/bus"
	"github.com/chmanie/dac8564/types"
)

func nextBeat(t *testing.T, s *bus.Subscription, d time.Duration) types.Heartbeat {
	t.Helper()
	select {
	case m := <-s.Channel():
		return m.Payload.(types.Heartbeat)
	case <-time.After(d):
		t.Fatal("no heartbeat")
	}
	return types.Heartbeat{}
}

func TestRun_PublishesSequentialBeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(8)
	ui := b.NewConnection("ui")
	sub := ui.Subscribe(TopicBeat)
	defer ui.Unsubscribe(sub)

	go (&Service{Interval: 5 * time.Millisecond}).Run(ctx, b.NewConnection("hb"))

	first := nextBeat(t, sub, time.Second)
	second := nextBeat(t, sub, time.Second)
	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("seq=%d,%d want 1,2", first.Seq, second.Seq)
	}
	if second.UptimeMs < first.UptimeMs {
		t.Fatalf("uptime went backwards: %d -> %d", first.UptimeMs, second.UptimeMs)
	}
}

func TestRun_ConfigChangesInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(8)
	ui := b.NewConnection("ui")
	sub := ui.Subscribe(TopicBeat)
	defer ui.Unsubscribe(sub)

	// Retained config is picked up on subscribe.
	ui.Publish(ui.NewMessage(TopicConfig, types.HeartbeatConfig{IntervalMs: 5}, true))
	go (&Service{Interval: time.Hour}).Run(ctx, b.NewConnection("hb"))

	if hb := nextBeat(t, sub, time.Second); hb.Seq != 1 {
		t.Fatalf("seq=%d", hb.Seq)
	}
}

func TestInterval_Decode(t *testing.T) {
	if _, ok := interval(map[string]any{"interval": 2.0}); ok {
		t.Fatal("untyped payload should be ignored")
	}
	if _, ok := interval(types.HeartbeatConfig{}); ok {
		t.Fatal("zero interval should be ignored")
	}
	if d, ok := interval(&types.HeartbeatConfig{IntervalMs: 250}); !ok || d != 250*time.Millisecond {
		t.Fatalf("d=%v ok=%v", d, ok)
	}
}
