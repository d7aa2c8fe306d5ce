package types

// Heartbeat is published retained on sys/heartbeat.
type Heartbeat struct {
	Seq      uint32 `json:"seq"`
	UptimeMs int64  `json:"uptime_ms"`
	TS       int64  `json:"ts_ms"`
}

// HeartbeatConfig is accepted on config/heartbeat.
type HeartbeatConfig struct {
	IntervalMs uint32 `json:"interval_ms"`
}
