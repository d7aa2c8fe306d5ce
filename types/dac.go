package types

// ---- DAC capability payloads ----

type DACInfo struct {
	Channels   []string `json:"channels"` // addressable outputs, e.g. "a".."d"
	Bits       uint8    `json:"bits"`     // resolution
	VRefMilliV uint32   `json:"vref_mv"`  // reference used for set_mv
	Enabled    bool     `json:"enabled"`  // handshake has run
}

// DACValue is retained per output after every successful write.
type DACValue struct {
	Channel string `json:"channel"`
	Value   uint16 `json:"value"`
	TS      int64  `json:"ts_ms"`
}

// Controls. Channel accepts "a".."d", "all" or "0".."3".

type DACSet struct {
	Channel string `json:"channel"`
	Value   uint16 `json:"value"`
}

type DACSetMilliV struct {
	Channel string `json:"channel"`
	MilliV  uint32 `json:"mv"`
}

type DACRamp struct {
	Channel    string `json:"channel"`
	From       uint16 `json:"from"`
	To         uint16 `json:"to"`
	DurationMs uint32 `json:"duration_ms"`
	Steps      uint16 `json:"steps"`
}

// DACSetReply answers set and set_mv with the code actually written.
type DACSetReply struct {
	OK    bool   `json:"ok"`
	Value uint16 `json:"value"`
}
