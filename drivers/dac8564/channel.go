package dac8564

import "strings"

// Channel selects a DAC output. The values are the hardware selector codes
// carried in the low nibble of the command byte.
type Channel uint8

const (
	A   Channel = 0b0000
	B   Channel = 0b0010
	C   Channel = 0b0100
	D   Channel = 0b0110
	All Channel = 0b0111 // broadcast to every output
)

// Channels lists the individually addressable outputs in index order.
var Channels = [4]Channel{A, B, C, D}

// ChannelFromIndex maps a zero-based output index to its Channel.
// Indices outside 0..3 return ErrInvalidChannel.
func ChannelFromIndex(i int) (Channel, error) {
	if i < 0 || i >= len(Channels) {
		return 0, ErrInvalidChannel
	}
	return Channels[i], nil
}

// ParseChannel accepts "a".."d", "all" (any case) or an index "0".."3".
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(s) {
	case "a", "0":
		return A, nil
	case "b", "1":
		return B, nil
	case "c", "2":
		return C, nil
	case "d", "3":
		return D, nil
	case "all":
		return All, nil
	}
	return 0, ErrInvalidChannel
}

// Code returns the 4-bit selector code.
func (c Channel) Code() byte { return byte(c) & 0x0F }

// Valid reports whether c is one of the five defined channels.
func (c Channel) Valid() bool {
	switch c {
	case A, B, C, D, All:
		return true
	}
	return false
}

// Index returns 0..3 for A..D, and -1 for All or an undefined value.
func (c Channel) Index() int {
	for i, ch := range Channels {
		if ch == c {
			return i
		}
	}
	return -1
}

func (c Channel) String() string {
	switch c {
	case A:
		return "a"
	case B:
		return "b"
	case C:
		return "c"
	case D:
		return "d"
	case All:
		return "all"
	}
	return "invalid"
}
