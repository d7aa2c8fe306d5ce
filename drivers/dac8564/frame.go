package dac8564

// FrameSize is the length of every command frame.
const FrameSize = 3

// cmdWrite is the command prefix: write to the input register and update the
// selected output.
const cmdWrite = 0b0001_0000

// Frame is one command as sent on the wire.
//
//	[0] prefix | channel selector
//	[1] value bits 15..8
//	[2] value bits 7..0
type Frame [FrameSize]byte

// Encode builds the frame that sets ch to value. It does not validate ch: the
// low nibble of ch goes out as the selector as-is. Device writes reject
// undefined channels before encoding.
func Encode(ch Channel, value uint16) Frame {
	return Frame{
		cmdWrite | ch.Code(),
		byte(value >> 8),
		byte(value),
	}
}

// Channel returns the selector carried in f.
func (f Frame) Channel() Channel { return Channel(f[0] & 0x0F) }

// Value returns the 16-bit value carried in f.
func (f Frame) Value() uint16 { return uint16(f[1])<<8 | uint16(f[2]) }
