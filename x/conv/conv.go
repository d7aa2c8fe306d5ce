// Package conv has allocation-free number formatting and parsing for
// console output on MCU targets, where strconv pulls in more than we want.
package conv

import "errors"

var (
	ErrSyntax = errors.New("conv: invalid syntax")
	ErrRange  = errors.New("conv: value out of range")
)

// AppendUint appends the base-10 form of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, buf[i:]...)
}

// AppendHex8 appends b as two uppercase hex digits.
func AppendHex8(dst []byte, b byte) []byte {
	const hexd = "0123456789ABCDEF"
	return append(dst, hexd[b>>4], hexd[b&0xF])
}

// ParseUint parses a decimal, or 0x-prefixed hex, unsigned integer that
// fits in bits.
func ParseUint(s string, bits uint) (uint64, error) {
	base := uint64(10)
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, s = 16, s[2:]
	}
	if s == "" {
		return 0, ErrSyntax
	}
	if bits == 0 || bits > 64 {
		bits = 64
	}
	max := uint64(1)<<(bits-1)<<1 - 1

	var v uint64
	for i := 0; i < len(s); i++ {
		d, ok := digit(s[i])
		if !ok || d >= base {
			return 0, ErrSyntax
		}
		if v > (max-d)/base {
			return 0, ErrRange
		}
		v = v*base + d
	}
	return v, nil
}

func digit(c byte) (uint64, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0'), true
	case c >= 'a' && c <= 'f':
		return uint64(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return uint64(c-'A') + 10, true
	}
	return 0, false
}
