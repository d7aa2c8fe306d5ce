package conv

import (
	"errors"
	"testing"
)

func TestAppendUint(t *testing.T) {
	cases := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{65535, "65535"},
		{18446744073709551615, "18446744073709551615"},
	}
	for _, c := range cases {
		if got := string(AppendUint([]byte("v="), c.n)); got != "v="+c.want {
			t.Fatalf("AppendUint(%d)=%q", c.n, got)
		}
	}
}

func TestAppendHex8(t *testing.T) {
	got := AppendHex8(AppendHex8(nil, 0x1A), 0x05)
	if string(got) != "1A05" {
		t.Fatalf("got %q", got)
	}
}

func TestParseUint(t *testing.T) {
	cases := []struct {
		s    string
		bits uint
		want uint64
		err  error
	}{
		{"0", 16, 0, nil},
		{"65535", 16, 65535, nil},
		{"65536", 16, 0, ErrRange},
		{"0xFFFF", 16, 0xFFFF, nil},
		{"0x1234", 16, 0x1234, nil},
		{"0x", 16, 0, ErrSyntax},
		{"", 16, 0, ErrSyntax},
		{"12a", 16, 0, ErrSyntax},
		{"-1", 16, 0, ErrSyntax},
		{"4294967295", 32, 4294967295, nil},
		{"18446744073709551615", 64, 18446744073709551615, nil},
		{"18446744073709551616", 64, 0, ErrRange},
	}
	for _, c := range cases {
		got, err := ParseUint(c.s, c.bits)
		if !errors.Is(err, c.err) || got != c.want {
			t.Fatalf("ParseUint(%q,%d)=(%d,%v) want (%d,%v)", c.s, c.bits, got, err, c.want, c.err)
		}
	}
}
