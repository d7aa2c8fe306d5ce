package console

import (
	"errors"

	"github.com/google/shlex"

	"github.com/chmanie/dac8564/services/dac"
	"github.com/chmanie/dac8564/types"
	"github.com/chmanie/dac8564/x/conv"
)

// Verbs answered locally. They never reach the bus.
const (
	VerbHelp  = "help"
	VerbFrame = "frame"
)

const helpText = "commands:\n" +
	"  enable\n" +
	"  set <ch> <value>\n" +
	"  mv <ch> <millivolts>\n" +
	"  ramp <ch> <from> <to> <ms> <steps>\n" +
	"  info\n" +
	"  frame <ch> <value>   print the wire frame, no write\n" +
	"  help\n" +
	"ch: a b c d all 0-3, numbers: decimal or 0x hex\n"

var (
	ErrEmpty   = errors.New("empty")
	ErrSyntax  = errors.New("bad_syntax")
	ErrUnknown = errors.New("unknown_command")
	ErrNumber  = errors.New("bad_number")
)

// UsageError reports a known command with the wrong arguments.
type UsageError struct{ Usage string }

func (e *UsageError) Error() string { return "usage: " + e.Usage }

// Command is a parsed console line: a control verb and its payload.
type Command struct {
	Verb    string
	Payload any
}

// Parse splits line shell-style and maps it to a DAC control.
func Parse(line string) (Command, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return Command{}, ErrSyntax
	}
	if len(args) == 0 {
		return Command{}, ErrEmpty
	}

	switch args[0] {
	case "enable":
		return Command{Verb: dac.CtrlEnable}, nil

	case "info":
		return Command{Verb: dac.CtrlInfo}, nil

	case "help", "?":
		return Command{Verb: VerbHelp}, nil

	case "set", VerbFrame:
		if len(args) != 3 {
			return Command{}, &UsageError{args[0] + " <ch> <value>"}
		}
		v, err := number(args[2], 16)
		if err != nil {
			return Command{}, err
		}
		verb := dac.CtrlSet
		if args[0] == VerbFrame {
			verb = VerbFrame
		}
		return Command{Verb: verb, Payload: types.DACSet{Channel: args[1], Value: uint16(v)}}, nil

	case "mv":
		if len(args) != 3 {
			return Command{}, &UsageError{"mv <ch> <millivolts>"}
		}
		v, err := number(args[2], 32)
		if err != nil {
			return Command{}, err
		}
		return Command{Verb: dac.CtrlSetMV, Payload: types.DACSetMilliV{Channel: args[1], MilliV: uint32(v)}}, nil

	case "ramp":
		if len(args) != 6 {
			return Command{}, &UsageError{"ramp <ch> <from> <to> <ms> <steps>"}
		}
		var n [4]uint64
		bits := [4]uint{16, 16, 32, 16}
		for i := range n {
			if n[i], err = number(args[2+i], bits[i]); err != nil {
				return Command{}, err
			}
		}
		return Command{Verb: dac.CtrlRamp, Payload: types.DACRamp{
			Channel:    args[1],
			From:       uint16(n[0]),
			To:         uint16(n[1]),
			DurationMs: uint32(n[2]),
			Steps:      uint16(n[3]),
		}}, nil
	}
	return Command{}, ErrUnknown
}

func number(s string, bits uint) (uint64, error) {
	v, err := conv.ParseUint(s, bits)
	if err != nil {
		return 0, ErrNumber
	}
	return v, nil
}
