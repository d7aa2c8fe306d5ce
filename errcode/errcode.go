package errcode

import "errors"

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	Unsupported    Code = "unsupported"
	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	InvalidTopic   Code = "invalid_topic"
	Timeout        Code = "timeout"
	Cancelled      Code = "cancelled"

	// DAC
	InvalidChannel Code = "invalid_channel"
	BusWrite       Code = "bus_write"
	NotEnabled     Code = "not_enabled"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap attaches code c and operation op to err. A nil err stays nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// Rule maps a driver sentinel to a Code. Match is compared with errors.Is.
type Rule struct {
	Match error
	Code  Code
}

// MapDriverErr maps low-level driver errors to a Code. Errors that already
// carry a Code keep it; otherwise the first matching rule wins.
func MapDriverErr(err error, rules ...Rule) Code {
	if err == nil {
		return OK
	}
	if c := Of(err); c != Error {
		return c
	}
	for _, r := range rules {
		if errors.Is(err, r.Match) {
			return r.Code
		}
	}
	return Error
}
