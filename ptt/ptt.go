// Package ptt keys the transmitter of an attached radio through a
// serial rig interface.  Most rig interface cables key PTT when the
// host raises RTS or DTR on the serial port; soundcard-only setups
// rely on VOX instead and use the Nop keyer.
package ptt

import (
	"fmt"

	serial "go.bug.st/serial"

	errs "github.com/LFManifesto/freedvtnc2/internal/errors"
)

// Keyer asserts and releases the push-to-talk line.
type Keyer interface {
	// Key asserts PTT, keying the transmitter.
	Key() error
	// Unkey releases PTT.
	Unkey() error
	// Close releases the underlying port.  The line is dropped first.
	Close() error
}

// Line selects which serial control line drives PTT.
type Line string

const (
	LineRTS Line = "rts"
	LineDTR Line = "dtr"
)

// ParseLine validates a control line name.
func ParseLine(s string) (Line, error) {
	switch Line(s) {
	case LineRTS, LineDTR:
		return Line(s), nil
	}
	return "", &errs.ConfigError{
		Field:   "ptt-line",
		Value:   s,
		Message: "unsupported control line",
		Hint:    "use rts or dtr",
	}
}

// Serial keys PTT by raising RTS or DTR on a serial port.
type Serial struct {
	port serial.Port
	name string
	line Line
}

// OpenSerial opens the named serial port for PTT keying.  The control
// lines are dropped immediately so the rig starts unkeyed.
func OpenSerial(portName string, line Line) (*Serial, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: 9600})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	s := &Serial{port: port, name: portName, line: line}
	if err := s.Unkey(); err != nil {
		_ = port.Close()
		return nil, err
	}
	return s, nil
}

// Key asserts the configured control line.
func (s *Serial) Key() error {
	if err := s.set(true); err != nil {
		return errs.WrapDevice("ptt", "key", err)
	}
	return nil
}

// Unkey releases the configured control line.
func (s *Serial) Unkey() error {
	if err := s.set(false); err != nil {
		return errs.WrapDevice("ptt", "unkey", err)
	}
	return nil
}

// Close unkeys and releases the port.
func (s *Serial) Close() error {
	if err := s.Unkey(); err != nil {
		_ = s.port.Close()
		return err
	}
	return s.port.Close()
}

func (s *Serial) set(on bool) error {
	if s.line == LineDTR {
		return s.port.SetDTR(on)
	}
	return s.port.SetRTS(on)
}

// Nop is a Keyer for setups with no rig control line (VOX keying).
type Nop struct{}

func (Nop) Key() error   { return nil }
func (Nop) Unkey() error { return nil }
func (Nop) Close() error { return nil }
