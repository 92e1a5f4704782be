// Package errors provides domain-specific error types for freedvtnc2.
//
// These types carry structured context (device, operation, config field)
// that lets callers map failures onto protocol responses and better
// diagnostics than plain string wrapping.
package errors

import (
	"errors"
	"fmt"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrAlreadyRunning = errors.New("command server already running")
	ErrNotRunning     = errors.New("command server not running")
	ErrNoInputDevice  = errors.New("no input device configured")
	ErrUnknownMode    = errors.New("unknown modem mode")
)

// ── Structured error types ───────────────────────────────────────────

// DeviceError represents a failure talking to a modem or audio
// collaborator.
type DeviceError struct {
	Device string // "modem", "output", "input", "ptt"
	Op     string // operation: "write", "clear", "level", "key"
	Err    error  // underlying error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Device, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: %s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// WrapDevice creates a DeviceError.
func WrapDevice(device, op string, err error) *DeviceError {
	return &DeviceError{Device: device, Op: op, Err: err}
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use this package as a drop-in replacement for
// the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }
