// Package modem exposes the control surface of the software modem:
// the registry of valid operating modes, the live mode state, and the
// transmit queue.  The signal-processing engine sits behind this
// surface and is driven through it, not implemented here.
package modem

import (
	"fmt"
	"strings"
	"sync"

	errs "github.com/LFManifesto/freedvtnc2/internal/errors"
)

// ModeSpec describes one operating mode of the modem.
type ModeSpec struct {
	Name       string
	SampleRate int // modem audio sample rate in Hz
}

// modes is the fixed registry of valid operating modes, in the order
// they are reported to clients.
var modes = []ModeSpec{
	{Name: "DATAC1", SampleRate: 8000},
	{Name: "DATAC3", SampleRate: 8000},
	{Name: "DATAC4", SampleRate: 8000},
}

// Names returns the valid mode names in registry order.
func Names() []string {
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = m.Name
	}
	return out
}

// Lookup finds a mode by name, case-insensitively.
func Lookup(name string) (ModeSpec, bool) {
	for _, m := range modes {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return ModeSpec{}, false
}

// Modem holds the live, concurrently-accessed control state of the
// software modem: the current mode, frames staged for modulation, and
// the transmit queue.
type Modem struct {
	mu      sync.RWMutex
	mode    ModeSpec
	pending [][]byte // staged frames not yet handed to the transmit queue

	queue TxQueue
}

// New creates a Modem in the named mode.
func New(modeName string) (*Modem, error) {
	spec, ok := Lookup(modeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)",
			errs.ErrUnknownMode, modeName, strings.Join(Names(), ", "))
	}
	return &Modem{mode: spec}, nil
}

// ModeName returns the current mode name.
func (m *Modem) ModeName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode.Name
}

// SampleRate returns the audio sample rate of the current mode in Hz.
func (m *Modem) SampleRate() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode.SampleRate
}

// SetMode switches the modem to the named mode.  Unknown names leave
// the current mode untouched.
func (m *Modem) SetMode(name string) error {
	spec, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q (valid: %s)",
			errs.ErrUnknownMode, name, strings.Join(Names(), ", "))
	}
	m.mu.Lock()
	m.mode = spec
	m.mu.Unlock()
	return nil
}

// Stage records a frame awaiting modulation.  Staged frames are
// dropped by Reset.
func (m *Modem) Stage(frame []byte) {
	m.mu.Lock()
	m.pending = append(m.pending, frame)
	m.mu.Unlock()
}

// PendingFrames returns the number of staged frames.
func (m *Modem) PendingFrames() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pending)
}

// Reset drops the modem's internal buffered state.  It does not touch
// the transmit queue; callers that need both cleared atomically use
// Queue().Drain(m.Reset).
func (m *Modem) Reset() error {
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
	return nil
}

// Queue returns the modem's transmit queue.
func (m *Modem) Queue() *TxQueue {
	return &m.queue
}
