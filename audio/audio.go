// Package audio provides the audio device surfaces the command server
// drives: a memory-backed output device, an input level meter, and a
// PCM tone generator.  The devices here stand in for hardware
// capture/playback backends while exposing the same control surface
// (gain, raw writes, PTT and channel state).
package audio

import (
	"sync"

	errs "github.com/LFManifesto/freedvtnc2/internal/errors"
)

// retainLimit bounds how much written audio a Device keeps for
// inspection.
const retainLimit = 64 * 1024

// Device is a memory-backed audio output device.  It tracks output
// gain, accepts raw PCM writes, and reports PTT and channel state.
type Device struct {
	mu      sync.RWMutex
	name    string
	gainDB  float64
	ptt     bool
	busy    bool
	written int64
	tail    []byte
}

// NewDevice creates a Device with the given name and initial gain.
func NewDevice(name string, gainDB float64) *Device {
	return &Device{name: name, gainDB: gainDB}
}

// Name returns the device name.
func (d *Device) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.name
}

// GainDB returns the output gain in dB.
func (d *Device) GainDB() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.gainDB
}

// SetGainDB sets the output gain in dB.
func (d *Device) SetGainDB(db float64) {
	d.mu.Lock()
	d.gainDB = db
	d.mu.Unlock()
}

// WriteRaw accepts raw PCM bytes for playback.  Only the most recent
// retainLimit bytes are kept.
func (d *Device) WriteRaw(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.written += int64(len(p))
	d.tail = append(d.tail, p...)
	if over := len(d.tail) - retainLimit; over > 0 {
		d.tail = d.tail[over:]
	}
	return nil
}

// BytesWritten returns the total number of bytes accepted.
func (d *Device) BytesWritten() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.written
}

// PTT reports whether the transmitter is keyed.
func (d *Device) PTT() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ptt
}

// SetPTT records the transmitter keyed state.
func (d *Device) SetPTT(on bool) {
	d.mu.Lock()
	d.ptt = on
	d.mu.Unlock()
}

// ChannelBusy reports whether transmission is inhibited because the
// channel is occupied.
func (d *Device) ChannelBusy() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.busy
}

// SetChannelBusy records the channel busy state.
func (d *Device) SetChannelBusy(busy bool) {
	d.mu.Lock()
	d.busy = busy
	d.mu.Unlock()
}

// LevelMeter reports the most recent input signal level in dB.  The
// zero value has no reading and fails until the first Update, which
// is what a configured-but-silent capture path looks like.
type LevelMeter struct {
	mu    sync.RWMutex
	level float64
	valid bool
}

// Update records a new input level reading.
func (m *LevelMeter) Update(db float64) {
	m.mu.Lock()
	m.level = db
	m.valid = true
	m.mu.Unlock()
}

// InputLevel returns the most recent reading, or an error when no
// reading has arrived yet.
func (m *LevelMeter) InputLevel() (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.valid {
		return 0, errs.ErrNoInputDevice
	}
	return m.level, nil
}
