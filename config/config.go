// Package config defines the shared runtime configuration for
// freedvtnc2 and its persistence to the flat key=value options file.
//
// A single *Options value is passed to the command server, its
// handlers, and the collaborators; every read and write goes through
// the mutex-guarded accessors so concurrently connected clients see a
// consistent view.
package config

import (
	"math"
	"strconv"
	"sync"

	errs "github.com/LFManifesto/freedvtnc2/internal/errors"
)

// Options holds every tuneable for a running TNC.
type Options struct {
	mu sync.RWMutex

	mode          string
	outputVolume  float64
	follow        bool
	inputDevice   string
	outputDevice  string
	pttPort       string
	pttLine       string
	listenAddress string
	listenPort    int
	configPath    string
	verbose       int
}

// New returns Options populated with the package defaults.
func New() *Options {
	return &Options{
		mode:          DefaultMode,
		outputVolume:  DefaultOutputVolume,
		pttLine:       DefaultPTTLine,
		listenAddress: DefaultListenAddress,
		listenPort:    DefaultListenPort,
		configPath:    DefaultConfigPath(),
	}
}

// ── Accessors ────────────────────────────────────────────────────────
//
// MODE, VOLUME, and FOLLOW mutate these in lockstep with the device
// setters so a subsequent SAVE reflects the latest runtime state.

// Mode returns the configured modem mode name.
func (o *Options) Mode() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mode
}

// SetMode records the modem mode name.
func (o *Options) SetMode(mode string) {
	o.mu.Lock()
	o.mode = mode
	o.mu.Unlock()
}

// OutputVolume returns the output gain in dB.
func (o *Options) OutputVolume() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.outputVolume
}

// SetOutputVolume records the output gain in dB.
func (o *Options) SetOutputVolume(db float64) {
	o.mu.Lock()
	o.outputVolume = db
	o.mu.Unlock()
}

// Follow reports whether automatic mode following is enabled.
func (o *Options) Follow() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.follow
}

// SetFollow enables or disables automatic mode following.
func (o *Options) SetFollow(on bool) {
	o.mu.Lock()
	o.follow = on
	o.mu.Unlock()
}

// InputDevice returns the audio input device name.
func (o *Options) InputDevice() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.inputDevice
}

// SetInputDevice records the audio input device name.
func (o *Options) SetInputDevice(name string) {
	o.mu.Lock()
	o.inputDevice = name
	o.mu.Unlock()
}

// OutputDevice returns the audio output device name.
func (o *Options) OutputDevice() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.outputDevice
}

// SetOutputDevice records the audio output device name.
func (o *Options) SetOutputDevice(name string) {
	o.mu.Lock()
	o.outputDevice = name
	o.mu.Unlock()
}

// PTTPort returns the serial port used for hardware PTT keying.
func (o *Options) PTTPort() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pttPort
}

// SetPTTPort records the serial port used for hardware PTT keying.
func (o *Options) SetPTTPort(port string) {
	o.mu.Lock()
	o.pttPort = port
	o.mu.Unlock()
}

// PTTLine returns the serial control line that keys PTT (rts or dtr).
func (o *Options) PTTLine() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pttLine
}

// SetPTTLine records the serial control line that keys PTT.
func (o *Options) SetPTTLine(line string) {
	o.mu.Lock()
	o.pttLine = line
	o.mu.Unlock()
}

// ListenAddress returns the command server bind address.
func (o *Options) ListenAddress() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.listenAddress
}

// SetListenAddress records the command server bind address.
func (o *Options) SetListenAddress(addr string) {
	o.mu.Lock()
	o.listenAddress = addr
	o.mu.Unlock()
}

// ListenPort returns the command server TCP port.
func (o *Options) ListenPort() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.listenPort
}

// SetListenPort records the command server TCP port.
func (o *Options) SetListenPort(port int) {
	o.mu.Lock()
	o.listenPort = port
	o.mu.Unlock()
}

// ConfigPath returns the path SAVE writes the options file to.
func (o *Options) ConfigPath() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.configPath
}

// SetConfigPath records the options file path.
func (o *Options) SetConfigPath(path string) {
	o.mu.Lock()
	o.configPath = path
	o.mu.Unlock()
}

// Verbose returns the logging verbosity.
func (o *Options) Verbose() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.verbose
}

// SetVerbose records the logging verbosity.
func (o *Options) SetVerbose(v int) {
	o.mu.Lock()
	o.verbose = v
	o.mu.Unlock()
}

// ── Persisted view ───────────────────────────────────────────────────

// Snapshot returns the persistable key→value view of the options.
// Keys are hyphenated; unset string options appear as empty values.
// The config path itself is excluded so the options file never
// references itself.
func (o *Options) Snapshot() map[string]string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return map[string]string{
		"mode":           o.mode,
		"output-volume":  formatFloat(o.outputVolume),
		"follow":         strconv.FormatBool(o.follow),
		"input-device":   o.inputDevice,
		"output-device":  o.outputDevice,
		"ptt-port":       o.pttPort,
		"ptt-line":       o.pttLine,
		"listen-address": o.listenAddress,
		"listen-port":    strconv.Itoa(o.listenPort),
		"verbose":        strconv.Itoa(o.verbose),
	}
}

// apply sets a single option from its persisted key.  Unknown keys are
// ignored so files written by newer versions still load.
func (o *Options) apply(key, value string) error {
	switch key {
	case "mode":
		o.SetMode(value)
	case "output-volume":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return &errs.ConfigError{Field: key, Value: value, Message: "must be a number in dB"}
		}
		o.SetOutputVolume(v)
	case "follow":
		o.SetFollow(parseBool(value))
	case "input-device":
		o.SetInputDevice(value)
	case "output-device":
		o.SetOutputDevice(value)
	case "ptt-port":
		o.SetPTTPort(value)
	case "ptt-line":
		o.SetPTTLine(value)
	case "listen-address":
		o.SetListenAddress(value)
	case "listen-port":
		p, err := strconv.Atoi(value)
		if err != nil || p < 1 || p > 65535 {
			return &errs.ConfigError{Field: key, Value: value, Message: "must be a port number 1-65535"}
		}
		o.SetListenPort(p)
	case "verbose":
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 {
			return &errs.ConfigError{Field: key, Value: value, Message: "must be a non-negative integer"}
		}
		o.SetVerbose(v)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
