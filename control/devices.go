// Package control implements the TCP command server that is the
// runtime control plane of the TNC.  One goroutine accepts
// connections; each client gets its own goroutine that frames ASCII
// lines, dispatches them against the shared modem/audio/options
// state, and writes exactly one OK/ERROR response per command.
package control

import (
	"github.com/LFManifesto/freedvtnc2/audio"
	"github.com/LFManifesto/freedvtnc2/config"
	"github.com/LFManifesto/freedvtnc2/modem"
	"github.com/LFManifesto/freedvtnc2/ptt"
)

// Modem is the control surface the server needs from the modem.
type Modem interface {
	ModeName() string
	SetMode(name string) error
	SampleRate() int
	Reset() error
	Queue() *modem.TxQueue
}

// Output is the control surface of the audio output device.
type Output interface {
	GainDB() float64
	SetGainDB(db float64)
	WriteRaw(p []byte) error
}

// Input exposes the current input signal level.
type Input interface {
	InputLevel() (float64, error)
}

// PTTReporter is an optional capability of an Output: reporting
// whether the transmitter is keyed.  Outputs without it are treated
// as unkeyed.
type PTTReporter interface {
	PTT() bool
}

// ChannelReporter is an optional capability of an Output: reporting
// whether transmission is inhibited by a busy channel.  Outputs
// without it are treated as clear.
type ChannelReporter interface {
	ChannelBusy() bool
}

// Devices bundles the collaborators a command server drives.  Keyer
// is optional and nil when no rig interface is configured.
type Devices struct {
	Modem   Modem
	Output  Output
	Input   Input
	Options *config.Options
	Keyer   ptt.Keyer
}

// The in-tree collaborators satisfy the capability interfaces.
var (
	_ Modem           = (*modem.Modem)(nil)
	_ Output          = (*audio.Device)(nil)
	_ Input           = (*audio.LevelMeter)(nil)
	_ PTTReporter     = (*audio.Device)(nil)
	_ ChannelReporter = (*audio.Device)(nil)
)
