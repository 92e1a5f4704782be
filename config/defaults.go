package config

import (
	"os"
	"path/filepath"
	"time"
)

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultListenAddress is the bind address for the command server.
	DefaultListenAddress = "0.0.0.0"

	// DefaultListenPort is the TCP port for the command server.
	DefaultListenPort = 8002

	// DefaultMode is the modem operating mode at startup.
	DefaultMode = "DATAC1"

	// DefaultOutputVolume is the output gain in dB.
	DefaultOutputVolume = 0.0

	// DefaultPTTLine is the serial control line used to key PTT.
	DefaultPTTLine = "rts"

	// DefaultAcceptPoll bounds each accept wait so the server notices a
	// stop request even with no inbound traffic.
	DefaultAcceptPoll = 1 * time.Second

	// configFileName is the per-user options file written by SAVE.
	configFileName = ".freedvtnc2.conf"

	// historyFileName is the per-user console history file.
	historyFileName = ".freedvtnc2_history"
)

// DefaultConfigPath returns the per-user config file path,
// ~/.freedvtnc2.conf.  Falls back to the working directory when the
// home directory cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(home, configFileName)
}

// DefaultHistoryPath returns the console history file path.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFileName
	}
	return filepath.Join(home, historyFileName)
}
