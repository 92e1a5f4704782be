// Package logging configures the shared logrus logger for freedvtnc2.
// Components obtain a tagged entry via PackageLogger, mirroring the
// one-logger-per-component convention used across the codebase.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	base.SetLevel(logrus.InfoLevel)
}

// SetLevel adjusts global verbosity: 0 is the normal Info level, 1 and
// above enables Debug output.
func SetLevel(verbosity int) {
	if verbosity >= 1 {
		base.SetLevel(logrus.DebugLevel)
		return
	}
	base.SetLevel(logrus.InfoLevel)
}

// SetOutput overrides the log destination (default os.Stderr).
func SetOutput(w io.Writer) { base.SetOutput(w) }

// PackageLogger returns an entry tagged with the component name.
func PackageLogger(component string) *logrus.Entry {
	return base.WithField("component", component)
}
