// Package cmd wires up the CLI flags and dispatches to the TNC serve
// mode or the interactive console.
package cmd

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/LFManifesto/freedvtnc2/audio"
	"github.com/LFManifesto/freedvtnc2/config"
	"github.com/LFManifesto/freedvtnc2/console"
	"github.com/LFManifesto/freedvtnc2/control"
	"github.com/LFManifesto/freedvtnc2/logging"
	"github.com/LFManifesto/freedvtnc2/modem"
	"github.com/LFManifesto/freedvtnc2/ptt"
)

// version is overridable at link time:
//
//	go build -ldflags "-X github.com/LFManifesto/freedvtnc2/cmd.version=2.1.0"
var version = "2.0.0" //nolint:gochecknoglobals

var log = logging.PackageLogger("cmd")

// Execute parses args and runs the appropriate freedvtnc2 mode.
func Execute(ctx context.Context, args []string) error {
	opts := config.New()
	fs := flag.NewFlagSet("freedvtnc2", flag.ContinueOnError)

	var (
		listenAddr   string
		listenPort   int
		mode         string
		outputVolume float64
		follow       bool
		inputDevice  string
		outputDevice string
		pttPort      string
		pttLine      string
		configPath   string
		connect      string
		verbose      int
		showVersion  bool
		showHelp     bool
	)

	// ── server ───────────────────────────────────────────────────
	fs.StringVarP(&listenAddr, "listen-address", "l", config.DefaultListenAddress, "Command server bind address")
	fs.IntVarP(&listenPort, "listen-port", "p", config.DefaultListenPort, "Command server TCP port")

	// ── modem / audio ────────────────────────────────────────────
	fs.StringVarP(&mode, "mode", "m", config.DefaultMode, "Modem mode (DATAC1, DATAC3, DATAC4)")
	fs.Float64Var(&outputVolume, "output-volume", config.DefaultOutputVolume, "Output volume in dB")
	fs.BoolVar(&follow, "follow", false, "Follow the remote station's mode")
	fs.StringVar(&inputDevice, "input-device", "", "Audio input device name")
	fs.StringVar(&outputDevice, "output-device", "", "Audio output device name")

	// ── rig control ──────────────────────────────────────────────
	fs.StringVar(&pttPort, "ptt-port", "", "Serial port for hardware PTT keying")
	fs.StringVar(&pttLine, "ptt-line", config.DefaultPTTLine, "Serial control line for PTT (rts or dtr)")

	// ── client / misc ────────────────────────────────────────────
	fs.StringVarP(&connect, "connect", "C", "", "Connect to a running server as an interactive console")
	fs.StringVarP(&configPath, "config", "c", "", "Options file path (default ~/.freedvtnc2.conf)")
	fs.CountVarP(&verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("freedvtnc2 %s\n", version)
		return nil
	}

	// Precedence: defaults < options file < environment < flags.
	if err := loadOptionsFile(opts, configPath, fs.Changed("config")); err != nil {
		return err
	}
	config.LoadFromEnv(opts)
	applyFlags(opts, fs, flagValues{
		listenAddr: listenAddr, listenPort: listenPort,
		mode: mode, outputVolume: outputVolume, follow: follow,
		inputDevice: inputDevice, outputDevice: outputDevice,
		pttPort: pttPort, pttLine: pttLine, verbose: verbose,
	})

	logging.SetLevel(opts.Verbose())

	if connect != "" {
		return console.Run(ctx, console.Config{
			Address:     connect,
			HistoryPath: config.DefaultHistoryPath(),
		})
	}
	return serve(ctx, opts)
}

// loadOptionsFile overlays the options file.  An explicitly given path
// must exist; the default path is optional.
func loadOptionsFile(opts *config.Options, path string, explicit bool) error {
	if explicit {
		opts.SetConfigPath(path)
		return config.LoadFile(opts, path)
	}
	defaultPath := opts.ConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		return config.LoadFile(opts, defaultPath)
	}
	return nil
}

type flagValues struct {
	listenAddr   string
	listenPort   int
	mode         string
	outputVolume float64
	follow       bool
	inputDevice  string
	outputDevice string
	pttPort      string
	pttLine      string
	verbose      int
}

// applyFlags overlays only the flags the user actually set, so file
// and environment values survive.
func applyFlags(opts *config.Options, fs *flag.FlagSet, v flagValues) {
	if fs.Changed("listen-address") {
		opts.SetListenAddress(v.listenAddr)
	}
	if fs.Changed("listen-port") {
		opts.SetListenPort(v.listenPort)
	}
	if fs.Changed("mode") {
		opts.SetMode(v.mode)
	}
	if fs.Changed("output-volume") {
		opts.SetOutputVolume(v.outputVolume)
	}
	if fs.Changed("follow") {
		opts.SetFollow(v.follow)
	}
	if fs.Changed("input-device") {
		opts.SetInputDevice(v.inputDevice)
	}
	if fs.Changed("output-device") {
		opts.SetOutputDevice(v.outputDevice)
	}
	if fs.Changed("ptt-port") {
		opts.SetPTTPort(v.pttPort)
	}
	if fs.Changed("ptt-line") {
		opts.SetPTTLine(v.pttLine)
	}
	if fs.Changed("verbose") {
		opts.SetVerbose(v.verbose)
	}
}

// serve builds the collaborators and runs the command server until the
// context ends.
func serve(ctx context.Context, opts *config.Options) error {
	m, err := modem.New(opts.Mode())
	if err != nil {
		return err
	}

	devices := &control.Devices{
		Modem:   m,
		Output:  audio.NewDevice(opts.OutputDevice(), opts.OutputVolume()),
		Input:   &audio.LevelMeter{},
		Options: opts,
	}

	if opts.PTTPort() != "" {
		line, err := ptt.ParseLine(opts.PTTLine())
		if err != nil {
			return err
		}
		keyer, err := ptt.OpenSerial(opts.PTTPort(), line)
		if err != nil {
			return err
		}
		defer func() {
			if err := keyer.Close(); err != nil {
				log.Warnf("ptt close: %v", err)
			}
		}()
		devices.Keyer = keyer
	}

	srv := control.NewServer(control.ServerConfig{
		Address: opts.ListenAddress(),
		Port:    opts.ListenPort(),
	}, devices)
	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	srv.Stop()
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `freedvtnc2 %s - FreeDV packet-radio TNC control plane

Usage:
  freedvtnc2 [options]                 run the TNC and its command server
  freedvtnc2 -C host:port              interactive console to a running TNC

Options:
%s
Runtime control (TCP, default port %d):
  PING, MODE [name], VOLUME [dB], FOLLOW [ON|OFF], STATUS, LEVELS,
  PTT TEST, CLEAR, SAVE
`, version, fs.FlagUsages(), config.DefaultListenPort)
}
