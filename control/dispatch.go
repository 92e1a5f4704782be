package control

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/LFManifesto/freedvtnc2/audio"
	"github.com/LFManifesto/freedvtnc2/internal/metrics"
	"github.com/LFManifesto/freedvtnc2/modem"
)

// PTT TEST tone parameters: a 440 Hz sine for two seconds at -6 dBFS,
// enough to key VOX circuits and verify the transmit path.
const (
	testToneFreq     = 440.0
	testToneDuration = 2 * time.Second
	testToneGainDB   = -6.0
)

// Dispatcher maps one trimmed command line onto a handler and renders
// exactly one response line.  It is stateless beyond the collaborators
// it references and safe for use from every connection goroutine.
type Dispatcher struct {
	devices *Devices
	metrics *metrics.Collector
}

// NewDispatcher creates a Dispatcher over the given collaborators.
// A nil collector disables counting.
func NewDispatcher(devices *Devices, m *metrics.Collector) *Dispatcher {
	return &Dispatcher{devices: devices, metrics: m}
}

// Dispatch executes one command line and returns the response line
// without its trailing newline.
func (d *Dispatcher) Dispatch(line string) string {
	res := d.run(line)
	d.metrics.CommandProcessed()
	if !res.ok {
		d.metrics.CommandFailed(res.payload)
	}
	return res.Line()
}

// run executes the handler for line.  A panicking collaborator is
// converted into an ERROR response rather than tearing down the
// connection.
func (d *Dispatcher) run(line string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic processing %q: %v", line, r)
			res = failf("%v", r)
		}
	}()

	verb, arg := splitCommand(line)
	switch verb {
	case "":
		return fail("Empty command")
	case "PING":
		return succeed("PONG")
	case "MODE":
		return d.cmdMode(arg)
	case "VOLUME":
		return d.cmdVolume(arg)
	case "FOLLOW":
		return d.cmdFollow(arg)
	case "STATUS":
		return d.cmdStatus()
	case "LEVELS":
		return d.cmdLevels()
	case "PTT":
		if strings.EqualFold(arg, "TEST") {
			return d.cmdPTTTest()
		}
		return fail("Unknown PTT command. Use: PTT TEST")
	case "CLEAR":
		return d.cmdClear()
	case "SAVE":
		return d.cmdSave()
	default:
		return failf("Unknown command: %s", verb)
	}
}

// splitCommand splits a trimmed line on the first run of whitespace
// into an upper-cased verb and the verbatim remainder.
func splitCommand(line string) (verb, arg string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return strings.ToUpper(line), ""
	}
	return strings.ToUpper(line[:i]), strings.TrimSpace(line[i+1:])
}

// ── Handlers ─────────────────────────────────────────────────────────

func (d *Dispatcher) cmdMode(arg string) Result {
	if arg == "" {
		return succeedf("MODE %s", d.devices.Modem.ModeName())
	}

	spec, found := modem.Lookup(arg)
	if !found {
		return failf("Invalid mode. Valid: %s", strings.Join(modem.Names(), ", "))
	}
	if err := d.devices.Modem.SetMode(spec.Name); err != nil {
		return fail(err.Error())
	}
	d.devices.Options.SetMode(spec.Name)
	log.Infof("mode changed to %s", spec.Name)
	return succeedf("MODE %s", spec.Name)
}

func (d *Dispatcher) cmdVolume(arg string) Result {
	if arg == "" {
		return succeedf("VOLUME %s", formatVolume(d.devices.Options.OutputVolume()))
	}

	volume, err := strconv.ParseFloat(arg, 64)
	if err != nil || math.IsNaN(volume) || math.IsInf(volume, 0) {
		return fail("Invalid volume (must be number in dB)")
	}
	d.devices.Output.SetGainDB(volume)
	d.devices.Options.SetOutputVolume(volume)
	log.Infof("volume changed to %s dB", formatVolume(volume))
	return succeedf("VOLUME %s", formatVolume(volume))
}

func (d *Dispatcher) cmdFollow(arg string) Result {
	if arg == "" {
		return succeedf("FOLLOW %s", onOff(d.devices.Options.Follow()))
	}

	switch strings.ToUpper(arg) {
	case "ON":
		d.devices.Options.SetFollow(true)
		log.Info("follow mode enabled")
		return succeed("FOLLOW ON")
	case "OFF":
		d.devices.Options.SetFollow(false)
		log.Info("follow mode disabled")
		return succeed("FOLLOW OFF")
	default:
		return fail("Invalid follow state. Use: ON or OFF")
	}
}

func (d *Dispatcher) cmdStatus() Result {
	ptt := "OFF"
	if r, ok := d.devices.Output.(PTTReporter); ok && r.PTT() {
		ptt = "ON"
	}
	channel := "CLEAR"
	if r, ok := d.devices.Output.(ChannelReporter); ok && r.ChannelBusy() {
		channel = "BUSY"
	}
	return succeedf("STATUS MODE=%s VOLUME=%s FOLLOW=%s PTT=%s CHANNEL=%s",
		d.devices.Modem.ModeName(),
		formatVolume(d.devices.Options.OutputVolume()),
		onOff(d.devices.Options.Follow()),
		ptt,
		channel)
}

func (d *Dispatcher) cmdLevels() Result {
	if d.devices.Input == nil {
		return fail("Could not read levels: no input device configured")
	}
	level, err := d.devices.Input.InputLevel()
	if err != nil {
		return failf("Could not read levels: %v", err)
	}
	return succeedf("LEVELS RX=%.1f", level)
}

func (d *Dispatcher) cmdPTTTest() Result {
	tone := audio.Tone(testToneFreq, d.devices.Modem.SampleRate(), testToneDuration, testToneGainDB)

	if k := d.devices.Keyer; k != nil {
		if err := k.Key(); err != nil {
			return failf("PTT test failed: %v", err)
		}
		defer func() {
			if err := k.Unkey(); err != nil {
				log.Warnf("ptt unkey: %v", err)
			}
		}()
	}

	if err := d.devices.Output.WriteRaw(tone); err != nil {
		return failf("PTT test failed: %v", err)
	}
	log.Info("PTT test triggered")
	return succeed("PTT TEST started")
}

func (d *Dispatcher) cmdClear() Result {
	m := d.devices.Modem
	if err := m.Queue().Drain(m.Reset); err != nil {
		return failf("Clear failed: %v", err)
	}
	log.Info("TX buffer cleared")
	return succeed("CLEAR")
}

func (d *Dispatcher) cmdSave() Result {
	path := d.devices.Options.ConfigPath()
	if err := d.devices.Options.Save(path); err != nil {
		return failf("Save failed: %v", err)
	}
	log.Infof("config saved to %s", path)
	return succeedf("SAVE %s", path)
}

// ── Formatting helpers ───────────────────────────────────────────────

func formatVolume(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
