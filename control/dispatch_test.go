package control

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LFManifesto/freedvtnc2/audio"
	"github.com/LFManifesto/freedvtnc2/config"
	"github.com/LFManifesto/freedvtnc2/modem"
)

// newTestDevices builds a dispatcher over real collaborators with the
// config path pointed into a temp dir.
func newTestDevices(t *testing.T) *Devices {
	t.Helper()
	m, err := modem.New("DATAC1")
	require.NoError(t, err)

	opts := config.New()
	opts.SetConfigPath(filepath.Join(t.TempDir(), "freedvtnc2.conf"))

	meter := &audio.LevelMeter{}
	return &Devices{
		Modem:   m,
		Output:  audio.NewDevice("default", 0),
		Input:   meter,
		Options: opts,
	}
}

func TestDispatch_Ping(t *testing.T) {
	d := NewDispatcher(newTestDevices(t), nil)
	assert.Equal(t, "OK PONG", d.Dispatch("PING"))
	assert.Equal(t, "OK PONG", d.Dispatch("ping"))
	assert.Equal(t, "OK PONG", d.Dispatch("PING whatever"))
}

func TestDispatch_Mode(t *testing.T) {
	d := NewDispatcher(newTestDevices(t), nil)

	assert.Equal(t, "OK MODE DATAC1", d.Dispatch("MODE"))

	for _, name := range modem.Names() {
		assert.Equal(t, "OK MODE "+name, d.Dispatch("MODE "+name))
		assert.Equal(t, "OK MODE "+name, d.Dispatch("MODE"))
	}

	// Lower-case argument is accepted and echoed canonically.
	assert.Equal(t, "OK MODE DATAC3", d.Dispatch("mode datac3"))
}

func TestDispatch_ModeInvalid(t *testing.T) {
	devs := newTestDevices(t)
	d := NewDispatcher(devs, nil)

	resp := d.Dispatch("MODE DATAC9")
	assert.Equal(t, "ERROR Invalid mode. Valid: DATAC1, DATAC3, DATAC4", resp)

	// The active mode and the options mirror are untouched.
	assert.Equal(t, "OK MODE DATAC1", d.Dispatch("MODE"))
	assert.Equal(t, "DATAC1", devs.Options.Mode())
}

func TestDispatch_Volume(t *testing.T) {
	devs := newTestDevices(t)
	d := NewDispatcher(devs, nil)

	assert.Equal(t, "OK VOLUME 0", d.Dispatch("VOLUME"))
	assert.Equal(t, "OK VOLUME -6.5", d.Dispatch("VOLUME -6.5"))
	assert.Equal(t, "OK VOLUME -6.5", d.Dispatch("VOLUME"))

	// Tracked in lockstep on the device and in the options.
	assert.Equal(t, -6.5, devs.Output.GainDB())
	assert.Equal(t, -6.5, devs.Options.OutputVolume())
}

func TestDispatch_VolumeInvalid(t *testing.T) {
	devs := newTestDevices(t)
	d := NewDispatcher(devs, nil)
	d.Dispatch("VOLUME -3")

	for _, arg := range []string{"abc", "1.2.3", "NaN", "+Inf"} {
		resp := d.Dispatch("VOLUME " + arg)
		assert.Equal(t, "ERROR Invalid volume (must be number in dB)", resp, "arg %q", arg)
	}
	// Prior volume unchanged.
	assert.Equal(t, "OK VOLUME -3", d.Dispatch("VOLUME"))
}

func TestDispatch_Follow(t *testing.T) {
	devs := newTestDevices(t)
	d := NewDispatcher(devs, nil)

	assert.Equal(t, "OK FOLLOW OFF", d.Dispatch("FOLLOW"))
	assert.Equal(t, "OK FOLLOW ON", d.Dispatch("FOLLOW ON"))
	assert.Equal(t, "OK FOLLOW ON", d.Dispatch("FOLLOW"))
	assert.Equal(t, "OK FOLLOW OFF", d.Dispatch("follow off"))

	resp := d.Dispatch("FOLLOW maybe")
	assert.Equal(t, "ERROR Invalid follow state. Use: ON or OFF", resp)
	assert.Equal(t, "OK FOLLOW OFF", d.Dispatch("FOLLOW"))
}

// bareOutput implements only Output, with no PTT or channel capability.
type bareOutput struct {
	gain float64
}

func (o *bareOutput) GainDB() float64         { return o.gain }
func (o *bareOutput) SetGainDB(db float64)    { o.gain = db }
func (o *bareOutput) WriteRaw(p []byte) error { return nil }

func TestDispatch_Status(t *testing.T) {
	devs := newTestDevices(t)
	d := NewDispatcher(devs, nil)

	d.Dispatch("MODE DATAC3")
	d.Dispatch("VOLUME -6.5")
	d.Dispatch("FOLLOW ON")

	assert.Equal(t,
		"OK STATUS MODE=DATAC3 VOLUME=-6.5 FOLLOW=ON PTT=OFF CHANNEL=CLEAR",
		d.Dispatch("STATUS"))

	// Reported straight from the device capabilities when present.
	dev := devs.Output.(*audio.Device)
	dev.SetPTT(true)
	dev.SetChannelBusy(true)
	assert.Equal(t,
		"OK STATUS MODE=DATAC3 VOLUME=-6.5 FOLLOW=ON PTT=ON CHANNEL=BUSY",
		d.Dispatch("STATUS"))
}

func TestDispatch_StatusDefaultsWithoutCapabilities(t *testing.T) {
	devs := newTestDevices(t)
	devs.Output = &bareOutput{}
	d := NewDispatcher(devs, nil)

	resp := d.Dispatch("STATUS")
	assert.Contains(t, resp, "PTT=OFF")
	assert.Contains(t, resp, "CHANNEL=CLEAR")
}

func TestDispatch_Levels(t *testing.T) {
	devs := newTestDevices(t)
	d := NewDispatcher(devs, nil)

	resp := d.Dispatch("LEVELS")
	assert.Contains(t, resp, "ERROR Could not read levels:")

	devs.Input.(*audio.LevelMeter).Update(-42.31)
	assert.Equal(t, "OK LEVELS RX=-42.3", d.Dispatch("LEVELS"))
}

// failingOutput rejects raw writes.
type failingOutput struct {
	bareOutput
}

func (o *failingOutput) WriteRaw(p []byte) error { return errors.New("device detached") }

func TestDispatch_PTTTest(t *testing.T) {
	devs := newTestDevices(t)
	d := NewDispatcher(devs, nil)

	assert.Equal(t, "OK PTT TEST started", d.Dispatch("PTT TEST"))
	assert.Equal(t, "OK PTT TEST started", d.Dispatch("ptt test"))

	// 2 s of 16-bit mono at the modem rate, twice.
	dev := devs.Output.(*audio.Device)
	want := int64(2 * 2 * devs.Modem.SampleRate() * 2)
	assert.Equal(t, want, dev.BytesWritten())
}

func TestDispatch_PTTUnknownSubcommand(t *testing.T) {
	d := NewDispatcher(newTestDevices(t), nil)
	assert.Equal(t, "ERROR Unknown PTT command. Use: PTT TEST", d.Dispatch("PTT NOW"))
}

func TestDispatch_PTTTestWriteFailure(t *testing.T) {
	devs := newTestDevices(t)
	devs.Output = &failingOutput{}
	d := NewDispatcher(devs, nil)

	resp := d.Dispatch("PTT TEST")
	assert.Equal(t, "ERROR PTT test failed: device detached", resp)
}

// recordingKeyer tracks key/unkey calls.
type recordingKeyer struct {
	keyed   int
	unkeyed int
	keyErr  error
}

func (k *recordingKeyer) Key() error {
	if k.keyErr != nil {
		return k.keyErr
	}
	k.keyed++
	return nil
}
func (k *recordingKeyer) Unkey() error { k.unkeyed++; return nil }
func (k *recordingKeyer) Close() error { return nil }

func TestDispatch_PTTTestKeysRig(t *testing.T) {
	devs := newTestDevices(t)
	keyer := &recordingKeyer{}
	devs.Keyer = keyer
	d := NewDispatcher(devs, nil)

	assert.Equal(t, "OK PTT TEST started", d.Dispatch("PTT TEST"))
	assert.Equal(t, 1, keyer.keyed)
	assert.Equal(t, 1, keyer.unkeyed)
}

func TestDispatch_PTTTestKeyFailure(t *testing.T) {
	devs := newTestDevices(t)
	devs.Keyer = &recordingKeyer{keyErr: errors.New("port gone")}
	d := NewDispatcher(devs, nil)

	assert.Equal(t, "ERROR PTT test failed: port gone", d.Dispatch("PTT TEST"))
}

func TestDispatch_Clear(t *testing.T) {
	devs := newTestDevices(t)
	d := NewDispatcher(devs, nil)

	m := devs.Modem.(*modem.Modem)
	m.Stage([]byte{1})
	m.Queue().Push([]byte{2})
	m.Queue().Push([]byte{3})

	assert.Equal(t, "OK CLEAR", d.Dispatch("CLEAR"))
	assert.Equal(t, 0, m.PendingFrames())
	assert.Equal(t, 0, m.Queue().Len())
}

func TestDispatch_Save(t *testing.T) {
	devs := newTestDevices(t)
	d := NewDispatcher(devs, nil)

	d.Dispatch("MODE DATAC4")
	d.Dispatch("VOLUME -2.5")
	d.Dispatch("FOLLOW ON")

	path := devs.Options.ConfigPath()
	assert.Equal(t, "OK SAVE "+path, d.Dispatch("SAVE"))

	// The saved file reflects the runtime mutations.
	loaded := config.New()
	require.NoError(t, config.LoadFile(loaded, path))
	assert.Equal(t, "DATAC4", loaded.Mode())
	assert.Equal(t, -2.5, loaded.OutputVolume())
	assert.True(t, loaded.Follow())
}

func TestDispatch_SaveFailure(t *testing.T) {
	devs := newTestDevices(t)
	devs.Options.SetConfigPath(filepath.Join(t.TempDir(), "missing", "sub", "freedvtnc2.conf"))
	d := NewDispatcher(devs, nil)

	resp := d.Dispatch("SAVE")
	assert.Contains(t, resp, "ERROR Save failed:")
}

func TestDispatch_UnknownCommand(t *testing.T) {
	d := NewDispatcher(newTestDevices(t), nil)
	assert.Equal(t, "ERROR Unknown command: FOO", d.Dispatch("FOO"))
	assert.Equal(t, "ERROR Unknown command: FOO", d.Dispatch("foo bar baz"))
	// The dispatcher stays usable afterwards.
	assert.Equal(t, "OK PONG", d.Dispatch("PING"))
}

func TestDispatch_EmptyLine(t *testing.T) {
	d := NewDispatcher(newTestDevices(t), nil)
	assert.Equal(t, "ERROR Empty command", d.Dispatch(""))
}

// panickingOutput simulates a collaborator blowing up mid-command.
type panickingOutput struct {
	bareOutput
}

func (o *panickingOutput) WriteRaw(p []byte) error { panic("audio backend gone") }

func TestDispatch_PanicBecomesError(t *testing.T) {
	devs := newTestDevices(t)
	devs.Output = &panickingOutput{}
	d := NewDispatcher(devs, nil)

	assert.Equal(t, "ERROR audio backend gone", d.Dispatch("PTT TEST"))
	assert.Equal(t, "OK PONG", d.Dispatch("PING"))
}

func BenchmarkDispatchPing(b *testing.B) {
	m, _ := modem.New("DATAC1")
	devs := &Devices{
		Modem:   m,
		Output:  audio.NewDevice("default", 0),
		Input:   &audio.LevelMeter{},
		Options: config.New(),
	}
	d := NewDispatcher(devs, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if resp := d.Dispatch("PING"); resp != "OK PONG" {
			b.Fatalf("unexpected response %q", resp)
		}
	}
}
