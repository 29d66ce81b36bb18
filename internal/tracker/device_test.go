package tracker

import (
	"fmt"
	"io"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motion-tracker.klederson.com/internal/assets"
	"motion-tracker.klederson.com/internal/config"
	"motion-tracker.klederson.com/internal/scene"
)

type recordingPlayer struct {
	played []string
}

func (p *recordingPlayer) Play(path string, volume float64) {
	p.played = append(p.played, path)
}

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	settings *config.Store
	scenes   *scene.Store
	cache    *assets.Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	settings := config.Defaults()
	require.NoError(t, settings.Set(config.Namespace, config.KeyMaxDistance, 10.0))
	require.NoError(t, settings.Set(config.Namespace, config.KeySize, 512.0))

	scenes := scene.NewStore()
	scenes.Put(scene.Scene{
		ID: "s", Grid: 1, GridDistance: 1, GridUnits: "m",
		Tokens: []scene.Token{point("me", 0, 0), point("o", 5, 0)},
	})
	return &fixture{
		settings: settings,
		scenes:   scenes,
		cache:    assets.NewCache(assets.Embedded, testLogger()),
	}
}

func (f *fixture) device(opts Options) *Device {
	opts.Settings = f.settings
	opts.Scenes = f.scenes
	opts.Assets = f.cache
	opts.Log = testLogger()
	return New(opts)
}

func running(t *testing.T, d *Device) {
	t.Helper()
	textures, err := d.Load().Wait()
	require.NoError(t, d.Loaded(textures, err))
	require.Equal(t, Ready, d.State())
	require.NoError(t, d.Start())
}

func TestDeviceLifecycle(t *testing.T) {
	f := newFixture(t)
	d := f.device(Options{})
	assert.Equal(t, Uninitialized, d.State())

	assert.ErrorIs(t, d.SetData("gm", "me", "s"), ErrNotReady)
	assert.ErrorIs(t, d.Start(), ErrNotReady)

	fut := d.Load()
	assert.Equal(t, Loading, d.State())
	assert.Same(t, fut, d.Load())

	textures, err := fut.Wait()
	require.NoError(t, d.Loaded(textures, err))
	assert.Equal(t, Ready, d.State())
	assert.ErrorIs(t, d.Resize(100), ErrNotRunning)

	require.NoError(t, d.SetData("gm", "me", "s"))
	assert.Equal(t, Ready, d.State(), "binding does not change state")

	require.NoError(t, d.Start())
	assert.Equal(t, Running, d.State())

	d.Stop()
	assert.Equal(t, Stopped, d.State())
	_, err = d.Reset().Wait()
	assert.ErrorIs(t, err, ErrStopped)
}

func TestDeviceUpdateScenario(t *testing.T) {
	f := newFixture(t)
	d := f.device(Options{})
	running(t, d)
	require.NoError(t, d.SetData("gm", "me", "s"))

	// Land inside the label refresh window
	d.Clock().Time = 50
	d.Update(1, 1)

	fr := d.Frame()
	assert.Equal(t, 1, fr.Signals)
	assert.InDelta(t, 5.0, fr.Nearest, 1e-9)
	assert.Equal(t, "5.00m", fr.Label)

	distUnitPerPx := DistUnitPerPx(512, 10)
	require.Len(t, fr.Slots, config.PoolCapacity)
	assert.True(t, fr.Slots[0].Visible)
	assert.InDelta(t, 256+distUnitPerPx*5, fr.Slots[0].Pos.X, 1e-9)
	assert.InDelta(t, 256.0, fr.Slots[0].Pos.Y, 1e-9)
	for _, s := range fr.Slots[1:] {
		assert.False(t, s.Visible)
	}
	assert.Equal(t, 51.0, d.Clock().Time)
}

func TestDeviceLabelThrottle(t *testing.T) {
	f := newFixture(t)
	d := f.device(Options{})
	running(t, d)
	require.NoError(t, d.SetData("gm", "me", "s"))

	// First third of the sweep: label stays empty
	d.Update(1, 1)
	assert.Empty(t, d.Frame().Label)

	d.Clock().Time = 40
	d.Update(2, 1)
	assert.Equal(t, "5.00m", d.Frame().Label)
}

func TestDeviceUpdateIdleWithoutBinding(t *testing.T) {
	f := newFixture(t)
	d := f.device(Options{})
	running(t, d)

	d.Update(1, 1)
	assert.Zero(t, d.Frame().Signals)
	assert.Zero(t, d.Clock().Time, "idle frames do not advance the sweep")

	err := d.SetData("gm", "ghost", "s")
	assert.ErrorIs(t, err, ErrUnknownToken)
	d.Update(2, 1)
	assert.Zero(t, d.Frame().Signals)

	assert.ErrorIs(t, d.SetData("gm", "me", "nowhere"), ErrUnknownScene)
	d.Update(3, 1)
	assert.Zero(t, d.Frame().Signals)
}

func TestDeviceOverflow(t *testing.T) {
	f := newFixture(t)
	f.scenes.Update("s", func(sc *scene.Scene) {
		for i := 0; i < 25; i++ {
			sc.Tokens = append(sc.Tokens, point(fmt.Sprintf("x%d", i), 0, float64(i%9)+0.5))
		}
	})
	d := f.device(Options{})
	running(t, d)
	require.NoError(t, d.SetData("gm", "me", "s"))

	d.Update(1, 1)
	fr := d.Frame()
	assert.Equal(t, 20, fr.Signals)
	visible := 0
	for _, s := range fr.Slots {
		if s.Visible {
			visible++
		}
	}
	assert.Equal(t, 20, visible)
}

func TestDeviceLoadFailure(t *testing.T) {
	f := newFixture(t)
	f.cache = assets.NewCache(fstest.MapFS{}, testLogger())
	d := f.device(Options{})

	textures, err := d.Load().Wait()
	require.Error(t, err)
	assert.Error(t, d.Loaded(textures, err))
	assert.Equal(t, Failed, d.State())
	assert.Error(t, d.Err())
	assert.Error(t, d.Frame().Err)

	_, err = d.Reset().Wait()
	assert.Error(t, err)
}

func TestDeviceResetPicksUpSettings(t *testing.T) {
	f := newFixture(t)
	d := f.device(Options{})
	running(t, d)
	require.NoError(t, d.SetData("gm", "me", "s"))

	require.NoError(t, f.settings.Set(config.Namespace, config.KeySize, 256.0))
	_, err := d.Reset().Wait()
	require.NoError(t, err)
	assert.Equal(t, Running, d.State(), "a running device resumes after reset")

	d.Update(1, 1)
	fr := d.Frame()
	assert.Equal(t, 256.0, fr.Size)
	assert.InDelta(t, 128+DistUnitPerPx(256, 10)*5, fr.Slots[0].Pos.X, 1e-9)
}

func TestDeviceResize(t *testing.T) {
	f := newFixture(t)
	d := f.device(Options{VerticalCorrection: 0.5})
	running(t, d)
	require.NoError(t, d.SetData("gm", "me", "s"))

	require.NoError(t, d.Resize(40))
	d.Update(1, 1)
	fr := d.Frame()
	assert.Equal(t, Vec2{20, 20}, fr.Center)
	assert.InDelta(t, 20+DistUnitPerPx(40, 10)*5, fr.Slots[0].Pos.X, 1e-9)
}

func TestDevicesShareClock(t *testing.T) {
	f := newFixture(t)
	clock := NewClock(0.01)
	a := f.device(Options{Clock: clock})
	b := f.device(Options{Clock: clock})
	for _, d := range []*Device{a, b} {
		running(t, d)
		require.NoError(t, d.SetData("gm", "me", "s"))
	}

	for frame := uint64(1); frame <= 10; frame++ {
		a.Update(frame, 1)
		b.Update(frame, 1)
	}
	assert.Equal(t, 10.0, clock.Time)
	assert.Equal(t, a.Frame().Wave, b.Frame().Wave)
}

func TestDevicePingSound(t *testing.T) {
	f := newFixture(t)
	player := &recordingPlayer{}
	d := f.device(Options{
		Player: player,
		Sounds: map[string]string{SoundMedium: "medium.wav"},
	})
	running(t, d)
	require.NoError(t, d.SetData("gm", "me", "s"))

	// One full sweep at speed 0.01 is 100 time units
	for frame := uint64(1); frame <= 100; frame++ {
		d.Update(frame, 1)
	}
	// Nearest is 5 of 10: the medium bank entry, once per sweep
	assert.Equal(t, []string{"medium.wav"}, player.played)
}
