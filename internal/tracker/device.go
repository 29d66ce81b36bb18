package tracker

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"motion-tracker.klederson.com/internal/assets"
	"motion-tracker.klederson.com/internal/config"
	"motion-tracker.klederson.com/internal/scene"
)

// SceneSource resolves scenes by id. Implementations return a snapshot
// the device may read freely for one frame.
type SceneSource interface {
	Scene(id string) (scene.Scene, bool)
}

// Settings is the read side of the settings store.
type Settings interface {
	Float(namespace, key string) float64
	String(namespace, key string) string
}

// Player plays a sound file. Playback is fire-and-forget.
type Player interface {
	Play(path string, volume float64)
}

// Sound bank names.
const (
	SoundScanning = "scanning"
	SoundClose    = "close"
	SoundMedium   = "medium"
	SoundFar      = "far"
)

// Options configure a Device.
type Options struct {
	Settings Settings
	Scenes   SceneSource
	Assets   *assets.Cache
	Clock    *Clock // Shared sweep clock; a private one is made if nil
	Player   Player
	Sounds   map[string]string // Sound bank name to path

	BackgroundPath     string
	PingPath           string
	VerticalCorrection float64

	Log logrus.FieldLogger
}

// Frame is the per-frame view of a device handed to render surfaces. Slots
// aliases the pool and is only valid until the next Update.
type Frame struct {
	State      State
	Size       float64
	Center     Vec2
	Slots      []Slot
	Wave       float64
	Label      string
	Nearest    float64
	Signals    int
	Units      string
	Background *assets.Texture
	Ping       *assets.Texture
	Err        error
}

// Device is one motion tracker bound to a tracked token.
type Device struct {
	opts  Options
	log   logrus.FieldLogger
	clock *Clock
	state State
	err   error

	textures *assets.Future[[]*assets.Texture]
	bg       *assets.Texture
	ping     *assets.Texture

	resume  bool
	pending []*assets.Future[struct{}]

	user    string
	tokenID string
	sceneID string
	units   string

	scanner *Scanner
	signals []Signal
	nearest float64
	pool    *Pool
	proj    Projector

	size      float64
	center    Vec2
	label     string
	lastThird int
}

// New creates an uninitialized device.
func New(opts Options) *Device {
	if opts.BackgroundPath == "" {
		opts.BackgroundPath = assets.BackgroundPath
	}
	if opts.PingPath == "" {
		opts.PingPath = assets.PingPath
	}
	if opts.VerticalCorrection == 0 {
		opts.VerticalCorrection = config.VerticalCorrection
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = NewClock(opts.Settings.Float(config.Namespace, config.KeySpeed))
	}
	return &Device{
		opts:    opts,
		log:     opts.Log.WithField("component", "tracker"),
		clock:   clock,
		signals: make([]Signal, 0, config.PoolCapacity),
	}
}

// State returns the lifecycle state.
func (d *Device) State() State {
	return d.state
}

// Err returns the error that moved the device to Failed, if any.
func (d *Device) Err() error {
	return d.err
}

// Clock returns the sweep clock driving this device.
func (d *Device) Clock() *Clock {
	return d.clock
}

// Load starts binding the textures. The host delivers the future's result
// back through Loaded on its frame loop.
func (d *Device) Load() *assets.Future[[]*assets.Texture] {
	if d.state == Uninitialized {
		d.state = Loading
	}
	if d.textures == nil {
		d.textures = d.opts.Assets.Load(d.opts.BackgroundPath, d.opts.PingPath)
	}
	return d.textures
}

// Loaded completes a pending load. On success the device is Ready (or
// Running again, after a Reset of a running device); on failure it is
// Failed for good.
func (d *Device) Loaded(textures []*assets.Texture, err error) error {
	if d.state != Loading {
		return fmt.Errorf("loaded in state %s: %w", d.state, ErrNotLoading)
	}

	if err == nil && len(textures) < 2 {
		err = fmt.Errorf("expected 2 textures, got %d", len(textures))
	}
	if err != nil {
		d.state = Failed
		d.err = fmt.Errorf("asset load: %w", err)
		d.log.WithError(err).Error("tracker assets failed to load")
		d.settle(d.err)
		return d.err
	}

	d.setup(textures)
	d.state = Ready
	if d.resume {
		d.state = Running
		d.resume = false
	}
	d.settle(nil)
	return nil
}

func (d *Device) settle(err error) {
	for _, f := range d.pending {
		if err != nil {
			f.Reject(err)
		} else {
			f.Resolve(struct{}{})
		}
	}
	d.pending = nil
}

// setup binds textures and rebuilds the pool and distance scale from the
// current settings.
func (d *Device) setup(textures []*assets.Texture) {
	d.bg = textures[0]
	d.ping = textures[1]

	s := d.opts.Settings
	size := s.Float(config.Namespace, config.KeySize)
	maxDistance := s.Float(config.Namespace, config.KeyMaxDistance)

	d.scanner = NewScanner(config.PoolCapacity, s.String(config.Namespace, config.KeyDefeatedStatus))
	if d.pool == nil {
		d.pool = NewPool(config.PoolCapacity)
	}
	d.pool.Reset()
	d.nearest = maxDistance
	d.applySize(size, maxDistance)

	d.log.WithFields(logrus.Fields{
		"size":          size,
		"maxDistance":   maxDistance,
		"distUnitPerPx": d.proj.DistUnitPerPx,
	}).Debug("tracker set up")
}

func (d *Device) applySize(size, maxDistance float64) {
	d.size = size
	d.center = Vec2{0.5 * size, 0.5 * size}
	d.proj = Projector{
		DistUnitPerPx:      DistUnitPerPx(size, maxDistance),
		VerticalCorrection: d.opts.VerticalCorrection,
	}
	d.pool.Resize(size, d.proj.DistUnitPerPx)
}

// Start attaches a Ready device to its surface and begins ticking.
func (d *Device) Start() error {
	if d.state != Ready {
		return fmt.Errorf("start in state %s: %w", d.state, ErrNotReady)
	}
	d.state = Running
	return nil
}

// SetData binds the viewing user, tracked token and scene. The binding is
// kept even when the scene or token cannot be found yet; Update idles until
// they appear.
func (d *Device) SetData(user, tokenID, sceneID string) error {
	if d.state != Ready && d.state != Running {
		return fmt.Errorf("set data in state %s: %w", d.state, ErrNotReady)
	}
	d.user = user
	d.tokenID = tokenID
	d.sceneID = sceneID

	sc, ok := d.opts.Scenes.Scene(sceneID)
	if !ok {
		return fmt.Errorf("scene %q: %w", sceneID, ErrUnknownScene)
	}
	if _, ok := sc.Token(tokenID); !ok {
		return fmt.Errorf("token %q in scene %q: %w", tokenID, sceneID, ErrUnknownToken)
	}
	d.log.WithFields(logrus.Fields{"user": user, "token": tokenID, "scene": sceneID}).Info("tracker bound")
	return nil
}

// Resize changes the viewport edge length of a running device.
func (d *Device) Resize(size float64) error {
	if d.state != Running {
		return fmt.Errorf("resize in state %s: %w", d.state, ErrNotRunning)
	}
	d.applySize(size, d.opts.Settings.Float(config.Namespace, config.KeyMaxDistance))
	return nil
}

// Reset re-runs texture binding and pool setup without a teardown,
// picking up changed settings. The returned future resolves once the
// device is set up again.
func (d *Device) Reset() *assets.Future[struct{}] {
	done := assets.NewFuture[struct{}]()

	switch d.state {
	case Stopped:
		done.Reject(ErrStopped)
		return done
	case Failed:
		done.Reject(d.err)
		return done
	case Uninitialized, Loading:
		d.Load()
		d.pending = append(d.pending, done)
		return done
	}

	d.resume = d.state == Running
	d.state = Loading
	d.pending = append(d.pending, done)

	if f := d.Load(); f.Ready() {
		textures, err := f.Wait()
		_ = d.Loaded(textures, err)
	}
	return done
}

// Stop halts ticking for good. The pool stays allocated.
func (d *Device) Stop() {
	if d.state == Stopped {
		return
	}
	d.state = Stopped
	d.settle(ErrStopped)
	d.log.Info("tracker stopped")
}

// Update runs one frame: scan, project, sync the pool, refresh the label
// and advance the sweep. It does nothing unless the device is running and
// bound to a token that exists.
func (d *Device) Update(frame uint64, delta float64) {
	if d.state != Running || d.tokenID == "" || d.sceneID == "" {
		return
	}
	sc, ok := d.opts.Scenes.Scene(d.sceneID)
	if !ok {
		return
	}
	tracked, ok := sc.Token(d.tokenID)
	if !ok {
		return
	}

	maxDistance := d.opts.Settings.Float(config.Namespace, config.KeyMaxDistance)
	var dropped int
	d.signals, d.nearest, dropped = d.scanner.Scan(d.signals, tracked, &sc, maxDistance)
	if dropped > 0 {
		d.log.WithFields(logrus.Fields{"dropped": dropped, "capacity": d.pool.Cap()}).Debug("signal pool full")
	}
	d.units = sc.GridUnits

	d.pool.Sync(d.signals, d.proj, d.center)

	if d.clock.LabelRefresh() {
		d.label = FormatDistance(d.nearest, sc.GridUnits)
	}
	d.pingSound(maxDistance)

	d.clock.Advance(frame, delta)
}

// pingSound plays the sound bank entry for the nearest contact as the
// sweep enters its reveal ramp.
func (d *Device) pingSound(maxDistance float64) {
	third := int(math.Floor(3 * d.clock.Phase()))
	entering := d.lastThird == 0 && third == 1
	d.lastThird = third
	if !entering || d.opts.Player == nil {
		return
	}

	name := SoundScanning
	switch {
	case d.nearest < maxDistance/3:
		name = SoundClose
	case d.nearest < 2*maxDistance/3:
		name = SoundMedium
	case d.nearest < maxDistance:
		name = SoundFar
	}
	path, ok := d.opts.Sounds[name]
	if !ok {
		return
	}
	d.opts.Player.Play(path, d.opts.Settings.Float(config.Namespace, config.KeyVolume))
}

// Frame returns the drawable state of the device.
func (d *Device) Frame() Frame {
	f := Frame{
		State:      d.state,
		Size:       d.size,
		Center:     d.center,
		Wave:       d.clock.Wave(),
		Label:      d.label,
		Nearest:    d.nearest,
		Signals:    len(d.signals),
		Units:      d.units,
		Background: d.bg,
		Ping:       d.ping,
		Err:        d.err,
	}
	if d.pool != nil {
		f.Slots = d.pool.Slots()
	}
	return f
}

// Signals returns this frame's signals. The slice is reused by Update.
func (d *Device) Signals() []Signal {
	return d.signals
}

// Binding returns the bound user, token and scene ids.
func (d *Device) Binding() (user, tokenID, sceneID string) {
	return d.user, d.tokenID, d.sceneID
}
