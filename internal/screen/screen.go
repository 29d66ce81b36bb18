// Package screen draws a motion tracker in its own window.
package screen

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/gofont/gobold"

	"motion-tracker.klederson.com/internal/assets"
	"motion-tracker.klederson.com/internal/config"
	"motion-tracker.klederson.com/internal/tracker"
)

var (
	//go:embed shaders/background.kage
	backgroundKage []byte

	//go:embed shaders/ping.kage
	pingKage []byte
)

// maxDeltaFrames caps the time step after a stall (window drag, debugger).
const maxDeltaFrames = 6.0

var (
	labelColor = color.RGBA{0x00, 0xFF, 0x41, 0xFF}
	errorColor = color.RGBA{0xFF, 0x33, 0x00, 0xFF}
)

// Options wire a window to a device.
type Options struct {
	Device   *tracker.Device
	Settings *config.Store
	User     string
	Token    string
	Scene    string
	Log      logrus.FieldLogger
}

// Game is the Ebitengine game driving one device.
type Game struct {
	device   *tracker.Device
	settings *config.Store
	log      logrus.FieldLogger

	user, token, sceneID string

	loading *assets.Future[[]*assets.Texture]

	frame uint64
	last  time.Time

	bgShader   *ebiten.Shader
	pingShader *ebiten.Shader
	font       *text.GoTextFaceSource

	// Textures scaled to the scope, rebuilt on resize
	bg       *ebiten.Image
	bgFrom   *assets.Texture
	bgEdge   int
	ping     *ebiten.Image
	pingFrom *assets.Texture
	pingEdge int
}

// New compiles the shaders and starts loading the device textures.
func New(opts Options) (*Game, error) {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	bgShader, err := ebiten.NewShader(backgroundKage)
	if err != nil {
		return nil, fmt.Errorf("compile background shader: %w", err)
	}
	pingShader, err := ebiten.NewShader(pingKage)
	if err != nil {
		return nil, fmt.Errorf("compile ping shader: %w", err)
	}
	font, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		return nil, fmt.Errorf("load label font: %w", err)
	}

	g := &Game{
		device:     opts.Device,
		settings:   opts.Settings,
		log:        opts.Log.WithField("component", "screen"),
		user:       opts.User,
		token:      opts.Token,
		sceneID:    opts.Scene,
		bgShader:   bgShader,
		pingShader: pingShader,
		font:       font,
	}
	g.loading = g.device.Load()
	return g, nil
}

// Run opens the window and blocks until it is closed.
func (g *Game) Run() error {
	size := int(g.settings.Float(config.Namespace, config.KeySize))
	ebiten.SetWindowSize(size, size+int(config.ExtraCanvasHeight))
	ebiten.SetWindowTitle(config.AppName)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(g)
	g.device.Stop()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *Game) Update() error {
	if err := g.handleKeys(); err != nil {
		return err
	}
	g.deliver()

	now := time.Now()
	delta := 1.0
	if !g.last.IsZero() {
		delta = math.Min(now.Sub(g.last).Seconds()*config.FrameRateBase, maxDeltaFrames)
	}
	g.last = now
	g.frame++

	g.device.Update(g.frame, delta)
	return nil
}

// deliver hands a finished texture load to the device and starts it.
func (g *Game) deliver() {
	if g.loading == nil || !g.loading.Ready() {
		return
	}
	f := g.loading
	g.loading = nil
	if g.device.State() != tracker.Loading {
		return
	}

	textures, err := f.Wait()
	if err := g.device.Loaded(textures, err); err != nil {
		return
	}
	if g.device.State() == tracker.Ready {
		if err := g.device.Start(); err != nil {
			g.log.WithError(err).Error("tracker start failed")
			return
		}
	}
	if err := g.device.SetData(g.user, g.token, g.sceneID); err != nil {
		g.log.WithError(err).Warn("tracker bound to missing data, idling until it appears")
	}
}

func (g *Game) handleKeys() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ), inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.changeRange(config.RangeStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.changeRange(-config.RangeStep)
	}
	return nil
}

func (g *Game) changeRange(step float64) {
	cur := g.settings.Float(config.Namespace, config.KeyMaxDistance)
	next := math.Max(config.MinRange, cur+step)
	if next == cur {
		return
	}
	if err := g.settings.Set(config.Namespace, config.KeyMaxDistance, next); err != nil {
		g.log.WithError(err).Error("range setting rejected")
		return
	}
	g.log.WithField("maxDistance", next).Info("scan range changed")
	g.Reset()
}

// Reset re-runs device setup, picking up changed settings.
func (g *Game) Reset() *assets.Future[struct{}] {
	done := g.device.Reset()
	if g.device.State() == tracker.Loading {
		g.loading = g.device.Load()
	}
	return done
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	size := FitSize(outsideWidth, outsideHeight)
	if float64(size) != g.settings.Float(config.Namespace, config.KeySize) {
		if err := g.settings.Set(config.Namespace, config.KeySize, float64(size)); err == nil && g.device.State() == tracker.Running {
			_ = g.device.Resize(float64(size))
		}
	}
	return size, size + int(config.ExtraCanvasHeight)
}

// FitSize returns the largest scope edge that fits a window of w x h,
// leaving room for the label.
func FitSize(w, h int) int {
	size := min(w, h-int(config.ExtraCanvasHeight))
	return max(size, int(config.MinSize)/4)
}

func (g *Game) Draw(screen *ebiten.Image) {
	f := g.device.Frame()
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	if f.State == tracker.Running {
		clock := g.device.Clock()
		g.drawBackground(screen, f, clock)
		g.drawBlips(screen, f, clock)
	}
	g.drawLabel(screen, f, w, h)
}

// ScopeEdge returns the edge of the square scope area in pixels. The label
// strip below it is not part of the scope.
func ScopeEdge(f tracker.Frame) int {
	return int(math.Round(f.Size))
}

func (g *Game) drawBackground(screen *ebiten.Image, f tracker.Frame, clock *tracker.Clock) {
	edge := ScopeEdge(f)
	if f.Background == nil || edge <= 0 {
		return
	}
	if g.bg == nil || g.bgFrom != f.Background || g.bgEdge != edge {
		g.bg = ebiten.NewImageFromImage(f.Background.Scaled(edge, edge))
		g.bgFrom, g.bgEdge = f.Background, edge
	}

	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = g.bg
	op.Uniforms = map[string]any{
		"Time":  float32(clock.Time),
		"Speed": float32(clock.Speed),
	}
	screen.DrawRectShader(edge, edge, g.bgShader, op)
}

func (g *Game) drawBlips(screen *ebiten.Image, f tracker.Frame, clock *tracker.Clock) {
	if f.Ping == nil || len(f.Slots) == 0 {
		return
	}
	edge := int(math.Round(f.Slots[0].Size))
	if g.ping == nil || g.pingFrom != f.Ping || g.pingEdge != edge {
		g.ping = ebiten.NewImageFromImage(f.Ping.Scaled(edge, edge))
		g.pingFrom, g.pingEdge = f.Ping, edge
	}

	uniforms := map[string]any{
		"Time":   float32(clock.Time),
		"Speed":  float32(clock.Speed),
		"Center": []float32{float32(f.Center.X), float32(f.Center.Y)},
	}
	half := float64(edge) / 2
	for _, sl := range f.Slots {
		if !sl.Visible {
			continue
		}
		op := &ebiten.DrawRectShaderOptions{}
		op.Images[0] = g.ping
		op.Uniforms = uniforms
		op.Blend = ebiten.BlendLighter
		op.GeoM.Translate(sl.Pos.X-half, sl.Pos.Y-half)
		screen.DrawRectShader(edge, edge, g.pingShader, op)
	}
}

func (g *Game) drawLabel(screen *ebiten.Image, f tracker.Frame, w, h int) {
	str, c := LabelText(f)
	if str == "" {
		return
	}
	fontSize, offset := tracker.LabelLayout(
		float64(w),
		g.settings.Float(config.Namespace, config.KeyMinSize),
		g.settings.Float(config.Namespace, config.KeyMaxSize),
	)

	op := &text.DrawOptions{}
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignEnd
	op.GeoM.Translate(float64(w)/2, float64(h)-offset)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, str, &text.GoTextFace{Source: g.font, Size: fontSize}, op)
}

// LabelText picks the line under the scope and its color.
func LabelText(f tracker.Frame) (string, color.Color) {
	switch {
	case f.Err != nil:
		return "SIGNAL LOST", errorColor
	case f.State != tracker.Running:
		return strings.ToUpper(f.State.String()), labelColor
	}
	return f.Label, labelColor
}
