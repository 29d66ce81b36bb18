package app

import (
	"errors"
	"math"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"motion-tracker.klederson.com/internal/assets"
	"motion-tracker.klederson.com/internal/config"
	"motion-tracker.klederson.com/internal/radar"
	"motion-tracker.klederson.com/internal/scene"
	"motion-tracker.klederson.com/internal/tracker"
	"motion-tracker.klederson.com/internal/ui"
)

const (
	historyLen    = 120 // Nearest-distance samples kept for the sparkline
	defaultUserID = "gm"
)

// Options wire the terminal app to a device and its data.
type Options struct {
	Device   *tracker.Device
	Settings *config.Store
	Scenes   *scene.Store
	Source   string // Shown in the menu bar
	User     string
	Token    string
	Scene    string
	OnQuit   func() // Stops scene sources
	Log      logrus.FieldLogger
}

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	device   *tracker.Device
	settings *config.Store
	scenes   *scene.Store
	scope    *radar.Scope
	history  *History
	log      logrus.FieldLogger
	onQuit   func()

	frame uint64
	last  time.Time
}

// AppModel is the root Bubble Tea model for the motion tracker.
type AppModel struct {
	width  int
	height int

	source     string
	user       string
	token      string
	sceneID    string
	showDetail bool
	cursor     int

	shared *shared

	// Cached per tick
	contacts []ui.Contact
}

// New creates a new AppModel.
func New(opts Options) AppModel {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.User == "" {
		opts.User = defaultUserID
	}
	return AppModel{
		source:  opts.Source,
		user:    opts.User,
		token:   opts.Token,
		sceneID: opts.Scene,
		shared: &shared{
			device:   opts.Device,
			settings: opts.Settings,
			scenes:   opts.Scenes,
			scope:    radar.NewScope(),
			history:  NewHistory(historyLen),
			log:      opts.Log.WithField("component", "app"),
			onQuit:   opts.OnQuit,
		},
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		loadCmd(m.shared.device.Load()),
		tickCmd(),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applySize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.tick(time.Time(msg))
		return m, tickCmd()

	case AssetsLoadedMsg:
		m.assetsLoaded(msg)
		return m, nil

	case ResetDoneMsg:
		if msg.Err != nil {
			m.shared.log.WithError(msg.Err).Warn("tracker reset failed")
		}
		return m, nil
	}

	return m, nil
}

func (m *AppModel) assetsLoaded(msg AssetsLoadedMsg) {
	d := m.shared.device
	if d.State() != tracker.Loading {
		return
	}
	if err := d.Loaded(msg.Textures, msg.Err); err != nil {
		return
	}
	if d.State() == tracker.Ready {
		if err := d.Start(); err != nil {
			m.shared.log.WithError(err).Error("tracker start failed")
			return
		}
	}
	m.bind()
	m.applySize()
}

func (m *AppModel) bind() {
	err := m.shared.device.SetData(m.user, m.token, m.sceneID)
	if errors.Is(err, tracker.ErrUnknownScene) || errors.Is(err, tracker.ErrUnknownToken) {
		m.shared.log.WithError(err).Warn("tracker bound to missing data, idling until it appears")
	} else if err != nil {
		m.shared.log.WithError(err).Error("tracker bind failed")
	}
}

// applySize fits the scope to the radar panel and stores the size so a
// reset picks it up.
func (m *AppModel) applySize() {
	innerW, innerH := m.radarInner()
	if innerW <= 0 {
		return
	}
	size := 2 * radar.ScopeRadius(innerW, innerH)
	if err := m.shared.settings.Set(config.Namespace, config.KeySize, size); err != nil {
		m.shared.log.WithError(err).Error("size setting rejected")
		return
	}
	if m.shared.device.State() == tracker.Running {
		_ = m.shared.device.Resize(size)
	}
}

func (m *AppModel) tick(now time.Time) {
	s := m.shared
	delta := 1.0
	if !s.last.IsZero() {
		delta = now.Sub(s.last).Seconds() * config.FrameRateBase
	}
	s.last = now
	s.frame++

	s.device.Update(s.frame, delta)
	if s.device.State() != tracker.Running {
		return
	}

	f := s.device.Frame()
	s.history.Push(f.Nearest)
	m.contacts = m.buildContacts()
	if m.cursor >= len(m.contacts) {
		m.cursor = max(0, len(m.contacts)-1)
	}
}

// buildContacts names this frame's signals from the scene and sorts them
// nearest first.
func (m *AppModel) buildContacts() []ui.Contact {
	signals := m.shared.device.Signals()
	sc, ok := m.shared.scenes.Scene(m.sceneID)

	contacts := make([]ui.Contact, 0, len(signals))
	for _, sig := range signals {
		c := ui.Contact{
			ID:       sig.Token,
			Distance: sig.Distance,
			Bearing:  radar.Bearing(sig.Dir.X, sig.Dir.Y),
		}
		if ok {
			if tok, found := sc.Token(sig.Token); found {
				c.Name = tok.DisplayName()
			}
		}
		contacts = append(contacts, c)
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].Distance < contacts[j].Distance
	})
	return contacts
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.shared.device.Stop()
		if m.shared.onQuit != nil {
			m.shared.onQuit()
		}
		return m, tea.Quit

	case "r", "R":
		return m, m.reset()

	case "+", "=":
		return m, m.changeRange(config.RangeStep)

	case "-", "_":
		return m, m.changeRange(-config.RangeStep)

	case "tab":
		m.cycleToken()

	case "d", "D", "enter":
		m.showDetail = !m.showDetail

	case "esc":
		m.showDetail = false

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.contacts)-1 {
			m.cursor++
		}
	}

	return m, nil
}

// reset rebinds the device to the current settings. When the textures are
// still loading the result arrives as an AssetsLoadedMsg.
func (m *AppModel) reset() tea.Cmd {
	d := m.shared.device
	done := d.Reset()
	m.shared.history.Reset()

	cmds := []tea.Cmd{waitCmd(done)}
	if d.State() == tracker.Loading {
		cmds = append(cmds, loadCmd(d.Load()))
	}
	return tea.Batch(cmds...)
}

func (m *AppModel) changeRange(step float64) tea.Cmd {
	cur := m.shared.settings.Float(config.Namespace, config.KeyMaxDistance)
	next := math.Max(config.MinRange, cur+step)
	if next == cur {
		return nil
	}
	if err := m.shared.settings.Set(config.Namespace, config.KeyMaxDistance, next); err != nil {
		m.shared.log.WithError(err).Error("range setting rejected")
		return nil
	}
	m.shared.log.WithField("maxDistance", next).Info("scan range changed")
	return m.reset()
}

// cycleToken tracks the next token in scene order.
func (m *AppModel) cycleToken() {
	sc, ok := m.shared.scenes.Scene(m.sceneID)
	if !ok || len(sc.Tokens) == 0 {
		return
	}
	next := 0
	for i, tok := range sc.Tokens {
		if tok.ID == m.token {
			next = (i + 1) % len(sc.Tokens)
			break
		}
	}
	m.token = sc.Tokens[next].ID
	m.shared.history.Reset()
	m.cursor = 0
	if st := m.shared.device.State(); st == tracker.Ready || st == tracker.Running {
		m.bind()
	}
}

// radarInner returns the cell box available to the scope.
func (m AppModel) radarInner() (int, int) {
	if m.width == 0 || m.height == 0 {
		return 0, 0
	}
	radarW, _, bodyH := m.columns()
	innerW := radarW - 4
	innerH := bodyH - 4
	if innerW < 5 {
		innerW = 5
	}
	if innerH < 3 {
		innerH = 3
	}
	return innerW, innerH
}

func (m AppModel) columns() (radarW, listW, bodyH int) {
	bodyH = m.height - 2 // menu + status
	if bodyH < 5 {
		bodyH = 5
	}
	radarW = m.width * 3 / 4
	if radarW < 30 {
		radarW = 30
	}
	listW = m.width - radarW
	if listW < 15 {
		listW = 15
		radarW = m.width - listW
	}
	return radarW, listW, bodyH
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing motion tracker..."
	}

	s := m.shared
	f := s.device.Frame()
	radarW, listW, bodyH := m.columns()
	maxDistance := s.settings.Float(config.Namespace, config.KeyMaxDistance)

	menuBar := ui.RenderMenuBar(m.width, m.source, f.State == tracker.Running)

	var left string
	if m.showDetail {
		left = ui.RenderDetailPanel(m.detail(f, maxDistance), radarW, bodyH)
	} else {
		innerW, innerH := m.radarInner()
		radarContent := s.scope.Render(f, innerW, innerH)
		label := radar.RenderLabel(f, innerW)
		left = ui.RenderRadarPanel(radarW, bodyH, radarContent, label)
	}

	contactList := ui.RenderContactList(m.contacts, f.Units, listW, bodyH, m.cursor)

	statusBar := ui.RenderStatusBar(m.width, ui.Status{
		State:       f.State.String(),
		Contacts:    f.Signals,
		Nearest:     f.Label,
		MaxDistance: maxDistance,
		Units:       f.Units,
		Err:         f.Err,
	})

	return ui.ComposeLayout(menuBar, left, contactList, statusBar)
}

func (m AppModel) detail(f tracker.Frame, maxDistance float64) ui.Detail {
	d := ui.Detail{
		User:        m.user,
		Token:       m.token,
		Scene:       m.sceneID,
		State:       f.State.String(),
		Units:       f.Units,
		MaxDistance: maxDistance,
		Speed:       m.shared.device.Clock().Speed,
		History:     m.shared.history.Values(),
	}
	if len(m.contacts) > 0 {
		idx := min(m.cursor, len(m.contacts)-1)
		c := m.contacts[idx]
		d.Nearest = &c
	}
	return d
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func loadCmd(f *assets.Future[[]*assets.Texture]) tea.Cmd {
	return func() tea.Msg {
		textures, err := f.Wait()
		return AssetsLoadedMsg{Textures: textures, Err: err}
	}
}

func waitCmd(f *assets.Future[struct{}]) tea.Cmd {
	return func() tea.Msg {
		_, err := f.Wait()
		return ResetDoneMsg{Err: err}
	}
}
