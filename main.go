package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"motion-tracker.klederson.com/internal/app"
	"motion-tracker.klederson.com/internal/assets"
	"motion-tracker.klederson.com/internal/audio"
	"motion-tracker.klederson.com/internal/beacon"
	"motion-tracker.klederson.com/internal/config"
	"motion-tracker.klederson.com/internal/scene"
	"motion-tracker.klederson.com/internal/screen"
	"motion-tracker.klederson.com/internal/tracker"
)

var (
	flagScene       string
	flagDemo        bool
	flagBLE         bool
	flagToken       string
	flagUser        string
	flagSize        float64
	flagMaxDistance float64
	flagSpeed       float64
	flagDefeated    string
	flagWindow      bool
	flagAssets      string
	flagBackground  string
	flagPing        string
	flagSounds      string
	flagVolume      float64
	flagLogFile     string
	flagLogLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "motion-tracker",
		Short: "Motion tracker - radar overlay showing movement around a tracked token",
		Long: `Motion tracker scans a scene for tokens around a tracked token and shows
them as blips on a circular scope revealed by a pulsing sweep.

Scenes come from a JSON file (--scene), a wandering demo (--demo) or nearby
Bluetooth Low Energy advertisers (--ble, needs sudo or CAP_NET_ADMIN).
The scope is drawn in the terminal, or in its own window with --window.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	f := rootCmd.Flags()
	f.StringVar(&flagScene, "scene", "", "Load the scene from a JSON file")
	f.BoolVar(&flagDemo, "demo", false, "Track a wandering demo scene (default when no source is given)")
	f.BoolVar(&flagBLE, "ble", false, "Track nearby BLE advertisers")
	f.StringVar(&flagToken, "token", "", "Tracked token id (defaults to the first token)")
	f.StringVar(&flagUser, "user", "gm", "Viewing user id")
	f.Float64Var(&flagSize, "size", config.DefaultSize, "Window scope edge in pixels")
	f.Float64Var(&flagMaxDistance, "max-distance", config.DefaultMaxDistance, "Scan range in scene distance units")
	f.Float64Var(&flagSpeed, "speed", config.DefaultSweepSpeed, "Sweep cycles per 60 Hz frame")
	f.StringVar(&flagDefeated, "defeated-status", config.DefaultDefeatedStatus, "Status id that removes a token from the tracker")
	f.BoolVar(&flagWindow, "window", false, "Draw in a window instead of the terminal")
	f.StringVar(&flagAssets, "assets", "", "Directory overriding the embedded textures")
	f.StringVar(&flagBackground, "background", assets.BackgroundPath, "Background texture path inside the assets directory")
	f.StringVar(&flagPing, "ping", assets.PingPath, "Blip texture path inside the assets directory")
	f.StringVar(&flagSounds, "sounds", "", "Directory with scanning/close/medium/far .wav files")
	f.Float64Var(&flagVolume, "volume", config.DefaultVolume, "Ping volume in [0, 1]")
	f.StringVar(&flagLogFile, "log-file", "", "Write logs to this file (discarded otherwise)")
	f.StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, closeLog, err := newLogger(flagLogFile, flagLogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	settings, err := newSettings()
	if err != nil {
		return err
	}

	scenes := scene.NewStore()
	src, err := openSource(scenes, log)
	if err != nil {
		return err
	}
	defer src.stop()

	tokenID := flagToken
	if tokenID == "" {
		tokenID = src.token
	}

	player, sounds := newPlayer(log)
	if player != nil {
		defer player.Close()
	}

	fsys := fs.FS(assets.Embedded)
	if flagAssets != "" {
		fsys = os.DirFS(flagAssets)
	}

	opts := tracker.Options{
		Settings:       settings,
		Scenes:         scenes,
		Assets:         assets.NewCache(fsys, log),
		Sounds:         sounds,
		BackgroundPath: flagBackground,
		PingPath:       flagPing,
		Log:            log,
	}
	if player != nil {
		opts.Player = player
	}

	log.WithFields(logrus.Fields{
		"source": src.name,
		"scene":  src.sceneID,
		"token":  tokenID,
		"window": flagWindow,
	}).Info("motion tracker starting")

	if flagWindow {
		opts.VerticalCorrection = config.VerticalCorrection
		game, err := screen.New(screen.Options{
			Device:   tracker.New(opts),
			Settings: settings,
			User:     flagUser,
			Token:    tokenID,
			Scene:    src.sceneID,
			Log:      log,
		})
		if err != nil {
			return err
		}
		return game.Run()
	}

	opts.VerticalCorrection = config.AspectRatio
	model := app.New(app.Options{
		Device:   tracker.New(opts),
		Settings: settings,
		Scenes:   scenes,
		Source:   src.name,
		User:     flagUser,
		Token:    tokenID,
		Scene:    src.sceneID,
		Log:      log,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithFPS(config.TargetFPS),
	)
	_, err = p.Run()
	return err
}

func newLogger(path, level string) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(lvl)

	// The terminal surface owns stdout
	if path == "" {
		log.SetOutput(io.Discard)
		return log, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, func() { _ = f.Close() }, nil
}

func newSettings() (*config.Store, error) {
	settings := config.Defaults()
	values := []struct {
		key string
		val any
	}{
		{config.KeySize, flagSize},
		{config.KeyMaxDistance, flagMaxDistance},
		{config.KeySpeed, flagSpeed},
		{config.KeyVolume, flagVolume},
		{config.KeyDefeatedStatus, flagDefeated},
	}
	for _, v := range values {
		if err := settings.Set(config.Namespace, v.key, v.val); err != nil {
			return nil, err
		}
	}
	if flagMaxDistance <= 0 {
		return nil, fmt.Errorf("max-distance must be positive, got %g", flagMaxDistance)
	}
	return settings, nil
}

// source is a running scene feed.
type source struct {
	name    string
	sceneID string
	token   string // Default tracked token
	stop    func()
}

func openSource(scenes *scene.Store, log logrus.FieldLogger) (*source, error) {
	n := 0
	for _, set := range []bool{flagScene != "", flagDemo, flagBLE} {
		if set {
			n++
		}
	}
	if n > 1 {
		return nil, errors.New("choose one of --scene, --demo or --ble")
	}

	switch {
	case flagScene != "":
		sc, err := scene.LoadFile(flagScene)
		if err != nil {
			return nil, err
		}
		scenes.Put(sc)
		return &source{name: filepath.Base(flagScene), sceneID: sc.ID, token: sc.Tokens[0].ID, stop: func() {}}, nil

	case flagBLE:
		s := beacon.NewScanner(scenes, log)
		if err := s.Start(); err != nil {
			fmt.Fprintln(os.Stderr, "Bluetooth scanning requires elevated permissions.")
			fmt.Fprintln(os.Stderr, "Try one of:")
			fmt.Fprintln(os.Stderr, "  sudo ./motion-tracker --ble")
			fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./motion-tracker")
			fmt.Fprintln(os.Stderr, "  ./motion-tracker --demo    (demo mode, no hardware needed)")
			return nil, err
		}
		return &source{name: "ble", sceneID: config.BeaconSceneID, token: config.BeaconSelfToken, stop: s.Stop}, nil
	}

	w := scene.NewWalker(scenes, time.Now().UnixNano())
	w.Start()
	return &source{name: "demo", sceneID: scene.DemoSceneID, token: scene.DemoTracked, stop: w.Stop}, nil
}

// newPlayer opens the speaker when a sound bank is configured. Returns a
// nil player when audio is off or unavailable.
func newPlayer(log logrus.FieldLogger) (*audio.Player, map[string]string) {
	if flagSounds == "" {
		return nil, nil
	}
	sounds := make(map[string]string)
	for _, name := range []string{tracker.SoundScanning, tracker.SoundClose, tracker.SoundMedium, tracker.SoundFar} {
		path := filepath.Join(flagSounds, name+".wav")
		if _, err := os.Stat(path); err == nil {
			sounds[name] = path
		}
	}

	player := audio.NewPlayer(log)
	if err := player.Init(); err != nil {
		log.WithError(err).Warn("audio disabled")
		return nil, nil
	}
	paths := make([]string, 0, len(sounds))
	for _, p := range sounds {
		paths = append(paths, p)
	}
	player.Preload(paths...)
	return player, sounds
}
