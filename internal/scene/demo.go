package scene

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"motion-tracker.klederson.com/internal/config"
)

const (
	DemoSceneID = "demo"
	DemoTracked = "player"
	demoGrid    = 100.0
)

var demoTokenNames = []string{
	"Drone", "Crawler", "Stalker", "Runner", "Lurker",
	"Sentry", "Scout", "Hauler", "Synthetic", "Survivor",
	"Hound", "Swarmer", "Brute", "Spitter", "Watcher",
}

var demoStatuses = []string{"asleep", "stunned", "unconscious"}

type demoToken struct {
	id        string
	name      string
	baseX     float64
	baseY     float64
	radiusX   float64
	radiusY   float64
	rate      float64
	phase     float64
	hidden    bool
	statuses  []string
	statusTTL float64
}

// Walker drives a demo scene whose tokens wander around the tracked token.
type Walker struct {
	store  *Store
	tokens []demoToken
	rng    *rand.Rand
	t      float64
	cancel context.CancelFunc
}

// NewWalker seeds the demo scene into store and returns its walker.
func NewWalker(store *Store, seed int64) *Walker {
	rng := rand.New(rand.NewSource(seed))

	total := config.DemoTokenMin + rng.Intn(config.DemoTokenMax-config.DemoTokenMin+1)
	perm := rng.Perm(len(demoTokenNames))

	w := &Walker{store: store, rng: rng}
	for i := 0; i < total; i++ {
		name := demoTokenNames[perm[i%len(perm)]]
		// Cells from the tracked token; the scan range covers most of them
		dist := 3 + rng.Float64()*70
		angle := rng.Float64() * 2 * math.Pi
		w.tokens = append(w.tokens, demoToken{
			id:      fmt.Sprintf("demo-%02d", i),
			name:    name,
			baseX:   dist * math.Sin(angle) * demoGrid,
			baseY:   -dist * math.Cos(angle) * demoGrid,
			radiusX: (1 + rng.Float64()*6) * demoGrid,
			radiusY: (1 + rng.Float64()*6) * demoGrid,
			rate:    0.05 + rng.Float64()*0.3,
			phase:   rng.Float64() * 2 * math.Pi,
		})
	}

	store.Put(w.snapshot())
	return w
}

// Start begins moving the demo tokens in a goroutine.
func (w *Walker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.loop(ctx)
}

func (w *Walker) loop(ctx context.Context) {
	ticker := time.NewTicker(config.DemoStepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Step(config.DemoStepEvery.Seconds())
		}
	}
}

// Step advances the demo by dt seconds and writes the scene to the store.
func (w *Walker) Step(dt float64) {
	w.t += dt
	for i := range w.tokens {
		d := &w.tokens[i]

		// Randomly duck out of sight
		if w.rng.Float64() < 0.003 {
			d.hidden = !d.hidden
		}

		if d.statusTTL > 0 {
			d.statusTTL -= dt
			if d.statusTTL <= 0 {
				d.statuses = nil
			}
		} else if w.rng.Float64() < 0.002 {
			d.statuses = []string{demoStatuses[w.rng.Intn(len(demoStatuses))]}
			d.statusTTL = 3 + w.rng.Float64()*5
		}
	}
	w.store.Put(w.snapshot())
}

func (w *Walker) snapshot() Scene {
	sc := Scene{
		ID:           DemoSceneID,
		Grid:         demoGrid,
		GridDistance: 1,
		GridUnits:    "m",
		Tokens:       make([]Token, 0, len(w.tokens)+1),
	}
	sc.Tokens = append(sc.Tokens, Token{
		ID:     DemoTracked,
		Name:   "Tracker",
		X:      -0.5 * demoGrid,
		Y:      -0.5 * demoGrid,
		Width:  demoGrid,
		Height: demoGrid,
		Scale:  1,
	})
	for _, d := range w.tokens {
		sc.Tokens = append(sc.Tokens, Token{
			ID:       d.id,
			Name:     d.name,
			X:        d.baseX + d.radiusX*math.Sin(w.t*d.rate+d.phase) - 0.5*demoGrid,
			Y:        d.baseY + d.radiusY*math.Cos(w.t*d.rate*0.7+d.phase) - 0.5*demoGrid,
			Width:    demoGrid,
			Height:   demoGrid,
			Scale:    1,
			Hidden:   d.hidden,
			Statuses: d.statuses,
		})
	}
	return sc
}

// Stop halts the walker.
func (w *Walker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}
