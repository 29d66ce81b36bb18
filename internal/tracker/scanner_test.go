package tracker

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motion-tracker.klederson.com/internal/scene"
)

func point(id string, x, y float64) scene.Token {
	return scene.Token{ID: id, X: x, Y: y, Scale: 1}
}

func unitScene(tokens ...scene.Token) *scene.Scene {
	return &scene.Scene{ID: "s", Grid: 1, GridDistance: 1, GridUnits: "m", Tokens: tokens}
}

func TestScanSingleEntity(t *testing.T) {
	me := point("me", 0, 0)
	sc := unitScene(me, point("o", 5, 0))

	sigs, nearest, dropped := NewScanner(20, "dead").Scan(nil, me, sc, 10)

	require.Len(t, sigs, 1)
	assert.InDelta(t, 5.0, sigs[0].Distance, 1e-9)
	assert.Equal(t, Vec2{1, 0}, sigs[0].Dir)
	assert.InDelta(t, 5.0, nearest, 1e-9)
	assert.Zero(t, dropped)
}

func TestScanExclusions(t *testing.T) {
	me := point("me", 0, 0)
	hidden := point("hidden", 2, 0)
	hidden.Hidden = true
	ko := point("ko", 0, 1)
	ko.Statuses = []string{"unconscious"}
	dead := point("dead", 0, 3)
	dead.Statuses = []string{"poisoned", "dead"}
	far := point("far", 0, 8)

	sigs, nearest, _ := NewScanner(20, "dead").Scan(nil, me, unitScene(me, hidden, ko, dead, far), 10)

	require.Len(t, sigs, 1)
	assert.InDelta(t, 8.0, sigs[0].Distance, 1e-9)
	// Excluded tokens never feed the nearest distance
	assert.InDelta(t, 8.0, nearest, 1e-9)
}

func TestScanNoEligible(t *testing.T) {
	me := point("me", 0, 0)
	sigs, nearest, _ := NewScanner(20, "dead").Scan(nil, me, unitScene(me), 10)
	assert.Empty(t, sigs)
	assert.Equal(t, 10.0, nearest)
}

func TestScanNearestIgnoresCutoff(t *testing.T) {
	me := point("me", 0, 0)
	sigs, nearest, _ := NewScanner(20, "dead").Scan(nil, me, unitScene(me, point("a", 30, 40)), 100)
	require.Len(t, sigs, 1)
	assert.InDelta(t, 50.0, nearest, 1e-9)

	// Out of range: not emitted, nearest stays at the cutoff
	sigs, nearest, _ = NewScanner(20, "dead").Scan(nil, me, unitScene(me, point("a", 30, 40)), 40)
	assert.Empty(t, sigs)
	assert.Equal(t, 40.0, nearest)
}

func TestScanColocatedClampsDirection(t *testing.T) {
	me := point("me", 3, 3)
	sigs, nearest, _ := NewScanner(20, "dead").Scan(nil, me, unitScene(me, point("twin", 3, 3)), 10)

	require.Len(t, sigs, 1)
	assert.Zero(t, sigs[0].Distance)
	assert.Equal(t, Vec2{}, sigs[0].Dir)
	assert.False(t, math.IsNaN(sigs[0].Dir.X))
	assert.Zero(t, nearest)
}

func TestScanUsesCentersAndGrid(t *testing.T) {
	sc := &scene.Scene{Grid: 100, GridDistance: 5, GridUnits: "ft"}
	me := scene.Token{ID: "me", X: 0, Y: 0, Width: 100, Height: 100, Scale: 1}
	// Large token: center at 300+100 = 400 px, i.e. 3.5 cells right of me
	big := scene.Token{ID: "big", X: 300, Y: 0, Width: 100, Height: 100, Scale: 2}
	sc.Tokens = []scene.Token{me, big}

	sigs, _, _ := NewScanner(20, "").Scan(nil, me, sc, 60)
	require.Len(t, sigs, 1)
	// (400 - 50) / 100 = 3.5 cells, 5 ft per cell, vertical (100 - 50)/100 = 0.5
	want := 5 * math.Hypot(3.5, 0.5)
	assert.InDelta(t, want, sigs[0].Distance, 1e-9)
	assert.InDelta(t, 1.0, sigs[0].Dir.Len(), 1e-9)
}

func TestScanCapacity(t *testing.T) {
	me := point("me", 0, 0)
	sc := unitScene(me)
	for i := 0; i < 25; i++ {
		sc.Tokens = append(sc.Tokens, point(fmt.Sprintf("t%d", i), float64(i+1), 0))
	}

	sigs, nearest, dropped := NewScanner(20, "dead").Scan(nil, me, sc, 100)
	assert.Len(t, sigs, 20)
	assert.Equal(t, 5, dropped)
	assert.InDelta(t, 1.0, nearest, 1e-9)
	// Scan order is kept
	assert.InDelta(t, 20.0, sigs[19].Distance, 1e-9)
}

func TestScanReusesBuffer(t *testing.T) {
	me := point("me", 0, 0)
	buf := make([]Signal, 0, 20)
	s := NewScanner(20, "dead")

	sigs, _, _ := s.Scan(buf, me, unitScene(me, point("a", 1, 0), point("b", 2, 0)), 10)
	require.Len(t, sigs, 2)
	sigs, _, _ = s.Scan(sigs, me, unitScene(me, point("c", 3, 0)), 10)
	require.Len(t, sigs, 1)
	assert.InDelta(t, 3.0, sigs[0].Distance, 1e-9)
	assert.Equal(t, cap(buf), cap(sigs))
}

func TestScanProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := []string{"", "", "", "asleep", "stunned", "blessed"}
	s := NewScanner(20, "dead")

	for round := 0; round < 200; round++ {
		me := point("me", rng.Float64()*50, rng.Float64()*50)
		sc := unitScene(me)
		n := rng.Intn(40)
		for i := 0; i < n; i++ {
			tok := point(fmt.Sprintf("t%d", i), rng.Float64()*100, rng.Float64()*100)
			tok.Hidden = rng.Intn(5) == 0
			if st := statuses[rng.Intn(len(statuses))]; st != "" {
				tok.Statuses = []string{st}
			}
			sc.Tokens = append(sc.Tokens, tok)
		}
		maxDistance := 5 + rng.Float64()*60

		sigs, nearest, _ := s.Scan(nil, me, sc, maxDistance)

		eligibleInRange := 0
		trueMin := maxDistance
		mx, my := me.Center()
		for _, tok := range sc.Tokens {
			if !s.Eligible(me, tok) {
				continue
			}
			x, y := tok.Center()
			d := math.Hypot(x-mx, y-my)
			trueMin = math.Min(trueMin, d)
			if d < maxDistance {
				eligibleInRange++
			}
		}

		assert.LessOrEqual(t, len(sigs), eligibleInRange)
		assert.LessOrEqual(t, len(sigs), 20)
		assert.InDelta(t, trueMin, nearest, 1e-9)
		for _, sig := range sigs {
			assert.LessOrEqual(t, nearest, sig.Distance)
			assert.Less(t, sig.Distance, maxDistance)
		}
	}
}
