package beacon

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sort"
	"sync"
	"time"

	"motion-tracker.klederson.com/internal/config"
	"motion-tracker.klederson.com/internal/scene"
)

// Beacon is a BLE advertiser placed on the tracker. There is no bearing in
// an advertisement, so the angle is a stable hash of the address.
type Beacon struct {
	MAC      string
	Name     string
	RSSI     float64
	LastSeen time.Time
	Angle    float64 // Radians, 0=north, clockwise
	Distance float64 // Estimated meters
}

// MacToAngle derives a consistent angle from a MAC address using a hash.
// Returns radians in [0, 2π), where 0=north, increasing clockwise.
func MacToAngle(mac string) float64 {
	h := sha256.Sum256([]byte(mac))
	val := binary.BigEndian.Uint32(h[:4])
	return float64(val) / (float64(math.MaxUint32) + 1) * 2 * math.Pi
}

// RSSIToDistance estimates distance from RSSI using the log-distance path loss model.
// Formula: d = 10^((measuredPower - rssi) / (10 * n))
func RSSIToDistance(rssi, measuredPower, pathLossExp float64) float64 {
	if rssi >= 0 {
		return 0.1
	}
	d := math.Pow(10, (measuredPower-rssi)/(10*pathLossExp))
	if d < 0.1 {
		return 0.1
	}
	return d
}

// Table tracks beacons and mirrors them into a scene as tokens around a
// fixed "self" token at the origin.
type Table struct {
	mu      sync.Mutex
	beacons map[string]*Beacon
	store   *scene.Store
}

// NewTable seeds the beacon scene into store.
func NewTable(store *scene.Store) *Table {
	t := &Table{
		beacons: make(map[string]*Beacon),
		store:   store,
	}
	store.Put(t.scene())
	return t
}

// Observe records an advertisement. RSSI is smoothed with an EMA and the
// angle is kept so beacons don't jump around the scope.
func (t *Table) Observe(mac, name string, rssi float64, now time.Time) {
	t.mu.Lock()
	if b, ok := t.beacons[mac]; ok {
		b.RSSI = b.RSSI*(1-config.SmoothingAlpha) + rssi*config.SmoothingAlpha
		b.Distance = RSSIToDistance(b.RSSI, config.MeasuredPower, config.PathLossExp)
		b.LastSeen = now
		if name != "" {
			b.Name = name
		}
	} else {
		t.beacons[mac] = &Beacon{
			MAC:      mac,
			Name:     name,
			RSSI:     rssi,
			LastSeen: now,
			Angle:    MacToAngle(mac),
			Distance: RSSIToDistance(rssi, config.MeasuredPower, config.PathLossExp),
		}
	}
	sc := t.scene()
	t.mu.Unlock()

	t.store.Put(sc)
}

// Evict removes beacons not seen within timeout. Returns the number evicted.
func (t *Table) Evict(timeout time.Duration, now time.Time) int {
	t.mu.Lock()
	cutoff := now.Add(-timeout)
	count := 0
	for mac, b := range t.beacons {
		if b.LastSeen.Before(cutoff) {
			delete(t.beacons, mac)
			count++
		}
	}
	sc := t.scene()
	t.mu.Unlock()

	if count > 0 {
		t.store.Put(sc)
	}
	return count
}

// Len returns the number of tracked beacons.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.beacons)
}

// scene builds the beacon scene. Callers hold t.mu.
func (t *Table) scene() scene.Scene {
	const cell = config.BeaconGridPx

	macs := make([]string, 0, len(t.beacons))
	for mac := range t.beacons {
		macs = append(macs, mac)
	}
	sort.Strings(macs)

	sc := scene.Scene{
		ID:           config.BeaconSceneID,
		Grid:         cell,
		GridDistance: 1,
		GridUnits:    "m",
		Tokens:       make([]scene.Token, 0, len(macs)+1),
	}
	sc.Tokens = append(sc.Tokens, scene.Token{
		ID: config.BeaconSelfToken, Name: "You",
		X: -0.5 * cell, Y: -0.5 * cell, Width: cell, Height: cell, Scale: 1,
	})
	for _, mac := range macs {
		b := t.beacons[mac]
		cx := b.Distance * math.Sin(b.Angle) * cell
		cy := -b.Distance * math.Cos(b.Angle) * cell
		sc.Tokens = append(sc.Tokens, scene.Token{
			ID: b.MAC, Name: b.Name,
			X: cx - 0.5*cell, Y: cy - 0.5*cell, Width: cell, Height: cell, Scale: 1,
		})
	}
	return sc
}
