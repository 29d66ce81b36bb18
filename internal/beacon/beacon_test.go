package beacon

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motion-tracker.klederson.com/internal/config"
	"motion-tracker.klederson.com/internal/scene"
)

func TestRSSIToDistance(t *testing.T) {
	assert.InDelta(t, 1.0, RSSIToDistance(config.MeasuredPower, config.MeasuredPower, config.PathLossExp), 1e-9)
	assert.InDelta(t, 10.0, RSSIToDistance(-84, -59, 2.5), 1e-9)
	assert.Equal(t, 0.1, RSSIToDistance(5, -59, 2.5))
	assert.Equal(t, 0.1, RSSIToDistance(-1, -59, 2.5))
}

func TestMacToAngleStable(t *testing.T) {
	a := MacToAngle("AA:BB:CC:DD:EE:FF")
	assert.Equal(t, a, MacToAngle("AA:BB:CC:DD:EE:FF"))
	assert.GreaterOrEqual(t, a, 0.0)
	assert.Less(t, a, 2*math.Pi)
	assert.NotEqual(t, a, MacToAngle("AA:BB:CC:DD:EE:00"))
}

func TestObservePlacesToken(t *testing.T) {
	store := scene.NewStore()
	table := NewTable(store)
	now := time.Now()

	table.Observe("AA:BB:CC:DD:EE:FF", "tag", -84, now)

	sc, ok := store.Scene(config.BeaconSceneID)
	require.True(t, ok)
	require.Len(t, sc.Tokens, 2)

	self, ok := sc.Token(config.BeaconSelfToken)
	require.True(t, ok)
	sx, sy := self.Center()
	assert.Zero(t, sx)
	assert.Zero(t, sy)

	tok, ok := sc.Token("AA:BB:CC:DD:EE:FF")
	require.True(t, ok)
	assert.Equal(t, "tag", tok.Name)
	x, y := tok.Center()
	// 10 m at 100 px per meter
	assert.InDelta(t, 1000, math.Hypot(x, y), 1e-6)
}

func TestObserveSmoothsAndEvicts(t *testing.T) {
	store := scene.NewStore()
	table := NewTable(store)
	now := time.Now()

	table.Observe("11:22:33:44:55:66", "", -60, now)
	table.Observe("11:22:33:44:55:66", "late name", -80, now.Add(time.Second))
	table.Observe("AA:AA:AA:AA:AA:AA", "", -70, now.Add(40*time.Second))

	table.mu.Lock()
	b := table.beacons["11:22:33:44:55:66"]
	assert.InDelta(t, -66.0, b.RSSI, 1e-9)
	assert.Equal(t, "late name", b.Name)
	table.mu.Unlock()

	n := table.Evict(config.BeaconTimeout, now.Add(45*time.Second))
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 2, store.Count(config.BeaconSceneID))
}

func TestBeaconName(t *testing.T) {
	assert.Equal(t, "Tag", beaconName("Tag", nil, "AA:BB:CC:DD:EE:FF"))
	assert.Equal(t, "Apple EE:FF", beaconName("", []uint16{0x9999, 0x004C}, "AA:BB:CC:DD:EE:FF"))
	assert.Empty(t, beaconName("", []uint16{0x9999}, "AA:BB:CC:DD:EE:FF"))
}

func TestParseInquiryLine(t *testing.T) {
	mac, name, ok := parseInquiryLine("\taa:bb:cc:dd:ee:ff\tHeadset  ")
	require.True(t, ok)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", mac)
	assert.Equal(t, "Headset", name)

	mac, name, ok = parseInquiryLine("11:22:33:44:55:66")
	require.True(t, ok)
	assert.Equal(t, "11:22:33:44:55:66", mac)
	assert.Empty(t, name)

	for _, line := range []string{"", "Scanning ...", "not-a-mac\tX", "11:22:33:44:55:GG\tX"} {
		_, _, ok = parseInquiryLine(line)
		assert.False(t, ok, line)
	}
}

func TestScannerDropsResultsWhenStopped(t *testing.T) {
	store := scene.NewStore()
	s := &Scanner{table: NewTable(store), log: logrus.New()}

	s.handle("AA:BB:CC:DD:EE:01", "early", nil, -60)
	assert.Zero(t, s.table.Len())

	s.running.Store(true)
	s.handle("AA:BB:CC:DD:EE:02", "tag", nil, -60)
	assert.Equal(t, 1, s.table.Len())
}

func TestScannerHandleConcurrentWithStop(t *testing.T) {
	s := &Scanner{table: NewTable(scene.NewStore()), log: logrus.New()}
	s.running.Store(true)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.handle("AA:BB:CC:DD:EE:03", "tag", nil, -60)
		}
	}()
	s.running.Store(false)
	wg.Wait()

	n := s.table.Len()
	s.handle("AA:BB:CC:DD:EE:04", "late", nil, -60)
	assert.Equal(t, n, s.table.Len())
}
