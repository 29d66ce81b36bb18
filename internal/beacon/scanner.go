package beacon

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"motion-tracker.klederson.com/internal/config"
	"motion-tracker.klederson.com/internal/scene"
)

// Scanner feeds BLE advertisements into a beacon Table.
type Scanner struct {
	adapter *bluetooth.Adapter
	table   *Table
	log     logrus.FieldLogger
	classic *ClassicScanner
	running atomic.Bool
	cancel  context.CancelFunc
}

// NewScanner creates a scanner on the default adapter writing into store.
func NewScanner(store *scene.Store, log logrus.FieldLogger) *Scanner {
	return &Scanner{
		adapter: bluetooth.DefaultAdapter,
		table:   NewTable(store),
		log:     log.WithField("component", "beacon"),
	}
}

// Table returns the beacon table.
func (s *Scanner) Table() *Table {
	return s.table
}

// Start enables the adapter and begins scanning and eviction in goroutines.
func (s *Scanner) Start() error {
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	s.running.Store(true)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go func() {
		err := s.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			var ids []uint16
			for _, m := range result.ManufacturerData() {
				ids = append(ids, m.CompanyID)
			}
			s.handle(result.Address.String(), result.LocalName(), ids, result.RSSI)
		})
		if err != nil {
			s.log.WithError(err).Error("BLE scan stopped")
		}
	}()
	go s.evictLoop(ctx)

	if ClassicScannerAvailable() {
		s.classic = NewClassicScanner(s.table, config.ClassicInterval, s.log)
		s.classic.Start()
	}

	s.log.WithField("classic", s.classic != nil).Info("BLE scan started")
	return nil
}

// handle records one advertisement. Results arriving after Stop are dropped.
func (s *Scanner) handle(mac, localName string, companyIDs []uint16, rssi int16) {
	if !s.running.Load() {
		return
	}
	s.table.Observe(mac, beaconName(localName, companyIDs, mac), float64(rssi), time.Now())
}

func (s *Scanner) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(config.EvictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.table.Evict(config.BeaconTimeout, now); n > 0 {
				s.log.WithField("evicted", n).Debug("stale beacons removed")
			}
		}
	}
}

// Stop halts the BLE scanner.
func (s *Scanner) Stop() {
	s.running.Store(false)
	if s.cancel != nil {
		s.cancel()
	}
	if s.classic != nil {
		s.classic.Stop()
	}
	_ = s.adapter.StopScan()
}
