package beacon

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// classicRSSI stands in for inquiry results; hcitool scan reports no RSSI.
const classicRSSI = -75

// ClassicScanner discovers classic Bluetooth devices via hcitool and feeds
// them into a beacon Table.
type ClassicScanner struct {
	table    *Table
	log      logrus.FieldLogger
	interval time.Duration
	cancel   context.CancelFunc
}

// NewClassicScanner creates a classic BT scanner writing into table.
func NewClassicScanner(table *Table, interval time.Duration, log logrus.FieldLogger) *ClassicScanner {
	return &ClassicScanner{
		table:    table,
		log:      log.WithField("component", "classic"),
		interval: interval,
	}
}

// ClassicScannerAvailable checks if hcitool is available on the system.
func ClassicScannerAvailable() bool {
	_, err := exec.LookPath("hcitool")
	return err == nil
}

// Start runs inquiries every interval in a goroutine.
func (s *ClassicScanner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.loop(ctx)
}

func (s *ClassicScanner) loop(ctx context.Context) {
	for {
		s.scan(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}

func (s *ClassicScanner) scan(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 15*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "hcitool", "scan", "--flush")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return
	}
	if err := cmd.Start(); err != nil {
		s.log.WithError(err).Debug("hcitool scan failed to start")
		return
	}

	sc := bufio.NewScanner(stdout)
	for sc.Scan() {
		mac, name, ok := parseInquiryLine(sc.Text())
		if !ok {
			continue
		}
		s.table.Observe(mac, name, classicRSSI, time.Now())
	}

	_ = cmd.Wait()
}

// Stop halts the classic scanner.
func (s *ClassicScanner) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// parseInquiryLine reads one "AA:BB:CC:DD:EE:FF\tDevice Name" line.
func parseInquiryLine(line string) (mac, name string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "Scanning") {
		return "", "", false
	}
	parts := strings.SplitN(line, "\t", 2)
	mac = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		name = strings.TrimSpace(parts[1])
	}
	if !isValidMAC(mac) {
		return "", "", false
	}
	return strings.ToUpper(mac), name, true
}

func isValidMAC(mac string) bool {
	if len(mac) != 17 {
		return false
	}
	for i, c := range mac {
		if (i+1)%3 == 0 {
			if c != ':' {
				return false
			}
		} else {
			if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')) {
				return false
			}
		}
	}
	return true
}
