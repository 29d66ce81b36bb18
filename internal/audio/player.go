package audio

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"github.com/sirupsen/logrus"
)

const sampleRate = beep.SampleRate(44100)

// Player plays WAV files through the system speaker. Decoded files are
// kept in memory so repeated pings don't touch the disk.
type Player struct {
	mu          sync.Mutex
	buffers     map[string]*beep.Buffer
	initialized bool
	log         logrus.FieldLogger
}

// NewPlayer creates a player. Call Init before Play.
func NewPlayer(log logrus.FieldLogger) *Player {
	return &Player{
		buffers: make(map[string]*beep.Buffer),
		log:     log.WithField("component", "audio"),
	}
}

// Init opens the speaker.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	p.initialized = true
	return nil
}

// Preload decodes files ahead of the first Play.
func (p *Player) Preload(paths ...string) {
	for _, path := range paths {
		if _, err := p.buffer(path); err != nil {
			p.log.WithError(err).WithField("path", path).Warn("sound preload failed")
		}
	}
}

// Play starts a sound at a linear volume in [0, 1]. Errors are logged,
// never returned.
func (p *Player) Play(path string, volume float64) {
	p.mu.Lock()
	ready := p.initialized
	p.mu.Unlock()
	if !ready {
		return
	}

	buf, err := p.buffer(path)
	if err != nil {
		p.log.WithError(err).WithField("path", path).Warn("sound play failed")
		return
	}
	speaker.Play(Volume(buf.Streamer(0, buf.Len()), volume))
}

func (p *Player) buffer(path string) (*beep.Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if buf, ok := p.buffers[path]; ok {
		return buf, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode sound %s: %w", path, err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2})
	var s beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		s = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}
	buf.Append(s)
	p.buffers[path] = buf
	return buf, nil
}

// Volume wraps a streamer with a linear gain in [0, 1].
func Volume(s beep.Streamer, volume float64) *effects.Volume {
	v := &effects.Volume{Streamer: s, Base: 2}
	if volume <= 0 {
		v.Silent = true
		return v
	}
	v.Volume = math.Log2(math.Min(volume, 1))
	return v
}

// Close stops all playback.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		speaker.Clear()
	}
}
