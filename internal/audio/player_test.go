package audio

import (
	"io"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeMapping(t *testing.T) {
	silence := generators.Silence(10)

	v := Volume(silence, 1)
	assert.False(t, v.Silent)
	assert.Equal(t, 0.0, v.Volume)

	v = Volume(silence, 0.5)
	assert.InDelta(t, -1.0, v.Volume, 1e-9)

	v = Volume(silence, 0)
	assert.True(t, v.Silent)

	v = Volume(silence, 3)
	assert.Equal(t, 0.0, v.Volume, "gain is capped at unity")
}

func TestVolumeScalesSamples(t *testing.T) {
	tone, err := generators.SineTone(sampleRate, 440)
	require.NoError(t, err)

	loud := make([][2]float64, 64)
	quiet := make([][2]float64, 64)
	Volume(beep.Take(64, tone), 1).Stream(loud)

	tone2, _ := generators.SineTone(sampleRate, 440)
	Volume(beep.Take(64, tone2), 0.5).Stream(quiet)

	for i := range loud {
		assert.InDelta(t, loud[i][0]*0.5, quiet[i][0], 1e-9)
	}
}

func TestPlayBeforeInitIsNoop(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	p := NewPlayer(l)

	// Must not touch the speaker or the file system
	p.Play("/does/not/exist.wav", 1)
	assert.Empty(t, p.buffers)
}

func TestPreloadMissingFile(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	p := NewPlayer(l)

	p.Preload("/does/not/exist.wav")
	assert.Empty(t, p.buffers)
}
