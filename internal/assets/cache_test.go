package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEmbeddedDefaults(t *testing.T) {
	c := NewCache(Embedded, quietLogger())
	textures, err := c.Load(BackgroundPath, PingPath).Wait()
	require.NoError(t, err)
	require.Len(t, textures, 2)

	w, h := textures[0].Size()
	assert.Equal(t, w, h, "background should be square")
	assert.Equal(t, PingPath, textures[1].Path)
}

func TestLoadIsMemoized(t *testing.T) {
	fsys := fstest.MapFS{"a.png": {Data: pngBytes(t, 4, 4, color.White)}}
	c := NewCache(fsys, quietLogger())

	f1 := c.Load("a.png")
	f2 := c.Load("a.png")
	assert.Same(t, f1, f2)

	tex, err := f1.Wait()
	require.NoError(t, err)
	assert.True(t, f2.Ready())
	assert.Len(t, tex, 1)
}

func TestLoadFailureAndForget(t *testing.T) {
	fsys := fstest.MapFS{}
	c := NewCache(fsys, quietLogger())

	_, err := c.Load("missing.png").Wait()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	fsys["missing.png"] = &fstest.MapFile{Data: pngBytes(t, 2, 2, color.Black)}
	_, err = c.Load("missing.png").Wait()
	assert.Error(t, err, "failure stays cached")

	c.Forget("missing.png")
	_, err = c.Load("missing.png").Wait()
	assert.NoError(t, err)
}

func TestScaledAndSample(t *testing.T) {
	fsys := fstest.MapFS{"red.png": {Data: pngBytes(t, 8, 8, color.NRGBA{R: 255, A: 255})}}
	tex, err := Decode(fsys, "red.png")
	require.NoError(t, err)

	small := tex.Scaled(3, 2)
	assert.Equal(t, image.Rect(0, 0, 3, 2), small.Bounds())

	c := Sample(small, 1, 1)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(255), c.A)
}

func TestFutureCompletesOnce(t *testing.T) {
	f := NewFuture[int]()
	assert.False(t, f.Ready())

	f.Resolve(1)
	f.Reject(errors.New("late"))
	v, err := f.Wait()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)

	r := Resolved(0, errors.New("boom"))
	assert.True(t, r.Ready())
	_, err = r.Wait()
	assert.EqualError(t, err, "boom")
}
