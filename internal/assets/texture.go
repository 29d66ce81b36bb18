package assets

import (
	"embed"
	"fmt"
	"image"
	"image/color"
	"io/fs"

	// Registered decoders
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Default texture paths inside Embedded.
const (
	BackgroundPath = "textures/background.png"
	PingPath       = "textures/ping.png"
)

// Embedded holds the default textures.
//
//go:embed textures/*.png
var Embedded embed.FS

// Texture is a decoded image asset.
type Texture struct {
	Path  string
	Image image.Image
}

// Decode reads and decodes one texture from fsys. PNG and WebP are supported.
func Decode(fsys fs.FS, path string) (*Texture, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return &Texture{Path: path, Image: img}, nil
}

// Size returns the texture dimensions in texels.
func (t *Texture) Size() (w, h int) {
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Scaled resamples the texture to w x h.
func (t *Texture) Scaled(w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), t.Image, t.Image.Bounds(), draw.Src, nil)
	return dst
}

// Sample returns the texel at normalized coordinates (u, v) in [0, 1].
func Sample(img image.Image, u, v float64) color.NRGBA {
	b := img.Bounds()
	x := b.Min.X + int(u*float64(b.Dx()))
	y := b.Min.Y + int(v*float64(b.Dy()))
	if x >= b.Max.X {
		x = b.Max.X - 1
	}
	if y >= b.Max.Y {
		y = b.Max.Y - 1
	}
	if x < b.Min.X {
		x = b.Min.X
	}
	if y < b.Min.Y {
		y = b.Min.Y
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}
