package liquidglass

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// BrushSize is the edge length of the default brush texture.
const BrushSize = 256

// GenerateBrush returns a size x size white disc whose alpha falls off
// linearly from opaque at the center to transparent at the inscribed circle.
// It is the ripple sprite.
func GenerateBrush(size int) *image.NRGBA {
	size = max(size, 1)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	center := float64(size / 2)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := 1.0
			if center > 0 {
				d = math.Min(math.Hypot(float64(x)-center, float64(y)-center)/center, 1)
			}
			i := img.PixOffset(x, y)
			img.Pix[i] = 255
			img.Pix[i+1] = 255
			img.Pix[i+2] = 255
			img.Pix[i+3] = uint8(255 * (1 - d))
		}
	}
	return img
}

// GenerateLensMap returns an opaque displacement map that bulges the image
// outward toward the rim. Red and blue carry the x and y offsets around 0.5;
// green grows with distance from the center so map intensity, and with it
// the edge mask, is low in the middle and high at the rim.
func GenerateLensMap(size int) *image.NRGBA {
	size = max(size, 1)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size-1) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			nx, ny := 0.0, 0.0
			if c > 0 {
				nx, ny = (float64(x)-c)/c, (float64(y)-c)/c
			}
			d := math.Min(math.Hypot(nx, ny), 1)
			f := d * d
			i := img.PixOffset(x, y)
			img.Pix[i] = to8(float32(0.5 + 0.5*nx*f))
			img.Pix[i+1] = to8(float32(d))
			img.Pix[i+2] = to8(float32(0.5 + 0.5*ny*f))
			img.Pix[i+3] = 255
		}
	}
	return img
}

// Snapshot reads an ebiten image back into a straight-alpha NRGBA image.
func Snapshot(src *ebiten.Image) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	src.ReadPixels(pixels)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// WritePNG encodes img to a PNG file at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
