package liquidglass

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// texturePool manages reusable offscreen ebiten.Images keyed by exact
// dimensions. Pipeline passes need same-sized inputs, so sizes are not
// rounded. After warmup, Acquire/Release are zero-alloc.
type texturePool struct {
	buckets map[uint64][]*ebiten.Image
	live    int
}

// poolKey packs width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared offscreen image of exactly (w, h) pixels.
func (p *texturePool) Acquire(w, h int) *ebiten.Image {
	w, h = max(w, 1), max(h, 1)
	p.live++
	key := poolKey(w, h)
	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, w, h),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool for reuse. The image is cleared on
// next Acquire, not here.
func (p *texturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	p.live--
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// Live returns the number of acquired images not yet released.
func (p *texturePool) Live() int {
	return p.live
}

// Idle returns the number of pooled images waiting for reuse.
func (p *texturePool) Idle() int {
	n := 0
	for _, stack := range p.buckets {
		n += len(stack)
	}
	return n
}

// Dispose deallocates every pooled image.
func (p *texturePool) Dispose() {
	for key, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, key)
	}
}
