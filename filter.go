package liquidglass

import (
	"context"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is the interface for visual effects applied to a rendered layer.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *ebiten.Image)
	// Padding returns the extra pixels needed around the source to accommodate
	// the effect (e.g. blur radius, displacement reach). Zero means no padding.
	Padding() int
}

// --- ColorMatrixFilter ---

// ColorMatrixFilter applies a 4x5 color matrix transformation using a Kage shader.
type ColorMatrixFilter struct {
	Matrix    ColorMatrix
	uniforms  map[string]any
	matrixF32 [20]float32
	shaderOp  ebiten.DrawRectShaderOptions
}

// NewColorMatrixFilter creates a color matrix filter initialized to the identity.
func NewColorMatrixFilter() *ColorMatrixFilter {
	f := &ColorMatrixFilter{uniforms: make(map[string]any, 1)}
	f.uniforms["Matrix"] = f.matrixF32[:]
	f.Matrix[0] = 1
	f.Matrix[6] = 1
	f.Matrix[12] = 1
	f.Matrix[18] = 1
	return f
}

// NewGooFilter returns a color matrix that sharpens a blurred alpha edge into
// a gooey contour, merging nearby blobs: a' = 19a - 8.
func NewGooFilter() *ColorMatrixFilter {
	f := NewColorMatrixFilter()
	f.Matrix[18] = 19
	f.Matrix[19] = -8
	return f
}

// Apply renders the color matrix transformation from src into dst.
func (f *ColorMatrixFilter) Apply(src, dst *ebiten.Image) {
	for i, v := range f.Matrix {
		f.matrixF32[i] = float32(v)
	}
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), ensureColorMatrixShader(), &f.shaderOp)
}

// Padding returns 0; color matrix transforms don't expand the image bounds.
func (f *ColorMatrixFilter) Padding() int { return 0 }

// --- BlurFilter ---

// BlurFilter applies a Kawase iterative blur using downscale/upscale passes.
// It backs the frosted glass backdrop and the goo layer, where a cheap wide
// blur matters more than an exact Gaussian.
type BlurFilter struct {
	Radius int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewBlurFilter creates a blur filter with the given radius (in pixels).
func NewBlurFilter(radius int) *BlurFilter {
	if radius < 0 {
		radius = 0
	}
	return &BlurFilter{Radius: radius}
}

// Passes returns the number of downscale passes for the radius.
func (f *BlurFilter) Passes() int {
	if f.Radius <= 0 {
		return 0
	}
	return max(int(math.Ceil(math.Log2(float64(f.Radius)))), 1)
}

// Apply renders a Kawase blur from src into dst.
func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	op := &f.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendSourceOver
	if f.Radius <= 0 {
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, op)
		return
	}

	passes := f.Passes()
	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	current := src
	for i := 0; i < passes; i++ {
		w, h = max(w/2, 1), max(h/2, 1)
		if t := f.temps[i]; t == nil || t.Bounds().Dx() != w || t.Bounds().Dy() != h {
			if t != nil {
				t.Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			t.Clear()
		}
		f.scaleInto(f.temps[i], current)
		current = f.temps[i]
	}
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		f.scaleInto(f.temps[i], current)
		current = f.temps[i]
	}
	f.scaleInto(dst, current)
}

func (f *BlurFilter) scaleInto(dst, src *ebiten.Image) {
	op := &f.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.GeoM.Scale(
		float64(dst.Bounds().Dx())/float64(src.Bounds().Dx()),
		float64(dst.Bounds().Dy())/float64(src.Bounds().Dy()),
	)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

// Padding returns the blur radius.
func (f *BlurFilter) Padding() int { return f.Radius }

// Dispose frees the intermediate images.
func (f *BlurFilter) Dispose() {
	for _, t := range f.temps {
		if t != nil {
			t.Deallocate()
		}
	}
	f.temps = nil
}

// --- ChromaticFilter ---

// ChromaticFilter runs the displacement pipeline as a Filter. With no map it
// copies the source unchanged.
type ChromaticFilter struct {
	Map      *ebiten.Image
	backend  *EbitenBackend
	pipeline *Pipeline
	imgOp    ebiten.DrawImageOptions
}

// NewChromaticFilter creates a chromatic aberration filter.
func NewChromaticFilter(cfg DisplacementFilterConfig, dmap *ebiten.Image) *ChromaticFilter {
	return &ChromaticFilter{
		Map:      dmap,
		backend:  NewEbitenBackend(),
		pipeline: NewPipeline(cfg),
	}
}

// Config returns the active filter configuration.
func (f *ChromaticFilter) Config() DisplacementFilterConfig {
	return f.pipeline.Config()
}

// SetConfig rebuilds the pass list when the configuration changed.
func (f *ChromaticFilter) SetConfig(cfg DisplacementFilterConfig) {
	if cfg != f.pipeline.Config() {
		f.pipeline = NewPipeline(cfg)
	}
}

// Apply renders the aberrated source into dst. Pipeline failures degrade to
// the undistorted source.
func (f *ChromaticFilter) Apply(src, dst *ebiten.Image) {
	var dmap Surface
	if f.Map != nil {
		dmap = f.Map
	}
	out, err := f.pipeline.Run(context.Background(), f.backend, src, dmap)
	if err != nil {
		Logger().Warn("chromatic filter failed, drawing source", "err", err)
		out = src
	}
	img := out.(*ebiten.Image)
	op := &f.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendSourceOver
	dst.DrawImage(img, op)
	if img != src {
		f.backend.Release(img)
	}
}

// Padding returns the maximum displacement reach: half the largest channel
// scale magnitude.
func (f *ChromaticFilter) Padding() int {
	cfg := f.pipeline.Config()
	r, g, b := ChannelScales(cfg.Scale, cfg.AberrationIntensity)
	reach := max(math.Abs(r), math.Abs(g), math.Abs(b)) / 2
	if !finite(reach) {
		return 0
	}
	return int(math.Ceil(reach))
}

// Dispose frees pooled GPU memory.
func (f *ChromaticFilter) Dispose() {
	f.backend.Dispose()
}

// filterChainPadding returns the cumulative padding required by a slice of filters.
func filterChainPadding(filters []Filter) int {
	pad := 0
	for _, f := range filters {
		pad += f.Padding()
	}
	return pad
}

// applyFilters runs a filter chain on src, ping-ponging between pooled
// images. Returns the image holding the final result; if it is not src the
// caller releases it to the pool.
func applyFilters(filters []Filter, src *ebiten.Image, pool *texturePool) *ebiten.Image {
	if len(filters) == 0 {
		return src
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	current := src
	var scratch *ebiten.Image
	for _, f := range filters {
		if scratch == nil || scratch == src {
			scratch = pool.Acquire(w, h)
		} else {
			scratch.Clear()
		}
		f.Apply(current, scratch)
		current, scratch = scratch, current
	}
	if scratch != nil && scratch != src {
		pool.Release(scratch)
	}
	return current
}
