package liquidglass

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Renderer is the injectable render step. It reads a Frame and never mutates
// widget state.
type Renderer interface {
	Draw(dst *ebiten.Image, f *Frame)
}

// Draw renders the current frame with the configured Renderer.
func (w *Widget) Draw(dst *ebiten.Image) {
	if w.renderer == nil {
		return
	}
	f := w.Frame()
	w.renderer.Draw(dst, &f)
}

// Render tuning.
const (
	// LayerLift is the virtual height of depth 1 above the card, in pixels.
	LayerLift = 40.0
	// cardGrid is the mesh resolution used to approximate perspective.
	cardGrid = 8
	// liquidAlpha is the opacity of the goo ripple layer over the image.
	liquidAlpha = 0.35
)

// Prompt pill layout.
const (
	promptText     = "Tap to enable 3D tilt"
	promptFontSize = 14.0
	promptPadX     = 14.0
	promptPadY     = 7.0
	promptMargin   = 16.0
)

// loadPromptFace parses the bundled Go Regular font at size.
func loadPromptFace(size float64) (*text.GoTextFace, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("parse prompt font: %w", err)
	}
	return &text.GoTextFace{Source: src, Size: size}, nil
}

// EbitenRenderer draws a Frame as a faux-3D card: the cover-fitted image run
// through the chromatic filter, the gooey ripple layer, the drifting orbs and
// an optional permission prompt, projected through the tilt transform.
type EbitenRenderer struct {
	pool   texturePool
	chroma *ChromaticFilter
	liquid []Filter
	blur   *BlurFilter

	srcImg image.Image
	srcTex *ebiten.Image
	mapImg image.Image
	mapTex *ebiten.Image
	brush  *ebiten.Image
	white  *ebiten.Image
	face   *text.GoTextFace

	verts []ebiten.Vertex
	inds  []uint16
	imgOp  ebiten.DrawImageOptions
	triOp  ebiten.DrawTrianglesOptions
	textOp text.DrawOptions
}

// NewEbitenRenderer creates a renderer. Textures are uploaded lazily on the
// first Draw.
func NewEbitenRenderer() *EbitenRenderer {
	r := &EbitenRenderer{
		chroma: NewChromaticFilter(DisplacementFilterConfig{}, nil),
		blur:   NewBlurFilter(0),
	}
	r.liquid = []Filter{r.blur, NewGooFilter()}
	face, err := loadPromptFace(promptFontSize)
	if err != nil {
		Logger().Warn("prompt font unavailable, using debug text", "err", err)
	}
	r.face = face
	return r
}

func (r *EbitenRenderer) ensureTextures(f *Frame) {
	if r.brush == nil {
		r.brush = NewImageSurface(GenerateBrush(BrushSize))
		r.white = ebiten.NewImage(1, 1)
		r.white.Fill(color.White)
	}
	if f.Image != r.srcImg {
		if r.srcTex != nil {
			r.srcTex.Deallocate()
			r.srcTex = nil
		}
		r.srcImg = f.Image
		if f.Image != nil {
			r.srcTex = NewImageSurface(f.Image)
		}
	}
	if f.Map != r.mapImg {
		if r.mapTex != nil {
			r.mapTex.Deallocate()
			r.mapTex = nil
		}
		r.mapImg = f.Map
		if f.Map != nil {
			r.mapTex = NewImageSurface(f.Map)
		}
	}
	r.chroma.Map = r.mapTex
	r.chroma.SetConfig(f.Filter)
	r.blur.Radius = max(int(math.Round(f.Blur)), 0)
}

// Draw implements Renderer.
func (r *EbitenRenderer) Draw(dst *ebiten.Image, f *Frame) {
	if !f.Bounds.Measured() {
		return
	}
	r.ensureTextures(f)
	w := int(math.Ceil(f.Bounds.Width))
	h := int(math.Ceil(f.Bounds.Height))

	card := r.pool.Acquire(w, h)
	r.drawBase(card, f)
	if r.mapTex != nil {
		filtered := r.pool.Acquire(w, h)
		r.chroma.Apply(card, filtered)
		r.pool.Release(card)
		card = filtered
	}
	r.drawLiquid(card, f)
	r.drawOrbs(card, f)
	r.drawCard(dst, card, f)
	r.pool.Release(card)

	if f.PromptVisible {
		r.drawPrompt(dst, f)
	}
}

func (r *EbitenRenderer) layerShift(f *Frame, name string) Vec2 {
	for _, l := range f.Layers {
		if l.Layer.Name == name {
			return l.Transform.ParallaxShift(LayerLift)
		}
	}
	return Vec2{}
}

func (r *EbitenRenderer) drawBase(card *ebiten.Image, f *Frame) {
	op := &r.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterLinear
	if r.srcTex == nil {
		op.GeoM.Scale(f.Bounds.Width, f.Bounds.Height)
		op.ColorScale.Scale(0.2, 0.22, 0.26, 1)
		card.DrawImage(r.white, op)
		return
	}
	b := r.srcTex.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	s := math.Max(f.Bounds.Width/iw, f.Bounds.Height/ih)
	shift := r.layerShift(f, LayerBase)
	op.GeoM.Translate(-iw/2, -ih/2)
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(f.Bounds.Width/2+shift.X, f.Bounds.Height/2+shift.Y)
	card.DrawImage(r.srcTex, op)
}

func (r *EbitenRenderer) drawLiquid(card *ebiten.Image, f *Frame) {
	w, h := card.Bounds().Dx(), card.Bounds().Dy()
	op := &r.imgOp
	if f.Touching {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Scale(float64(w), float64(h))
		op.ColorScale.Scale(0.5, 0.7, 1, 1)
		op.ColorScale.ScaleAlpha(0.08)
		card.DrawImage(r.white, op)
	}
	if len(f.Ripples) == 0 {
		return
	}

	// Ripples near the edge bleed into the padding so the blur does not
	// clip them against the layer border.
	pad := r.liquidPadding()
	layer := r.pool.Acquire(w+2*pad, h+2*pad)
	shift := r.layerShift(f, LayerLiquid)
	shift.X += float64(pad)
	shift.Y += float64(pad)
	for _, rs := range f.Ripples {
		if rs.Diameter <= 0 || rs.Opacity <= 0 {
			continue
		}
		s := rs.Diameter / BrushSize
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Scale(s, s)
		op.GeoM.Translate(rs.Center.X-rs.Diameter/2+shift.X, rs.Center.Y-rs.Diameter/2+shift.Y)
		op.ColorScale.ScaleAlpha(float32(rs.Opacity))
		layer.DrawImage(r.brush, op)
	}
	out := applyFilters(r.liquid, layer, &r.pool)

	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.GeoM.Translate(-float64(pad), -float64(pad))
	op.ColorScale.ScaleAlpha(liquidAlpha)
	card.DrawImage(out, op)
	if out != layer {
		r.pool.Release(out)
	}
	r.pool.Release(layer)
}

// liquidPadding returns the margin the goo filter chain needs around the
// ripple layer.
func (r *EbitenRenderer) liquidPadding() int {
	return filterChainPadding(r.liquid)
}

func (r *EbitenRenderer) drawOrbs(card *ebiten.Image, f *Frame) {
	w := f.Bounds.Width
	shift := r.layerShift(f, LayerFloating)
	op := &r.imgOp
	for _, o := range f.Orbs {
		d := 2 * o.Radius / 100 * w
		if d <= 0 {
			continue
		}
		c := PixelOffset(o.Center, f.Bounds.Width, f.Bounds.Height)
		s := d / BrushSize
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Scale(s, s)
		op.GeoM.Translate(c.X-d/2+shift.X, c.Y-d/2+shift.Y)
		op.ColorScale.Scale(float32(o.Color.R), float32(o.Color.G), float32(o.Color.B), 1)
		op.ColorScale.ScaleAlpha(float32(o.Color.A))
		card.DrawImage(r.brush, op)
	}
}

// drawCard projects the card texture through the container transform as a
// grid mesh so the perspective foreshortening is visible.
func (r *EbitenRenderer) drawCard(dst, card *ebiten.Image, f *Frame) {
	t := f.Container
	t.Scale *= f.EntranceScale
	w, h := f.Bounds.Width, f.Bounds.Height
	cx, cy := f.Bounds.X+w/2, f.Bounds.Y+h/2
	a := float32(clamp01(f.Opacity))

	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	const n = cardGrid
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			u, v := float64(i)/n, float64(j)/n
			p := t.ProjectPoint(Vec2{u*w - w/2, v*h - h/2}, f.Perspective)
			r.verts = append(r.verts, ebiten.Vertex{
				DstX:   float32(cx + p.X),
				DstY:   float32(cy + p.Y),
				SrcX:   float32(u * w),
				SrcY:   float32(v * h),
				ColorR: a,
				ColorG: a,
				ColorB: a,
				ColorA: a,
			})
		}
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			k := uint16(j*(n+1) + i)
			r.inds = append(r.inds, k, k+1, k+n+1, k+1, k+n+2, k+n+1)
		}
	}
	r.triOp.Filter = ebiten.FilterLinear
	r.triOp.Blend = ebiten.BlendSourceOver
	dst.DrawTriangles(r.verts, r.inds, card, &r.triOp)
}

func (r *EbitenRenderer) drawPrompt(dst *ebiten.Image, f *Frame) {
	tw, th := 6.0*float64(len(promptText)), 16.0
	var lh float64
	if r.face != nil {
		m := r.face.Metrics()
		lh = m.HAscent + m.HDescent + m.HLineGap
		tw, th = text.Measure(promptText, r.face, lh)
	}
	pw, ph := tw+2*promptPadX, th+2*promptPadY
	x := f.Bounds.X + (f.Bounds.Width-pw)/2
	y := f.Bounds.Y + f.Bounds.Height - ph - promptMargin

	op := &r.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.GeoM.Scale(pw, ph)
	op.GeoM.Translate(x, y)
	op.ColorScale.Scale(0, 0, 0, 1)
	op.ColorScale.ScaleAlpha(0.55)
	dst.DrawImage(r.white, op)

	if r.face == nil {
		ebitenutil.DebugPrintAt(dst, promptText, int(x+promptPadX), int(y+promptPadY))
		return
	}
	top := &r.textOp
	top.GeoM.Reset()
	top.ColorScale.Reset()
	top.LineSpacing = lh
	top.GeoM.Translate(x+promptPadX, y+promptPadY)
	top.ColorScale.ScaleWithColor(color.White)
	text.Draw(dst, promptText, r.face, top)
}

// Dispose frees every GPU resource held by the renderer.
func (r *EbitenRenderer) Dispose() {
	r.pool.Dispose()
	r.chroma.Dispose()
	r.blur.Dispose()
	for _, img := range []*ebiten.Image{r.srcTex, r.mapTex, r.brush, r.white} {
		if img != nil {
			img.Deallocate()
		}
	}
	r.srcTex, r.mapTex, r.brush, r.white = nil, nil, nil, nil
	r.srcImg, r.mapImg = nil, nil
}
