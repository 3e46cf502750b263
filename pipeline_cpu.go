package liquidglass

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Buffer is a premultiplied RGBA float image used by the CPU backend.
// Pixel (x, y) starts at Pix[(y*W+x)*4].
type Buffer struct {
	W, H int
	Pix  []float32
}

// NewBuffer allocates a transparent w x h buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]float32, w*h*4)}
}

// Bounds implements Surface.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.W, b.H)
}

// At returns the premultiplied color at (x, y), or transparent black outside
// the buffer.
func (b *Buffer) At(x, y int) (r, g, bl, a float32) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return 0, 0, 0, 0
	}
	i := (y*b.W + x) * 4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// BufferFromImage converts any image into a buffer with its origin at 0,0.
func BufferFromImage(img image.Image) *Buffer {
	r := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(rgba, rgba.Rect, img, r.Min, draw.Src)
	}
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	b := NewBuffer(w, h)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		for i, v := range row {
			b.Pix[y*w*4+i] = float32(v) / 255
		}
	}
	return b
}

// Image converts the buffer to a straight-alpha NRGBA image.
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	for i := 0; i < len(b.Pix); i += 4 {
		r, g, bl, a := b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
		if a > 0 {
			r, g, bl = r/a, g/a, bl/a
		}
		img.Pix[i] = to8(r)
		img.Pix[i+1] = to8(g)
		img.Pix[i+2] = to8(bl)
		img.Pix[i+3] = to8(a)
	}
	return img
}

// rgba converts the buffer to a premultiplied RGBA image for resampling.
func (b *Buffer) rgba() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	for i, v := range b.Pix {
		img.Pix[i] = to8(v)
	}
	return img
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func unpremultiply(r, g, b, a float32) (float32, float32, float32) {
	if a <= 0 {
		return 0, 0, 0
	}
	return r / a, g / a, b / a
}

func clampF(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CPUBackend runs the pipeline on the CPU with float buffers. It accepts
// *Buffer surfaces and any image.Image as input.
type CPUBackend struct{}

// NewCPUBackend creates a CPU backend.
func NewCPUBackend() *CPUBackend {
	return &CPUBackend{}
}

// Filter runs p on straight images and returns the result as NRGBA. A nil map
// yields a copy of the source.
func (c *CPUBackend) Filter(ctx context.Context, p *Pipeline, src, dmap image.Image) (*image.NRGBA, error) {
	sb := BufferFromImage(src)
	var ms Surface
	if dmap != nil {
		ms = BufferFromImage(dmap)
	}
	out, err := p.Run(ctx, c, sb, ms)
	if err != nil {
		return nil, err
	}
	ob, err := c.buffer(out)
	if err != nil {
		return nil, err
	}
	return ob.Image(), nil
}

func (c *CPUBackend) buffer(s Surface) (*Buffer, error) {
	switch v := s.(type) {
	case *Buffer:
		return v, nil
	case image.Image:
		return BufferFromImage(v), nil
	default:
		return nil, fmt.Errorf("cpu backend: unsupported surface %T", s)
	}
}

func (c *CPUBackend) buffers(a, b Surface) (*Buffer, *Buffer, error) {
	ab, err := c.buffer(a)
	if err != nil {
		return nil, nil, err
	}
	bb, err := c.buffer(b)
	if err != nil {
		return nil, nil, err
	}
	if ab.W != bb.W || ab.H != bb.H {
		return nil, nil, fmt.Errorf("cpu backend: size mismatch %dx%d vs %dx%d", ab.W, ab.H, bb.W, bb.H)
	}
	return ab, bb, nil
}

// CoverRect returns the centered region of a src-sized image that, scaled
// uniformly, exactly covers a w x h target.
func CoverRect(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	if sw <= 0 || sh <= 0 || w <= 0 || h <= 0 {
		return src
	}
	scale := math.Max(float64(w)/sw, float64(h)/sh)
	cw := math.Min(sw, float64(w)/scale)
	ch := math.Min(sh, float64(h)/scale)
	x0 := src.Min.X + int(math.Round((sw-cw)/2))
	y0 := src.Min.Y + int(math.Round((sh-ch)/2))
	return image.Rect(x0, y0, x0+int(math.Round(cw)), y0+int(math.Round(ch)))
}

// FitMap implements Backend using bilinear resampling.
func (c *CPUBackend) FitMap(dmap Surface, w, h int) (Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("fit map to %dx%d: %w", w, h, ErrUnmeasured)
	}
	var src image.Image
	switch v := dmap.(type) {
	case *Buffer:
		src = v.rgba()
	case image.Image:
		src = v
	default:
		return nil, fmt.Errorf("cpu backend: unsupported surface %T", dmap)
	}
	if src.Bounds().Empty() {
		return nil, ErrNoMap
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, CoverRect(src.Bounds(), w, h), draw.Src, nil)
	return BufferFromImage(dst), nil
}

// ColorMatrix implements Backend.
func (c *CPUBackend) ColorMatrix(src Surface, m ColorMatrix) (Surface, error) {
	sb, err := c.buffer(src)
	if err != nil {
		return nil, err
	}
	var mf [20]float32
	for i, v := range m {
		mf[i] = float32(v)
	}
	out := NewBuffer(sb.W, sb.H)
	for i := 0; i < len(sb.Pix); i += 4 {
		a := sb.Pix[i+3]
		r, g, b := unpremultiply(sb.Pix[i], sb.Pix[i+1], sb.Pix[i+2], a)
		nr := clampF(mf[0]*r + mf[1]*g + mf[2]*b + mf[3]*a + mf[4])
		ng := clampF(mf[5]*r + mf[6]*g + mf[7]*b + mf[8]*a + mf[9])
		nb := clampF(mf[10]*r + mf[11]*g + mf[12]*b + mf[13]*a + mf[14])
		na := clampF(mf[15]*r + mf[16]*g + mf[17]*b + mf[18]*a + mf[19])
		out.Pix[i] = nr * na
		out.Pix[i+1] = ng * na
		out.Pix[i+2] = nb * na
		out.Pix[i+3] = na
	}
	return out, nil
}

// AlphaTransfer implements Backend.
func (c *CPUBackend) AlphaTransfer(src Surface, fn TransferFunc) (Surface, error) {
	sb, err := c.buffer(src)
	if err != nil {
		return nil, err
	}
	out := NewBuffer(sb.W, sb.H)
	for i := 0; i < len(sb.Pix); i += 4 {
		a := sb.Pix[i+3]
		r, g, b := unpremultiply(sb.Pix[i], sb.Pix[i+1], sb.Pix[i+2], a)
		na := float32(fn.Eval(float64(a)))
		out.Pix[i] = r * na
		out.Pix[i+1] = g * na
		out.Pix[i+2] = b * na
		out.Pix[i+3] = na
	}
	return out, nil
}

// Displace implements Backend. Samples falling outside src are transparent.
func (c *CPUBackend) Displace(src, dmap Surface, scale float64) (Surface, error) {
	sb, mb, err := c.buffers(src, dmap)
	if err != nil {
		return nil, err
	}
	out := NewBuffer(sb.W, sb.H)
	s := float32(scale)
	for y := 0; y < sb.H; y++ {
		for x := 0; x < sb.W; x++ {
			i := (y*sb.W + x) * 4
			mr, _, mbl := unpremultiply(mb.Pix[i], mb.Pix[i+1], mb.Pix[i+2], mb.Pix[i+3])
			sx := int(math.Floor(float64(float32(x) + 0.5 + s*(mr-0.5))))
			sy := int(math.Floor(float64(float32(y) + 0.5 + s*(mbl-0.5))))
			r, g, b, a := sb.At(sx, sy)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = r, g, b, a
		}
	}
	return out, nil
}

// Blend implements Backend.
func (c *CPUBackend) Blend(src, dst Surface, mode BlendMode) (Surface, error) {
	sb, db, err := c.buffers(src, dst)
	if err != nil {
		return nil, err
	}
	out := NewBuffer(sb.W, sb.H)
	switch mode {
	case BlendScreen:
		for i := range sb.Pix {
			s, d := sb.Pix[i], db.Pix[i]
			out.Pix[i] = s + d - s*d
		}
	case BlendAdd:
		for i := range sb.Pix {
			out.Pix[i] = clampF(sb.Pix[i] + db.Pix[i])
		}
	default:
		return nil, fmt.Errorf("blend %s: unsupported mode", mode)
	}
	return out, nil
}

// Composite implements Backend.
func (c *CPUBackend) Composite(src, dst Surface, mode BlendMode) (Surface, error) {
	sb, db, err := c.buffers(src, dst)
	if err != nil {
		return nil, err
	}
	out := NewBuffer(sb.W, sb.H)
	switch mode {
	case BlendIn:
		for i := 0; i < len(sb.Pix); i += 4 {
			da := db.Pix[i+3]
			out.Pix[i] = sb.Pix[i] * da
			out.Pix[i+1] = sb.Pix[i+1] * da
			out.Pix[i+2] = sb.Pix[i+2] * da
			out.Pix[i+3] = sb.Pix[i+3] * da
		}
	case BlendNormal:
		for i := 0; i < len(sb.Pix); i += 4 {
			k := 1 - sb.Pix[i+3]
			out.Pix[i] = sb.Pix[i] + db.Pix[i]*k
			out.Pix[i+1] = sb.Pix[i+1] + db.Pix[i+1]*k
			out.Pix[i+2] = sb.Pix[i+2] + db.Pix[i+2]*k
			out.Pix[i+3] = sb.Pix[i+3] + db.Pix[i+3]*k
		}
	default:
		return nil, fmt.Errorf("composite %s: unsupported mode", mode)
	}
	return out, nil
}

// GaussianKernel returns a normalized 1D kernel of size 2*ceil(3σ)+1.
func GaussianKernel(stdDev float64) []float32 {
	if stdDev < MinBlurStdDev {
		stdDev = MinBlurStdDev
	}
	radius := int(math.Ceil(stdDev * 3))
	k := make([]float32, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * stdDev * stdDev))
		k[i+radius] = float32(v)
		sum += v
	}
	for i := range k {
		k[i] /= float32(sum)
	}
	return k
}

// Blur implements Backend with a separable Gaussian. Pixels outside the
// buffer count as transparent.
func (c *CPUBackend) Blur(src Surface, stdDev float64) (Surface, error) {
	sb, err := c.buffer(src)
	if err != nil {
		return nil, err
	}
	k := GaussianKernel(stdDev)
	radius := len(k) / 2
	tmp := NewBuffer(sb.W, sb.H)
	for y := 0; y < sb.H; y++ {
		for x := 0; x < sb.W; x++ {
			var acc [4]float32
			for j, w := range k {
				sx := x + j - radius
				if sx < 0 || sx >= sb.W {
					continue
				}
				si := (y*sb.W + sx) * 4
				acc[0] += sb.Pix[si] * w
				acc[1] += sb.Pix[si+1] * w
				acc[2] += sb.Pix[si+2] * w
				acc[3] += sb.Pix[si+3] * w
			}
			copy(tmp.Pix[(y*sb.W+x)*4:], acc[:])
		}
	}
	out := NewBuffer(sb.W, sb.H)
	for y := 0; y < sb.H; y++ {
		for x := 0; x < sb.W; x++ {
			var acc [4]float32
			for j, w := range k {
				sy := y + j - radius
				if sy < 0 || sy >= sb.H {
					continue
				}
				si := (sy*sb.W + x) * 4
				acc[0] += tmp.Pix[si] * w
				acc[1] += tmp.Pix[si+1] * w
				acc[2] += tmp.Pix[si+2] * w
				acc[3] += tmp.Pix[si+3] * w
			}
			copy(out.Pix[(y*sb.W+x)*4:], acc[:])
		}
	}
	return out, nil
}

// Release implements Backend. Buffers are garbage collected.
func (c *CPUBackend) Release(Surface) {}

// Solid returns a w x h image filled with col. Useful for flat maps.
func Solid(w, h int, col color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, image.NewUniform(col), image.Point{}, draw.Src)
	return img
}
