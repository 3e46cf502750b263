package liquidglass

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenBackend runs the pipeline on the GPU with Kage shaders. Surfaces are
// *ebiten.Image values; intermediates come from an internal pool.
type EbitenBackend struct {
	pool texturePool

	matrixF32   [20]float32
	transferF32 [maxTransferValues]float32
	kernelF32   [2*maxBlurRadius + 1]float32
	dirF32      [2]float32
	uniforms    map[string]any
	shaderOp    ebiten.DrawRectShaderOptions
	imgOp       ebiten.DrawImageOptions
}

// NewEbitenBackend creates a GPU backend.
func NewEbitenBackend() *EbitenBackend {
	return &EbitenBackend{uniforms: make(map[string]any, 4)}
}

// Live returns the number of pooled surfaces handed out and not yet released.
func (e *EbitenBackend) Live() int {
	return e.pool.Live()
}

// Dispose deallocates pooled GPU memory.
func (e *EbitenBackend) Dispose() {
	e.pool.Dispose()
}

func asEbiten(s Surface) (*ebiten.Image, error) {
	img, ok := s.(*ebiten.Image)
	if !ok {
		return nil, fmt.Errorf("ebiten backend: unsupported surface %T", s)
	}
	return img, nil
}

func (e *EbitenBackend) resetUniforms() map[string]any {
	clear(e.uniforms)
	return e.uniforms
}

func (e *EbitenBackend) shade(shader *ebiten.Shader, srcs ...*ebiten.Image) *ebiten.Image {
	b := srcs[0].Bounds()
	dst := e.pool.Acquire(b.Dx(), b.Dy())
	e.shaderOp.Images = [4]*ebiten.Image{}
	copy(e.shaderOp.Images[:], srcs)
	e.shaderOp.Uniforms = e.uniforms
	e.shaderOp.Blend = ebiten.BlendSourceOver
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &e.shaderOp)
	return dst
}

// FitMap implements Backend.
func (e *EbitenBackend) FitMap(dmap Surface, w, h int) (Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("fit map to %dx%d: %w", w, h, ErrUnmeasured)
	}
	src, err := asEbiten(dmap)
	if err != nil {
		return nil, err
	}
	if src.Bounds().Empty() {
		return nil, ErrNoMap
	}
	r := CoverRect(src.Bounds(), w, h)
	sub := src.SubImage(r).(*ebiten.Image)
	dst := e.pool.Acquire(w, h)
	op := &e.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.GeoM.Scale(float64(w)/float64(r.Dx()), float64(h)/float64(r.Dy()))
	op.Filter = ebiten.FilterLinear
	op.Blend = ebiten.BlendCopy
	dst.DrawImage(sub, op)
	return dst, nil
}

// ColorMatrix implements Backend.
func (e *EbitenBackend) ColorMatrix(src Surface, m ColorMatrix) (Surface, error) {
	img, err := asEbiten(src)
	if err != nil {
		return nil, err
	}
	for i, v := range m {
		e.matrixF32[i] = float32(v)
	}
	u := e.resetUniforms()
	u["Matrix"] = e.matrixF32[:]
	return e.shade(ensureColorMatrixShader(), img), nil
}

// AlphaTransfer implements Backend.
func (e *EbitenBackend) AlphaTransfer(src Surface, fn TransferFunc) (Surface, error) {
	img, err := asEbiten(src)
	if err != nil {
		return nil, err
	}
	if len(fn.Values) > maxTransferValues {
		return nil, fmt.Errorf("alpha transfer: %d table values, max %d", len(fn.Values), maxTransferValues)
	}
	e.transferF32 = [maxTransferValues]float32{}
	for i, v := range fn.Values {
		e.transferF32[i] = float32(v)
	}
	discrete := float32(0)
	if fn.Type == TransferDiscrete {
		discrete = 1
	}
	u := e.resetUniforms()
	u["Values"] = e.transferF32[:]
	u["Count"] = float32(len(fn.Values))
	u["Discrete"] = discrete
	return e.shade(ensureAlphaTransferShader(), img), nil
}

// Displace implements Backend.
func (e *EbitenBackend) Displace(src, dmap Surface, scale float64) (Surface, error) {
	img, err := asEbiten(src)
	if err != nil {
		return nil, err
	}
	m, err := asEbiten(dmap)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Size() != m.Bounds().Size() {
		return nil, fmt.Errorf("displace: source %v and map %v differ in size", img.Bounds().Size(), m.Bounds().Size())
	}
	u := e.resetUniforms()
	u["Scale"] = float32(scale)
	return e.shade(ensureDisplaceShader(), img, m), nil
}

func (e *EbitenBackend) layer(src, dst Surface, blend ebiten.Blend) (Surface, error) {
	s, err := asEbiten(src)
	if err != nil {
		return nil, err
	}
	d, err := asEbiten(dst)
	if err != nil {
		return nil, err
	}
	b := d.Bounds()
	out := e.pool.Acquire(b.Dx(), b.Dy())
	op := &e.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Filter = ebiten.FilterNearest
	op.Blend = ebiten.BlendCopy
	out.DrawImage(d, op)
	op.Blend = blend
	out.DrawImage(s, op)
	return out, nil
}

// Blend implements Backend.
func (e *EbitenBackend) Blend(src, dst Surface, mode BlendMode) (Surface, error) {
	if mode != BlendScreen && mode != BlendAdd {
		return nil, fmt.Errorf("blend %s: unsupported mode", mode)
	}
	return e.layer(src, dst, mode.EbitenBlend())
}

// Composite implements Backend.
func (e *EbitenBackend) Composite(src, dst Surface, mode BlendMode) (Surface, error) {
	if mode != BlendIn && mode != BlendNormal {
		return nil, fmt.Errorf("composite %s: unsupported mode", mode)
	}
	return e.layer(src, dst, mode.EbitenBlend())
}

// Blur implements Backend with two Gaussian shader passes. The kernel radius
// is capped at 12 pixels.
func (e *EbitenBackend) Blur(src Surface, stdDev float64) (Surface, error) {
	img, err := asEbiten(src)
	if err != nil {
		return nil, err
	}
	k := GaussianKernel(stdDev)
	radius := len(k) / 2
	if radius > maxBlurRadius {
		k = k[radius-maxBlurRadius : radius+maxBlurRadius+1]
		var sum float32
		for _, v := range k {
			sum += v
		}
		for i := range k {
			k[i] /= sum
		}
		radius = maxBlurRadius
	}
	e.kernelF32 = [2*maxBlurRadius + 1]float32{}
	copy(e.kernelF32[maxBlurRadius-radius:], k)

	u := e.resetUniforms()
	u["Kernel"] = e.kernelF32[:]
	u["Radius"] = float32(radius)
	e.dirF32 = [2]float32{1, 0}
	u["Direction"] = e.dirF32[:]
	tmp := e.shade(ensureGaussianShader(), img)

	e.dirF32 = [2]float32{0, 1}
	out := e.shade(ensureGaussianShader(), tmp)
	e.pool.Release(tmp)
	return out, nil
}

// Release implements Backend.
func (e *EbitenBackend) Release(s Surface) {
	if img, ok := s.(*ebiten.Image); ok {
		e.pool.Release(img)
	}
}

// NewImageSurface uploads a decoded image for use with the GPU backend.
func NewImageSurface(img image.Image) *ebiten.Image {
	return ebiten.NewImageFromImage(img)
}
