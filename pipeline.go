package liquidglass

import (
	"context"
	"fmt"
	"image"
)

// DisplacementFilterConfig parameterizes the chromatic aberration filter.
// Scale and AberrationIntensity are free tuning knobs with no enforced range.
type DisplacementFilterConfig struct {
	Scale               float64 `json:"scale"`
	AberrationIntensity float64 `json:"aberration_intensity"`
	MapURL              string  `json:"map_url"`
}

// ChannelScales returns the per-channel displacement scales. The red channel
// is displaced at full scale and green and blue progressively less, which is
// what produces the color fringing.
func ChannelScales(scale, intensity float64) (r, g, b float64) {
	return scale, scale - intensity*0.05, scale - intensity*0.1
}

// MinBlurStdDev is the floor applied to the fringe blur.
const MinBlurStdDev = 0.1

// BlurStdDev returns the fringe blur standard deviation. Higher intensity
// gives a sharper fringe; the result never drops below MinBlurStdDev.
func BlurStdDev(intensity float64) float64 {
	s := 0.5 - intensity*0.1
	if !(s >= MinBlurStdDev) {
		return MinBlurStdDev
	}
	return s
}

// MaskTable returns the discrete transfer table that binarizes map intensity
// into the edge mask: dark regions get no aberration, mid tones a faint one
// and bright regions the full effect. Values are clamped to [0, 1].
func MaskTable(intensity float64) []float64 {
	return []float64{0, clamp01(intensity * 0.05), 1}
}

// ColorMatrix is a 4x5 row-major color matrix applied to straight-alpha
// colors: [R_r, R_g, R_b, R_a, R_offset, G_r, ...].
type ColorMatrix [20]float64

// Color matrices used by the pipeline.
var (
	// IntensityMatrix averages the channels into grey and carries the same
	// intensity into alpha so the mask transfer can threshold it.
	IntensityMatrix = ColorMatrix{
		0.3, 0.3, 0.3, 0, 0,
		0.3, 0.3, 0.3, 0, 0,
		0.3, 0.3, 0.3, 0, 0,
		0.3, 0.3, 0.3, 0, 0,
	}
	RedOnly = ColorMatrix{
		1, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 1, 0,
	}
	GreenOnly = ColorMatrix{
		0, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 1, 0,
	}
	BlueOnly = ColorMatrix{
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
)

// TransferType selects how a TransferFunc maps alpha.
type TransferType uint8

const (
	// TransferTable interpolates linearly between table entries.
	TransferTable TransferType = iota
	// TransferDiscrete is a step function over the table entries.
	TransferDiscrete
)

// TransferFunc is a component transfer applied to the alpha channel.
type TransferFunc struct {
	Type   TransferType
	Values []float64
}

// Eval maps an alpha value in [0, 1].
func (f TransferFunc) Eval(a float64) float64 {
	n := len(f.Values)
	if n == 0 {
		return a
	}
	a = clamp01(a)
	if f.Type == TransferDiscrete {
		k := int(a * float64(n))
		if k >= n {
			k = n - 1
		}
		return f.Values[k]
	}
	if n == 1 {
		return f.Values[0]
	}
	pos := a * float64(n-1)
	k := int(pos)
	if k >= n-1 {
		return f.Values[n-1]
	}
	return lerp(f.Values[k], f.Values[k+1], pos-float64(k))
}

// InvertAlpha maps alpha a to 1-a.
var InvertAlpha = TransferFunc{Type: TransferTable, Values: []float64{1, 0}}

// Surface is an image owned by a Backend.
type Surface interface {
	Bounds() image.Rectangle
}

// Backend performs the individual image operations of the pipeline. Every
// returned Surface is new and owned by the caller, who hands it back through
// Release. Inputs are never modified.
type Backend interface {
	// FitMap resamples a displacement map to cover a w x h region, centered
	// and cropped while preserving its aspect ratio.
	FitMap(dmap Surface, w, h int) (Surface, error)
	// ColorMatrix applies m to every pixel.
	ColorMatrix(src Surface, m ColorMatrix) (Surface, error)
	// AlphaTransfer applies fn to the alpha channel.
	AlphaTransfer(src Surface, fn TransferFunc) (Surface, error)
	// Displace samples src at P + scale*(R-0.5, B-0.5) read from dmap.
	Displace(src, dmap Surface, scale float64) (Surface, error)
	// Blend combines src and dst with a separable blend mode (BlendScreen or
	// BlendAdd).
	Blend(src, dst Surface, mode BlendMode) (Surface, error)
	// Blur applies a Gaussian blur with the given standard deviation.
	Blur(src Surface, stdDev float64) (Surface, error)
	// Composite is a Porter-Duff operation: BlendIn keeps src where dst is
	// opaque, BlendNormal draws src over dst.
	Composite(src, dst Surface, mode BlendMode) (Surface, error)
	// Release returns a surface created by this backend.
	Release(s Surface)
}

// Pass names. PassSource and PassMap are the pipeline inputs.
const (
	PassSource           = "SOURCE"
	PassMap              = "MAP"
	PassDisplacementMap  = "DISPLACEMENT_MAP"
	PassEdgeIntensity    = "EDGE_INTENSITY"
	PassEdgeMask         = "EDGE_MASK"
	PassCenterOriginal   = "CENTER_ORIGINAL"
	PassRedDisplaced     = "RED_DISPLACED"
	PassRedChannel       = "RED_CHANNEL"
	PassGreenDisplaced   = "GREEN_DISPLACED"
	PassGreenChannel     = "GREEN_CHANNEL"
	PassBlueDisplaced    = "BLUE_DISPLACED"
	PassBlueChannel      = "BLUE_CHANNEL"
	PassGBCombined       = "GB_COMBINED"
	PassRGBCombined      = "RGB_COMBINED"
	PassAberratedBlurred = "ABERRATED_BLURRED"
	PassEdgeAberration   = "EDGE_ABERRATION"
	PassInvertedMask     = "INVERTED_MASK"
	PassCenterClean      = "CENTER_CLEAN"
	PassOutput           = "OUTPUT"
)

// Pass is one named image operation with explicit inputs and a single output.
type Pass struct {
	Name   string
	Inputs []string
	Run    func(b Backend, in []Surface) (Surface, error)
}

// Pipeline is the ordered chromatic aberration pass list for one
// configuration. Build a new one whenever the configuration changes.
type Pipeline struct {
	cfg    DisplacementFilterConfig
	passes []Pass
}

// NewPipeline builds the pass list for cfg.
func NewPipeline(cfg DisplacementFilterConfig) *Pipeline {
	p := &Pipeline{cfg: cfg}
	p.passes = buildPasses(cfg)
	return p
}

// Config returns the configuration the pipeline was built from.
func (p *Pipeline) Config() DisplacementFilterConfig {
	return p.cfg
}

// Passes returns the ordered pass list. The slice MUST NOT be mutated.
func (p *Pipeline) Passes() []Pass {
	return p.passes
}

func buildPasses(cfg DisplacementFilterConfig) []Pass {
	i := cfg.AberrationIntensity
	rs, gs, bs := ChannelScales(cfg.Scale, i)
	mask := TransferFunc{Type: TransferDiscrete, Values: MaskTable(i)}
	sigma := BlurStdDev(i)

	matrix := func(m ColorMatrix) func(Backend, []Surface) (Surface, error) {
		return func(b Backend, in []Surface) (Surface, error) { return b.ColorMatrix(in[0], m) }
	}
	displace := func(scale float64) func(Backend, []Surface) (Surface, error) {
		return func(b Backend, in []Surface) (Surface, error) { return b.Displace(in[0], in[1], scale) }
	}

	return []Pass{
		{Name: PassDisplacementMap, Inputs: []string{PassMap, PassSource}, Run: func(b Backend, in []Surface) (Surface, error) {
			r := in[1].Bounds()
			return b.FitMap(in[0], r.Dx(), r.Dy())
		}},
		{Name: PassEdgeIntensity, Inputs: []string{PassDisplacementMap}, Run: matrix(IntensityMatrix)},
		{Name: PassEdgeMask, Inputs: []string{PassEdgeIntensity}, Run: func(b Backend, in []Surface) (Surface, error) {
			return b.AlphaTransfer(in[0], mask)
		}},
		{Name: PassCenterOriginal, Inputs: []string{PassSource}, Run: matrix(ColorMatrix{
			1, 0, 0, 0, 0,
			0, 1, 0, 0, 0,
			0, 0, 1, 0, 0,
			0, 0, 0, 1, 0,
		})},
		{Name: PassRedDisplaced, Inputs: []string{PassSource, PassDisplacementMap}, Run: displace(rs)},
		{Name: PassRedChannel, Inputs: []string{PassRedDisplaced}, Run: matrix(RedOnly)},
		{Name: PassGreenDisplaced, Inputs: []string{PassSource, PassDisplacementMap}, Run: displace(gs)},
		{Name: PassGreenChannel, Inputs: []string{PassGreenDisplaced}, Run: matrix(GreenOnly)},
		{Name: PassBlueDisplaced, Inputs: []string{PassSource, PassDisplacementMap}, Run: displace(bs)},
		{Name: PassBlueChannel, Inputs: []string{PassBlueDisplaced}, Run: matrix(BlueOnly)},
		{Name: PassGBCombined, Inputs: []string{PassGreenChannel, PassBlueChannel}, Run: func(b Backend, in []Surface) (Surface, error) {
			return b.Blend(in[0], in[1], BlendScreen)
		}},
		{Name: PassRGBCombined, Inputs: []string{PassRedChannel, PassGBCombined}, Run: func(b Backend, in []Surface) (Surface, error) {
			return b.Blend(in[0], in[1], BlendScreen)
		}},
		{Name: PassAberratedBlurred, Inputs: []string{PassRGBCombined}, Run: func(b Backend, in []Surface) (Surface, error) {
			return b.Blur(in[0], sigma)
		}},
		{Name: PassEdgeAberration, Inputs: []string{PassAberratedBlurred, PassEdgeMask}, Run: func(b Backend, in []Surface) (Surface, error) {
			return b.Composite(in[0], in[1], BlendIn)
		}},
		{Name: PassInvertedMask, Inputs: []string{PassEdgeMask}, Run: func(b Backend, in []Surface) (Surface, error) {
			return b.AlphaTransfer(in[0], InvertAlpha)
		}},
		{Name: PassCenterClean, Inputs: []string{PassCenterOriginal, PassInvertedMask}, Run: func(b Backend, in []Surface) (Surface, error) {
			return b.Composite(in[0], in[1], BlendIn)
		}},
		{Name: PassOutput, Inputs: []string{PassEdgeAberration, PassCenterClean}, Run: func(b Backend, in []Surface) (Surface, error) {
			return b.Composite(in[0], in[1], BlendNormal)
		}},
	}
}

// Run evaluates every pass against src and dmap. With a nil map the source is
// returned as is. Intermediate surfaces are released as soon as no later pass
// reads them. The returned surface is owned by the caller unless it is src.
func (p *Pipeline) Run(ctx context.Context, b Backend, src, dmap Surface) (Surface, error) {
	if src == nil {
		return nil, fmt.Errorf("run pipeline: nil source")
	}
	if dmap == nil {
		return src, nil
	}
	if r := src.Bounds(); r.Dx() <= 0 || r.Dy() <= 0 {
		return src, nil
	}

	lastUse := make(map[string]int, len(p.passes))
	for i, ps := range p.passes {
		for _, in := range ps.Inputs {
			lastUse[in] = i
		}
	}

	results := map[string]Surface{PassSource: src, PassMap: dmap}
	release := func(name string) {
		if name == PassSource || name == PassMap {
			return
		}
		if s, ok := results[name]; ok {
			b.Release(s)
			delete(results, name)
		}
	}
	fail := func(err error) (Surface, error) {
		for name := range results {
			release(name)
		}
		return nil, err
	}

	in := make([]Surface, 0, 2)
	var out Surface
	for i, ps := range p.passes {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("pass %s: %w", ps.Name, err))
		}
		in = in[:0]
		for _, name := range ps.Inputs {
			s, ok := results[name]
			if !ok {
				return fail(fmt.Errorf("pass %s: missing input %s", ps.Name, name))
			}
			in = append(in, s)
		}
		res, err := ps.Run(b, in)
		if err != nil {
			return fail(fmt.Errorf("pass %s: %w", ps.Name, err))
		}
		results[ps.Name] = res
		out = res
		for _, name := range ps.Inputs {
			if lastUse[name] == i {
				release(name)
			}
		}
	}
	last := p.passes[len(p.passes)-1].Name
	delete(results, last)
	for name := range results {
		release(name)
	}
	return out, nil
}
