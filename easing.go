package liquidglass

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Bezier is a CSS-style cubic-bezier timing curve through (0,0), (X1,Y1),
// (X2,Y2), (1,1).
type Bezier struct {
	X1, Y1, X2, Y2 float64
}

// Timing curves used by the widget.
var (
	// BezierRipple drives the liquid ripple growth and fade.
	BezierRipple = Bezier{0.25, 0.46, 0.45, 0.94}
	// BezierTilt is the return-to-rest curve of the tilt card.
	BezierTilt = Bezier{0.03, 0.98, 0.52, 0.99}
	// BezierGlass is the elastic translation curve of glass panels.
	BezierGlass = Bezier{0.23, 1, 0.32, 1}
	// BezierEaseOut matches the CSS "ease-out" keyword.
	BezierEaseOut = Bezier{0, 0, 0.58, 1}
)

func (b Bezier) sampleX(s float64) float64 {
	u := 1 - s
	return 3*u*u*s*b.X1 + 3*u*s*s*b.X2 + s*s*s
}

func (b Bezier) sampleY(s float64) float64 {
	u := 1 - s
	return 3*u*u*s*b.Y1 + 3*u*s*s*b.Y2 + s*s*s
}

func (b Bezier) slopeX(s float64) float64 {
	u := 1 - s
	return 3*u*u*b.X1 + 6*u*s*(b.X2-b.X1) + 3*s*s*(1-b.X2)
}

// At returns the eased progress for linear progress x in [0, 1].
func (b Bezier) At(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	// Newton-Raphson on x(s) = x, falling back to bisection when the slope
	// flattens out.
	s := x
	for i := 0; i < 8; i++ {
		dx := b.sampleX(s) - x
		if math.Abs(dx) < 1e-7 {
			return b.sampleY(s)
		}
		d := b.slopeX(s)
		if math.Abs(d) < 1e-6 {
			break
		}
		s -= dx / d
	}

	lo, hi := 0.0, 1.0
	s = x
	for i := 0; i < 32; i++ {
		sx := b.sampleX(s)
		if math.Abs(sx-x) < 1e-7 {
			break
		}
		if sx < x {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return b.sampleY(s)
}

// TweenFunc returns the curve in gween's easing signature so it can drive a
// gween.Tween directly.
func (b Bezier) TweenFunc() ease.TweenFunc {
	return func(t, begin, change, duration float32) float32 {
		if duration <= 0 {
			return begin + change
		}
		return begin + change*float32(b.At(float64(t/duration)))
	}
}

// Keyframes interpolates through Values at evenly spaced times (or at Times
// when set), applying Ease to every segment independently.
type Keyframes struct {
	Values []float64
	Times  []float64
	Ease   ease.TweenFunc
}

// At samples the track at linear progress p in [0, 1].
func (k Keyframes) At(p float64) float64 {
	n := len(k.Values)
	switch n {
	case 0:
		return 0
	case 1:
		return k.Values[0]
	}
	p = clamp01(p)

	seg := n - 2
	for i := 0; i < n-1; i++ {
		if p <= k.time(i+1) {
			seg = i
			break
		}
	}
	t0, t1 := k.time(seg), k.time(seg+1)
	local := 1.0
	if t1 > t0 {
		local = (p - t0) / (t1 - t0)
	}
	if k.Ease != nil {
		local = float64(k.Ease(float32(local), 0, 1, 1))
	}
	return lerp(k.Values[seg], k.Values[seg+1], local)
}

func (k Keyframes) time(i int) float64 {
	if len(k.Times) == len(k.Values) {
		return k.Times[i]
	}
	return float64(i) / float64(len(k.Values)-1)
}
