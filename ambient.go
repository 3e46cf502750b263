package liquidglass

import (
	"time"

	"github.com/ojrac/opensimplex-go"
	"github.com/tanema/gween"
)

// In-view entrance defaults.
const (
	DefaultInViewThreshold = 0.3
	InViewDuration         = 600 * time.Millisecond
	outOfViewOpacity       = 0.9
	outOfViewScale         = 0.95
)

// InView tracks whether the widget is sufficiently inside the viewport and
// animates the entrance fade and scale. It gates ambient animation only;
// ripples keep running regardless.
type InView struct {
	threshold float64
	visible   bool
	opacity   float64
	scale     float64
	opTween   *gween.Tween
	scTween   *gween.Tween
}

// NewInView creates a tracker that starts out of view.
func NewInView(threshold float64) *InView {
	if !(threshold > 0 && threshold <= 1) {
		threshold = DefaultInViewThreshold
	}
	return &InView{threshold: threshold, opacity: outOfViewOpacity, scale: outOfViewScale}
}

// Threshold returns the visible fraction required to count as in view.
func (v *InView) Threshold() float64 {
	return v.threshold
}

// SetRatio records the fraction of the widget inside the viewport and returns
// true when visibility flipped.
func (v *InView) SetRatio(ratio float64) bool {
	if !finite(ratio) {
		return false
	}
	visible := ratio >= v.threshold
	if visible == v.visible {
		return false
	}
	v.visible = visible
	op, sc := outOfViewOpacity, outOfViewScale
	if visible {
		op, sc = 1, 1
	}
	d := float32(InViewDuration.Seconds())
	ease := BezierEaseOut.TweenFunc()
	v.opTween = gween.New(float32(v.opacity), float32(op), d, ease)
	v.scTween = gween.New(float32(v.scale), float32(sc), d, ease)
	return true
}

// Visible reports whether the widget is in view.
func (v *InView) Visible() bool {
	return v.visible
}

// Opacity returns the current entrance opacity.
func (v *InView) Opacity() float64 {
	return v.opacity
}

// Scale returns the current entrance scale.
func (v *InView) Scale() float64 {
	return v.scale
}

// Update advances the entrance animation by dt seconds.
func (v *InView) Update(dt float64) {
	if v.opTween != nil {
		val, done := v.opTween.Update(float32(dt))
		v.opacity = float64(val)
		if done {
			v.opTween = nil
		}
	}
	if v.scTween != nil {
		val, done := v.scTween.Update(float32(dt))
		v.scale = float64(val)
		if done {
			v.scTween = nil
		}
	}
}

// Orb is a floating decorative element on the foreground layer. Center and
// Radius are percentages of the container width.
type Orb struct {
	Center Vec2
	Radius float64
	Color  Color
}

// DefaultOrbs returns the three soft highlights drawn over the image.
func DefaultOrbs() []Orb {
	return []Orb{
		{Center: Vec2{20, 25}, Radius: 12, Color: Color{1, 1, 1, 0.25}},
		{Center: Vec2{78, 35}, Radius: 8, Color: Color{0.6, 0.8, 1, 0.2}},
		{Center: Vec2{60, 80}, Radius: 10, Color: Color{1, 0.75, 0.9, 0.2}},
	}
}

// Ambient drifts the orbs along smooth noise paths while the widget is in
// view.
type Ambient struct {
	// Amplitude is the maximum drift in percent of the container.
	Amplitude float64
	// Speed is the noise frequency in cycles per second.
	Speed float64

	noise opensimplex.Noise
	orbs  []Orb
	t     float64
	out   []Orb
}

// NewAmbient creates an idle animator seeded for reproducible motion.
func NewAmbient(seed int64, orbs []Orb) *Ambient {
	return &Ambient{
		Amplitude: 4,
		Speed:     0.15,
		noise:     opensimplex.New(seed),
		orbs:      orbs,
		out:       make([]Orb, len(orbs)),
	}
}

// Time returns the accumulated animation time in seconds.
func (a *Ambient) Time() float64 {
	return a.t
}

// Update advances the drift clock by dt seconds when active.
func (a *Ambient) Update(dt float64, active bool) {
	if !active || !(dt > 0) {
		return
	}
	a.t += dt
}

// Orbs returns the drifted orbs for the current time. The returned slice is
// reused between calls.
func (a *Ambient) Orbs() []Orb {
	s := a.t * a.Speed
	for i, o := range a.orbs {
		k := float64(i) * 17.3
		o.Center.X += a.Amplitude * a.noise.Eval2(k, s)
		o.Center.Y += a.Amplitude * a.noise.Eval2(k+101.7, s)
		a.out[i] = o
	}
	return a.out
}
