package liquidglass

import (
	"math"
	"time"

	"github.com/tanema/gween"
)

// TiltConfig tunes the tilt/parallax compositor.
type TiltConfig struct {
	// MaxAngle clamps rotation on both axes, in degrees.
	MaxAngle float64
	// Perspective is the viewer distance in pixels for the faux-3D projection.
	Perspective float64
	// HoverScale is the scale applied while the pointer is over the card.
	HoverScale float64
	// Elasticity converts the pointer offset (percent from center) into a
	// translation in pixels.
	Elasticity float64
	// Transition is the return-to-rest and hover-scale duration.
	Transition time.Duration
	// OrientationIdle is how long orientation input may stay silent before
	// the card returns to rest.
	OrientationIdle time.Duration
}

// DefaultTiltConfig returns the tilt widget defaults.
func DefaultTiltConfig() TiltConfig {
	return TiltConfig{
		MaxAngle:        15,
		Perspective:     1000,
		HoverScale:      1.02,
		Elasticity:      0.15,
		Transition:      2 * time.Second,
		OrientationIdle: 500 * time.Millisecond,
	}
}

// Transform is a faux-3D card transform. Rotations are in degrees,
// translations in pixels.
type Transform struct {
	RotateX, RotateY       float64
	TranslateX, TranslateY float64
	Scale                  float64
}

// IdentityTransform is the rest pose.
var IdentityTransform = Transform{Scale: 1}

// IsIdentity reports whether t is (within float tolerance) the rest pose.
func (t Transform) IsIdentity() bool {
	const eps = 1e-6
	return math.Abs(t.RotateX) < eps && math.Abs(t.RotateY) < eps &&
		math.Abs(t.TranslateX) < eps && math.Abs(t.TranslateY) < eps &&
		math.Abs(t.Scale-1) < eps
}

// AtDepth scales rotation and translation by depth. Scale is not depth
// dependent: hover scale is applied once on the container.
func (t Transform) AtDepth(depth float64) Transform {
	return Transform{
		RotateX:    t.RotateX * depth,
		RotateY:    t.RotateY * depth,
		TranslateX: t.TranslateX * depth,
		TranslateY: t.TranslateY * depth,
		Scale:      1,
	}
}

// Project maps the corners of a w x h card centered on the origin through the
// transform with the given perspective distance. Corners are returned in
// top-left, top-right, bottom-right, bottom-left order, relative to the card
// center. ok is false for unmeasured sizes.
func (t Transform) Project(w, h, perspective float64) (corners [4]Vec2, ok bool) {
	if !(Rect{Width: w, Height: h}).Measured() {
		return corners, false
	}
	hw, hh := w/2, h/2
	src := [4]Vec2{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	for i, p := range src {
		corners[i] = t.ProjectPoint(p, perspective)
	}
	return corners, true
}

// ProjectPoint maps a point on the card plane, relative to the card center,
// through scale, rotateY, rotateX and perspective, then adds the
// translation. Points never cross behind the viewer.
func (t Transform) ProjectPoint(p Vec2, perspective float64) Vec2 {
	scale := t.Scale
	if scale == 0 || !finite(scale) {
		scale = 1
	}
	sx, cx := math.Sincos(t.RotateX * math.Pi / 180)
	sy, cy := math.Sincos(t.RotateY * math.Pi / 180)

	x, y, z := p.X*scale, p.Y*scale, 0.0
	// rotateY
	x, z = x*cy+z*sy, -x*sy+z*cy
	// rotateX
	y, z = y*cx-z*sx, y*sx+z*cx

	f := 1.0
	if perspective > 0 {
		d := perspective - z
		if d < 1 {
			d = 1
		}
		f = perspective / d
	}
	return Vec2{x*f + t.TranslateX, y*f + t.TranslateY}
}

// ParallaxShift approximates the in-plane offset of a layer lifted lift
// pixels off the card: rotation tips it toward the viewer's side.
func (t Transform) ParallaxShift(lift float64) Vec2 {
	return Vec2{
		X: t.TranslateX + math.Tan(t.RotateY*math.Pi/180)*lift,
		Y: t.TranslateY - math.Tan(t.RotateX*math.Pi/180)*lift,
	}
}

// TiltSource is the input currently driving rotation.
type TiltSource uint8

const (
	TiltNone        TiltSource = iota // at rest or returning to rest
	TiltPointer                       // pointer position relative to center
	TiltOrientation                   // device pitch/roll
)

// Tilt maps pointer or orientation input into a card transform and animates
// the return to rest. Update must be called every frame.
type Tilt struct {
	cfg TiltConfig

	current  Transform
	source   TiltSource
	hovering bool
	idle     float64

	back       [4]*gween.Tween // RotateX, RotateY, TranslateX, TranslateY
	scaleTween *gween.Tween
}

// NewTilt creates a compositor at rest.
// A non-positive Transition falls back to the default so the card never
// snaps back to rest.
func NewTilt(cfg TiltConfig) *Tilt {
	if cfg.Transition <= 0 {
		cfg.Transition = DefaultTiltConfig().Transition
	}
	return &Tilt{cfg: cfg, current: IdentityTransform}
}

// Config returns the compositor configuration.
func (t *Tilt) Config() TiltConfig {
	return t.cfg
}

// Source returns the input currently driving the tilt.
func (t *Tilt) Source() TiltSource {
	return t.source
}

// Hovering reports whether the pointer is over the card.
func (t *Tilt) Hovering() bool {
	return t.hovering
}

// Returning reports whether a return-to-rest animation is in progress.
func (t *Tilt) Returning() bool {
	return t.back[0] != nil
}

// Transform returns the current container transform.
func (t *Tilt) Transform() Transform {
	return t.current
}

// LayerTransform returns the transform for a parallax layer of the given
// depth.
func (t *Tilt) LayerTransform(depth float64) Transform {
	return t.current.AtDepth(depth)
}

// PointerMove drives rotation and elastic translation from a pointer offset
// in percent of the container size relative to its center (edges at ±50).
// While orientation input is active only the translation follows the pointer.
func (t *Tilt) PointerMove(offset Vec2) {
	if !finite(offset.X) || !finite(offset.Y) {
		return
	}
	if !t.hovering {
		t.Enter()
	}
	t.back = [4]*gween.Tween{}
	max := t.cfg.MaxAngle
	if t.source != TiltOrientation {
		t.current.RotateY = clamp(offset.X/50*max, -max, max)
		t.current.RotateX = clamp(-offset.Y/50*max, -max, max)
		t.source = TiltPointer
	}
	t.current.TranslateX = offset.X * t.cfg.Elasticity
	t.current.TranslateY = offset.Y * t.cfg.Elasticity
}

// Orientation drives rotation from device pitch and roll deltas in degrees.
func (t *Tilt) Orientation(pitch, roll float64) {
	if !finite(pitch) || !finite(roll) {
		return
	}
	max := t.cfg.MaxAngle
	t.back[0], t.back[1] = nil, nil
	t.current.RotateX = clamp(pitch, -max, max)
	t.current.RotateY = clamp(roll, -max, max)
	t.source = TiltOrientation
	t.idle = 0
}

// Enter starts the hover scale-up.
func (t *Tilt) Enter() {
	if t.hovering {
		return
	}
	t.hovering = true
	t.scaleTween = t.tween(t.current.Scale, t.cfg.HoverScale)
}

// Release returns the card to rest over the configured transition. Called
// when the pointer leaves or tilt input stops.
func (t *Tilt) Release() {
	if t.hovering {
		t.hovering = false
		t.scaleTween = t.tween(t.current.Scale, 1)
	}
	t.source = TiltNone
	t.startReturn()
}

// Reset snaps to rest without animating. Used on teardown only.
func (t *Tilt) Reset() {
	t.current = IdentityTransform
	t.source = TiltNone
	t.hovering = false
	t.back = [4]*gween.Tween{}
	t.scaleTween = nil
	t.idle = 0
}

func (t *Tilt) tween(from, to float64) *gween.Tween {
	d := float32(t.cfg.Transition.Seconds())
	return gween.New(float32(from), float32(to), d, BezierTilt.TweenFunc())
}

func (t *Tilt) startReturn() {
	t.back[0] = t.tween(t.current.RotateX, 0)
	t.back[1] = t.tween(t.current.RotateY, 0)
	t.back[2] = t.tween(t.current.TranslateX, 0)
	t.back[3] = t.tween(t.current.TranslateY, 0)
}

// Update advances the return and scale animations by dt seconds.
func (t *Tilt) Update(dt float64) {
	if t.source == TiltOrientation {
		t.idle += dt
		if t.cfg.OrientationIdle > 0 && t.idle >= t.cfg.OrientationIdle.Seconds() {
			t.source = TiltNone
			if !t.hovering {
				t.startReturn()
			} else {
				t.back[0] = t.tween(t.current.RotateX, 0)
				t.back[1] = t.tween(t.current.RotateY, 0)
			}
		}
	}

	fields := [4]*float64{&t.current.RotateX, &t.current.RotateY, &t.current.TranslateX, &t.current.TranslateY}
	for i, tw := range t.back {
		if tw == nil {
			continue
		}
		v, done := tw.Update(float32(dt))
		*fields[i] = float64(v)
		if done {
			*fields[i] = 0
			t.back[i] = nil
		}
	}

	if t.scaleTween != nil {
		v, done := t.scaleTween.Update(float32(dt))
		t.current.Scale = float64(v)
		if done {
			t.scaleTween = nil
		}
	}
}
