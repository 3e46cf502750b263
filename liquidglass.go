package liquidglass

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, offsets and percentages.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Measured reports whether the rectangle has been laid out: both dimensions
// are finite and strictly positive.
func (r Rect) Measured() bool {
	if math.IsNaN(r.Width) || math.IsNaN(r.Height) || math.IsInf(r.Width, 0) || math.IsInf(r.Height, 0) {
		return false
	}
	return r.Width > 0 && r.Height > 0
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                     // additive / lighter
	BlendScreen                  // screen (1 - (1-src)*(1-dst); only brightens)
	BlendIn                      // keep source where destination is opaque
	BlendMask                    // clip destination to source alpha
	BlendNone                    // opaque copy (skip blending)
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendNormal:
		return ebiten.BlendSourceOver
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendIn:
		return ebiten.BlendSourceIn
	case BlendMask:
		return ebiten.BlendDestinationIn
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// String returns the blend mode name.
func (b BlendMode) String() string {
	switch b {
	case BlendNormal:
		return "normal"
	case BlendAdd:
		return "add"
	case BlendScreen:
		return "screen"
	case BlendIn:
		return "in"
	case BlendMask:
		return "mask"
	case BlendNone:
		return "none"
	default:
		return "unknown"
	}
}

// PointerKind distinguishes the input modality of a PointerEvent.
type PointerKind uint8

const (
	PointerMouse PointerKind = iota // mouse or pen
	PointerTouch                    // touch screen
)

// EventType identifies a kind of widget event delivered to an EventSink.
type EventType uint8

const (
	EventRippleSpawned     EventType = iota // a ripple was added to the active set
	EventRippleExpired                      // a ripple left the active set
	EventPermissionChanged                  // orientation permission changed state
	EventVisibilityChanged                  // the widget entered or left the viewport
	EventMounted                            // listeners attached
	EventUnmounted                          // listeners released
)

// String returns the event type name.
func (e EventType) String() string {
	switch e {
	case EventRippleSpawned:
		return "ripple_spawned"
	case EventRippleExpired:
		return "ripple_expired"
	case EventPermissionChanged:
		return "permission_changed"
	case EventVisibilityChanged:
		return "visibility_changed"
	case EventMounted:
		return "mounted"
	case EventUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// WidgetEvent carries state transitions out of a Widget for optional
// integrations such as the ECS bridge.
type WidgetEvent struct {
	Type       EventType
	RippleID   RippleID
	X, Y       float64
	Permission Permission
	InView     bool
}

// EventSink is the interface for optional event forwarding.
// When set on a Widget, state transitions are forwarded to it.
type EventSink interface {
	EmitEvent(event WidgetEvent)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
