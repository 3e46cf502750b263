package liquidglass

import (
	"fmt"
	"time"
)

// RippleID uniquely identifies a ripple within its manager.
type RippleID uint64

// String returns a token like "liquid-12".
func (id RippleID) String() string {
	return fmt.Sprintf("liquid-%d", uint64(id))
}

// Ripple is a transient radial distortion spawned at an interaction point.
// X and Y are percentages of the container size at spawn time and are never
// re-anchored.
type Ripple struct {
	ID        RippleID
	X, Y      float64
	SpawnTime time.Time
}

// RippleStyle selects the ripple animation variant.
type RippleStyle uint8

const (
	// RippleStyleLiquid grows to 3x while fading over two seconds.
	RippleStyleLiquid RippleStyle = iota
	// RippleStyleCSS is a single expanding ring sized to cover the container.
	RippleStyleCSS
)

// Ripple lifetimes.
const (
	LiquidRippleTTL = 2000 * time.Millisecond
	CSSRippleTTL    = 1500 * time.Millisecond
)

// LiquidRippleSize is the unscaled liquid ripple diameter in pixels.
const LiquidRippleSize = 100.0

// TTL returns the lifetime of ripples in this style.
func (s RippleStyle) TTL() time.Duration {
	if s == RippleStyleCSS {
		return CSSRippleTTL
	}
	return LiquidRippleTTL
}

// String returns the style name.
func (s RippleStyle) String() string {
	switch s {
	case RippleStyleLiquid:
		return "liquid"
	case RippleStyleCSS:
		return "css"
	default:
		return "unknown"
	}
}

// Diameter returns the unscaled ripple diameter for a w x h container.
func (s RippleStyle) Diameter(w, h float64) float64 {
	if s == RippleStyleCSS {
		return 2 * max(w, h)
	}
	return LiquidRippleSize
}

var (
	liquidScale = Keyframes{
		Values: []float64{0, 1.5, 2.5, 3},
		Ease:   BezierRipple.TweenFunc(),
	}
	liquidOpacity = Keyframes{
		Values: []float64{0.8, 0.6, 0.3, 0},
		Ease:   BezierRipple.TweenFunc(),
	}
	cssScale = Keyframes{
		Values: []float64{0, 1},
		Ease:   BezierEaseOut.TweenFunc(),
	}
	cssOpacity = Keyframes{
		Values: []float64{0.5, 0},
		Ease:   BezierEaseOut.TweenFunc(),
	}
)

// RippleFrame is the visual state of a ripple at one instant.
type RippleFrame struct {
	Progress float64 // elapsed / ttl, clamped to [0, 1]
	Scale    float64 // multiplier on the style's diameter
	Opacity  float64
}

// RippleManager owns the set of active ripples. Expiry is driven by a single
// Sweep against the injected clock rather than one timer per ripple.
type RippleManager struct {
	style    RippleStyle
	ttl      time.Duration
	clock    Clock
	ripples  []Ripple
	nextID   RippleID
	onExpire func(Ripple)
}

// NewRippleManager creates a manager for the given style.
func NewRippleManager(style RippleStyle, clock Clock) *RippleManager {
	if clock == nil {
		clock = SystemClock{}
	}
	return &RippleManager{
		style: style,
		ttl:   style.TTL(),
		clock: clock,
	}
}

// Style returns the ripple style.
func (m *RippleManager) Style() RippleStyle {
	return m.style
}

// TTL returns the ripple lifetime.
func (m *RippleManager) TTL() time.Duration {
	return m.ttl
}

// OnExpire sets a callback invoked for every ripple removed by Sweep or
// Expire. Clear does not invoke it.
func (m *RippleManager) OnExpire(fn func(Ripple)) {
	m.onExpire = fn
}

// Spawn appends a ripple at (x, y) percent with the current time. There is no
// upper bound on concurrent ripples.
func (m *RippleManager) Spawn(x, y float64) RippleID {
	m.nextID++
	m.ripples = append(m.ripples, Ripple{
		ID:        m.nextID,
		X:         x,
		Y:         y,
		SpawnTime: m.clock.Now(),
	})
	return m.nextID
}

// Expire removes the ripple with the given id. Safe to call for ids that are
// already gone; returns whether anything was removed.
func (m *RippleManager) Expire(id RippleID) bool {
	for i := range m.ripples {
		if m.ripples[i].ID == id {
			r := m.ripples[i]
			copy(m.ripples[i:], m.ripples[i+1:])
			m.ripples[len(m.ripples)-1] = Ripple{}
			m.ripples = m.ripples[:len(m.ripples)-1]
			if m.onExpire != nil {
				m.onExpire(r)
			}
			return true
		}
	}
	return false
}

// Sweep evicts every ripple whose lifetime has elapsed and returns how many
// were removed.
func (m *RippleManager) Sweep() int {
	now := m.clock.Now()
	kept := m.ripples[:0]
	var expired []Ripple
	for _, r := range m.ripples {
		if now.Sub(r.SpawnTime) >= m.ttl {
			expired = append(expired, r)
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(m.ripples); i++ {
		m.ripples[i] = Ripple{}
	}
	m.ripples = kept
	if m.onExpire != nil {
		for _, r := range expired {
			m.onExpire(r)
		}
	}
	return len(expired)
}

// Clear drops every ripple without invoking the expire callback. Used on
// teardown.
func (m *RippleManager) Clear() {
	clear(m.ripples)
	m.ripples = m.ripples[:0]
}

// Active returns the live ripples in spawn order. The returned slice MUST NOT
// be mutated.
func (m *RippleManager) Active() []Ripple {
	return m.ripples
}

// Len returns the number of live ripples.
func (m *RippleManager) Len() int {
	return len(m.ripples)
}

// Contains reports whether id is in the active set.
func (m *RippleManager) Contains(id RippleID) bool {
	for _, r := range m.ripples {
		if r.ID == id {
			return true
		}
	}
	return false
}

// Sample returns the ripple's visual state at the current clock time.
func (m *RippleManager) Sample(r Ripple) RippleFrame {
	return SampleRipple(m.style, m.clock.Now().Sub(r.SpawnTime))
}

// SampleRipple evaluates a ripple of the given style after elapsed time.
// Growth and fade are deterministic functions of elapsed time.
func SampleRipple(style RippleStyle, elapsed time.Duration) RippleFrame {
	ttl := style.TTL()
	p := clamp01(float64(elapsed) / float64(ttl))
	if style == RippleStyleCSS {
		return RippleFrame{Progress: p, Scale: cssScale.At(p), Opacity: cssOpacity.At(p)}
	}
	return RippleFrame{Progress: p, Scale: liquidScale.At(p), Opacity: liquidOpacity.At(p)}
}
