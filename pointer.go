package liquidglass

// PointerEvent is a raw mouse or touch event in client (page) coordinates.
// For touch events, Touches holds every active contact in order; only the
// first is used.
type PointerEvent struct {
	Kind    PointerKind
	X, Y    float64
	Touches []Vec2
}

// MouseEvent builds a mouse PointerEvent.
func MouseEvent(x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerMouse, X: x, Y: y}
}

// TouchEvent builds a touch PointerEvent from its contact points.
func TouchEvent(touches ...Vec2) PointerEvent {
	return PointerEvent{Kind: PointerTouch, Touches: touches}
}

// Position returns the client coordinates the event refers to: the cursor
// for mouse events, the first contact for touch events. ok is false for a
// touch event without contacts.
func (ev PointerEvent) Position() (Vec2, bool) {
	if ev.Kind == PointerTouch {
		if len(ev.Touches) == 0 {
			return Vec2{}, false
		}
		return ev.Touches[0], true
	}
	return Vec2{ev.X, ev.Y}, true
}

// Normalize converts ev into percentage coordinates relative to bounds, where
// (0, 0) is the top-left corner and (100, 100) the bottom-right. Returns false
// when bounds is unmeasured so callers can skip the interaction instead of
// producing NaN.
func Normalize(ev PointerEvent, bounds Rect) (Vec2, bool) {
	if !bounds.Measured() {
		return Vec2{}, false
	}
	p, ok := ev.Position()
	if !ok || !finite(p.X) || !finite(p.Y) {
		return Vec2{}, false
	}
	return Vec2{
		X: (p.X - bounds.X) / bounds.Width * 100,
		Y: (p.Y - bounds.Y) / bounds.Height * 100,
	}, true
}

// CenterOffset returns the event position relative to the center of bounds,
// in percent of the container size. The container edges map to ±50.
func CenterOffset(ev PointerEvent, bounds Rect) (Vec2, bool) {
	p, ok := Normalize(ev, bounds)
	if !ok {
		return Vec2{}, false
	}
	return Vec2{p.X - 50, p.Y - 50}, true
}

// PixelOffset converts a percentage position back into container-local
// pixels for the given size.
func PixelOffset(pct Vec2, w, h float64) Vec2 {
	return Vec2{pct.X / 100 * w, pct.Y / 100 * h}
}
