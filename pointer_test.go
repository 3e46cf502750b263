package liquidglass

import (
	"math"
	"testing"
)

// assertNear fails if got and want differ by more than 1e-6.
func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestNormalize(t *testing.T) {
	bounds := Rect{X: 100, Y: 50, Width: 200, Height: 100}
	tests := []struct {
		name string
		ev   PointerEvent
		want Vec2
	}{
		{"top-left", MouseEvent(100, 50), Vec2{0, 0}},
		{"center", MouseEvent(200, 100), Vec2{50, 50}},
		{"bottom-right", MouseEvent(300, 150), Vec2{100, 100}},
		{"outside", MouseEvent(0, 0), Vec2{-50, -50}},
		{"touch first contact", TouchEvent(Vec2{150, 75}, Vec2{290, 140}), Vec2{25, 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.ev, bounds)
			if !ok {
				t.Fatal("Normalize returned !ok")
			}
			assertNear(t, "x", got.X, tt.want.X)
			assertNear(t, "y", got.Y, tt.want.Y)
		})
	}
}

func TestNormalizeUnmeasured(t *testing.T) {
	for _, r := range []Rect{
		{},
		{Width: 100},
		{Height: 100},
		{Width: math.NaN(), Height: 10},
		{Width: math.Inf(1), Height: 10},
		{Width: -5, Height: 10},
	} {
		if p, ok := Normalize(MouseEvent(10, 10), r); ok {
			t.Errorf("Normalize with bounds %+v = %v, want !ok", r, p)
		}
	}
}

func TestNormalizeTouchWithoutContacts(t *testing.T) {
	if _, ok := Normalize(TouchEvent(), Rect{Width: 10, Height: 10}); ok {
		t.Error("touch event without contacts should not normalize")
	}
}

func TestNormalizeNonFinite(t *testing.T) {
	if _, ok := Normalize(MouseEvent(math.NaN(), 1), Rect{Width: 10, Height: 10}); ok {
		t.Error("NaN position should not normalize")
	}
}

func TestCenterOffset(t *testing.T) {
	bounds := Rect{Width: 400, Height: 200}
	tests := []struct {
		x, y   float64
		wx, wy float64
	}{
		{200, 100, 0, 0},
		{0, 0, -50, -50},
		{400, 200, 50, 50},
		{300, 50, 25, -25},
	}
	for _, tt := range tests {
		got, ok := CenterOffset(MouseEvent(tt.x, tt.y), bounds)
		if !ok {
			t.Fatalf("CenterOffset(%v,%v) !ok", tt.x, tt.y)
		}
		assertNear(t, "x", got.X, tt.wx)
		assertNear(t, "y", got.Y, tt.wy)
	}
}

func TestPixelOffsetRoundTrip(t *testing.T) {
	bounds := Rect{Width: 320, Height: 240}
	p, _ := Normalize(MouseEvent(80, 180), bounds)
	px := PixelOffset(p, bounds.Width, bounds.Height)
	assertNear(t, "x", px.X, 80)
	assertNear(t, "y", px.Y, 180)
}

func TestRectContainsEdges(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 20}
	if !r.Contains(10, 10) || !r.Contains(30, 30) {
		t.Error("edges should be inside")
	}
	if r.Contains(9.9, 20) || r.Contains(20, 30.1) {
		t.Error("points past the edge should be outside")
	}
}
