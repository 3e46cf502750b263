package liquidglass

import "testing"

func TestBezierEndpoints(t *testing.T) {
	for _, b := range []Bezier{BezierRipple, BezierTilt, BezierGlass, BezierEaseOut} {
		assertNear(t, "At(0)", b.At(0), 0)
		assertNear(t, "At(1)", b.At(1), 1)
		assertNear(t, "At(-1)", b.At(-1), 0)
		assertNear(t, "At(2)", b.At(2), 1)
	}
}

func TestBezierLinear(t *testing.T) {
	linear := Bezier{1.0 / 3, 1.0 / 3, 2.0 / 3, 2.0 / 3}
	for _, x := range []float64{0.1, 0.25, 0.5, 0.9} {
		assertNear(t, "linear", linear.At(x), x)
	}
}

func TestBezierMonotonic(t *testing.T) {
	for _, b := range []Bezier{BezierRipple, BezierTilt, BezierEaseOut} {
		prev := 0.0
		for i := 1; i <= 100; i++ {
			v := b.At(float64(i) / 100)
			if v < prev-1e-9 {
				t.Fatalf("%+v not monotonic at %d: %v < %v", b, i, v, prev)
			}
			prev = v
		}
	}
}

func TestBezierEaseOutAheadOfLinear(t *testing.T) {
	if v := BezierEaseOut.At(0.5); v <= 0.5 {
		t.Errorf("ease-out At(0.5) = %v, want > 0.5", v)
	}
}

func TestBezierTweenFunc(t *testing.T) {
	fn := BezierEaseOut.TweenFunc()
	if got := fn(0, 10, 5, 2); got != 10 {
		t.Errorf("start = %v, want 10", got)
	}
	if got := fn(2, 10, 5, 2); got != 15 {
		t.Errorf("end = %v, want 15", got)
	}
	if got := fn(1, 10, 5, 0); got != 15 {
		t.Errorf("zero duration = %v, want 15", got)
	}
}

func TestKeyframes(t *testing.T) {
	k := Keyframes{Values: []float64{0, 1.5, 2.5, 3}}
	tests := []struct {
		p, want float64
	}{
		{0, 0},
		{1.0 / 6, 0.75},
		{1.0 / 3, 1.5},
		{2.0 / 3, 2.5},
		{1, 3},
		{2, 3},
		{-1, 0},
	}
	for _, tt := range tests {
		assertNear(t, "At", k.At(tt.p), tt.want)
	}
}

func TestKeyframesExplicitTimes(t *testing.T) {
	k := Keyframes{Values: []float64{0, 10, 20}, Times: []float64{0, 0.8, 1}}
	assertNear(t, "At(0.4)", k.At(0.4), 5)
	assertNear(t, "At(0.9)", k.At(0.9), 15)
}

func TestKeyframesDegenerate(t *testing.T) {
	if (Keyframes{}).At(0.5) != 0 {
		t.Error("empty track should sample 0")
	}
	if (Keyframes{Values: []float64{7}}).At(0.5) != 7 {
		t.Error("single value track should be constant")
	}
}
