package liquidglass

import (
	"testing"
	"time"
)

func TestRippleSpawnUniqueIDs(t *testing.T) {
	m := NewRippleManager(RippleStyleLiquid, NewManualClock(testEpoch))
	seen := map[RippleID]bool{}
	for i := 0; i < 50; i++ {
		id := m.Spawn(float64(i), 50)
		if seen[id] {
			t.Fatalf("duplicate id %v", id)
		}
		seen[id] = true
	}
	if m.Len() != 50 {
		t.Errorf("Len = %d, want 50 (ripples are unbounded)", m.Len())
	}
}

func TestRippleSpawnRecordsPositionAndTime(t *testing.T) {
	clock := NewManualClock(testEpoch)
	m := NewRippleManager(RippleStyleLiquid, clock)
	clock.Advance(time.Second)
	id := m.Spawn(25, 75)
	r := m.Active()[0]
	if r.ID != id || r.X != 25 || r.Y != 75 {
		t.Errorf("ripple = %+v", r)
	}
	if !r.SpawnTime.Equal(testEpoch.Add(time.Second)) {
		t.Errorf("SpawnTime = %v", r.SpawnTime)
	}
}

func TestRippleSweepLifetime(t *testing.T) {
	tests := []struct {
		style   RippleStyle
		elapsed time.Duration
		alive   bool
	}{
		{RippleStyleLiquid, 1999 * time.Millisecond, true},
		{RippleStyleLiquid, 2000 * time.Millisecond, false},
		{RippleStyleLiquid, 2001 * time.Millisecond, false},
		{RippleStyleCSS, 1499 * time.Millisecond, true},
		{RippleStyleCSS, 1501 * time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.style.String()+"/"+tt.elapsed.String(), func(t *testing.T) {
			clock := NewManualClock(testEpoch)
			m := NewRippleManager(tt.style, clock)
			id := m.Spawn(50, 50)
			clock.Advance(tt.elapsed)
			m.Sweep()
			if got := m.Contains(id); got != tt.alive {
				t.Errorf("alive = %v, want %v", got, tt.alive)
			}
		})
	}
}

func TestRippleSweepKeepsOrder(t *testing.T) {
	clock := NewManualClock(testEpoch)
	m := NewRippleManager(RippleStyleLiquid, clock)
	first := m.Spawn(0, 0)
	clock.Advance(time.Second)
	a := m.Spawn(1, 1)
	b := m.Spawn(2, 2)
	clock.Advance(1500 * time.Millisecond)

	var expired []RippleID
	m.OnExpire(func(r Ripple) { expired = append(expired, r.ID) })
	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if len(expired) != 1 || expired[0] != first {
		t.Errorf("expired = %v, want [%v]", expired, first)
	}
	act := m.Active()
	if len(act) != 2 || act[0].ID != a || act[1].ID != b {
		t.Errorf("active = %+v, want [%v %v]", act, a, b)
	}
}

func TestRippleExpireIdempotent(t *testing.T) {
	m := NewRippleManager(RippleStyleLiquid, NewManualClock(testEpoch))
	calls := 0
	m.OnExpire(func(Ripple) { calls++ })
	id := m.Spawn(10, 10)
	if !m.Expire(id) {
		t.Error("first Expire should remove the ripple")
	}
	if m.Expire(id) {
		t.Error("second Expire should be a no-op")
	}
	if m.Expire(RippleID(999)) {
		t.Error("unknown id should be a no-op")
	}
	if calls != 1 {
		t.Errorf("OnExpire calls = %d, want 1", calls)
	}
}

func TestRippleClearSkipsCallback(t *testing.T) {
	m := NewRippleManager(RippleStyleLiquid, NewManualClock(testEpoch))
	m.OnExpire(func(Ripple) { t.Error("Clear must not invoke OnExpire") })
	m.Spawn(1, 1)
	m.Spawn(2, 2)
	m.Clear()
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
}

func TestSampleRippleLiquid(t *testing.T) {
	f := SampleRipple(RippleStyleLiquid, 0)
	assertNear(t, "scale(0)", f.Scale, 0)
	assertNear(t, "opacity(0)", f.Opacity, 0.8)

	f = SampleRipple(RippleStyleLiquid, LiquidRippleTTL)
	assertNear(t, "scale(end)", f.Scale, 3)
	assertNear(t, "opacity(end)", f.Opacity, 0)
	assertNear(t, "progress(end)", f.Progress, 1)

	f = SampleRipple(RippleStyleLiquid, 10*time.Second)
	assertNear(t, "progress clamps", f.Progress, 1)

	prevScale, prevOpacity := -1.0, 2.0
	for ms := 0; ms <= 2000; ms += 50 {
		f := SampleRipple(RippleStyleLiquid, time.Duration(ms)*time.Millisecond)
		if f.Scale < prevScale-1e-9 || f.Opacity > prevOpacity+1e-9 {
			t.Fatalf("at %dms scale %v opacity %v not monotonic", ms, f.Scale, f.Opacity)
		}
		prevScale, prevOpacity = f.Scale, f.Opacity
	}
}

func TestSampleRippleCSS(t *testing.T) {
	f := SampleRipple(RippleStyleCSS, 0)
	assertNear(t, "scale(0)", f.Scale, 0)
	assertNear(t, "opacity(0)", f.Opacity, 0.5)
	f = SampleRipple(RippleStyleCSS, CSSRippleTTL)
	assertNear(t, "scale(end)", f.Scale, 1)
	assertNear(t, "opacity(end)", f.Opacity, 0)
}

func TestRippleStyleDiameter(t *testing.T) {
	assertNear(t, "liquid", RippleStyleLiquid.Diameter(300, 200), LiquidRippleSize)
	assertNear(t, "css", RippleStyleCSS.Diameter(300, 200), 600)
}

func TestRippleIDString(t *testing.T) {
	if got := RippleID(12).String(); got != "liquid-12" {
		t.Errorf("String = %q", got)
	}
}
