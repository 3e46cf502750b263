package liquidglass

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"
)

// recordingSink collects emitted widget events.
type recordingSink struct {
	events []WidgetEvent
}

func (s *recordingSink) EmitEvent(ev WidgetEvent) {
	s.events = append(s.events, ev)
}

func (s *recordingSink) count(typ EventType) int {
	n := 0
	for _, ev := range s.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

var testBounds = Rect{X: 100, Y: 100, Width: 200, Height: 100}

func newTestWidget(t *testing.T, opts ...Option) (*Widget, *ManualClock) {
	t.Helper()
	clock := NewManualClock(testEpoch)
	w, err := NewWidget(DefaultConfig(), append([]Option{WithClock(clock)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	w.SetBounds(testBounds)
	return w, clock
}

func mount(t *testing.T, w *Widget) {
	t.Helper()
	if err := w.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
}

// waitWidget steps the widget until no permission request is in flight.
func waitWidget(t *testing.T, w *Widget) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for w.Sensor().Requesting() {
		w.Update(0)
		select {
		case <-deadline:
			t.Fatal("permission request did not finish")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestNewWidgetRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HoverScale = 0
	if _, err := NewWidget(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewWidget(DefaultConfig(), WithLayers([]ParallaxLayer{{"a", 1}, {"b", 0}})); err == nil {
		t.Error("decreasing layer depths should be rejected")
	}
}

func TestMountUnmountListeners(t *testing.T) {
	l := NewListeners()
	w, _ := newTestWidget(t, WithListeners(l))
	mount(t, w)
	if l.Total() != 3 {
		t.Fatalf("listeners after mount = %d, want 3", l.Total())
	}
	mount(t, w)
	if l.Total() != 3 {
		t.Errorf("mounting twice registered %d listeners", l.Total())
	}

	w.Unmount()
	if l.Total() != 0 {
		t.Errorf("listeners after unmount = %d, want 0", l.Total())
	}
	w.Unmount()
	if w.Mounted() {
		t.Error("widget still mounted")
	}
}

func TestMountCycleDoesNotLeak(t *testing.T) {
	l := NewListeners()
	w, _ := newTestWidget(t, WithListeners(l))
	for i := 0; i < 10; i++ {
		mount(t, w)
		w.Unmount()
	}
	if l.Total() != 0 {
		t.Errorf("listeners after 10 cycles = %d, want 0", l.Total())
	}
}

func TestMountCancelledContext(t *testing.T) {
	w, _ := newTestWidget(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Mount(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if w.Mounted() {
		t.Error("widget should not mount on a cancelled context")
	}
}

func TestRippleLifetimeThroughWidget(t *testing.T) {
	sink := &recordingSink{}
	w, clock := newTestWidget(t, WithEventSink(sink))
	mount(t, w)

	id, ok := w.PointerDown(MouseEvent(150, 125))
	if !ok {
		t.Fatal("PointerDown did not spawn a ripple")
	}
	r := w.Ripples().Active()[0]
	assertNear(t, "x%", r.X, 25)
	assertNear(t, "y%", r.Y, 25)

	clock.Advance(1999 * time.Millisecond)
	w.Update(1.0 / 60)
	if !w.Ripples().Contains(id) {
		t.Fatal("ripple expired before its lifetime")
	}
	clock.Advance(2 * time.Millisecond)
	w.Update(1.0 / 60)
	if w.Ripples().Contains(id) {
		t.Fatal("ripple outlived its lifetime")
	}
	if sink.count(EventRippleSpawned) != 1 || sink.count(EventRippleExpired) != 1 {
		t.Errorf("events = %+v", sink.events)
	}
}

func TestRippleUnmeasuredBoundsSkipped(t *testing.T) {
	w, _ := newTestWidget(t)
	w.SetBounds(Rect{})
	mount(t, w)
	if _, ok := w.PointerDown(MouseEvent(10, 10)); ok {
		t.Error("ripple spawned against unmeasured bounds")
	}
	if _, ok := w.TouchStart(TouchEvent(Vec2{10, 10})); ok {
		t.Error("touch ripple spawned against unmeasured bounds")
	}
	if w.Ripples().Len() != 0 {
		t.Errorf("Len = %d, want 0", w.Ripples().Len())
	}
}

func TestRipplesIgnoredWhenUnmounted(t *testing.T) {
	w, _ := newTestWidget(t)
	if _, ok := w.PointerDown(MouseEvent(150, 125)); ok {
		t.Error("unmounted widget should not spawn ripples")
	}
}

func TestUnmountClearsRipples(t *testing.T) {
	sink := &recordingSink{}
	w, _ := newTestWidget(t, WithEventSink(sink))
	mount(t, w)
	w.PointerDown(MouseEvent(150, 125))
	w.TouchStart(TouchEvent(Vec2{200, 150}))
	w.Unmount()
	if w.Ripples().Len() != 0 {
		t.Errorf("ripples after unmount = %d", w.Ripples().Len())
	}
	if sink.count(EventRippleExpired) != 0 {
		t.Error("teardown must not report expiries")
	}
	if w.Touching() {
		t.Error("touching state survived unmount")
	}
}

func TestWindowPointerMoveTilts(t *testing.T) {
	l := NewListeners()
	w, _ := newTestWidget(t, WithListeners(l))
	mount(t, w)

	l.DispatchPointerMove(MouseEvent(300, 150))
	tr := w.Tilt().Transform()
	assertNear(t, "RotateY", tr.RotateY, 15)
	if !w.Tilt().Hovering() {
		t.Error("pointer over the card should hover")
	}

	l.DispatchPointerMove(MouseEvent(10, 10))
	if w.Tilt().Hovering() || !w.Tilt().Returning() {
		t.Error("leaving the card should start the return to rest")
	}

	w.Unmount()
	l.DispatchPointerMove(MouseEvent(300, 150))
	if !w.Tilt().Transform().IsIdentity() {
		t.Error("unmounted widget must not react to window events")
	}
}

func TestDesktopNeverShowsPrompt(t *testing.T) {
	called := false
	req := PermissionFunc(func(context.Context) (bool, error) {
		called = true
		return true, nil
	})
	w, _ := newTestWidget(t, WithPermissionRequester(req))
	mount(t, w)
	w.TouchStart(TouchEvent(Vec2{150, 125}))
	if err := w.PromptTap(); err != nil {
		t.Errorf("PromptTap = %v", err)
	}
	waitWidget(t, w)
	if called {
		t.Error("desktop must not request orientation permission")
	}
	if w.Frame().PromptVisible {
		t.Error("prompt must not show on desktop")
	}
	if w.Sensor().Enabled() {
		t.Error("orientation tilt must stay off on desktop")
	}
}

func TestPermissionGrantedOnFirstTouch(t *testing.T) {
	l := NewListeners()
	sink := &recordingSink{}
	requests := 0
	req := PermissionFunc(func(context.Context) (bool, error) {
		requests++
		return true, nil
	})
	w, _ := newTestWidget(t,
		WithListeners(l),
		WithPlatform(gated),
		WithPermissionRequester(req),
		WithEventSink(sink),
	)
	mount(t, w)
	if !w.Frame().PromptVisible {
		t.Fatal("gated mobile platform should show the prompt")
	}

	l.DispatchOrientation(OrientationReading{Beta: 30, Gamma: 30})
	if !w.Tilt().Transform().IsIdentity() {
		t.Fatal("orientation before permission must not tilt")
	}

	w.TouchStart(TouchEvent(Vec2{150, 125}))
	waitWidget(t, w)
	if !w.Sensor().Enabled() {
		t.Fatal("permission should be granted after the first touch")
	}
	if sink.count(EventPermissionChanged) != 1 {
		t.Errorf("permission events = %d, want 1", sink.count(EventPermissionChanged))
	}

	w.TouchEnd()
	w.TouchStart(TouchEvent(Vec2{150, 125}))
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}

	l.DispatchOrientation(OrientationReading{Beta: 40, Gamma: 20})
	l.DispatchOrientation(OrientationReading{Beta: 45, Gamma: 28})
	tr := w.Tilt().Transform()
	assertNear(t, "RotateX", tr.RotateX, 5)
	assertNear(t, "RotateY", tr.RotateY, 8)
	if w.Frame().PromptVisible {
		t.Error("prompt should hide once granted")
	}
}

func TestPermissionDeniedKeepsPrompt(t *testing.T) {
	req := PermissionFunc(func(context.Context) (bool, error) {
		return false, errors.New("NotAllowedError")
	})
	w, clock := newTestWidget(t, WithPlatform(gated), WithPermissionRequester(req))
	mount(t, w)

	w.TouchStart(TouchEvent(Vec2{150, 125}))
	waitWidget(t, w)
	if w.Sensor().Permission() != PermissionDenied {
		t.Fatalf("permission = %v, want denied", w.Sensor().Permission())
	}
	if !w.Frame().PromptVisible {
		t.Error("prompt should stay visible after a denial")
	}

	if err := w.PromptTap(); !errors.Is(err, ErrPermissionCooldown) {
		t.Errorf("immediate retry = %v, want ErrPermissionCooldown", err)
	}
	clock.Advance(time.Second)
	if err := w.PromptTap(); err != nil {
		t.Errorf("retry after cooldown = %v", err)
	}
	waitWidget(t, w)
}

func TestUnmountCancelsPermissionRequest(t *testing.T) {
	started := make(chan struct{})
	finished := make(chan error, 1)
	req := PermissionFunc(func(ctx context.Context) (bool, error) {
		close(started)
		<-ctx.Done()
		finished <- ctx.Err()
		return false, ctx.Err()
	})
	w, _ := newTestWidget(t, WithPlatform(gated), WithPermissionRequester(req))
	mount(t, w)
	w.TouchStart(TouchEvent(Vec2{150, 125}))
	<-started

	w.Unmount()
	select {
	case err := <-finished:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("request ctx err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("unmount did not cancel the permission request")
	}
	if w.Sensor().Requesting() {
		t.Error("request still in flight after unmount")
	}
}

func TestPromptTapRequiresMount(t *testing.T) {
	w, _ := newTestWidget(t, WithPlatform(gated))
	if err := w.PromptTap(); !errors.Is(err, ErrNotMounted) {
		t.Errorf("err = %v, want ErrNotMounted", err)
	}
}

func TestNativeGestureSuppression(t *testing.T) {
	w, _ := newTestWidget(t)
	for _, tgt := range []Target{TargetContainer, TargetImage, TargetOverlay, TargetPrompt} {
		if !w.ContextMenu(tgt) || !w.DragStart(tgt) {
			t.Errorf("target %d should be protected", tgt)
		}
	}
	if w.ContextMenu(TargetOutside) || w.DragStart(TargetOutside) {
		t.Error("targets outside the widget must not be suppressed")
	}
}

func TestTapScale(t *testing.T) {
	w, _ := newTestWidget(t)
	mount(t, w)
	w.PointerEnter()
	for i := 0; i < 130; i++ {
		w.Update(1.0 / 60)
	}
	w.PointerDown(MouseEvent(150, 125))
	for i := 0; i < 30; i++ {
		w.Update(1.0 / 60)
	}
	assertNear(t, "pressed scale", w.Frame().Container.Scale, 1.02*0.98)
	w.PointerUp()
	for i := 0; i < 30; i++ {
		w.Update(1.0 / 60)
	}
	assertNear(t, "released scale", w.Frame().Container.Scale, 1.02)
}

func TestAssetLoading(t *testing.T) {
	img := Solid(8, 8, color.NRGBA{1, 2, 3, 255})
	loader := AssetLoaderFunc(func(_ context.Context, url string) (image.Image, error) {
		if url == "photo.png" {
			return img, nil
		}
		return nil, errors.New("404")
	})

	cfg := DefaultConfig()
	cfg.ImageURL = "photo.png"
	w, err := NewWidget(cfg, WithAssetLoader(loader))
	if err != nil {
		t.Fatal(err)
	}
	mount(t, w)
	if w.Image() != image.Image(img) {
		t.Error("image not loaded")
	}
	if w.Map() == nil {
		t.Error("empty map URL should fall back to the generated lens map")
	}

	cfg.DisplacementMapURL = "missing.png"
	w, _ = NewWidget(cfg, WithAssetLoader(loader))
	mount(t, w)
	if w.Map() != nil {
		t.Error("unloadable map should leave the filter without a map")
	}
	if f := w.Frame(); f.Map != nil || f.Image == nil {
		t.Errorf("frame map %v image %v", f.Map, f.Image)
	}
}

func TestViewportVisibility(t *testing.T) {
	l := NewListeners()
	sink := &recordingSink{}
	w, _ := newTestWidget(t, WithListeners(l), WithEventSink(sink))
	mount(t, w)

	l.DispatchViewport(0.5)
	if !w.InView().Visible() {
		t.Error("ratio above threshold should be in view")
	}
	l.DispatchViewport(0.6)
	l.DispatchViewport(0.1)
	if w.InView().Visible() {
		t.Error("ratio below threshold should be out of view")
	}
	if n := sink.count(EventVisibilityChanged); n != 2 {
		t.Errorf("visibility events = %d, want 2", n)
	}
}

func TestFrameRipples(t *testing.T) {
	w, clock := newTestWidget(t)
	mount(t, w)
	w.PointerDown(MouseEvent(200, 150))
	clock.Advance(LiquidRippleTTL / 2)
	f := w.Frame()
	if len(f.Ripples) != 1 {
		t.Fatalf("ripples = %d, want 1", len(f.Ripples))
	}
	rs := f.Ripples[0]
	assertNear(t, "center x", rs.Center.X, 100)
	assertNear(t, "center y", rs.Center.Y, 50)
	if rs.Diameter <= LiquidRippleSize || rs.Diameter > 3*LiquidRippleSize {
		t.Errorf("diameter = %v", rs.Diameter)
	}
	if rs.Opacity <= 0 || rs.Opacity >= 0.8 {
		t.Errorf("opacity = %v", rs.Opacity)
	}
	if len(f.Layers) != 3 || len(f.Orbs) != 3 {
		t.Errorf("layers %d orbs %d", len(f.Layers), len(f.Orbs))
	}
}

func TestTouchLiftReturnsToRest(t *testing.T) {
	in, w := newTestInput(t)
	in.touch([]Vec2{{290, 140}})
	tr := w.Tilt().Transform()
	assertNear(t, "RotateY", tr.RotateY, 13.5)
	assertNear(t, "RotateX", tr.RotateX, 3)

	in.touch(nil)
	if w.Touching() {
		t.Error("lift should clear the touching state")
	}
	if !w.Tilt().Returning() {
		t.Fatal("lift should start the return to rest")
	}
	steps := int(w.Config().Tilt().Transition.Seconds()*60) + 2
	for i := 0; i < steps; i++ {
		w.Update(1.0 / 60)
	}
	if tr := w.Tilt().Transform(); !tr.IsIdentity() {
		t.Errorf("transform after lift = %+v, want rest", tr)
	}
}

func TestDesktopIgnoresPermissionAPI(t *testing.T) {
	platforms := []struct {
		name string
		p    Platform
	}{
		{"bare", Platform{}},
		{"orientation events", Platform{Capabilities: Capabilities{OrientationEvents: true}}},
		{"permission api", Platform{Capabilities: Capabilities{OrientationEvents: true, PermissionAPI: true}}},
	}
	for _, tt := range platforms {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			req := PermissionFunc(func(context.Context) (bool, error) {
				calls.Add(1)
				return true, nil
			})

			s := NewOrientationSensor(tt.p, req, NewManualClock(testEpoch))
			s.Probe()
			if err := s.RequestPermission(context.Background()); err != nil {
				t.Errorf("RequestPermission = %v", err)
			}
			s.Poll()

			w, _ := newTestWidget(t, WithPlatform(tt.p), WithPermissionRequester(req))
			mount(t, w)
			w.TouchStart(TouchEvent(Vec2{150, 125}))
			if err := w.PromptTap(); err != nil {
				t.Errorf("PromptTap = %v", err)
			}
			w.Update(1.0 / 60)

			for _, got := range []*OrientationSensor{s, w.Sensor()} {
				if got.Requesting() {
					t.Error("request went in flight on desktop")
				}
				if got.Enabled() || got.PromptVisible() {
					t.Errorf("enabled %v prompt %v, want both false", got.Enabled(), got.PromptVisible())
				}
				if got.Permission() != PermissionUnknown {
					t.Errorf("Permission = %v, want unknown", got.Permission())
				}
			}
			if n := calls.Load(); n != 0 {
				t.Errorf("requester called %d times", n)
			}
		})
	}
}

func TestInputOutsideBoundsRejected(t *testing.T) {
	sink := &recordingSink{}
	w, _ := newTestWidget(t, WithEventSink(sink))
	mount(t, w)
	w.PointerEnter()

	for _, p := range []Vec2{{99, 150}, {301, 150}, {200, 99}, {200, 201}} {
		if _, ok := w.PointerDown(MouseEvent(p.X, p.Y)); ok {
			t.Errorf("PointerDown at %v spawned a ripple", p)
		}
		if _, ok := w.TouchStart(TouchEvent(p)); ok {
			t.Errorf("TouchStart at %v spawned a ripple", p)
		}
	}
	if w.Ripples().Len() != 0 || sink.count(EventRippleSpawned) != 0 {
		t.Errorf("ripples = %d", w.Ripples().Len())
	}
	if w.Touching() {
		t.Error("touch outside the card set the touching state")
	}

	if _, ok := w.PointerDown(MouseEvent(300, 200)); !ok {
		t.Error("bottom-right corner is inside the card")
	}
	r := w.Ripples().Active()[0]
	assertNear(t, "x%", r.X, 100)
	assertNear(t, "y%", r.Y, 100)
}
