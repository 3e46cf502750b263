package liquidglass

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/tanema/gween"
)

// Target identifies the element a native gesture (context menu, drag) was
// aimed at.
type Target uint8

const (
	TargetOutside   Target = iota // not part of the widget
	TargetContainer               // the card itself
	TargetImage                   // the base image
	TargetOverlay                 // the transparent protection overlay
	TargetPrompt                  // the "tap to enable" button
)

// tapDuration is the press-scale transition of the card.
const tapDuration = 300 * time.Millisecond

// Option configures a Widget.
type Option func(*Widget)

// WithClock injects the time source for ripple expiry and the permission
// cooldown.
func WithClock(c Clock) Option {
	return func(w *Widget) { w.clock = c }
}

// WithPlatform sets the platform the orientation probe runs against.
func WithPlatform(p Platform) Option {
	return func(w *Widget) { w.platform = p }
}

// WithPermissionRequester sets how orientation permission is asked for.
func WithPermissionRequester(r PermissionRequester) Option {
	return func(w *Widget) { w.requester = r }
}

// WithListeners attaches the widget to a shared window-level registry.
func WithListeners(l *Listeners) Option {
	return func(w *Widget) { w.listeners = l }
}

// WithAssetLoader sets how image and displacement map URLs are resolved.
func WithAssetLoader(l AssetLoader) Option {
	return func(w *Widget) { w.loader = l }
}

// WithEventSink forwards widget events to s.
func WithEventSink(s EventSink) Option {
	return func(w *Widget) { w.sink = s }
}

// WithLayers replaces the default parallax layers.
func WithLayers(layers []ParallaxLayer) Option {
	return func(w *Widget) { w.layers = layers }
}

// WithRenderer sets the render step used by Draw.
func WithRenderer(r Renderer) Option {
	return func(w *Widget) { w.renderer = r }
}

// Widget composes the sensor adapter, pointer normalizer, ripple manager,
// tilt compositor and displacement pipeline into one renderable surface.
// All methods must be called from the update goroutine.
type Widget struct {
	cfg       Config
	clock     Clock
	platform  Platform
	requester PermissionRequester
	listeners *Listeners
	loader    AssetLoader
	sink      EventSink
	renderer  Renderer
	layers    []ParallaxLayer

	sensor   *OrientationSensor
	ripples  *RippleManager
	tilt     *Tilt
	inView   *InView
	ambient  *Ambient
	pipeline *Pipeline

	bounds  Rect
	mounted bool
	ctx     context.Context
	cancel  context.CancelFunc
	subs    []*Subscription

	image     image.Image
	dmap      image.Image
	touching  bool
	pressed   bool
	tapScale  float64
	tapTween  *gween.Tween
	pointerIn bool
}

// NewWidget validates cfg and builds an unmounted widget.
func NewWidget(cfg Config, opts ...Option) (*Widget, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	style, err := ParseRippleStyle(cfg.RippleStyle)
	if err != nil {
		return nil, err
	}
	w := &Widget{cfg: cfg, tapScale: 1}
	for _, o := range opts {
		o(w)
	}
	if w.clock == nil {
		w.clock = SystemClock{}
	}
	if w.listeners == nil {
		w.listeners = NewListeners()
	}
	if w.layers == nil {
		w.layers = DefaultLayers()
	}
	if err := ValidateLayers(w.layers); err != nil {
		return nil, err
	}

	w.sensor = NewOrientationSensor(w.platform, w.requester, w.clock)
	w.sensor.SetCooldown(time.Duration(cfg.PermissionCooldown))
	w.ripples = NewRippleManager(style, w.clock)
	w.ripples.OnExpire(func(r Ripple) {
		w.emit(WidgetEvent{Type: EventRippleExpired, RippleID: r.ID, X: r.X, Y: r.Y})
	})
	w.tilt = NewTilt(cfg.Tilt())
	w.inView = NewInView(cfg.InViewThreshold)
	w.ambient = NewAmbient(cfg.AmbientSeed, DefaultOrbs())
	w.pipeline = NewPipeline(cfg.Filter())
	return w, nil
}

// Config returns the widget configuration.
func (w *Widget) Config() Config { return w.cfg }

// Listeners returns the window-level registry the widget subscribes to.
func (w *Widget) Listeners() *Listeners { return w.listeners }

// Sensor returns the orientation adapter.
func (w *Widget) Sensor() *OrientationSensor { return w.sensor }

// Ripples returns the ripple manager.
func (w *Widget) Ripples() *RippleManager { return w.ripples }

// Tilt returns the tilt compositor.
func (w *Widget) Tilt() *Tilt { return w.tilt }

// InView returns the visibility tracker.
func (w *Widget) InView() *InView { return w.inView }

// Pipeline returns the displacement pipeline for the current config.
func (w *Widget) Pipeline() *Pipeline { return w.pipeline }

// Mounted reports whether the widget is attached.
func (w *Widget) Mounted() bool { return w.mounted }

// Bounds returns the container rectangle in client coordinates.
func (w *Widget) Bounds() Rect { return w.bounds }

// Touching reports whether a touch is held on the card.
func (w *Widget) Touching() bool { return w.touching }

// Image returns the loaded base image, or nil.
func (w *Widget) Image() image.Image { return w.image }

// Map returns the displacement map, or nil when it failed to load.
func (w *Widget) Map() image.Image { return w.dmap }

// SetBounds records the container's laid-out rectangle.
func (w *Widget) SetBounds(r Rect) {
	w.bounds = r
}

func (w *Widget) emit(ev WidgetEvent) {
	if w.sink != nil {
		w.sink.EmitEvent(ev)
	}
}

// Mount probes the orientation sensor, resolves assets and subscribes the
// window-level listeners. Asset failures are logged and degrade rendering;
// they do not fail the mount. Mounting twice is a no-op.
func (w *Widget) Mount(ctx context.Context) error {
	if w.mounted {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mounted = true

	if w.sensor.Probe() {
		w.emit(WidgetEvent{Type: EventPermissionChanged, Permission: w.sensor.Permission()})
	}
	w.loadAssets()

	w.subs = append(w.subs,
		w.listeners.OnPointerMove(w.windowPointerMove),
		w.listeners.OnOrientation(w.windowOrientation),
		w.listeners.OnViewport(w.viewport),
	)
	Logger().Debug("widget mounted", "image", w.cfg.ImageURL, "listeners", len(w.subs))
	w.emit(WidgetEvent{Type: EventMounted})
	return nil
}

func (w *Widget) loadAssets() {
	if w.loader != nil && w.cfg.ImageURL != "" {
		img, err := w.loader.Load(w.ctx, w.cfg.ImageURL)
		if err != nil {
			Logger().Warn("image unavailable", "url", w.cfg.ImageURL, "err", err)
		}
		w.image = img
	}
	switch {
	case w.cfg.DisplacementMapURL == "":
		w.dmap = GenerateLensMap(BrushSize)
	case w.loader == nil:
		Logger().Warn("displacement map unavailable", "url", w.cfg.DisplacementMapURL, "err", ErrNoMap)
	default:
		m, err := w.loader.Load(w.ctx, w.cfg.DisplacementMapURL)
		if err != nil {
			Logger().Warn("displacement map unavailable", "url", w.cfg.DisplacementMapURL, "err", err)
		}
		w.dmap = m
	}
}

// Unmount releases every subscription, drops active ripples and cancels a
// pending permission request. It always runs to completion and is safe to
// call repeatedly.
func (w *Widget) Unmount() {
	for _, s := range w.subs {
		s.Release()
	}
	clear(w.subs)
	w.subs = w.subs[:0]
	w.ripples.Clear()
	w.sensor.Close()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.tilt.Reset()
	w.touching = false
	w.pressed = false
	w.pointerIn = false
	w.tapScale = 1
	w.tapTween = nil
	if w.mounted {
		w.mounted = false
		Logger().Debug("widget unmounted")
		w.emit(WidgetEvent{Type: EventUnmounted})
	}
}

func (w *Widget) windowPointerMove(ev PointerEvent) {
	p, ok := ev.Position()
	if !ok || !w.bounds.Measured() {
		return
	}
	if !w.bounds.Contains(p.X, p.Y) {
		if w.pointerIn {
			w.PointerLeave()
		}
		return
	}
	off, ok := CenterOffset(ev, w.bounds)
	if !ok {
		return
	}
	w.pointerIn = true
	w.tilt.PointerMove(off)
}

func (w *Widget) windowOrientation(r OrientationReading) {
	pitch, roll, ok := w.sensor.HandleOrientation(r)
	if !ok {
		return
	}
	w.tilt.Orientation(pitch, roll)
}

func (w *Widget) viewport(ratio float64) {
	if w.inView.SetRatio(ratio) {
		Logger().Debug("visibility changed", "in_view", w.inView.Visible(), "ratio", ratio)
		w.emit(WidgetEvent{Type: EventVisibilityChanged, InView: w.inView.Visible()})
	}
}

// spawn adds a ripple at ev. Events outside the container are rejected so
// every ripple stays within [0, 100] on both axes.
func (w *Widget) spawn(ev PointerEvent) (RippleID, bool) {
	p, ok := Normalize(ev, w.bounds)
	if !ok || p.X < 0 || p.X > 100 || p.Y < 0 || p.Y > 100 {
		return 0, false
	}
	id := w.ripples.Spawn(p.X, p.Y)
	w.emit(WidgetEvent{Type: EventRippleSpawned, RippleID: id, X: p.X, Y: p.Y})
	return id, true
}

// PointerDown handles a mouse press on the card: it spawns a ripple and, when
// hovered, starts the tap scale.
func (w *Widget) PointerDown(ev PointerEvent) (RippleID, bool) {
	if !w.mounted {
		return 0, false
	}
	id, ok := w.spawn(ev)
	if ok {
		w.setPressed(true)
	}
	return id, ok
}

// PointerUp ends the tap scale.
func (w *Widget) PointerUp() {
	w.setPressed(false)
}

// TouchStart handles a touch on the card. While orientation permission is
// pending it also asks for it, since a touch is a valid user gesture.
// Touches outside the container are ignored.
func (w *Widget) TouchStart(ev PointerEvent) (RippleID, bool) {
	if !w.mounted {
		return 0, false
	}
	if p, ok := ev.Position(); !ok || !w.bounds.Measured() || !w.bounds.Contains(p.X, p.Y) {
		return 0, false
	}
	w.touching = true
	if w.sensor.PermissionPending() {
		if err := w.sensor.RequestPermission(w.ctx); err != nil {
			Logger().Debug("permission request skipped", "err", err)
		}
	}
	return w.spawn(ev)
}

// TouchEnd clears the touching state. A lifted finger counts as the pointer
// leaving, so the card returns to rest.
func (w *Widget) TouchEnd() {
	w.touching = false
	if w.pointerIn {
		w.PointerLeave()
	}
}

// PointerEnter starts the hover scale.
func (w *Widget) PointerEnter() {
	if !w.mounted {
		return
	}
	w.pointerIn = true
	w.tilt.Enter()
}

// PointerLeave returns the card to rest.
func (w *Widget) PointerLeave() {
	w.pointerIn = false
	w.setPressed(false)
	w.tilt.Release()
}

// ContextMenu reports whether the native context menu must be suppressed for
// target. Everything inside the widget is protected.
func (w *Widget) ContextMenu(target Target) bool {
	return target != TargetOutside
}

// DragStart reports whether a native drag must be suppressed for target.
func (w *Widget) DragStart(target Target) bool {
	return target != TargetOutside
}

// PromptTap handles a tap on the "tap to enable" button. It starts a
// permission request bound to the mount lifetime.
func (w *Widget) PromptTap() error {
	if !w.mounted {
		return ErrNotMounted
	}
	if !w.sensor.PromptVisible() {
		return nil
	}
	err := w.sensor.RequestPermission(w.ctx)
	if errors.Is(err, ErrPermissionCooldown) || errors.Is(err, ErrPermissionPending) {
		Logger().Debug("permission request throttled", "err", err)
	}
	return err
}

func (w *Widget) setPressed(p bool) {
	if p && !w.tilt.Hovering() {
		return
	}
	if p == w.pressed {
		return
	}
	w.pressed = p
	to := 1.0
	if p {
		to = w.cfg.TapScale
	}
	w.tapTween = gween.New(float32(w.tapScale), float32(to), float32(tapDuration.Seconds()), BezierGlass.TweenFunc())
}

// Update advances the widget by dt seconds: it applies finished permission
// requests, sweeps expired ripples and steps every animation.
func (w *Widget) Update(dt float64) {
	if !w.mounted {
		return
	}
	if w.sensor.Poll() {
		w.emit(WidgetEvent{Type: EventPermissionChanged, Permission: w.sensor.Permission()})
	}
	w.ripples.Sweep()
	w.tilt.Update(dt)
	w.inView.Update(dt)
	w.ambient.Update(dt, w.inView.Visible())
	if w.tapTween != nil {
		v, done := w.tapTween.Update(float32(dt))
		w.tapScale = float64(v)
		if done {
			w.tapTween = nil
		}
	}
}

// RippleSprite is a ripple resolved for drawing. Center is in container
// pixels; Diameter already includes the animated scale.
type RippleSprite struct {
	Ripple   Ripple
	Center   Vec2
	Diameter float64
	Opacity  float64
}

// Frame is a read-only snapshot of everything the render step needs.
type Frame struct {
	Bounds        Rect
	Container     Transform
	Perspective   float64
	Layers        []LayerFrame
	Ripples       []RippleSprite
	Orbs          []Orb
	Opacity       float64
	EntranceScale float64
	InView        bool
	Touching      bool
	PromptVisible bool
	Image         image.Image
	Map           image.Image
	Filter        DisplacementFilterConfig
	Blur          float64
	AltText       string
}

// Frame builds the render model for the current state.
func (w *Widget) Frame() Frame {
	t := w.tilt.Transform()
	t.Scale *= w.tapScale
	f := Frame{
		Bounds:        w.bounds,
		Container:     t,
		Perspective:   w.cfg.Perspective,
		Layers:        ComposeLayers(t, w.layers),
		Orbs:          w.ambient.Orbs(),
		Opacity:       w.inView.Opacity(),
		EntranceScale: w.inView.Scale(),
		InView:        w.inView.Visible(),
		Touching:      w.touching,
		PromptVisible: w.sensor.PromptVisible(),
		Image:         w.image,
		Map:           w.dmap,
		Filter:        w.pipeline.Config(),
		Blur:          w.cfg.Blur,
		AltText:       w.cfg.AltText,
	}
	if w.bounds.Measured() {
		style := w.ripples.Style()
		base := style.Diameter(w.bounds.Width, w.bounds.Height)
		for _, r := range w.ripples.Active() {
			s := w.ripples.Sample(r)
			f.Ripples = append(f.Ripples, RippleSprite{
				Ripple:   r,
				Center:   PixelOffset(Vec2{r.X, r.Y}, w.bounds.Width, w.bounds.Height),
				Diameter: base * s.Scale,
				Opacity:  s.Opacity,
			})
		}
	}
	return f
}
