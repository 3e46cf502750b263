// Package liquidglass is an interactive "liquid glass" image card for
// [Ebitengine].
//
// A [Widget] shows one image inside a container that tilts in 3D toward the
// pointer (or with the device on mobile, once orientation permission is
// granted), spawns expanding liquid ripples where it is clicked or touched,
// and runs the image through a chromatic-aberration displacement filter.
//
// # Quick start
//
//	cfg := liquidglass.DefaultConfig()
//	cfg.ImageURL = "photo.jpg"
//
//	w, err := liquidglass.NewWidget(cfg,
//		liquidglass.WithAssetLoader(liquidglass.FileLoader{Root: "assets"}),
//		liquidglass.WithRenderer(liquidglass.NewEbitenRenderer()),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	w.SetBounds(liquidglass.Rect{X: 80, Y: 60, Width: 448, Height: 336})
//	if err := w.Mount(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Unmount()
//
//	in := liquidglass.NewInput(w)
//
// Then, from your [ebiten.Game]:
//
//	func (g *Game) Update() error {
//		g.in.Update()
//		g.w.Update(1 / float64(ebiten.TPS()))
//		return nil
//	}
//	func (g *Game) Draw(screen *ebiten.Image) { g.w.Draw(screen) }
//
// # Components
//
// The widget composes five parts, each usable on its own:
//
//   - [OrientationSensor] probes the platform and gates device-orientation
//     readings behind an asynchronous permission request.
//   - [Normalize] and [CenterOffset] turn mouse and touch events into
//     container percentages and center-relative offsets.
//   - [RippleManager] owns the active ripple set and expires it against an
//     injectable [Clock].
//   - [Tilt] and [ComposeLayers] produce the container transform and the
//     per-layer parallax offsets.
//   - [Pipeline] describes the displacement filter as a named pass graph
//     that runs on a [Backend]: [CPUBackend] for deterministic output,
//     [EbitenBackend] for Kage shaders on the GPU.
//
// Window-level subscriptions go through a [Listeners] registry so that
// [Widget.Unmount] can be verified to release every one of them.
//
// Tweens use [gween]. Widget events can be forwarded into a [Donburi] world
// with the adapter in liquidglass/ecs.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package liquidglass
