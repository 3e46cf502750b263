package liquidglass

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Input polls Ebitengine mouse and touch state once per frame and routes it
// to a widget: moves go through the window-level listener registry, presses
// and touches to the widget's entry points. Queued synthetic events (see
// InjectPress and friends) take precedence over real input.
type Input struct {
	widget    *Widget
	listeners *Listeners

	injectQueue []syntheticEvent

	mouseDown bool
	lastX     float64
	lastY     float64
	hasLast   bool

	touchIDs  []ebiten.TouchID
	touches   []Vec2
	touchDown bool

	viewport  Rect
	lastRatio float64
}

// NewInput creates an input router for w.
func NewInput(w *Widget) *Input {
	return &Input{widget: w, listeners: w.Listeners(), lastRatio: math.NaN()}
}

// SetViewport sets the visible screen region, used to derive how much of the
// widget is in view.
func (in *Input) SetViewport(r Rect) {
	in.viewport = r
}

// Update reads one frame of input. Call it before Widget.Update.
func (in *Input) Update() {
	in.updateViewport()
	if in.processInjected() {
		return
	}

	mx, my := ebiten.CursorPosition()
	in.pointer(float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))

	in.touchIDs = ebiten.AppendTouchIDs(in.touchIDs[:0])
	in.touches = in.touches[:0]
	for _, id := range in.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		in.touches = append(in.touches, Vec2{float64(tx), float64(ty)})
	}
	in.touch(in.touches)
}

// VisibleRatio returns the fraction of r inside viewport.
func VisibleRatio(r, viewport Rect) float64 {
	if !r.Measured() {
		return 0
	}
	x0 := math.Max(r.X, viewport.X)
	y0 := math.Max(r.Y, viewport.Y)
	x1 := math.Min(r.X+r.Width, viewport.X+viewport.Width)
	y1 := math.Min(r.Y+r.Height, viewport.Y+viewport.Height)
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	return (x1 - x0) * (y1 - y0) / (r.Width * r.Height)
}

func (in *Input) updateViewport() {
	if !in.viewport.Measured() {
		return
	}
	ratio := VisibleRatio(in.widget.Bounds(), in.viewport)
	if ratio == in.lastRatio {
		return
	}
	in.lastRatio = ratio
	in.listeners.DispatchViewport(ratio)
}

// pointer runs the mouse state machine for one sample.
func (in *Input) pointer(x, y float64, pressed bool) {
	if !in.hasLast || x != in.lastX || y != in.lastY {
		in.listeners.DispatchPointerMove(MouseEvent(x, y))
		in.lastX, in.lastY, in.hasLast = x, y, true
	}

	switch {
	case pressed && !in.mouseDown:
		in.mouseDown = true
		if in.widget.Bounds().Contains(x, y) {
			in.widget.PointerDown(MouseEvent(x, y))
		}
	case !pressed && in.mouseDown:
		in.mouseDown = false
		in.widget.PointerUp()
	}
}

// touch runs the touch state machine for one sample. An empty slice means
// every finger lifted.
func (in *Input) touch(points []Vec2) {
	if len(points) == 0 {
		if in.touchDown {
			in.touchDown = false
			in.widget.TouchEnd()
		}
		return
	}
	ev := TouchEvent(points...)
	if !in.touchDown {
		in.touchDown = true
		if in.widget.Bounds().Contains(points[0].X, points[0].Y) {
			in.widget.TouchStart(ev)
		}
	}
	in.listeners.DispatchPointerMove(ev)
}
