package liquidglass

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

func TestLoadPromptFace(t *testing.T) {
	face, err := loadPromptFace(promptFontSize)
	if err != nil {
		t.Fatal(err)
	}
	if face.Size != promptFontSize {
		t.Errorf("Size = %v, want %v", face.Size, promptFontSize)
	}
	m := face.Metrics()
	w, h := text.Measure(promptText, face, m.HAscent+m.HDescent+m.HLineGap)
	if w <= 0 || h <= 0 {
		t.Errorf("measured %vx%v", w, h)
	}
}

func TestLayerShift(t *testing.T) {
	r := &EbitenRenderer{}
	f := &Frame{Layers: ComposeLayers(Transform{RotateY: 10, TranslateX: 5, Scale: 1}, DefaultLayers())}

	base := r.layerShift(f, LayerBase)
	assertNear(t, "base x", base.X, 0)

	floating := r.layerShift(f, LayerFloating)
	want := 0.6*5 + math.Tan(0.6*10*math.Pi/180)*LayerLift
	assertNear(t, "floating x", floating.X, want)
	assertNear(t, "floating y", floating.Y, 0)

	liquid := r.layerShift(f, LayerLiquid)
	if !(liquid.X > 0 && liquid.X < floating.X) {
		t.Errorf("liquid shift %v should sit between base and floating", liquid.X)
	}

	if got := r.layerShift(f, "missing"); got != (Vec2{}) {
		t.Errorf("unknown layer shift = %v", got)
	}
}

func TestLiquidPaddingFollowsBlur(t *testing.T) {
	r := NewEbitenRenderer()
	if got := r.liquidPadding(); got != 0 {
		t.Errorf("padding without blur = %d, want 0", got)
	}
	r.blur.Radius = 6
	if got := r.liquidPadding(); got != 6 {
		t.Errorf("padding = %d, want the blur radius 6", got)
	}
}
