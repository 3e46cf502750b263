package liquidglass

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultLayersValid(t *testing.T) {
	layers := DefaultLayers()
	if err := ValidateLayers(layers); err != nil {
		t.Fatal(err)
	}
	want := []string{LayerBase, LayerLiquid, LayerFloating}
	for i, l := range layers {
		if l.Name != want[i] {
			t.Errorf("layer %d = %q, want %q", i, l.Name, want[i])
		}
	}
}

func TestValidateLayers(t *testing.T) {
	tests := []struct {
		name   string
		layers []ParallaxLayer
		ok     bool
	}{
		{"empty", nil, true},
		{"equal depths", []ParallaxLayer{{"a", 0.5}, {"b", 0.5}}, true},
		{"negative", []ParallaxLayer{{"a", -0.1}}, false},
		{"decreasing", []ParallaxLayer{{"a", 0.6}, {"b", 0.3}}, false},
		{"nan", []ParallaxLayer{{"a", math.NaN()}}, false},
		{"inf", []ParallaxLayer{{"a", 0}, {"b", math.Inf(1)}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayers(tt.layers)
			if (err == nil) != tt.ok {
				t.Fatalf("err = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestComposeLayers(t *testing.T) {
	tr := Transform{RotateX: 10, RotateY: 12, TranslateX: 6, TranslateY: -3, Scale: 1.02}
	frames := ComposeLayers(tr, DefaultLayers())
	if len(frames) != 3 {
		t.Fatalf("len = %d, want 3", len(frames))
	}
	if !frames[0].Transform.IsIdentity() {
		t.Errorf("base layer = %+v, want identity relative to the card", frames[0].Transform)
	}
	assertNear(t, "liquid RotateY", frames[1].Transform.RotateY, 3.6)
	assertNear(t, "floating RotateY", frames[2].Transform.RotateY, 7.2)
	assertNear(t, "floating TranslateX", frames[2].Transform.TranslateX, 3.6)

	for i := 1; i < len(frames); i++ {
		if math.Abs(frames[i].Transform.RotateY) < math.Abs(frames[i-1].Transform.RotateY) {
			t.Error("deeper layers must move at least as much as shallower ones")
		}
	}
}

func TestComposeLayersAtRest(t *testing.T) {
	for _, f := range ComposeLayers(IdentityTransform, DefaultLayers()) {
		if !f.Transform.IsIdentity() {
			t.Errorf("layer %q = %+v at rest", f.Layer.Name, f.Transform)
		}
	}
}
