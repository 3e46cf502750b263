package liquidglass

import "fmt"

// ParallaxLayer is one visual stratum of the tilt card. Depth multiplies the
// container tilt: 0 is fixed to the card, larger values move more.
type ParallaxLayer struct {
	Name  string
	Depth float64
}

// Default layer names.
const (
	LayerBase     = "base"
	LayerLiquid   = "liquid"
	LayerFloating = "floating"
)

// DefaultLayers returns the image, liquid overlay and floating orb layers.
func DefaultLayers() []ParallaxLayer {
	return []ParallaxLayer{
		{Name: LayerBase, Depth: 0},
		{Name: LayerLiquid, Depth: 0.3},
		{Name: LayerFloating, Depth: 0.6},
	}
}

// ValidateLayers checks that depths are finite, non-negative and
// monotonically non-decreasing in declaration order.
func ValidateLayers(layers []ParallaxLayer) error {
	prev := 0.0
	for i, l := range layers {
		if !finite(l.Depth) || l.Depth < 0 {
			return fmt.Errorf("layer %q: depth %v: %w", l.Name, l.Depth, ErrInvalidConfig)
		}
		if i > 0 && l.Depth < prev {
			return fmt.Errorf("layer %q: depth %v below previous %v: %w", l.Name, l.Depth, prev, ErrInvalidConfig)
		}
		prev = l.Depth
	}
	return nil
}

// LayerFrame is the resolved transform of one layer for a frame.
type LayerFrame struct {
	Layer     ParallaxLayer
	Transform Transform
}

// ComposeLayers resolves every layer against the container transform. Layer
// transforms are relative to the card: a depth 0 layer moves only with the
// card itself.
func ComposeLayers(t Transform, layers []ParallaxLayer) []LayerFrame {
	out := make([]LayerFrame, len(layers))
	for i, l := range layers {
		out[i] = LayerFrame{Layer: l, Transform: t.AtDepth(l.Depth)}
	}
	return out
}
