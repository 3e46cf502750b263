package liquidglass

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Duration is a time.Duration that reads and writes JSON as a Go duration
// string ("2s", "600ms"). Bare numbers are read as milliseconds.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("duration %s: want string or milliseconds", b)
	}
	*d = Duration(ms * float64(time.Millisecond))
	return nil
}

// Config is the widget configuration surface supplied by the host page.
type Config struct {
	ImageURL           string `json:"image_url"`
	AltText            string `json:"alt_text"`
	ContainerSizeClass string `json:"container_size_class"`

	MaxTiltAngle float64  `json:"max_tilt_angle"`
	Perspective  float64  `json:"perspective"`
	HoverScale   float64  `json:"hover_scale"`
	TapScale     float64  `json:"tap_scale"`
	Elasticity   float64  `json:"elasticity"`
	Transition   Duration `json:"transition"`

	DisplacementScale   float64 `json:"displacement_scale"`
	AberrationIntensity float64 `json:"aberration_intensity"`
	DisplacementMapURL  string  `json:"displacement_map_url"`
	Blur                float64 `json:"blur"`

	RippleStyle        string   `json:"ripple_style"`
	InViewThreshold    float64  `json:"in_view_threshold"`
	PermissionCooldown Duration `json:"permission_cooldown"`
	OrientationIdle    Duration `json:"orientation_idle"`
	AmbientSeed        int64    `json:"ambient_seed"`
}

// DefaultConfig returns the configuration of the tilt widget.
func DefaultConfig() Config {
	return Config{
		ContainerSizeClass:  "max-w-md",
		MaxTiltAngle:        15,
		Perspective:         1000,
		HoverScale:          1.02,
		TapScale:            0.98,
		Elasticity:          0.15,
		Transition:          Duration(2 * time.Second),
		DisplacementScale:   50,
		AberrationIntensity: 2,
		Blur:                12,
		RippleStyle:         RippleStyleLiquid.String(),
		InViewThreshold:     DefaultInViewThreshold,
		PermissionCooldown:  Duration(DefaultPermissionCooldown),
		OrientationIdle:     Duration(500 * time.Millisecond),
	}
}

// sizeClasses maps container max-width classes to pixel widths.
var sizeClasses = map[string]float64{
	"max-w-xs":  320,
	"max-w-sm":  384,
	"max-w-md":  448,
	"max-w-lg":  512,
	"max-w-xl":  576,
	"max-w-2xl": 672,
	"w-full":    0,
}

// MaxWidth resolves ContainerSizeClass to a pixel width. The class may list
// several responsive tokens; the widest known max-w token wins. Zero means
// unconstrained.
func (c Config) MaxWidth() float64 {
	width := 0.0
	for _, tok := range strings.Fields(c.ContainerSizeClass) {
		if i := strings.LastIndexByte(tok, ':'); i >= 0 {
			tok = tok[i+1:]
		}
		if w, ok := sizeClasses[tok]; ok && w > width {
			width = w
		}
	}
	return width
}

// ParseRippleStyle maps a style name to a RippleStyle.
func ParseRippleStyle(s string) (RippleStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "liquid":
		return RippleStyleLiquid, nil
	case "css":
		return RippleStyleCSS, nil
	default:
		return 0, fmt.Errorf("ripple style %q: %w", s, ErrInvalidConfig)
	}
}

// Validate reports every invalid field joined into one error.
func (c Config) Validate() error {
	var errs []error
	bad := func(field string, v any) {
		errs = append(errs, fmt.Errorf("%s = %v: %w", field, v, ErrInvalidConfig))
	}
	if !finite(c.MaxTiltAngle) || c.MaxTiltAngle < 0 || c.MaxTiltAngle > 90 {
		bad("max_tilt_angle", c.MaxTiltAngle)
	}
	if !finite(c.Perspective) || c.Perspective < 0 {
		bad("perspective", c.Perspective)
	}
	if !finite(c.HoverScale) || c.HoverScale <= 0 {
		bad("hover_scale", c.HoverScale)
	}
	if !finite(c.TapScale) || c.TapScale <= 0 {
		bad("tap_scale", c.TapScale)
	}
	if !finite(c.Elasticity) {
		bad("elasticity", c.Elasticity)
	}
	if c.Transition <= 0 {
		bad("transition", time.Duration(c.Transition))
	}
	if !finite(c.DisplacementScale) {
		bad("displacement_scale", c.DisplacementScale)
	}
	if !finite(c.AberrationIntensity) {
		bad("aberration_intensity", c.AberrationIntensity)
	}
	if !finite(c.Blur) || c.Blur < 0 {
		bad("blur", c.Blur)
	}
	if _, err := ParseRippleStyle(c.RippleStyle); err != nil {
		errs = append(errs, err)
	}
	if !(c.InViewThreshold > 0 && c.InViewThreshold <= 1) {
		bad("in_view_threshold", c.InViewThreshold)
	}
	if c.PermissionCooldown < 0 {
		bad("permission_cooldown", time.Duration(c.PermissionCooldown))
	}
	if c.OrientationIdle < 0 {
		bad("orientation_idle", time.Duration(c.OrientationIdle))
	}
	return errors.Join(errs...)
}

// Tilt returns the compositor settings.
func (c Config) Tilt() TiltConfig {
	return TiltConfig{
		MaxAngle:        c.MaxTiltAngle,
		Perspective:     c.Perspective,
		HoverScale:      c.HoverScale,
		Elasticity:      c.Elasticity,
		Transition:      time.Duration(c.Transition),
		OrientationIdle: time.Duration(c.OrientationIdle),
	}
}

// Filter returns the displacement pipeline settings.
func (c Config) Filter() DisplacementFilterConfig {
	return DisplacementFilterConfig{
		Scale:               c.DisplacementScale,
		AberrationIntensity: c.AberrationIntensity,
		MapURL:              c.DisplacementMapURL,
	}
}

// ReadConfig decodes a JSON config over the defaults and validates it.
// Unknown fields are rejected.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and validates a JSON config file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
