package liquidglass

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// scriptStep is a single action in an interaction script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Beta   float64 `json:"beta,omitempty"`
	Gamma  float64 `json:"gamma,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

var scriptActions = map[string]bool{
	"click":       true,
	"tap":         true,
	"hover":       true,
	"orientation": true,
	"prompt":      true,
	"wait":        true,
	"screenshot":  true,
}

// Script sequences injected input and screenshots across frames for
// automated visual testing.
type Script struct {
	// Screenshot is called for every "screenshot" step. Nil skips them.
	Screenshot func(label string)

	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON interaction script:
//
//	{"steps": [
//	  {"action": "hover", "fromX": 0, "fromY": 0, "toX": 200, "toY": 150, "frames": 30},
//	  {"action": "click", "x": 200, "y": 150},
//	  {"action": "wait", "frames": 60},
//	  {"action": "screenshot", "label": "ripple"}
//	]}
func LoadScript(data []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range f.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Done reports whether every step has run.
func (s *Script) Done() bool {
	return s.done
}

// Step advances the script by one frame. Call it before Input.Update.
func (s *Script) Step(in *Input) {
	if s.done {
		return
	}
	if in.Pending() > 0 {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "screenshot":
		if s.Screenshot != nil {
			s.Screenshot(st.Label)
		}
	case "click":
		in.InjectClick(st.X, st.Y)
	case "tap":
		in.InjectTap(st.X, st.Y)
	case "hover":
		in.InjectHover(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "orientation":
		in.InjectOrientation(OrientationReading{Beta: st.Beta, Gamma: st.Gamma})
	case "prompt":
		if err := in.widget.PromptTap(); err != nil {
			Logger().Debug("script prompt tap", "err", err)
		}
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && in.Pending() == 0 {
		s.done = true
	}
}

// ScreenshotPath builds a timestamped PNG path for a screenshot label.
func ScreenshotPath(dir, label string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.png", at.Format("20060102_150405"), sanitizeLabel(label)))
}
