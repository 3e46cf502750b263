package liquidglass

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"
)

// Permission is the tri-state orientation permission.
type Permission uint8

const (
	PermissionUnknown Permission = iota // not yet requested (or desktop)
	PermissionDenied                    // request rejected or failed
	PermissionGranted                   // orientation events may drive tilt
)

// String returns the permission name.
func (p Permission) String() string {
	switch p {
	case PermissionUnknown:
		return "unknown"
	case PermissionDenied:
		return "denied"
	case PermissionGranted:
		return "granted"
	default:
		return fmt.Sprintf("Permission(%d)", uint8(p))
	}
}

// DefaultPermissionCooldown throttles repeated permission prompts.
const DefaultPermissionCooldown = time.Second

var mobileUserAgent = regexp.MustCompile(`(?i)iPhone|iPad|iPod|Android`)

// Capabilities describes what the host environment exposes for device
// orientation.
type Capabilities struct {
	// OrientationEvents is true when the host delivers orientation readings.
	OrientationEvents bool
	// PermissionAPI is true when the host requires an explicit, user-gesture
	// initiated permission request before delivering readings.
	PermissionAPI bool
}

// Platform is the result of the capability probe.
type Platform struct {
	Mobile bool
	Capabilities
}

// DetectPlatform classifies a user agent string. Only mobile platforms are
// eligible for orientation-driven tilt.
func DetectPlatform(userAgent string, caps Capabilities) Platform {
	return Platform{
		Mobile:       mobileUserAgent.MatchString(userAgent),
		Capabilities: caps,
	}
}

// PermissionRequester asks the host platform for orientation access. It may
// block until the user answers and may fail when not invoked from a user
// gesture; both outcomes must be reported rather than assumed.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (granted bool, err error)
}

// PermissionFunc adapts a function to the PermissionRequester interface.
type PermissionFunc func(ctx context.Context) (bool, error)

// RequestPermission calls f(ctx).
func (f PermissionFunc) RequestPermission(ctx context.Context) (bool, error) {
	return f(ctx)
}

// OrientationState is a snapshot of the sensor adapter.
type OrientationState struct {
	Supported  bool
	Permission Permission
	Enabled    bool
}

// OrientationReading is a raw device-orientation sample in degrees.
// Beta is the front-to-back pitch and Gamma the left-to-right roll.
type OrientationReading struct {
	Alpha, Beta, Gamma float64
}

type permissionResult struct {
	gen     uint64
	granted bool
	err     error
}

// OrientationSensor normalizes device-orientation access into a permission
// state and an enable flag. All methods except the platform request itself
// run on the update goroutine.
type OrientationSensor struct {
	platform Platform
	req      PermissionRequester
	clock    Clock
	cooldown time.Duration

	probed          bool
	supported       bool
	needsPermission bool
	permission      Permission

	inflight    bool
	gen         uint64
	cancel      context.CancelFunc
	lastRequest time.Time
	results     chan permissionResult

	hasBaseline bool
	baseBeta    float64
	baseGamma   float64
	lastReading time.Time
}

// NewOrientationSensor creates a sensor adapter for the given platform.
// req may be nil on platforms without a permission gate.
func NewOrientationSensor(p Platform, req PermissionRequester, clock Clock) *OrientationSensor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &OrientationSensor{
		platform: p,
		req:      req,
		clock:    clock,
		cooldown: DefaultPermissionCooldown,
		results:  make(chan permissionResult, 1),
	}
}

// SetCooldown sets the minimum interval between permission requests.
// Zero disables the cooldown.
func (s *OrientationSensor) SetCooldown(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.cooldown = d
}

// Platform returns the probed platform description.
func (s *OrientationSensor) Platform() Platform {
	return s.platform
}

// Probe runs the capability check. It is idempotent; only the first call has
// an effect. Returns true if the permission state changed.
func (s *OrientationSensor) Probe() bool {
	if s.probed {
		return false
	}
	s.probed = true

	if !s.platform.Mobile || !s.platform.OrientationEvents {
		Logger().Debug("orientation tilt unavailable",
			"mobile", s.platform.Mobile, "events", s.platform.OrientationEvents)
		return false
	}
	s.supported = true
	if s.platform.PermissionAPI {
		s.needsPermission = true
		return false
	}
	s.permission = PermissionGranted
	Logger().Debug("orientation tilt enabled without prompt")
	return true
}

// State returns a snapshot of the adapter.
func (s *OrientationSensor) State() OrientationState {
	return OrientationState{
		Supported:  s.supported,
		Permission: s.permission,
		Enabled:    s.Enabled(),
	}
}

// Enabled reports whether orientation readings drive the compositor.
func (s *OrientationSensor) Enabled() bool {
	return s.permission == PermissionGranted
}

// Permission returns the current permission state.
func (s *OrientationSensor) Permission() Permission {
	return s.permission
}

// PermissionPending reports whether a gated platform has not answered yet.
// The first touch on the widget triggers the request in this state.
func (s *OrientationSensor) PermissionPending() bool {
	return s.needsPermission && s.permission == PermissionUnknown && !s.inflight
}

// Requesting reports whether a permission request is in flight.
func (s *OrientationSensor) Requesting() bool {
	return s.inflight
}

// PromptVisible reports whether the "tap to enable" affordance should be
// shown. Never true on desktop.
func (s *OrientationSensor) PromptVisible() bool {
	return s.platform.Mobile && s.needsPermission && s.permission != PermissionGranted
}

// RequestPermission starts an asynchronous permission request and returns
// immediately. The outcome is applied by the next Poll. It must be called
// from a user gesture handler; platforms reject requests made elsewhere,
// which is recorded as a denial.
func (s *OrientationSensor) RequestPermission(ctx context.Context) error {
	if !s.platform.Mobile || !s.supported || s.permission == PermissionGranted {
		return nil
	}
	if !s.needsPermission {
		s.permission = PermissionGranted
		return nil
	}
	if s.inflight {
		return ErrPermissionPending
	}
	now := s.clock.Now()
	if s.cooldown > 0 && !s.lastRequest.IsZero() && now.Sub(s.lastRequest) < s.cooldown {
		return ErrPermissionCooldown
	}
	s.lastRequest = now
	s.inflight = true
	s.gen++

	gen := s.gen
	req := s.req
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	results := s.results

	go func() {
		defer cancel()
		res := permissionResult{gen: gen, err: ErrPermissionDenied}
		if req != nil {
			res.granted, res.err = req.RequestPermission(reqCtx)
		}
		// A cancelled request (teardown) must not park this goroutine on a
		// channel nobody drains anymore.
		select {
		case results <- res:
		case <-reqCtx.Done():
		}
	}()
	return nil
}

// Poll applies a finished permission request, if any. It never blocks.
// Returns true if the permission state changed.
func (s *OrientationSensor) Poll() bool {
	select {
	case res := <-s.results:
		if res.gen != s.gen || !s.inflight {
			return false
		}
		s.inflight = false
		s.cancel = nil
		prev := s.permission
		if res.err != nil || !res.granted {
			s.permission = PermissionDenied
			Logger().Debug("orientation permission denied", "err", res.err)
		} else {
			s.permission = PermissionGranted
			s.hasBaseline = false
			Logger().Debug("orientation permission granted")
		}
		return prev != s.permission
	default:
		return false
	}
}

// Close cancels any in-flight request. A result arriving afterwards is
// discarded.
func (s *OrientationSensor) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.inflight {
		s.inflight = false
		s.gen++
	}
}

// HandleOrientation converts a reading into pitch and roll deltas relative to
// the first reading seen after enabling. ok is false when orientation tilt is
// disabled or the reading is unusable.
func (s *OrientationSensor) HandleOrientation(r OrientationReading) (pitch, roll float64, ok bool) {
	if !s.Enabled() {
		return 0, 0, false
	}
	if !finite(r.Beta) || !finite(r.Gamma) {
		return 0, 0, false
	}
	if !s.hasBaseline {
		s.baseBeta = r.Beta
		s.baseGamma = r.Gamma
		s.hasBaseline = true
	}
	s.lastReading = s.clock.Now()
	return r.Beta - s.baseBeta, r.Gamma - s.baseGamma, true
}

// Recalibrate makes the next reading the new rest pose.
func (s *OrientationSensor) Recalibrate() {
	s.hasBaseline = false
}

// LastReading returns when the last accepted reading arrived.
func (s *OrientationSensor) LastReading() time.Time {
	return s.lastReading
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
