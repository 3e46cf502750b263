package liquidglass

import "errors"

var (
	// ErrUnmeasured is returned when an operation needs a laid-out container
	// but the bounds are still zero-sized.
	ErrUnmeasured = errors.New("liquidglass: container not measured")

	// ErrPermissionDenied reports that the platform rejected orientation access.
	ErrPermissionDenied = errors.New("liquidglass: orientation permission denied")

	// ErrPermissionCooldown is returned when a permission request arrives
	// before the cooldown since the previous request has elapsed.
	ErrPermissionCooldown = errors.New("liquidglass: permission request cooling down")

	// ErrPermissionPending is returned while an earlier request is in flight.
	ErrPermissionPending = errors.New("liquidglass: permission request in flight")

	// ErrNotMounted is returned by operations that require a mounted widget.
	ErrNotMounted = errors.New("liquidglass: widget not mounted")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("liquidglass: invalid config")

	// ErrNoMap reports that the displacement map could not be resolved.
	ErrNoMap = errors.New("liquidglass: displacement map unavailable")
)
