package dbgtext

import "errors"

// Errors reported by [Context]. Device failures are wrapped, so callers
// should test with errors.Is.
var (
	// ErrNoDevice is returned when a Context is created without a device or
	// device context, or used after Destroy.
	ErrNoDevice = errors.New("dbgtext: no device")

	// ErrInvalidCapacity is returned by New for a capacity below one glyph.
	ErrInvalidCapacity = errors.New("dbgtext: capacity must be at least one glyph")

	// ErrInvalidViewport is returned by the print functions for a viewport
	// with a non-positive width or height.
	ErrInvalidViewport = errors.New("dbgtext: viewport has no area")

	// ErrCapacityExceeded is returned when a print does not fit into the
	// remaining glyph capacity of the current batch.
	ErrCapacityExceeded = errors.New("dbgtext: glyph capacity exceeded")

	// ErrMapFailed is returned when the vertex buffer cannot be mapped for
	// writing. It wraps the device error.
	ErrMapFailed = errors.New("dbgtext: map vertex buffer")

	// ErrNoRenderTarget is returned by Render when the device context has no
	// render target bound.
	ErrNoRenderTarget = errors.New("dbgtext: no render target bound")
)
