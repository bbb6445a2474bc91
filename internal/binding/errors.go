package binding

import "errors"

// Device errors shared by the backends, which re-export them.
var (
	// ErrUnsupported is returned when a descriptor or pipeline state needs a
	// feature the device does not implement.
	ErrUnsupported = errors.New("dbgtext device: unsupported")

	// ErrForeignObject is returned when an object created by another device
	// is used.
	ErrForeignObject = errors.New("dbgtext device: object not created by this device")

	// ErrMapped is returned when mapping a buffer that is already mapped,
	// or drawing from one.
	ErrMapped = errors.New("dbgtext device: buffer is mapped")

	// ErrNotMappable is returned when mapping a buffer created without
	// write-map usage.
	ErrNotMappable = errors.New("dbgtext device: buffer not mappable for writing")

	// ErrIncompleteState is returned by Draw when a required binding is missing.
	ErrIncompleteState = errors.New("dbgtext device: pipeline state incomplete")

	// ErrVertexRange is returned by Draw when a vertex lies outside the
	// bound vertex buffer.
	ErrVertexRange = errors.New("dbgtext device: vertex outside buffer")

	// ErrNoRenderTarget is returned by Draw without a bound render target.
	ErrNoRenderTarget = errors.New("dbgtext device: no render target")

	// ErrLeak is returned by Close when device objects are still alive.
	ErrLeak = errors.New("dbgtext device: objects still alive")
)
