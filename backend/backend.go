package backend

import (
	"errors"
	"image"
	"image/color"

	"github.com/gogpu/dbgtext"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrInvalidSize is returned when a target would have no pixels.
	ErrInvalidSize = errors.New("backend: target size must be positive")

	// ErrClosed is returned by a Target after Close.
	ErrClosed = errors.New("backend: target closed")
)

// Backend name constants.
const (
	// BackendSoft is the name of the CPU reference device.
	BackendSoft = "soft"
	// BackendWGPU is the name of the device built on the gogpu/wgpu HAL.
	BackendWGPU = "wgpu"
)

// Target is an offscreen frame together with the device that draws into it.
//
// A Target binds its render target and a full-size viewport on its device
// context when it is opened, so a dbgtext.Context can render into it
// without further setup.
type Target interface {
	// Name returns the backend identifier (e.g., "soft", "wgpu").
	Name() string

	// Device returns the device used to create dbgtext resources.
	Device() dbgtext.Device

	// Context returns the device context that owns the render target.
	Context() dbgtext.DeviceContext

	// Viewport returns the full-size viewport of the frame.
	Viewport() dbgtext.Viewport

	// Clear fills the whole frame with c.
	Clear(c color.Color) error

	// Snapshot returns a copy of the current frame contents.
	Snapshot() (*image.RGBA, error)

	// Close releases the render target and the device.
	// The Target should not be used after Close is called.
	Close() error
}
