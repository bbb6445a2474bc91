package soft

import (
	"errors"

	"github.com/gogpu/dbgtext/internal/binding"
)

// ErrUnsupportedShader is returned for shader sources other than the
// dbgtext glyph program.
var ErrUnsupportedShader = errors.New("soft: only the glyph program is supported")

// Errors shared with the other devices.
var (
	ErrUnsupported     = binding.ErrUnsupported
	ErrForeignObject   = binding.ErrForeignObject
	ErrMapped          = binding.ErrMapped
	ErrNotMappable     = binding.ErrNotMappable
	ErrIncompleteState = binding.ErrIncompleteState
	ErrVertexRange     = binding.ErrVertexRange
	ErrNoRenderTarget  = binding.ErrNoRenderTarget
	ErrLeak            = binding.ErrLeak
)
