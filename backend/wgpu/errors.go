// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"

	"github.com/gogpu/dbgtext/internal/binding"
)

// ErrNoHAL is returned by NewFromProvider when the provider does not
// expose a hal.Device and hal.Queue.
var ErrNoHAL = errors.New("wgpu: provider does not expose HAL device and queue")

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
