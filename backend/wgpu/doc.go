// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements dbgtext.Device and dbgtext.DeviceContext on top
// of the gogpu/wgpu hardware abstraction layer.
//
// The HAL has no immediate context, so the Context in this package records
// bindings on the CPU and turns each Draw into one render pass: it looks up
// (or builds) a render pipeline for the bound shaders, input layout,
// sample mask and render target format, a bind group for the bound atlas
// view and sampler, and submits the pass with the bound viewport.
//
// Buffers created with write-map usage keep a CPU shadow copy. Map returns
// the shadow, and Unmap uploads it with Queue.WriteBuffer, since WebGPU does
// not allow mappable vertex buffers.
//
// Triangles are front facing when clockwise on screen and back faces are
// culled, matching the default rasterizer state of an immediate context.
//
// A Device is created from an opened hal device and queue:
//
//	dev := wgpu.New(halDevice, halQueue)
//
// or from a gogpu device provider that exposes its HAL objects:
//
//	dev, err := wgpu.NewFromProvider(provider)
//
// The package also registers the "wgpu" backend. Its targets run on the
// first GPU adapter of a registered HAL backend, or on the HAL software
// rasterizer when none is available.
package wgpu
