// Package shader holds the glyph program used to draw debug text.
//
// The program is written in WGSL and compiled to SPIR-V with naga on first
// use. Binding layout (group 0):
//
//	binding 0: texture_2d<f32>  glyph atlas, coverage in the red channel
//	binding 1: sampler          point filtering, repeat addressing
package shader

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gogpu/naga"
)

// Entry points and bindings of the glyph program.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"

	AtlasBinding   = 0
	SamplerBinding = 1
)

//go:embed glyph.wgsl
var source string

// Source returns the WGSL source of the glyph program.
func Source() string { return source }

var compiled = sync.OnceValues(func() ([]uint32, error) {
	return Compile(source)
})

// SPIRV returns the compiled glyph program. Compilation happens once; the
// returned slice is shared and must not be modified.
func SPIRV() ([]uint32, error) {
	return compiled()
}

// Compile compiles WGSL source to SPIR-V words.
func Compile(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("shader: compile glyph program: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("shader: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
