package dbgtext

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dbgtext/glyph"
	"github.com/gogpu/dbgtext/shader"
)

// defaultSampleMask enables every sample.
const defaultSampleMask = 0xFFFFFFFF

// batchRenderer owns the pipeline objects used to draw a batch and knows
// how to bind them.
type batchRenderer struct {
	vs      VertexShader
	layout  InputLayout
	ps      PixelShader
	atlas   ShaderResourceView
	sampler SamplerState
	depth   DepthStencilState
}

// glyphProgram returns the vertex and pixel stages of the glyph program,
// each carrying both the WGSL text and the compiled SPIR-V.
func glyphProgram() (vs, ps *ShaderSource, err error) {
	spirv, err := shader.SPIRV()
	if err != nil {
		return nil, nil, fmt.Errorf("dbgtext: %w", err)
	}
	src := shader.Source()
	vs = &ShaderSource{Label: "dbgtext_vs", WGSL: src, SPIRV: spirv, EntryPoint: shader.VertexEntryPoint}
	ps = &ShaderSource{Label: "dbgtext_ps", WGSL: src, SPIRV: spirv, EntryPoint: shader.FragmentEntryPoint}
	return vs, ps, nil
}

// initShaders creates the shader stages and input layout. On error the
// objects created so far stay in r and must be released with destroy.
func (r *batchRenderer) initShaders(dev Device) error {
	vsSrc, psSrc, err := glyphProgram()
	if err != nil {
		return err
	}
	if r.vs, err = dev.CreateVertexShader(vsSrc); err != nil {
		return fmt.Errorf("dbgtext: create vertex shader: %w", err)
	}
	if r.layout, err = dev.CreateInputLayout(InputElements(), vsSrc); err != nil {
		return fmt.Errorf("dbgtext: create input layout: %w", err)
	}
	if r.ps, err = dev.CreatePixelShader(psSrc); err != nil {
		return fmt.Errorf("dbgtext: create pixel shader: %w", err)
	}
	return nil
}

// initAtlas creates the atlas texture and the fixed sampler and
// depth-stencil states.
func (r *batchRenderer) initAtlas(dev Device, atlas *glyph.Atlas) error {
	var err error
	r.atlas, err = dev.CreateTexture(&TextureDesc{
		Label:  "dbgtext_atlas",
		Width:  uint32(atlas.Width),
		Height: uint32(atlas.Height),
		Format: gputypes.TextureFormatR8Unorm,
	}, atlas.Texels)
	if err != nil {
		return fmt.Errorf("dbgtext: create atlas texture: %w", err)
	}

	r.sampler, err = dev.CreateSamplerState(&SamplerDesc{
		Label:        "dbgtext_sampler",
		AddressModeU: gputypes.AddressModeRepeat,
		AddressModeV: gputypes.AddressModeRepeat,
		AddressModeW: gputypes.AddressModeRepeat,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMinClamp:  0,
		LodMaxClamp:  0,
	})
	if err != nil {
		return fmt.Errorf("dbgtext: create sampler: %w", err)
	}

	r.depth, err = dev.CreateDepthStencilState(&DepthStencilDesc{
		Label:             "dbgtext_depth",
		DepthTestEnabled:  false,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilEnabled:    false,
		StencilReadMask:   0xFF,
		StencilWriteMask:  0xFF,
	})
	if err != nil {
		return fmt.Errorf("dbgtext: create depth-stencil state: %w", err)
	}
	return nil
}

// destroyAtlas releases the objects created by initAtlas in reverse order.
func (r *batchRenderer) destroyAtlas() {
	release(r.depth)
	release(r.sampler)
	release(r.atlas)
	r.depth, r.sampler, r.atlas = nil, nil, nil
}

// destroyShaders releases the objects created by initShaders in reverse
// order.
func (r *batchRenderer) destroyShaders() {
	release(r.ps)
	release(r.layout)
	release(r.vs)
	r.ps, r.layout, r.vs = nil, nil, nil
}

// configure binds the glyph pipeline and vertex buffer vb on dc.
// The geometry stage is cleared and blend and rasterizer states are reset
// to their defaults.
func (r *batchRenderer) configure(dc DeviceContext, vb Buffer) {
	dc.SetVertexShader(r.vs)
	dc.SetGeometryShader(nil)
	dc.SetPixelShader(r.ps)
	dc.SetShaderResource(0, r.atlas)
	dc.SetSampler(0, r.sampler)
	dc.SetInputLayout(r.layout)
	dc.SetVertexBuffer(0, VertexBufferBinding{Buffer: vb, Stride: VertexStride, Offset: 0})
	dc.SetPrimitiveTopology(gputypes.PrimitiveTopologyTriangleList)
	dc.SetDepthStencilState(DepthStencilBinding{State: r.depth, StencilRef: 0})
	dc.SetBlendState(BlendBinding{State: nil, SampleMask: defaultSampleMask})
	dc.SetRasterizerState(nil)
}

// draw issues the single draw call for vertexCount vertices.
func (r *batchRenderer) draw(dc DeviceContext, vertexCount int) error {
	if err := dc.Draw(uint32(vertexCount), 0); err != nil {
		return fmt.Errorf("dbgtext: draw: %w", err)
	}
	return nil
}
