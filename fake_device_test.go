package dbgtext

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

var errInjected = errors.New("injected failure")

// fakeObject is a reference-counted device object.
type fakeObject struct {
	dev   *fakeDevice
	kind  ResourceKind
	label string
	refs  int
	data  []byte
	desc  any
}

func (o *fakeObject) Kind() ResourceKind { return o.kind }

func (o *fakeObject) AddRef() {
	if o.refs <= 0 {
		o.dev.errorf("AddRef on destroyed %s %q", o.kind, o.label)
	}
	o.refs++
}

func (o *fakeObject) Release() {
	o.refs--
	switch {
	case o.refs == 0:
		o.dev.live--
	case o.refs < 0:
		o.dev.errorf("Release on destroyed %s %q", o.kind, o.label)
	}
}

func (o *fakeObject) String() string { return fmt.Sprintf("%s(%s)", o.kind, o.label) }

// fakeDevice creates fakeObjects and counts the live ones.
type fakeDevice struct {
	live     int
	objects  []*fakeObject
	failKind ResourceKind
	errs     []string
}

func (d *fakeDevice) errorf(format string, args ...any) {
	d.errs = append(d.errs, fmt.Sprintf(format, args...))
}

func (d *fakeDevice) create(kind ResourceKind, label string, desc any) (*fakeObject, error) {
	if kind == d.failKind {
		return nil, fmt.Errorf("create %s: %w", kind, errInjected)
	}
	o := &fakeObject{dev: d, kind: kind, label: label, refs: 1, desc: desc}
	d.live++
	d.objects = append(d.objects, o)
	return o, nil
}

// host creates an object owned by the test, standing in for state the
// host application binds.
func (d *fakeDevice) host(kind ResourceKind, label string) *fakeObject {
	o, _ := d.create(kind, label, nil)
	return o
}

func (d *fakeDevice) find(label string) *fakeObject {
	for _, o := range d.objects {
		if o.label == label {
			return o
		}
	}
	return nil
}

func (d *fakeDevice) CreateVertexShader(src *ShaderSource) (VertexShader, error) {
	o, err := d.create(KindVertexShader, src.Label, src)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (d *fakeDevice) CreatePixelShader(src *ShaderSource) (PixelShader, error) {
	o, err := d.create(KindPixelShader, src.Label, src)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (d *fakeDevice) CreateInputLayout(elements []InputElement, _ *ShaderSource) (InputLayout, error) {
	o, err := d.create(KindInputLayout, "input_layout", elements)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (d *fakeDevice) CreateBuffer(desc *BufferDesc) (Buffer, error) {
	o, err := d.create(KindBuffer, desc.Label, *desc)
	if err != nil {
		return nil, err
	}
	o.data = make([]byte, desc.Size)
	return o, nil
}

func (d *fakeDevice) CreateTexture(desc *TextureDesc, texels []byte) (ShaderResourceView, error) {
	o, err := d.create(KindShaderResourceView, desc.Label, *desc)
	if err != nil {
		return nil, err
	}
	o.data = append([]byte(nil), texels...)
	return o, nil
}

func (d *fakeDevice) CreateSamplerState(desc *SamplerDesc) (SamplerState, error) {
	o, err := d.create(KindSamplerState, desc.Label, *desc)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (d *fakeDevice) CreateDepthStencilState(desc *DepthStencilDesc) (DepthStencilState, error) {
	o, err := d.create(KindDepthStencilState, desc.Label, *desc)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// drawCall is the pipeline state seen by one Draw.
type drawCall struct {
	vertexCount uint32
	vs          VertexShader
	gs          GeometryShader
	ps          PixelShader
	view        ShaderResourceView
	sampler     SamplerState
	layout      InputLayout
	vertices    VertexBufferBinding
	topology    gputypes.PrimitiveTopology
	blend       BlendBinding
	depth       DepthStencilBinding
	raster      RasterizerState
	data        []byte
}

// fakeContext records bindings the way an immediate context does: bound
// objects hold a reference, getters add one for the caller.
type fakeContext struct {
	dev *fakeDevice

	vs       VertexShader
	gs       GeometryShader
	ps       PixelShader
	view     ShaderResourceView
	sampler  SamplerState
	layout   InputLayout
	vertices VertexBufferBinding
	topology gputypes.PrimitiveTopology
	blend    BlendBinding
	depth    DepthStencilBinding
	raster   RasterizerState
	vps      []Viewport
	rtv      RenderTargetView

	mapped  map[Buffer]bool
	failMap bool
	calls   []string
	draws   []drawCall
}

func newFakeContext(dev *fakeDevice) *fakeContext {
	return &fakeContext{dev: dev, mapped: make(map[Buffer]bool)}
}

// ref adds a reference for a getter's caller.
func ref[T Resource](v T) T {
	if any(v) != nil {
		v.AddRef()
	}
	return v
}

// bind replaces *dst with v, moving the context's reference.
func bind[T Resource](dst *T, v T) {
	if any(v) != nil {
		v.AddRef()
	}
	if any(*dst) != nil {
		(*dst).Release()
	}
	*dst = v
}

func (c *fakeContext) record(call string) { c.calls = append(c.calls, call) }

func (c *fakeContext) VertexShader() VertexShader { return ref(c.vs) }
func (c *fakeContext) SetVertexShader(v VertexShader) {
	c.record("VS")
	bind(&c.vs, v)
}
func (c *fakeContext) GeometryShader() GeometryShader { return ref(c.gs) }
func (c *fakeContext) SetGeometryShader(v GeometryShader) {
	c.record("GS")
	bind(&c.gs, v)
}
func (c *fakeContext) PixelShader() PixelShader { return ref(c.ps) }
func (c *fakeContext) SetPixelShader(v PixelShader) {
	c.record("PS")
	bind(&c.ps, v)
}

func (c *fakeContext) ShaderResource(slot uint32) ShaderResourceView {
	if slot != 0 {
		return nil
	}
	return ref(c.view)
}

func (c *fakeContext) SetShaderResource(slot uint32, v ShaderResourceView) {
	c.record("SRV")
	if slot == 0 {
		bind(&c.view, v)
	}
}

func (c *fakeContext) Sampler(slot uint32) SamplerState {
	if slot != 0 {
		return nil
	}
	return ref(c.sampler)
}

func (c *fakeContext) SetSampler(slot uint32, v SamplerState) {
	c.record("Sampler")
	if slot == 0 {
		bind(&c.sampler, v)
	}
}

func (c *fakeContext) InputLayout() InputLayout { return ref(c.layout) }
func (c *fakeContext) SetInputLayout(v InputLayout) {
	c.record("IL")
	bind(&c.layout, v)
}

func (c *fakeContext) VertexBuffer(slot uint32) VertexBufferBinding {
	if slot != 0 {
		return VertexBufferBinding{}
	}
	b := c.vertices
	b.Buffer = ref(b.Buffer)
	return b
}

func (c *fakeContext) SetVertexBuffer(slot uint32, b VertexBufferBinding) {
	c.record("VB")
	if slot == 0 {
		bind(&c.vertices.Buffer, b.Buffer)
		c.vertices.Stride, c.vertices.Offset = b.Stride, b.Offset
	}
}

func (c *fakeContext) PrimitiveTopology() gputypes.PrimitiveTopology { return c.topology }
func (c *fakeContext) SetPrimitiveTopology(t gputypes.PrimitiveTopology) {
	c.record("Topology")
	c.topology = t
}

func (c *fakeContext) BlendState() BlendBinding {
	b := c.blend
	b.State = ref(b.State)
	return b
}

func (c *fakeContext) SetBlendState(b BlendBinding) {
	c.record("Blend")
	bind(&c.blend.State, b.State)
	c.blend.Factor, c.blend.SampleMask = b.Factor, b.SampleMask
}

func (c *fakeContext) DepthStencilState() DepthStencilBinding {
	b := c.depth
	b.State = ref(b.State)
	return b
}

func (c *fakeContext) SetDepthStencilState(b DepthStencilBinding) {
	c.record("DepthStencil")
	bind(&c.depth.State, b.State)
	c.depth.StencilRef = b.StencilRef
}

func (c *fakeContext) RasterizerState() RasterizerState { return ref(c.raster) }
func (c *fakeContext) SetRasterizerState(v RasterizerState) {
	c.record("Raster")
	bind(&c.raster, v)
}

func (c *fakeContext) Viewports() []Viewport { return append([]Viewport(nil), c.vps...) }
func (c *fakeContext) SetViewports(v []Viewport) {
	c.record("Viewports")
	c.vps = append([]Viewport(nil), v...)
}

func (c *fakeContext) RenderTarget() RenderTargetView { return ref(c.rtv) }

func (c *fakeContext) setRenderTarget(v RenderTargetView) { bind(&c.rtv, v) }

func (c *fakeContext) Map(buf Buffer, mode gputypes.MapMode) ([]byte, error) {
	if c.failMap {
		return nil, errInjected
	}
	if mode != gputypes.MapModeWrite {
		return nil, fmt.Errorf("unexpected map mode %v", mode)
	}
	if c.mapped[buf] {
		c.dev.errorf("Map of mapped buffer")
	}
	c.mapped[buf] = true
	o := buf.(*fakeObject)
	clear(o.data)
	return o.data, nil
}

func (c *fakeContext) Unmap(buf Buffer) {
	if !c.mapped[buf] {
		c.dev.errorf("Unmap of unmapped buffer")
	}
	delete(c.mapped, buf)
}

func (c *fakeContext) Draw(vertexCount, startVertex uint32) error {
	if startVertex != 0 {
		c.dev.errorf("Draw start vertex %d", startVertex)
	}
	var data []byte
	if vb := c.vertices.Buffer; vb != nil {
		if c.mapped[vb] {
			c.dev.errorf("Draw from mapped buffer")
		}
		data = append(data, vb.(*fakeObject).data...)
	}
	c.draws = append(c.draws, drawCall{
		vertexCount: vertexCount,
		vs:          c.vs,
		gs:          c.gs,
		ps:          c.ps,
		view:        c.view,
		sampler:     c.sampler,
		layout:      c.layout,
		vertices:    c.vertices,
		topology:    c.topology,
		blend:       c.blend,
		depth:       c.depth,
		raster:      c.raster,
		data:        data,
	})
	return nil
}

// unbindAll drops every binding the context holds.
func (c *fakeContext) unbindAll() {
	c.SetVertexShader(nil)
	c.SetGeometryShader(nil)
	c.SetPixelShader(nil)
	c.SetShaderResource(0, nil)
	c.SetSampler(0, nil)
	c.SetInputLayout(nil)
	c.SetVertexBuffer(0, VertexBufferBinding{})
	c.SetBlendState(BlendBinding{})
	c.SetDepthStencilState(DepthStencilBinding{})
	c.SetRasterizerState(nil)
	c.setRenderTarget(nil)
}
