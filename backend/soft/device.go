package soft

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dbgtext"
	"github.com/gogpu/dbgtext/shader"
)

// Device creates reference-counted objects and owns one immediate
// Context.
type Device struct {
	live    int
	failOn  map[dbgtext.ResourceKind]error
	failMap error
	ctx     *Context
}

// New creates a device with an empty immediate context.
func New() *Device {
	d := &Device{failOn: make(map[dbgtext.ResourceKind]error)}
	d.ctx = newContext(d)
	return d
}

// Context returns the immediate device context.
func (d *Device) Context() *Context { return d.ctx }

// LiveObjects returns the number of objects that have not been destroyed.
func (d *Device) LiveObjects() int { return d.live }

// FailOn makes every creation of kind fail with err. A nil err removes the
// failure.
func (d *Device) FailOn(kind dbgtext.ResourceKind, err error) {
	if err == nil {
		delete(d.failOn, kind)
		return
	}
	d.failOn[kind] = err
}

// FailMap makes every Map fail with err. A nil err removes the failure.
func (d *Device) FailMap(err error) { d.failMap = err }

// object is the reference-counted base of every device object.
type object struct {
	dev   *Device
	kind  dbgtext.ResourceKind
	label string
	refs  int
}

func (o *object) Kind() dbgtext.ResourceKind { return o.kind }

func (o *object) AddRef() {
	if o.refs <= 0 {
		panic(fmt.Sprintf("soft: AddRef on destroyed %s %q", o.kind, o.label))
	}
	o.refs++
}

func (o *object) Release() {
	if o.refs <= 0 {
		panic(fmt.Sprintf("soft: Release on destroyed %s %q", o.kind, o.label))
	}
	o.refs--
	if o.refs == 0 {
		o.dev.live--
	}
}

func (o *object) String() string { return fmt.Sprintf("%s %q", o.kind, o.label) }

// Owner returns the device that created o.
func (o *object) Owner() *Device { return o.dev }

// newObject returns a live object with one reference, or the injected
// failure for kind.
func (d *Device) newObject(kind dbgtext.ResourceKind, label string) (object, error) {
	if err := d.failOn[kind]; err != nil {
		return object{}, fmt.Errorf("soft: create %s: %w", kind, err)
	}
	d.live++
	return object{dev: d, kind: kind, label: label, refs: 1}, nil
}

type vertexShader struct{ object }

type pixelShader struct{ object }

type inputLayout struct {
	object
	elements []dbgtext.InputElement
}

type buffer struct {
	object
	usage  gputypes.BufferUsage
	data   []byte
	mapped bool
}

type texture struct {
	object
	width, height int
	texels        []byte
}

type sampler struct {
	object
	desc dbgtext.SamplerDesc
}

type depthStencil struct {
	object
	desc dbgtext.DepthStencilDesc
}

// checkProgram accepts only the glyph program with the given entry point.
// Every form present in src must match the embedded program.
func checkProgram(src *dbgtext.ShaderSource, entry string) error {
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrUnsupportedShader)
	}
	if src.WGSL == "" && len(src.SPIRV) == 0 {
		return fmt.Errorf("%w: empty source", ErrUnsupportedShader)
	}
	if src.WGSL != "" && src.WGSL != shader.Source() {
		return ErrUnsupportedShader
	}
	if len(src.SPIRV) > 0 {
		spirv, err := shader.SPIRV()
		if err != nil {
			return fmt.Errorf("soft: %w", err)
		}
		if !slices.Equal(src.SPIRV, spirv) {
			return ErrUnsupportedShader
		}
	}
	if src.EntryPoint != entry {
		return fmt.Errorf("%w: entry point %q, want %q", ErrUnsupportedShader, src.EntryPoint, entry)
	}
	return nil
}

// CreateVertexShader creates the vertex stage of the glyph program.
func (d *Device) CreateVertexShader(src *dbgtext.ShaderSource) (dbgtext.VertexShader, error) {
	if err := checkProgram(src, shader.VertexEntryPoint); err != nil {
		return nil, err
	}
	o, err := d.newObject(dbgtext.KindVertexShader, src.Label)
	if err != nil {
		return nil, err
	}
	return &vertexShader{o}, nil
}

// CreatePixelShader creates the pixel stage of the glyph program.
func (d *Device) CreatePixelShader(src *dbgtext.ShaderSource) (dbgtext.PixelShader, error) {
	if err := checkProgram(src, shader.FragmentEntryPoint); err != nil {
		return nil, err
	}
	o, err := d.newObject(dbgtext.KindPixelShader, src.Label)
	if err != nil {
		return nil, err
	}
	return &pixelShader{o}, nil
}

// attributeFormats lists the vertex formats Draw can fetch.
var attributeFormats = map[gputypes.VertexFormat]bool{
	gputypes.VertexFormatFloat32x2: true,
	gputypes.VertexFormatUint16x2:  true,
	gputypes.VertexFormatUnorm8x4:  true,
}

// CreateInputLayout validates elements against the glyph program inputs.
func (d *Device) CreateInputLayout(elements []dbgtext.InputElement, vs *dbgtext.ShaderSource) (dbgtext.InputLayout, error) {
	if err := checkProgram(vs, shader.VertexEntryPoint); err != nil {
		return nil, err
	}
	want := dbgtext.InputElements()
	if len(elements) != len(want) {
		return nil, fmt.Errorf("%w: %d input elements, program reads %d", ErrUnsupported, len(elements), len(want))
	}
	for _, e := range elements {
		if !attributeFormats[e.Format] {
			return nil, fmt.Errorf("%w: vertex format %v", ErrUnsupported, e.Format)
		}
		i := slices.IndexFunc(want, func(w dbgtext.InputElement) bool { return w.Location == e.Location })
		if i < 0 || want[i].Format != e.Format {
			return nil, fmt.Errorf("%w: location %d does not match the program input", ErrUnsupported, e.Location)
		}
	}
	o, err := d.newObject(dbgtext.KindInputLayout, "input_layout")
	if err != nil {
		return nil, err
	}
	return &inputLayout{object: o, elements: slices.Clone(elements)}, nil
}

// CreateBuffer creates a zeroed vertex buffer.
func (d *Device) CreateBuffer(desc *dbgtext.BufferDesc) (dbgtext.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("%w: zero-sized buffer", ErrUnsupported)
	}
	if desc.Usage&gputypes.BufferUsageVertex == 0 {
		return nil, fmt.Errorf("%w: buffer usage %v", ErrUnsupported, desc.Usage)
	}
	o, err := d.newObject(dbgtext.KindBuffer, desc.Label)
	if err != nil {
		return nil, err
	}
	return &buffer{object: o, usage: desc.Usage, data: make([]byte, desc.Size)}, nil
}

// CreateTexture creates a single-channel texture and returns its view.
func (d *Device) CreateTexture(desc *dbgtext.TextureDesc, texels []byte) (dbgtext.ShaderResourceView, error) {
	if desc.Format != gputypes.TextureFormatR8Unorm {
		return nil, fmt.Errorf("%w: texture format %v", ErrUnsupported, desc.Format)
	}
	if desc.Width == 0 || desc.Height == 0 || len(texels) != int(desc.Width)*int(desc.Height) {
		return nil, fmt.Errorf("%w: %d texels for %dx%d texture", ErrUnsupported, len(texels), desc.Width, desc.Height)
	}
	o, err := d.newObject(dbgtext.KindShaderResourceView, desc.Label)
	if err != nil {
		return nil, err
	}
	return &texture{
		object: o,
		width:  int(desc.Width),
		height: int(desc.Height),
		texels: slices.Clone(texels),
	}, nil
}

// CreateSamplerState creates a point sampler.
func (d *Device) CreateSamplerState(desc *dbgtext.SamplerDesc) (dbgtext.SamplerState, error) {
	for _, f := range []gputypes.FilterMode{desc.MagFilter, desc.MinFilter} {
		if f != gputypes.FilterModeNearest {
			return nil, fmt.Errorf("%w: filter mode %v", ErrUnsupported, f)
		}
	}
	for _, m := range []gputypes.AddressMode{desc.AddressModeU, desc.AddressModeV} {
		if m != gputypes.AddressModeRepeat && m != gputypes.AddressModeClampToEdge {
			return nil, fmt.Errorf("%w: address mode %v", ErrUnsupported, m)
		}
	}
	o, err := d.newObject(dbgtext.KindSamplerState, desc.Label)
	if err != nil {
		return nil, err
	}
	return &sampler{object: o, desc: *desc}, nil
}

// CreateDepthStencilState creates a depth-stencil state. The device has no
// depth buffer, so the state must disable depth and stencil testing.
func (d *Device) CreateDepthStencilState(desc *dbgtext.DepthStencilDesc) (dbgtext.DepthStencilState, error) {
	if desc.DepthTestEnabled || desc.DepthWriteEnabled || desc.StencilEnabled {
		return nil, fmt.Errorf("%w: depth or stencil testing", ErrUnsupported)
	}
	o, err := d.newObject(dbgtext.KindDepthStencilState, desc.Label)
	if err != nil {
		return nil, err
	}
	return &depthStencil{object: o, desc: *desc}, nil
}

// RenderTarget is an RGBA image that a Context can draw into.
type RenderTarget struct {
	object
	img *image.RGBA
}

// NewRenderTarget creates a render target of the given size, cleared to
// transparent black.
func (d *Device) NewRenderTarget(width, height int) (*RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d render target", ErrUnsupported, width, height)
	}
	o, err := d.newObject(dbgtext.KindRenderTargetView, "render_target")
	if err != nil {
		return nil, err
	}
	return &RenderTarget{object: o, img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

// Image returns the pixels of the render target. The image is live: it
// changes with every draw.
func (rt *RenderTarget) Image() *image.RGBA { return rt.img }

// Bounds returns the size of the render target.
func (rt *RenderTarget) Bounds() image.Rectangle { return rt.img.Bounds() }

// Clear fills the render target with c.
func (rt *RenderTarget) Clear(c color.Color) {
	draw.Draw(rt.img, rt.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
