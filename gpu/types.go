package gpu

// Resource IDs
//
// These opaque IDs represent device resources. Each Device implementation
// maintains a mapping between IDs and actual backend objects. IDs are
// uint64 to accommodate various backend handle sizes.

// ProgramID is an opaque handle to a compiled and linked shader program.
type ProgramID uint64

// BufferID is an opaque handle to a vertex buffer.
type BufferID uint64

// TextureID is an opaque handle to a 2D texture.
type TextureID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// WrapMode specifies how texture coordinates outside [0, 1] are handled.
type WrapMode uint32

const (
	// WrapClampToEdge clamps coordinates to the texture edge.
	// Glyph atlas sampling uses this to avoid bleeding between cells.
	WrapClampToEdge WrapMode = iota

	// WrapRepeat tiles the texture.
	WrapRepeat
)

// FilterMode specifies texture sampling interpolation.
type FilterMode uint32

const (
	// FilterLinear interpolates between texels.
	FilterLinear FilterMode = iota

	// FilterNearest picks the nearest texel.
	FilterNearest
)

// SamplerOptions describes how a texture is sampled.
type SamplerOptions struct {
	Wrap   WrapMode
	Filter FilterMode
}

// BlendMode selects the blend equation applied to draws.
type BlendMode uint32

const (
	// BlendNone disables blending.
	BlendNone BlendMode = iota

	// BlendAlphaSeparate is premultiplication-free alpha blending with a
	// separate alpha equation:
	//
	//	color: src*srcAlpha + dst*(1-srcAlpha)
	//	alpha: src*1        + dst*(1-srcAlpha)
	BlendAlphaSeparate
)

// Names of the text program's attributes and uniforms. They are shared
// between the GLSL and WGSL dialects of the program; backends resolve
// uniform writes against these names.
const (
	AttribPosition  = "relativePosition"
	AttribTexCoords = "textureCoords"

	UniformScreenPosition = "screenPosition"
	UniformScale          = "scale"
	UniformSampler        = "textureSampler"
	UniformFill           = "fillColor"
	UniformStroke         = "strokeColor"
	UniformBackground     = "backgroundColor"
)

// ProgramSpec describes a shader program in both dialects the backends
// consume. GLSL sources serve WebGL-style backends; the WGSL source is
// the same program for wgpu-style backends, which compile it to SPIR-V.
// Attribute and uniform names are part of the program contract and must
// match across dialects.
type ProgramSpec struct {
	// Label identifies the program in diagnostics.
	Label string

	// VertexGLSL and FragmentGLSL are GLSL ES 1.00 sources.
	VertexGLSL   string
	FragmentGLSL string

	// WGSL is the equivalent module with vs_main/fs_main entry points.
	WGSL string
}
