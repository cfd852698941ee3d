package gpu

import "image"

// Device is the drawing interface the text renderer targets.
//
// The surface mirrors a classic immediate-mode GL pipeline: one program
// bound at a time, vertex attributes read from a bound buffer, uniforms
// addressed by name. All calls are synchronous; when a method returns,
// the operation has been issued to the backend.
//
// Resource creation returns an opaque ID. Destroying an ID that was
// already destroyed, or using one that never existed, returns an error
// rather than corrupting backend state.
//
// Device implementations are NOT required to be safe for concurrent use.
// The renderer serializes all access.
type Device interface {
	// CreateProgram compiles and links a shader program.
	// Compilation or link failure is fatal to the caller and must be
	// reported synchronously.
	CreateProgram(spec ProgramSpec) (ProgramID, error)

	// UseProgram makes the program current for subsequent uniform writes
	// and draws.
	UseProgram(id ProgramID) error

	// DestroyProgram releases the program and its shaders.
	DestroyProgram(id ProgramID) error

	// CreateBuffer uploads vertex data and returns a handle to it.
	// The data is copied; the slice can be reused after this call.
	CreateBuffer(data []float32) (BufferID, error)

	// BindBuffer makes the buffer current for vertex attribute reads.
	BindBuffer(id BufferID) error

	// DestroyBuffer releases the buffer.
	DestroyBuffer(id BufferID) error

	// CreateTexture uploads an RGBA image and returns a handle to it.
	// Sampling behavior is fixed at creation time.
	CreateTexture(img *image.RGBA, opts SamplerOptions) (TextureID, error)

	// BindTexture binds the texture to the given texture unit.
	BindTexture(unit int, id TextureID) error

	// DestroyTexture releases the texture.
	DestroyTexture(id TextureID) error

	// VertexAttribPointer points a named vec2 attribute of the current
	// program at the bound buffer, starting offset bytes in. Components
	// are tightly packed float32 pairs.
	VertexAttribPointer(program ProgramID, attrib string, offset int) error

	// SetUniformInt writes an int uniform (sampler unit) by name.
	SetUniformInt(program ProgramID, name string, v int) error

	// SetUniformVec2 writes a vec2 uniform by name.
	SetUniformVec2(program ProgramID, name string, x, y float32) error

	// SetUniformVec4 writes a vec4 uniform by name.
	SetUniformVec4(program ProgramID, name string, v [4]float32) error

	// SetBlend sets the blend equation for subsequent draws.
	SetBlend(mode BlendMode) error

	// DrawTriangles draws count vertices from the bound buffer starting
	// at vertex index first, as a triangle list.
	DrawTriangles(first, count int) error
}
