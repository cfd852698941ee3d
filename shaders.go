package gtext

import (
	_ "embed"

	"github.com/gogpu/gtext/gpu"
)

//go:embed shaders/text.vert
var textVertexGLSL string

//go:embed shaders/text.frag
var textFragmentGLSL string

//go:embed shaders/text.wgsl
var textWGSL string

// textProgramSpec returns the fixed program every Renderer compiles.
// The GLSL pair and the WGSL module implement the same pipeline; which
// one a backend consumes is its own business.
func textProgramSpec() gpu.ProgramSpec {
	return gpu.ProgramSpec{
		Label:        "gtext.text",
		VertexGLSL:   textVertexGLSL,
		FragmentGLSL: textFragmentGLSL,
		WGSL:         textWGSL,
	}
}
