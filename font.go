package gtext

import (
	"github.com/gogpu/gtext/atlas"
	"github.com/gogpu/gtext/gpu"
)

// Font is a registered atlas with its GPU texture. Fonts are created by
// Renderer.AddFont or Renderer.LoadFont and identified by a style name.
//
// Font is NOT safe for concurrent use.
type Font struct {
	renderer *Renderer
	style    string
	atlas    *atlas.Atlas
	texture  gpu.TextureID
	released bool
}

// Style returns the style name the font was registered under.
func (f *Font) Style() string { return f.style }

// Atlas returns the packed atlas backing this font.
func (f *Font) Atlas() *atlas.Atlas { return f.atlas }

// Release destroys the atlas texture. Texts compiled from this font
// must be released separately; drawing them afterwards fails with a
// MisuseError.
func (f *Font) Release() error {
	if f.released {
		return &MisuseError{Resource: "font", Op: "release"}
	}
	if f.renderer.closed {
		return ErrRendererClosed
	}
	f.released = true
	if f.renderer.current == f {
		f.renderer.current = nil
	}
	return f.renderer.device.DestroyTexture(f.texture)
}
