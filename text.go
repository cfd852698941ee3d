package gtext

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/gtext/gpu"
)

// Text is a compiled string: one vertex buffer holding a quad per
// resolvable rune, ready to draw any number of times.
//
// The buffer layout is two consecutive blocks of float32 pairs. The
// first block holds the position quads, the second the texture
// coordinate quads, 12 floats per rune in each block. Glyph positions
// are in logical units where the tallest glyph of the atlas has height
// 1 and the baseline quad sits on y=0.
//
// Text is NOT safe for concurrent use.
type Text struct {
	font       *Font
	buffer     gpu.BufferID
	glyphs     int
	totalWidth float64
	missing    []rune
	released   bool
}

// floatsPerQuad is the per-rune float count of each buffer block: six
// vertices of two components.
const floatsPerQuad = 12

// Compile builds a Text from s. The input is NFC-normalized first so
// decomposed sequences match atlas entries. Runes absent from the atlas
// produce no geometry and no advance; they are recorded on the Text and
// logged once each.
func (f *Font) Compile(s string) (*Text, error) {
	if f.released {
		return nil, &MisuseError{Resource: "font", Op: "compile"}
	}
	if f.renderer.closed {
		return nil, ErrRendererClosed
	}

	a := f.atlas
	unit := float64(a.MaxGlyphHeight())

	var (
		positions []float32
		uvs       []float32
		missing   []rune
	)
	penX := 0.0
	for _, r := range norm.NFC.String(s) {
		rect, ok := a.Lookup(r)
		if !ok {
			Logger().Warn("gtext: rune not in atlas, skipping",
				"rune", string(r), "style", f.style)
			missing = append(missing, r)
			continue
		}
		w := float64(rect.Width) / unit
		positions = appendQuad(positions,
			float32(penX), 0,
			float32(penX+w), 1,
		)
		uvs = appendQuad(uvs,
			float32(rect.MinU), float32(rect.BottomV),
			float32(rect.MaxU), float32(rect.TopV),
		)
		penX += w
	}

	data := make([]float32, 0, len(positions)+len(uvs))
	data = append(data, positions...)
	data = append(data, uvs...)

	buf, err := f.renderer.device.CreateBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("gtext: upload text buffer: %w", err)
	}

	return &Text{
		font:       f,
		buffer:     buf,
		glyphs:     len(positions) / floatsPerQuad,
		totalWidth: penX,
		missing:    missing,
	}, nil
}

// appendQuad appends the six vertices of an axis-aligned quad as two
// triangles: bottom-left, bottom-right, top-right, top-right, top-left,
// bottom-left. The same winding serves positions and texture
// coordinates; for texture coordinates y0 is the bottom V.
func appendQuad(dst []float32, x0, y0, x1, y1 float32) []float32 {
	return append(dst,
		x0, y0,
		x1, y0,
		x1, y1,
		x1, y1,
		x0, y1,
		x0, y0,
	)
}

// Missing returns the runes of the source string that had no atlas
// entry, in input order. The slice is shared; callers must not modify
// it.
func (t *Text) Missing() []rune { return t.missing }

// Width returns the horizontal extent the text covers when drawn at the
// given vertical scale, in the same clip-space units Draw consumes.
// Width is pure: it issues no device calls and may be called before or
// after any number of draws.
func (t *Text) Width(scaleY float64) float64 {
	return t.totalWidth * scaleY / t.font.renderer.aspect
}

// Draw renders the text with its bottom-left corner at (x, y) in clip
// space. scaleY is the glyph height in clip units; the horizontal scale
// is derived from the viewport aspect ratio so glyphs are not
// stretched. The three colors recombine the atlas coverage channels.
//
// Draws of unchanged state are cheap: uniforms and the atlas texture
// binding are only pushed to the device when they differ from the
// previous draw.
func (t *Text) Draw(x, y, scaleY float64, fill, stroke, background Color) error {
	if t.released {
		return &MisuseError{Resource: "text", Op: "draw"}
	}
	f := t.font
	if f.released {
		return &MisuseError{Resource: "font", Op: "draw"}
	}
	r := f.renderer
	if r.closed {
		return ErrRendererClosed
	}
	if t.glyphs == 0 {
		return nil
	}

	if err := r.selectFont(f); err != nil {
		return err
	}

	dev := r.device
	if err := dev.BindBuffer(t.buffer); err != nil {
		return err
	}
	// The UV block starts after the position block: 12 floats of 4
	// bytes per glyph.
	uvOffset := 4 * floatsPerQuad * t.glyphs
	if err := dev.VertexAttribPointer(r.program.id, gpu.AttribPosition, 0); err != nil {
		return err
	}
	if err := dev.VertexAttribPointer(r.program.id, gpu.AttribTexCoords, uvOffset); err != nil {
		return err
	}

	p := r.program
	if err := p.setScreenPosition(float32(x), float32(y)); err != nil {
		return err
	}
	if err := p.setScale(float32(scaleY/r.aspect), float32(scaleY)); err != nil {
		return err
	}
	if err := p.setFill(fill); err != nil {
		return err
	}
	if err := p.setStroke(stroke); err != nil {
		return err
	}
	if err := p.setBackground(background); err != nil {
		return err
	}

	return dev.DrawTriangles(0, 6*t.glyphs)
}

// Release destroys the vertex buffer.
func (t *Text) Release() error {
	if t.released {
		return &MisuseError{Resource: "text", Op: "release"}
	}
	if t.font.renderer.closed {
		return ErrRendererClosed
	}
	t.released = true
	return t.font.renderer.device.DestroyBuffer(t.buffer)
}
