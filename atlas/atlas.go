package atlas

import "image"

// GlyphRect locates one glyph inside a built atlas.
//
// U coordinates grow left to right. V coordinates are stored for a
// bottom-left texture origin: TopV addresses the top raster row of the
// glyph cell and is numerically smaller than BottomV. Both are divided
// by dimension+1 so the last texel row and column are never sampled at
// exactly 1.0.
type GlyphRect struct {
	// MinU and MaxU are the horizontal texture coordinates of the cell.
	MinU, MaxU float64

	// TopV and BottomV are the vertical texture coordinates of the cell,
	// top row first.
	TopV, BottomV float64

	// Width is the cell width in pixels, margins excluded.
	Width int
}

// Atlas is an immutable packed glyph sheet.
type Atlas struct {
	img    *image.RGBA
	rects  map[rune]GlyphRect
	maxH   int
	margin int
}

// Image returns the packed RGBA sheet. The caller must not modify it.
func (a *Atlas) Image() *image.RGBA { return a.img }

// Lookup returns the rect for r and whether the atlas contains it.
func (a *Atlas) Lookup(r rune) (GlyphRect, bool) {
	rect, ok := a.rects[r]
	return rect, ok
}

// Runes returns the number of distinct runes packed into the atlas.
func (a *Atlas) Runes() int { return len(a.rects) }

// MaxGlyphHeight returns the uniform row height in pixels. Layout uses
// it as the unit scale: a glyph of this height maps to 1.0 in logical
// coordinates.
func (a *Atlas) MaxGlyphHeight() int { return a.maxH }

// Margin returns the per-side stroke margin in pixels.
func (a *Atlas) Margin() int { return a.margin }
