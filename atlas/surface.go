package atlas

import "image"

// Surface is the rasterization source an atlas is built from. It wraps
// whatever can measure and draw glyphs of one font at one size; the
// packer only ever asks these five questions.
type Surface interface {
	// Measure returns the advance width of text in pixels.
	Measure(text string) float64

	// LineHeight returns the glyph row height in pixels. The packer
	// applies this single probe to every glyph of the font rather than
	// measuring per-glyph extents.
	LineHeight() int

	// HasGlyph reports whether the font maps r to a real glyph.
	HasGlyph(r rune) bool

	// Fill rasterizes the fill coverage of r. Mask bounds are relative
	// to the pen origin on the baseline.
	Fill(r rune) *image.Alpha

	// Stroke rasterizes the outline coverage of r at the given stroke
	// width in pixels.
	Stroke(r rune, width float64) *image.Alpha
}

// Metric is the measured size of one glyph.
type Metric struct {
	Rune   rune
	Width  int
	Height int
}

// MeasureSet measures every rune of chars against s, in input order.
// Runes the font cannot resolve still appear in the result with the
// width the surface reports for them (usually a notdef or zero width);
// the packer filters those out separately via HasGlyph.
func MeasureSet(s Surface, chars string) []Metric {
	h := s.LineHeight()
	var out []Metric
	for _, r := range chars {
		w := int(s.Measure(string(r)) + 0.5)
		out = append(out, Metric{Rune: r, Width: w, Height: h})
	}
	return out
}
