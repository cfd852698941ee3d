package atlas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	gofont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FaceSurface is the reference Surface implementation. Measurement and
// fill rasterization use golang.org/x/image/font/opentype; glyph
// coverage queries go through go-text/typesetting's cmap, which is
// authoritative for character-to-glyph mapping.
//
// Stroke coverage is approximated morphologically: the fill mask is
// dilated and eroded by half the stroke width and the difference forms
// the outline band. True outline stroking would require path extraction,
// which neither rasterizer exposes.
//
// FaceSurface is NOT safe for concurrent use; the underlying opentype
// face carries mutable rasterization state.
type FaceSurface struct {
	face   font.Face
	cmap   *gofont.Face
	height int
}

// NewFaceSurface parses TTF or OTF font data and creates a surface
// rasterizing at pointSize pixels. The data slice is not retained.
func NewFaceSurface(data []byte, pointSize int) (*FaceSurface, error) {
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("atlas: parse font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    float64(pointSize),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("atlas: create face: %w", err)
	}
	cmap, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		_ = face.Close()
		return nil, fmt.Errorf("atlas: parse cmap: %w", err)
	}

	m := face.Metrics()
	height := (m.Ascent + m.Descent).Ceil()

	return &FaceSurface{face: face, cmap: cmap, height: height}, nil
}

// Close releases the rasterization face.
func (s *FaceSurface) Close() error { return s.face.Close() }

// Measure implements Surface.
func (s *FaceSurface) Measure(text string) float64 {
	return fixedToFloat(font.MeasureString(s.face, text))
}

// LineHeight implements Surface. The probe is ascent plus descent of
// the face, applied uniformly to every glyph.
func (s *FaceSurface) LineHeight() int { return s.height }

// HasGlyph implements Surface.
func (s *FaceSurface) HasGlyph(r rune) bool {
	gid, ok := s.cmap.NominalGlyph(r)
	return ok && gid != 0
}

// Fill implements Surface. The mask bounds are relative to the pen
// origin on the baseline; rows above the baseline have negative Y.
func (s *FaceSurface) Fill(r rune) *image.Alpha {
	bounds, _, ok := s.face.GlyphBounds(r)
	if !ok {
		return nil
	}
	rect := image.Rect(
		bounds.Min.X.Floor(), bounds.Min.Y.Floor(),
		bounds.Max.X.Ceil(), bounds.Max.Y.Ceil(),
	)
	if rect.Empty() {
		return nil
	}
	mask := image.NewAlpha(rect)
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: s.face,
		Dot:  fixed.Point26_6{},
	}
	d.DrawString(string(r))
	return mask
}

// Stroke implements Surface.
func (s *FaceSurface) Stroke(r rune, width float64) *image.Alpha {
	fill := s.Fill(r)
	if fill == nil {
		return nil
	}
	rad := int(width/2 + 0.5)
	if rad < 1 {
		rad = 1
	}
	return outlineBand(fill, rad)
}

// outlineBand returns dilate(mask, rad) minus erode(mask, rad): a band
// of the given half-width centered on the coverage boundary.
func outlineBand(mask *image.Alpha, rad int) *image.Alpha {
	disk := diskOffsets(rad)
	b := mask.Bounds()
	out := image.NewAlpha(b.Inset(-rad))
	ob := out.Bounds()
	for y := ob.Min.Y; y < ob.Max.Y; y++ {
		for x := ob.Min.X; x < ob.Max.X; x++ {
			var hi, lo uint8 = 0, 255
			for _, d := range disk {
				v := alphaAtClamped(mask, x+d[0], y+d[1])
				if v > hi {
					hi = v
				}
				if v < lo {
					lo = v
				}
			}
			if hi > lo {
				out.SetAlpha(x, y, color.Alpha{A: hi - lo})
			}
		}
	}
	return out
}

// alphaAtClamped reads mask coverage, treating everything outside the
// bounds as zero.
func alphaAtClamped(mask *image.Alpha, x, y int) uint8 {
	b := mask.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return 0
	}
	return mask.AlphaAt(x, y).A
}

// diskOffsets enumerates the integer offsets within a disk of the given
// radius, including the center.
func diskOffsets(rad int) [][2]int {
	var out [][2]int
	r2 := rad * rad
	for dy := -rad; dy <= rad; dy++ {
		for dx := -rad; dx <= rad; dx++ {
			if dx*dx+dy*dy <= r2 {
				out = append(out, [2]int{dx, dy})
			}
		}
	}
	return out
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
