package atlas

import (
	"image"
	"math"
)

// Default configuration values.
const (
	// DefaultPointSize is the rasterization size in pixels. Atlases are
	// rendered large and scaled down at draw time, so the default is
	// generous.
	DefaultPointSize = 250

	// DefaultStrokeFraction is the stroke width as a fraction of the
	// point size.
	DefaultStrokeFraction = 0.02
)

// DefaultCharset covers ASCII plus the accented characters and symbols
// common in western European text.
const DefaultCharset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"áçéíóúýÁÇÉÍÓÚÝ " +
	"0123456789" +
	"!@#$%^&*?<>:\"';[]{}()|\\/.,-_=+€`~"

// Config controls atlas construction.
type Config struct {
	// PointSize is the rasterization size in pixels.
	PointSize int

	// StrokeFraction is the outline width relative to PointSize.
	// It also determines the per-glyph margin reserved for stroke
	// overhang: ceil(2 * StrokeFraction * PointSize) pixels per side.
	StrokeFraction float64

	// Charset lists the runes to pack, in pack order.
	Charset string
}

// DefaultConfig returns a Config with the default point size, stroke
// fraction and charset.
func DefaultConfig() Config {
	return Config{
		PointSize:      DefaultPointSize,
		StrokeFraction: DefaultStrokeFraction,
		Charset:        DefaultCharset,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.PointSize <= 0 {
		return &ConfigError{Field: "PointSize", Reason: "must be positive"}
	}
	if c.StrokeFraction < 0 {
		return &ConfigError{Field: "StrokeFraction", Reason: "must not be negative"}
	}
	if c.Charset == "" {
		return &ConfigError{Field: "Charset", Reason: "must not be empty"}
	}
	return nil
}

// Build packs every resolvable rune of cfg.Charset into a grid atlas
// rasterized from s.
//
// The grid has ceil(sqrt(n)) columns filled row-major in charset order.
// Every row has the same height, the tallest glyph height of the set.
// Each cell reserves a stroke margin on both sides of the glyph so
// outlines never bleed into neighboring cells.
//
// Runes the font cannot resolve are skipped with a warning and do not
// occupy a cell. A rune appearing twice keeps the last cell it was
// packed into. Build returns ErrNoGlyphs when nothing resolves.
func Build(s Surface, cfg Config) (*Atlas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	margin := int(math.Ceil(2 * cfg.StrokeFraction * float64(cfg.PointSize)))
	strokeWidth := cfg.StrokeFraction * float64(cfg.PointSize)

	var metrics []Metric
	for _, m := range MeasureSet(s, cfg.Charset) {
		if !s.HasGlyph(m.Rune) {
			logger().Warn("atlas: skipping unresolvable rune",
				"rune", string(m.Rune))
			continue
		}
		metrics = append(metrics, m)
	}
	n := len(metrics)
	if n == 0 {
		return nil, ErrNoGlyphs
	}

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols

	maxH := 0
	for _, m := range metrics {
		if m.Height > maxH {
			maxH = m.Height
		}
	}

	// Sheet width is the widest row; every cell is glyph width plus a
	// margin on each side.
	width := 0
	for row := 0; row < rows; row++ {
		rowW := 0
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= n {
				break
			}
			rowW += metrics[i].Width + 2*margin
		}
		if rowW > width {
			width = rowW
		}
	}
	height := rows * maxH

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	floodBackground(img)

	rects := make(map[rune]GlyphRect, n)
	for row := 0; row < rows; row++ {
		drawX := 0
		minY := row * maxH
		maxY := minY + maxH - 1
		baseline := minY + int(float64(maxH)*4/5)
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= n {
				break
			}
			m := metrics[i]
			minX := drawX
			penX := drawX + margin
			if fill := s.Fill(m.Rune); fill != nil {
				compositeFill(img, fill, penX, baseline)
			}
			if strokeWidth > 0 {
				if stroke := s.Stroke(m.Rune, strokeWidth); stroke != nil {
					compositeStroke(img, stroke, penX, baseline)
				}
			}
			drawX += m.Width + 2*margin
			maxX := drawX - margin

			rects[m.Rune] = GlyphRect{
				MinU:    float64(minX) / float64(width+1),
				MaxU:    float64(maxX) / float64(width+1),
				TopV:    float64(minY) / float64(height+1),
				BottomV: float64(maxY) / float64(height+1),
				Width:   maxX - minX + 1,
			}
		}
	}

	logger().Debug("atlas: built",
		"runes", len(rects), "cols", cols, "rows", rows,
		"width", width, "height", height)

	return &Atlas{img: img, rects: rects, maxH: maxH, margin: margin}, nil
}

// floodBackground marks every texel as pure background: full red, full
// alpha, nothing else. Fill and stroke compositing carve coverage out
// of the red channel so R+G+B always partitions each texel.
func floodBackground(img *image.RGBA) {
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = 0xff
		pix[i+3] = 0xff
	}
}

// compositeFill draws a coverage mask into the green channel with
// source-over blending. The mask bounds are relative to the pen origin
// on the baseline.
func compositeFill(img *image.RGBA, mask *image.Alpha, penX, baselineY int) {
	compositeChannel(img, mask, penX, baselineY, 1)
}

// compositeStroke draws a coverage mask into the blue channel. Stroke
// is drawn after fill, so it also attenuates any fill coverage it
// overlaps.
func compositeStroke(img *image.RGBA, mask *image.Alpha, penX, baselineY int) {
	compositeChannel(img, mask, penX, baselineY, 2)
}

func compositeChannel(img *image.RGBA, mask *image.Alpha, penX, baselineY, channel int) {
	b := mask.Bounds()
	ib := img.Bounds()
	for my := b.Min.Y; my < b.Max.Y; my++ {
		y := baselineY + my
		if y < ib.Min.Y || y >= ib.Max.Y {
			continue
		}
		for mx := b.Min.X; mx < b.Max.X; mx++ {
			x := penX + mx
			if x < ib.Min.X || x >= ib.Max.X {
				continue
			}
			a := uint32(mask.AlphaAt(mx, my).A)
			if a == 0 {
				continue
			}
			o := img.PixOffset(x, y)
			inv := 255 - a
			for c := 0; c < 3; c++ {
				v := uint32(img.Pix[o+c]) * inv / 255
				if c == channel {
					v += a
					if v > 255 {
						v = 255
					}
				}
				img.Pix[o+c] = uint8(v)
			}
		}
	}
}
