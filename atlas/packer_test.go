package atlas

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// stubSurface is a deterministic Surface for packer tests. Every glyph
// is a filled square of fixed size; runes listed in missing resolve to
// no glyph.
type stubSurface struct {
	width   int
	height  int
	missing map[rune]bool
}

func (s *stubSurface) Measure(text string) float64 {
	return float64(len([]rune(text)) * s.width)
}

func (s *stubSurface) LineHeight() int { return s.height }

func (s *stubSurface) HasGlyph(r rune) bool { return !s.missing[r] }

func (s *stubSurface) Fill(r rune) *image.Alpha {
	// Square sitting on the baseline.
	mask := image.NewAlpha(image.Rect(0, -s.width, s.width, 0))
	for y := -s.width; y < 0; y++ {
		for x := 0; x < s.width; x++ {
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	return mask
}

func (s *stubSurface) Stroke(r rune, width float64) *image.Alpha { return nil }

func testConfig(charset string) Config {
	return Config{PointSize: 100, StrokeFraction: 0.02, Charset: charset}
}

func TestBuildGridDimensions(t *testing.T) {
	// 100 distinct runes pack into a 10x10 grid.
	charset := make([]rune, 100)
	for i := range charset {
		charset[i] = rune('A' + i)
	}
	surf := &stubSurface{width: 20, height: 30}
	cfg := testConfig(string(charset))

	a, err := Build(surf, cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if a.Runes() != 100 {
		t.Errorf("Runes() = %d, want 100", a.Runes())
	}

	margin := int(math.Ceil(2 * cfg.StrokeFraction * float64(cfg.PointSize)))
	wantW := 10 * (20 + 2*margin)
	wantH := 10 * 30
	b := a.Image().Bounds()
	if b.Dx() != wantW || b.Dy() != wantH {
		t.Errorf("atlas size = %dx%d, want %dx%d", b.Dx(), b.Dy(), wantW, wantH)
	}
	if a.MaxGlyphHeight() != 30 {
		t.Errorf("MaxGlyphHeight() = %d, want 30", a.MaxGlyphHeight())
	}
	if a.Margin() != margin {
		t.Errorf("Margin() = %d, want %d", a.Margin(), margin)
	}
}

func TestBuildRectInvariants(t *testing.T) {
	surf := &stubSurface{width: 20, height: 30}
	a, err := Build(surf, testConfig("abcdefg"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, r := range "abcdefg" {
		rect, ok := a.Lookup(r)
		if !ok {
			t.Fatalf("Lookup(%q) missing", r)
		}
		if rect.MinU < 0 || rect.MinU > rect.MaxU || rect.MaxU > 1 {
			t.Errorf("rune %q: U range [%v, %v] out of order", r, rect.MinU, rect.MaxU)
		}
		if rect.TopV < 0 || rect.TopV > rect.BottomV || rect.BottomV > 1 {
			t.Errorf("rune %q: V range [%v, %v] out of order", r, rect.TopV, rect.BottomV)
		}
		if rect.Width <= 0 {
			t.Errorf("rune %q: Width = %d, want positive", r, rect.Width)
		}
	}
}

func TestBuildCellCoordinates(t *testing.T) {
	// Two glyphs, one row. Second cell starts one cell stride in.
	surf := &stubSurface{width: 20, height: 30}
	cfg := testConfig("ab")
	a, err := Build(surf, cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	margin := a.Margin()
	stride := 20 + 2*margin
	w := a.Image().Bounds().Dx()
	h := a.Image().Bounds().Dy()

	rect, _ := a.Lookup('b')
	wantMinU := float64(stride) / float64(w+1)
	wantMaxU := float64(stride+20+margin) / float64(w+1)
	if rect.MinU != wantMinU {
		t.Errorf("MinU = %v, want %v", rect.MinU, wantMinU)
	}
	if rect.MaxU != wantMaxU {
		t.Errorf("MaxU = %v, want %v", rect.MaxU, wantMaxU)
	}
	if rect.Width != 20+margin+1 {
		t.Errorf("Width = %d, want %d", rect.Width, 20+margin+1)
	}
	wantBottomV := float64(29) / float64(h+1)
	if rect.BottomV != wantBottomV {
		t.Errorf("BottomV = %v, want %v", rect.BottomV, wantBottomV)
	}
	if rect.TopV != 0 {
		t.Errorf("TopV = %v, want 0", rect.TopV)
	}
}

func TestBuildSkipsUnresolvable(t *testing.T) {
	surf := &stubSurface{width: 20, height: 30, missing: map[rune]bool{'€': true}}
	a, err := Build(surf, testConfig("a€b"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if a.Runes() != 2 {
		t.Errorf("Runes() = %d, want 2", a.Runes())
	}
	if _, ok := a.Lookup('€'); ok {
		t.Error("Lookup('€') found a rect, want miss")
	}
}

func TestBuildNoGlyphs(t *testing.T) {
	surf := &stubSurface{width: 20, height: 30, missing: map[rune]bool{'x': true}}
	_, err := Build(surf, testConfig("x"))
	if !errors.Is(err, ErrNoGlyphs) {
		t.Errorf("Build error = %v, want ErrNoGlyphs", err)
	}
}

func TestBuildDuplicateRuneLastWins(t *testing.T) {
	surf := &stubSurface{width: 20, height: 30}
	a, err := Build(surf, testConfig("aba"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if a.Runes() != 2 {
		t.Errorf("Runes() = %d, want 2", a.Runes())
	}
	// The duplicate occupies cell 2 (third cell of the first row).
	margin := a.Margin()
	stride := 20 + 2*margin
	w := a.Image().Bounds().Dx()
	rect, _ := a.Lookup('a')
	wantMinU := float64(2*stride) / float64(w+1)
	if rect.MinU != wantMinU {
		t.Errorf("MinU = %v, want %v (last cell wins)", rect.MinU, wantMinU)
	}
}

func TestBuildChannelPartition(t *testing.T) {
	surf := &stubSurface{width: 20, height: 30}
	a, err := Build(surf, testConfig("a"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	img := a.Image()

	// Inside the glyph square: full green, no red.
	margin := a.Margin()
	baseline := int(float64(30) * 4 / 5)
	in := img.RGBAAt(margin+10, baseline-10)
	if in.G != 255 || in.R != 0 {
		t.Errorf("glyph texel = %+v, want G=255 R=0", in)
	}
	// Outside the glyph: pure background.
	out := img.RGBAAt(0, 0)
	if out.R != 255 || out.G != 0 || out.B != 0 || out.A != 255 {
		t.Errorf("background texel = %+v, want R=255 A=255", out)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"zero point size", Config{PointSize: 0, Charset: "a"}, "PointSize"},
		{"negative stroke", Config{PointSize: 10, StrokeFraction: -1, Charset: "a"}, "StrokeFraction"},
		{"empty charset", Config{PointSize: 10}, "Charset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestMeasureSetOrder(t *testing.T) {
	surf := &stubSurface{width: 20, height: 30}
	got := MeasureSet(surf, "abc")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, r := range "abc" {
		if got[i].Rune != r {
			t.Errorf("metric %d rune = %q, want %q", i, got[i].Rune, r)
		}
		if got[i].Width != 20 || got[i].Height != 30 {
			t.Errorf("metric %d = %+v, want width 20 height 30", i, got[i])
		}
	}
}
