package gtext

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gtext/atlas"
	"github.com/gogpu/gtext/gpu"
	"github.com/gogpu/gtext/internal/gputest"
)

// testSurface is a minimal atlas.Surface for renderer tests: every
// glyph is 10 pixels wide, rows are 20 pixels tall, no rasterization.
type testSurface struct {
	missing map[rune]bool
}

func (s *testSurface) Measure(text string) float64 {
	return float64(10 * len([]rune(text)))
}

func (s *testSurface) LineHeight() int { return 20 }

func (s *testSurface) HasGlyph(r rune) bool { return !s.missing[r] }

func (s *testSurface) Fill(rune) *image.Alpha { return nil }

func (s *testSurface) Stroke(rune, float64) *image.Alpha { return nil }

func testAtlas(t *testing.T, charset string, missing map[rune]bool) *atlas.Atlas {
	t.Helper()
	a, err := atlas.Build(&testSurface{missing: missing}, atlas.Config{
		PointSize:      100,
		StrokeFraction: 0,
		Charset:        charset,
	})
	if err != nil {
		t.Fatalf("atlas.Build failed: %v", err)
	}
	return a
}

func newTestRenderer(t *testing.T) (*gputest.Device, *Renderer) {
	t.Helper()
	dev := gputest.NewDevice()
	r, err := New(dev)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return dev, r
}

func TestNew(t *testing.T) {
	dev, r := newTestRenderer(t)
	if len(dev.Programs) != 1 {
		t.Errorf("programs created = %d, want 1", len(dev.Programs))
	}
	for _, spec := range dev.Programs {
		if spec.VertexGLSL == "" || spec.FragmentGLSL == "" || spec.WGSL == "" {
			t.Error("program spec missing a shader dialect")
		}
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if len(dev.Programs) != 0 {
		t.Errorf("programs after Close = %d, want 0", len(dev.Programs))
	}
}

func TestNewNilDevice(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, ErrNilDevice) {
		t.Errorf("New(nil) error = %v, want ErrNilDevice", err)
	}
}

func TestNewProgramFailure(t *testing.T) {
	dev := gputest.NewDevice()
	dev.CreateProgramErr = errors.New("no compiler")
	if _, err := New(dev); err == nil {
		t.Error("New succeeded, want program compile error")
	}
}

func TestAddFontUploadsTexture(t *testing.T) {
	dev, r := newTestRenderer(t)
	a := testAtlas(t, "ab", nil)
	f, err := r.AddFont("sans", a)
	if err != nil {
		t.Fatalf("AddFont failed: %v", err)
	}
	if f.Style() != "sans" {
		t.Errorf("Style() = %q, want %q", f.Style(), "sans")
	}
	if len(dev.Textures) != 1 {
		t.Fatalf("textures created = %d, want 1", len(dev.Textures))
	}
	for id, opts := range dev.Samplers {
		if opts.Wrap != gpu.WrapClampToEdge {
			t.Errorf("texture %d wrap = %v, want clamp to edge", id, opts.Wrap)
		}
		if opts.Filter != gpu.FilterLinear {
			t.Errorf("texture %d filter = %v, want linear", id, opts.Filter)
		}
	}
}

func TestAddFonts(t *testing.T) {
	dev, r := newTestRenderer(t)
	fonts, err := r.AddFonts([]FontSpec{
		{Style: "sans", Atlas: testAtlas(t, "ab", nil)},
		{Style: "mono", Atlas: testAtlas(t, "ab", nil)},
	})
	if err != nil {
		t.Fatalf("AddFonts failed: %v", err)
	}
	if len(fonts) != 2 {
		t.Fatalf("fonts registered = %d, want 2", len(fonts))
	}
	if len(dev.Textures) != 2 {
		t.Errorf("textures created = %d, want 2", len(dev.Textures))
	}
	if got, ok := r.FontByStyle("mono"); !ok || got != fonts[1] {
		t.Errorf("FontByStyle(mono) = %v, %v; want second font", got, ok)
	}
}

func TestFontByStyle(t *testing.T) {
	_, r := newTestRenderer(t)
	a := testAtlas(t, "ab", nil)
	f1, _ := r.AddFont("serif", a)
	f2, _ := r.AddFont("mono", testAtlas(t, "ab", nil))

	if got, ok := r.FontByStyle("mono"); !ok || got != f2 {
		t.Errorf("FontByStyle(mono) = %v, %v; want registered font", got, ok)
	}
	if _, ok := r.FontByStyle("cursive"); ok {
		t.Error("FontByStyle(cursive) found a font, want miss")
	}

	if err := f1.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, ok := r.FontByStyle("serif"); ok {
		t.Error("FontByStyle returned a released font")
	}
}

func TestBeginFrame(t *testing.T) {
	dev, r := newTestRenderer(t)
	if err := r.BeginFrame(800, 600); err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	if dev.Blend != gpu.BlendAlphaSeparate {
		t.Errorf("blend = %v, want BlendAlphaSeparate", dev.Blend)
	}
	if dev.BoundProgram == gpu.InvalidID {
		t.Error("no program bound after BeginFrame")
	}
	if r.aspect != 800.0/600.0 {
		t.Errorf("aspect = %v, want %v", r.aspect, 800.0/600.0)
	}
}

func TestBeginFrameResetsFontSlot(t *testing.T) {
	dev, r := newTestRenderer(t)
	f, _ := r.AddFont("sans", testAtlas(t, "ab", nil))
	txt, err := f.Compile("ab")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if err := r.BeginFrame(100, 100); err != nil {
		t.Fatal(err)
	}
	if err := txt.Draw(0, 0, 0.1, RGB(1, 1, 1), RGB(0, 0, 0), Transparent); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	if err := r.BeginFrame(100, 100); err != nil {
		t.Fatal(err)
	}
	dev.ResetCounters()
	if err := txt.Draw(0, 0, 0.1, RGB(1, 1, 1), RGB(0, 0, 0), Transparent); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if dev.TextureBinds != 1 {
		t.Errorf("texture binds after new frame = %d, want 1", dev.TextureBinds)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	_, r := newTestRenderer(t)
	f, _ := r.AddFont("sans", testAtlas(t, "ab", nil))
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := r.Close(); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("second Close = %v, want ErrRendererClosed", err)
	}
	if err := r.BeginFrame(100, 100); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("BeginFrame after Close = %v, want ErrRendererClosed", err)
	}
	if _, err := r.AddFont("x", testAtlas(t, "a", nil)); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("AddFont after Close = %v, want ErrRendererClosed", err)
	}
	if _, err := f.Compile("a"); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("Compile after Close = %v, want ErrRendererClosed", err)
	}
}
