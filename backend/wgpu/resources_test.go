package wgpu

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gtext/gpu"
)

func TestTightPixelsFullImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	got := tightPixels(img)
	if len(got) != 4*2*4 {
		t.Fatalf("len = %d, want %d", len(got), 4*2*4)
	}
	if &got[0] != &img.Pix[0] {
		t.Error("tight image should be returned without copying")
	}
}

func TestTightPixelsSubImage(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range base.Pix {
		base.Pix[i] = byte(i)
	}
	sub := base.SubImage(image.Rect(2, 3, 6, 7)).(*image.RGBA)

	got := tightPixels(sub)
	if len(got) != 4*4*4 {
		t.Fatalf("len = %d, want %d", len(got), 4*4*4)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := base.Pix[base.PixOffset(2+x, 3+y)]
			if got[(y*4+x)*4] != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, got[(y*4+x)*4], want)
			}
		}
	}
}

func TestSamplerDescriptor(t *testing.T) {
	desc := samplerDescriptor(gpu.SamplerOptions{Wrap: gpu.WrapClampToEdge, Filter: gpu.FilterLinear})
	if desc.AddressModeU != gputypes.AddressModeClampToEdge {
		t.Errorf("AddressModeU = %v, want clamp to edge", desc.AddressModeU)
	}
	if desc.MagFilter != gputypes.FilterModeLinear {
		t.Errorf("MagFilter = %v, want linear", desc.MagFilter)
	}

	desc = samplerDescriptor(gpu.SamplerOptions{Wrap: gpu.WrapRepeat, Filter: gpu.FilterNearest})
	if desc.AddressModeV != gputypes.AddressModeRepeat {
		t.Errorf("AddressModeV = %v, want repeat", desc.AddressModeV)
	}
	if desc.MinFilter != gputypes.FilterModeNearest {
		t.Errorf("MinFilter = %v, want nearest", desc.MinFilter)
	}
}

func TestUniformOffsetsWithinBlock(t *testing.T) {
	sizes := map[string]int{
		gpu.UniformScreenPosition: 8,
		gpu.UniformScale:          8,
		gpu.UniformFill:           16,
		gpu.UniformStroke:         16,
		gpu.UniformBackground:     16,
	}
	for name, off := range uniformOffsets {
		size, ok := sizes[name]
		if !ok {
			t.Errorf("unexpected uniform %q", name)
			continue
		}
		if off+size > uniformBlockSize {
			t.Errorf("uniform %q at %d overflows %d-byte block", name, off, uniformBlockSize)
		}
	}
}

func TestVertexLayoutSlots(t *testing.T) {
	layouts := textVertexLayout()
	if len(layouts) != 2 {
		t.Fatalf("slots = %d, want 2", len(layouts))
	}
	for i, l := range layouts {
		if l.ArrayStride != 8 {
			t.Errorf("slot %d stride = %d, want 8", i, l.ArrayStride)
		}
		if len(l.Attributes) != 1 {
			t.Fatalf("slot %d attributes = %d, want 1", i, len(l.Attributes))
		}
		if l.Attributes[0].ShaderLocation != uint32(i) {
			t.Errorf("slot %d location = %d, want %d", i, l.Attributes[0].ShaderLocation, i)
		}
	}
}
