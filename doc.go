// Package gtext renders text on the GPU from prebuilt glyph atlases.
//
// A Renderer owns one shader program and a registry of fonts. Each Font
// wraps a packed atlas (see the atlas package) uploaded as a single
// texture whose color channels encode coverage: red for background,
// green for glyph fill, blue for stroke. The fragment shader recombines
// the channels with per-draw colors, so one atlas serves any color
// combination at runtime.
//
// Strings are compiled once into vertex buffers (Font.Compile) and drawn
// many times (Text.Draw). Draws go through a render state cache that
// skips redundant uniform writes and texture binds, keeping repeated
// draws of the same text nearly free on the CPU side.
//
// # Quick Start
//
//	dev, _ := wgpu.NewDevice()
//	r, _ := gtext.New(dev)
//	font, _ := r.LoadFont("sans", ttfData, atlas.DefaultConfig())
//	text, _ := font.Compile("hello")
//
//	r.BeginFrame(800, 600)
//	text.Draw(-0.9, 0.0, 0.1, gtext.RGB(1, 1, 1), gtext.RGB(0, 0, 0), gtext.Transparent)
//
// The GPU is reached through the gpu.Device interface; backend/wgpu
// provides a production implementation.
//
// Renderer, Font and Text are NOT safe for concurrent use.
package gtext
