// Package wgpu implements gpu.Device on top of github.com/gogpu/wgpu's
// hardware abstraction layer.
//
// The device renders into an offscreen color target configured with
// SetTarget; ReadPixels copies the target back to the CPU. Each
// DrawTriangles call encodes and submits one render pass synchronously,
// matching the immediate-mode contract of gpu.Device.
//
// Shaders are consumed in their WGSL dialect and compiled to SPIR-V
// with github.com/gogpu/naga before module creation. Uniforms live in a
// single 64-byte block mirrored on the CPU; uniform writes only reach
// the GPU when the block is dirty at draw time.
//
// A Device can own its GPU (NewDevice opens the first suitable Vulkan
// adapter) or share one through a gpucontext-style provider
// (NewDeviceFromProvider).
package wgpu
