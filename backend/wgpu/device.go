package wgpu

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/gtext/gpu"
)

// gpuTimeout bounds every fence wait. A draw that takes longer than
// this indicates a lost device.
const gpuTimeout = 5 * time.Second

// Device implements gpu.Device over wgpu/hal.
//
// Device is NOT safe for concurrent use.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// externalDevice is true when using a shared device from a
	// provider; shared resources are not destroyed on Close.
	externalDevice bool

	nextID   uint64
	programs map[gpu.ProgramID]*program
	buffers  map[gpu.BufferID]*buffer
	textures map[gpu.TextureID]*texture

	boundProgram    *program
	boundBuffer     *buffer
	boundTextures   map[int]*texture
	boundTextureIDs map[int]gpu.TextureID
	blend           gpu.BlendMode

	// attribOffsets holds the byte offset of each attribute into the
	// bound buffer, as set by VertexAttribPointer. State persists
	// across draws like classic GL attribute pointers.
	attribOffsets map[string]int

	target       *renderTarget
	clearPending bool
	clearValue   gputypes.Color

	closed bool
}

var _ gpu.Device = (*Device)(nil)

// renderTarget is the offscreen color attachment draws render into.
type renderTarget struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

// NewDevice opens its own GPU: the first discrete or integrated Vulkan
// adapter, falling back to whatever the instance exposes.
func NewDevice() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapters
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	d := newDevice(openDev.Device, openDev.Queue, false)
	d.instance = instance
	logger().Info("wgpu: GPU device opened", "adapter", selected.Info.Name)
	return d, nil
}

// NewDeviceFromProvider wraps a shared GPU device from an external
// provider (e.g. gogpu). The provider must expose HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue; this matches
// gpucontext.DeviceProvider implementations. Shared resources are not
// destroyed on Close.
func NewDeviceFromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoProvider)
	}
	logger().Info("wgpu: using shared GPU device")
	return newDevice(device, queue, true), nil
}

func newDevice(device hal.Device, queue hal.Queue, external bool) *Device {
	return &Device{
		device:          device,
		queue:           queue,
		externalDevice:  external,
		programs:        make(map[gpu.ProgramID]*program),
		buffers:         make(map[gpu.BufferID]*buffer),
		textures:        make(map[gpu.TextureID]*texture),
		boundTextures:   make(map[int]*texture),
		boundTextureIDs: make(map[int]gpu.TextureID),
		attribOffsets:   make(map[string]int),
		clearValue:      gputypes.Color{R: 0, G: 0, B: 0, A: 0},
	}
}

// SetTarget creates (or replaces) the offscreen color target. The next
// draw clears it.
func (d *Device) SetTarget(width, height int) error {
	if d.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("wgpu: invalid target size %dx%d", width, height)
	}
	d.destroyTarget()

	w, h := uint32(width), uint32(height)
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "gtext_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create target texture: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "gtext_target_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return fmt.Errorf("wgpu: create target view: %w", err)
	}

	d.target = &renderTarget{tex: tex, view: view, width: w, height: h}
	d.clearPending = true
	return nil
}

// Clear arms a clear with the given color for the next draw.
func (d *Device) Clear(r, g, b, a float64) {
	d.clearValue = gputypes.Color{R: r, G: g, B: b, A: a}
	d.clearPending = true
}

// ReadPixels copies the render target back to the CPU. The returned
// image is freshly allocated.
func (d *Device) ReadPixels() (*image.RGBA, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.target == nil {
		return nil, ErrNoTarget
	}
	w, h := d.target.width, d.target.height

	// Copy pitch must be aligned to 256 bytes for WebGPU and DX12.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gtext_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(stagingBuf)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "gtext_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("gtext_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(d.target.tex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: d.target.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	readback := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for row := uint32(0); row < h; row++ {
		src := readback[row*alignedBytesPerRow : row*alignedBytesPerRow+bytesPerRow]
		dst := img.Pix[int(row)*img.Stride : int(row)*img.Stride+int(bytesPerRow)]
		copy(dst, src)
	}
	return img, nil
}

// submitAndWait submits one command buffer and blocks until the GPU
// signals the fence.
func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, gpuTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wgpu: wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

func (d *Device) destroyTarget() {
	if d.target == nil {
		return
	}
	d.device.DestroyTextureView(d.target.view)
	d.device.DestroyTexture(d.target.tex)
	d.target = nil
}

// Close releases every live resource and, for owned devices, the GPU
// device and instance.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.closed = true

	d.destroyTarget()
	for id, p := range d.programs {
		p.destroy(d.device)
		delete(d.programs, id)
	}
	for id, b := range d.buffers {
		d.device.DestroyBuffer(b.buf)
		delete(d.buffers, id)
	}
	for id, t := range d.textures {
		t.destroy(d.device)
		delete(d.textures, id)
	}

	if !d.externalDevice {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
}
