package wgpu

import "errors"

// Sentinel errors for the wgpu backend.
var (
	// ErrNoBackend is returned when no Vulkan HAL backend is registered.
	ErrNoBackend = errors.New("wgpu: vulkan backend not available")

	// ErrNoAdapters is returned when adapter enumeration finds nothing.
	ErrNoAdapters = errors.New("wgpu: no GPU adapters found")

	// ErrNoProvider is returned when a device provider does not expose
	// HAL types.
	ErrNoProvider = errors.New("wgpu: provider does not expose HAL device and queue")

	// ErrNoTarget is returned when drawing without a configured render
	// target.
	ErrNoTarget = errors.New("wgpu: no render target, call SetTarget first")

	// ErrClosed is returned when operating on a closed device.
	ErrClosed = errors.New("wgpu: device is closed")
)
