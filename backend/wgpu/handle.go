package wgpu

import (
	"github.com/gogpu/gpucontext"
)

// DeviceHandle provides GPU device access from the host application.
//
// Host frameworks (e.g. gogpu.App) implement gpucontext.DeviceProvider
// and hand it to libraries that want to share the GPU. DeviceHandle is
// an alias for that interface so callers integrating with a gpucontext
// host never create a second device.
type DeviceHandle = gpucontext.DeviceProvider

// NewDeviceFromHandle wraps the shared GPU device of a gpucontext host.
//
// The handle, or the gpucontext.Device it returns, must expose the
// underlying wgpu/hal device and queue via HalDevice() any and
// HalQueue() any. gogpu hosts do. Shared resources are not destroyed on
// Close.
func NewDeviceFromHandle(h DeviceHandle) (*Device, error) {
	if d, err := NewDeviceFromProvider(h); err == nil {
		return d, nil
	}
	return NewDeviceFromProvider(h.Device())
}
