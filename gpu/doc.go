// Package gpu defines the device abstraction the text renderer draws
// through. It is a deliberately small, draw-oriented surface: programs,
// vertex buffers, textures, uniforms and triangle draws, addressed by
// opaque resource IDs.
//
// Implementations live elsewhere: backend/wgpu provides a real device on
// top of github.com/gogpu/wgpu, and tests use an in-memory recording
// device. The renderer itself never touches a backend directly.
package gpu
