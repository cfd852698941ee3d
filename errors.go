package gtext

import (
	"errors"
	"fmt"
)

// Sentinel errors for gtext.
var (
	// ErrRendererClosed is returned when a closed Renderer is used.
	ErrRendererClosed = errors.New("gtext: renderer is closed")

	// ErrNilDevice is returned by New when no device is provided.
	ErrNilDevice = errors.New("gtext: device cannot be nil")
)

// MisuseError is returned when an operation touches a released
// resource: drawing a released Text, compiling against a released Font,
// releasing twice.
type MisuseError struct {
	Resource string
	Op       string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("gtext: %s on released %s", e.Op, e.Resource)
}
