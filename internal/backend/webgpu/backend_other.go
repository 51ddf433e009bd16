//go:build !windows

package webgpu

import (
	"fmt"
	"runtime"

	"github.com/tnn-lab/tnn/internal/backend/cpu"
)

// Backend is a placeholder on platforms without the native WebGPU library.
type Backend struct {
	*cpu.CPUBackend
}

// New always fails outside windows.
func New() (*Backend, error) {
	return nil, fmt.Errorf("%w on %s", ErrUnavailable, runtime.GOOS)
}

// IsAvailable reports whether WebGPU can be used on this system.
func IsAvailable() bool {
	return false
}

// Release is a no-op.
func (b *Backend) Release() {}
