// Package webgpu offloads matrix products to the GPU through WebGPU compute
// shaders. Every other kernel runs on the embedded CPU backend.
//
// The GPU path needs the wgpu_native library and is only built on windows.
// On other platforms New returns ErrUnavailable.
package webgpu

import "errors"

// ErrUnavailable is returned by New when no WebGPU adapter can be used.
var ErrUnavailable = errors.New("webgpu: not available")
