// Copyright 2025 The tnn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend for GPU-accelerated attention.
//
// Float32 MatMul and BatchMatMul run as WGSL compute shaders; every other
// operation, and any product the GPU rejects, runs on the embedded CPU
// backend. The GPU path is built on Windows only. Elsewhere New returns an
// error wrapping ErrUnavailable.
//
// Example:
//
//	import (
//	    "github.com/tnn-lab/tnn/backend/webgpu"
//	    "github.com/tnn-lab/tnn/nn"
//	)
//
//	func main() {
//	    gpu, err := webgpu.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer gpu.Release()
//
//	    mha, err := nn.NewMultiHeadAttention(nn.MHAConfig{DModel: 512, NumHeads: 8}, gpu)
//	}
package webgpu

import (
	internalwebgpu "github.com/tnn-lab/tnn/internal/backend/webgpu"
	"github.com/tnn-lab/tnn/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// ErrUnavailable is wrapped by New when no usable GPU is present.
var ErrUnavailable = internalwebgpu.ErrUnavailable

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a WebGPU backend. Call Release when done to free GPU
// resources.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable checks if WebGPU is available on the current system.
//
// Example:
//
//	var backend tensor.Backend = cpu.New()
//	if webgpu.IsAvailable() {
//	    gpu, _ := webgpu.New()
//	    defer gpu.Release()
//	    backend = gpu
//	}
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
