// Copyright 2025 The tnn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Matrix products through gonum BLAS
//   - Float32, Float64, Int32 and Int64 support
//   - NumPy-compatible broadcasting
//   - Goroutine fan-out over batches and softmax rows
//
// # Basic Usage
//
//	import (
//	    "github.com/tnn-lab/tnn/backend/cpu"
//	    "github.com/tnn-lab/tnn/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    mha, err := nn.NewMultiHeadAttention(nn.MHAConfig{DModel: 512, NumHeads: 8}, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Parallelism
//
// New uses one worker per CPU. NewWithConfig takes a ParallelConfig;
// Sequential() disables goroutines entirely.
package cpu
