// Copyright 2025 The tnn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensors for the tnn attention engine.
//
// # Overview
//
// A Tensor[T, B] is a dense row-major array of element type T whose
// arithmetic runs on backend B:
//   - Generic type-safe tensors over float32, float64, int32 and int64
//   - NumPy-style broadcasting for element-wise operations
//   - Batched matrix products over the last two axes
//   - Device abstraction (CPU, WebGPU)
//
// # Basic Usage
//
//	import (
//	    "github.com/tnn-lab/tnn/backend/cpu"
//	    "github.com/tnn-lab/tnn/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    q := tensor.Randn[float32](tensor.Shape{2, 4, 8}, backend, nil)
//	    k := tensor.Randn[float32](tensor.Shape{2, 6, 8}, backend, nil)
//
//	    scores := q.BatchMatMul(k.SwapLast()) // [2, 4, 6]
//	    weights := scores.Softmax(-1)
//	}
//
// # Error Handling
//
// Tensor operations panic on shape or dtype misuse, like slice indexing.
// Layers in the nn package validate their inputs first and return errors
// instead.
package tensor
