// Copyright 2025 The tnn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the attention layers of the tnn engine.
//
// # Overview
//
// This package contains:
//   - Attention: ScaledDotProductAttention, MultiHeadAttention
//   - Masks: PaddingMask, LookAheadMask, CombinedMask
//   - Layers: Linear, FeedForward
//   - Utilities: Module interface, Parameter, Save/Load, Summarize
//   - Initialization: XavierUniform, TruncatedNormal, Constant
//
// # Basic Usage
//
//	import (
//	    "github.com/tnn-lab/tnn/backend/cpu"
//	    "github.com/tnn-lab/tnn/nn"
//	    "github.com/tnn-lab/tnn/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    mha, err := nn.NewMultiHeadAttention(nn.MHAConfig{DModel: 512, NumHeads: 8}, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    x := tensor.Randn[float32](tensor.Shape{1, 60, 512}, backend, nil)
//	    out, weights, err := mha.Forward(x, x, x, nil)
//	    // out: [1, 60, 512], weights: [1, 8, 60, 60]
//	}
//
// # Masks
//
// A mask holds 1 where attention is forbidden and 0 where it is allowed.
// It must broadcast to the attention score shape [..., seq_q, seq_kv].
// Masked scores receive -1e9 before the softmax.
//
// # Errors
//
// Invalid layer settings return errors wrapping ErrConfiguration at
// construction time. Incompatible input shapes return a *ShapeError,
// which wraps ErrShapeMismatch, before any arithmetic runs.
package nn
