// Copyright 2025 The tnn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/tnn-lab/tnn/backend/cpu"
	"github.com/tnn-lab/tnn/nn"
	"github.com/tnn-lab/tnn/tensor"
)

// Compile-time checks that the layers satisfy Module.
var (
	_ nn.Module[*cpu.Backend] = (*nn.MultiHeadAttention[*cpu.Backend])(nil)
	_ nn.Module[*cpu.Backend] = (*nn.Linear[*cpu.Backend])(nil)
	_ nn.Module[*cpu.Backend] = (*nn.FeedForward[*cpu.Backend])(nil)
)

func TestMultiHeadAttention_SaveLoad(t *testing.T) {
	backend := cpu.New()
	cfg := nn.MHAConfig{DModel: 8, NumHeads: 2}

	src, err := nn.NewMultiHeadAttention(cfg, backend)
	if err != nil {
		t.Fatalf("NewMultiHeadAttention failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "mha.safetensors")
	if err := nn.Save(src, path, map[string]string{"num_heads": "2"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	dst, err := nn.NewMultiHeadAttention(cfg, backend)
	if err != nil {
		t.Fatalf("NewMultiHeadAttention failed: %v", err)
	}
	meta, err := nn.Load(path, backend, dst)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if meta["num_heads"] != "2" {
		t.Errorf("metadata num_heads = %q, want 2", meta["num_heads"])
	}

	x := tensor.Randn[float32](tensor.Shape{2, 3, 8}, backend, nil)
	want, _, err := src.Forward(x, x, x, nil)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	got, _, err := dst.Forward(x, x, x, nil)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if !tensor.AllClose(got, want, 0) {
		t.Error("loaded layer output differs from saved layer")
	}
}

func TestMultiHeadAttention_Errors(t *testing.T) {
	backend := cpu.New()

	if _, err := nn.NewMultiHeadAttention(nn.MHAConfig{DModel: 10, NumHeads: 3}, backend); !errors.Is(err, nn.ErrConfiguration) {
		t.Errorf("d_model 10 with 3 heads: err = %v, want ErrConfiguration", err)
	}

	mha, err := nn.NewMultiHeadAttention(nn.MHAConfig{DModel: 8, NumHeads: 2}, backend)
	if err != nil {
		t.Fatalf("NewMultiHeadAttention failed: %v", err)
	}
	x := tensor.Zeros[float32](tensor.Shape{1, 3, 6}, backend)
	_, _, err = mha.Forward(x, x, x, nil)

	var shapeErr *nn.ShapeError
	if !errors.As(err, &shapeErr) || !errors.Is(err, nn.ErrShapeMismatch) {
		t.Fatalf("err = %v, want *ShapeError wrapping ErrShapeMismatch", err)
	}
	if shapeErr.Input != "q" {
		t.Errorf("ShapeError.Input = %q, want q", shapeErr.Input)
	}
}

func TestCombinedMask(t *testing.T) {
	backend := cpu.New()

	ids, err := tensor.FromSlice([]int32{5, 7, 0}, tensor.Shape{1, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	padding, err := nn.PaddingMask(ids)
	if err != nil {
		t.Fatalf("PaddingMask failed: %v", err)
	}
	lookAhead, err := nn.LookAheadMask(3, backend)
	if err != nil {
		t.Fatalf("LookAheadMask failed: %v", err)
	}

	combined, err := nn.CombinedMask(lookAhead, padding)
	if err != nil {
		t.Fatalf("CombinedMask failed: %v", err)
	}
	want := []float32{
		0, 1, 1,
		0, 0, 1,
		0, 0, 1,
	}
	if !combined.Shape().Equal(tensor.Shape{1, 1, 3, 3}) {
		t.Fatalf("shape = %v, want [1 1 3 3]", combined.Shape())
	}
	for i, v := range combined.Data() {
		if v != want[i] {
			t.Errorf("combined[%d] = %v, want %v", i, v, want[i])
		}
	}
}
