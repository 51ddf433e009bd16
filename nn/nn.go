// Copyright 2025 The tnn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"log/slog"
	"math/rand"

	"github.com/tnn-lab/tnn/internal/nn"
	"github.com/tnn-lab/tnn/internal/tensor"
)

// Errors

var (
	// ErrShapeMismatch is wrapped by every input-shape error.
	ErrShapeMismatch = nn.ErrShapeMismatch

	// ErrConfiguration is wrapped by every invalid-settings error.
	ErrConfiguration = nn.ErrConfiguration
)

// ShapeError describes a rejected input shape.
type ShapeError = nn.ShapeError

// SetLogger sets the logger used for numeric warnings. Nil restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	nn.SetLogger(l)
}

// Attention

// ScaledDotProductAttention computes softmax(q·kᵀ/√d_k + mask·(-1e9))·v.
//
// q is [..., seq_q, d_k], k is [..., seq_kv, d_k] and v is
// [..., seq_kv, d_v]. mask may be nil.
//
// Example:
//
//	out, weights, err := nn.ScaledDotProductAttention(q, k, v, nil)
func ScaledDotProductAttention[B tensor.Backend](
	q, k, v, mask *tensor.Tensor[float32, B],
) (output, weights *tensor.Tensor[float32, B], err error) {
	return nn.ScaledDotProductAttention(q, k, v, mask)
}

// MHAConfig configures a MultiHeadAttention layer.
type MHAConfig = nn.MHAConfig

// MultiHeadAttention projects q, k and v into NumHeads subspaces, attends
// in each and projects the concatenation back to DModel.
type MultiHeadAttention[B tensor.Backend] = nn.MultiHeadAttention[B]

// NewMultiHeadAttention creates a multi-head attention layer.
//
// Example:
//
//	mha, err := nn.NewMultiHeadAttention(nn.MHAConfig{DModel: 512, NumHeads: 8}, backend)
func NewMultiHeadAttention[B tensor.Backend](cfg MHAConfig, backend B) (*MultiHeadAttention[B], error) {
	return nn.NewMultiHeadAttention(cfg, backend)
}

// SplitHeads reshapes [batch, seq, d_model] to [batch, heads, seq, depth].
func SplitHeads[B tensor.Backend](x *tensor.Tensor[float32, B], numHeads int) (*tensor.Tensor[float32, B], error) {
	return nn.SplitHeads(x, numHeads)
}

// MergeHeads reverses SplitHeads.
func MergeHeads[B tensor.Backend](x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return nn.MergeHeads(x)
}

// Masks

// PadToken is the token id PaddingMask treats as padding.
const PadToken = nn.PadToken

// PaddingMask returns a [batch, 1, 1, seq_len] mask with 1 at padding
// positions of seq.
func PaddingMask[B tensor.Backend](seq *tensor.Tensor[int32, B]) (*tensor.Tensor[float32, B], error) {
	return nn.PaddingMask(seq)
}

// LookAheadMask returns a [size, size] mask hiding future positions.
func LookAheadMask[B tensor.Backend](size int, backend B) (*tensor.Tensor[float32, B], error) {
	return nn.LookAheadMask(size, backend)
}

// CombinedMask merges two masks with an element-wise maximum.
func CombinedMask[B tensor.Backend](a, b *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return nn.CombinedMask(a, b)
}

// Layers

// Linear is a fully connected layer y = x·Wᵀ + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer.
//
// Example:
//
//	layer := nn.NewLinear(512, 2048, true, nn.DefaultInit(), backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, useBias bool, init Init, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, useBias, init, backend)
}

// FFNConfig configures a FeedForward block.
type FFNConfig = nn.FFNConfig

// FeedForward is the position-wise block dense2(relu(dense1(x))).
type FeedForward[B tensor.Backend] = nn.FeedForward[B]

// NewFeedForward creates a feed-forward block.
func NewFeedForward[B tensor.Backend](cfg FFNConfig, backend B) (*FeedForward[B], error) {
	return nn.NewFeedForward(cfg, backend)
}

// Initialization

// Initializer fills a parameter given its fan-in and fan-out.
type Initializer = nn.Initializer

// Init selects weight and bias initialisers.
type Init = nn.Init

// DefaultInit returns Xavier-uniform weights and zero biases.
func DefaultInit() Init {
	return nn.DefaultInit()
}

// TruncatedInit returns truncated-normal weights and 0.1 biases.
func TruncatedInit(std float64, rng *rand.Rand) Init {
	return nn.TruncatedInit(std, rng)
}

// XavierUniform draws from U(-√(6/(fan_in+fan_out)), √(6/(fan_in+fan_out))).
func XavierUniform(rng *rand.Rand) Initializer {
	return nn.XavierUniform(rng)
}

// TruncatedNormal draws from N(0, std²) within two standard deviations.
func TruncatedNormal(std float64, rng *rand.Rand) Initializer {
	return nn.TruncatedNormal(std, rng)
}

// Constant fills with v.
func Constant(v float32) Initializer {
	return nn.Constant(v)
}

// Inspection

// Summary holds descriptive statistics of a tensor.
type Summary = nn.Summary

// DefaultHistogramBins is the bin count Summarize uses when bins <= 0.
const DefaultHistogramBins = nn.DefaultHistogramBins

// Summarize computes mean, standard deviation, extrema and a histogram.
func Summarize[B tensor.Backend](t *tensor.Tensor[float32, B], bins int) Summary {
	return nn.Summarize(t, bins)
}
