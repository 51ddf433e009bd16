// Package nn implements the attention layers of the tnn engine.
//
// This package provides:
//   - ScaledDotProductAttention: softmax(QK^T / sqrt(d_k) + mask * -1e9) V
//   - MultiHeadAttention: projected, head-split attention
//   - PaddingMask, LookAheadMask, CombinedMask: mask builders
//   - Linear and FeedForward layers with pluggable initialisers
//   - Summarize: weight and activation statistics
//
// Public entry points validate shapes and return ErrShapeMismatch or
// ErrConfiguration instead of letting backend kernels panic.
package nn

import (
	"github.com/tnn-lab/tnn/internal/tensor"
)

// Module is implemented by every layer that owns parameters.
//
// Forward signatures differ between layers (Linear takes one input,
// MultiHeadAttention takes q, k, v and a mask), so they are not part of the
// interface.
type Module[B tensor.Backend] interface {
	// Parameters returns all parameters, including those of nested layers.
	Parameters() []*Parameter[B]

	// StateDict maps dotted parameter names to their tensors.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies tensors from a state dict into the parameters.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// prefixed copies src into dst with prefix + "." prepended to every key.
func prefixed(dst, src map[string]*tensor.RawTensor, prefix string) {
	for name, raw := range src {
		dst[prefix+"."+name] = raw
	}
}

// sub extracts the entries of stateDict under prefix, with the prefix removed.
func sub(stateDict map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	p := prefix + "."
	for name, raw := range stateDict {
		if len(name) > len(p) && name[:len(p)] == p {
			out[name[len(p):]] = raw
		}
	}
	return out
}
