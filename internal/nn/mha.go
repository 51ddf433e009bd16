package nn

import (
	"fmt"

	"github.com/tnn-lab/tnn/internal/tensor"
)

// MHAConfig configures a MultiHeadAttention layer.
type MHAConfig struct {
	DModel   int  // Model dimension, split evenly across heads.
	NumHeads int  // Number of attention heads.
	Init     Init // Parameter initialisers; zero value means DefaultInit.
}

// Validate checks that DModel splits evenly into NumHeads positive heads.
func (c MHAConfig) Validate() error {
	if c.DModel <= 0 {
		return configError("MHAConfig", "d_model must be positive, got %d", c.DModel)
	}
	if c.NumHeads <= 0 {
		return configError("MHAConfig", "num_heads must be positive, got %d", c.NumHeads)
	}
	if c.DModel%c.NumHeads != 0 {
		return configError("MHAConfig", "d_model %d is not divisible by num_heads %d", c.DModel, c.NumHeads)
	}
	return nil
}

// MultiHeadAttention implements multi-head scaled dot-product attention.
//
// Architecture:
//
//	Q' = Q @ W_q.T + b_q,  K' = K @ W_k.T + b_k,  V' = V @ W_v.T + b_v
//	head_i = Attention(Q'_i, K'_i, V'_i, mask)
//	output = Concat(head_1, ..., head_h) @ W_o.T
//
// Each head sees depth = d_model / num_heads features. The same mask is
// applied to every head.
//
// Example:
//
//	mha, err := nn.NewMultiHeadAttention(nn.MHAConfig{DModel: 512, NumHeads: 8}, backend)
//	x := tensor.Randn[float32](tensor.Shape{2, 10, 512}, backend, nil)
//	out, weights, err := mha.Forward(x, x, x, nil)
//	// out: [2, 10, 512], weights: [2, 8, 10, 10]
type MultiHeadAttention[B tensor.Backend] struct {
	wq *Linear[B]
	wk *Linear[B]
	wv *Linear[B]
	wo *Linear[B]

	dModel   int
	numHeads int
	depth    int
	backend  B
}

// NewMultiHeadAttention creates a multi-head attention layer. It returns
// ErrConfiguration if cfg is invalid.
func NewMultiHeadAttention[B tensor.Backend](cfg MHAConfig, backend B) (*MultiHeadAttention[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &MultiHeadAttention[B]{
		wq:       NewLinear(cfg.DModel, cfg.DModel, true, cfg.Init, backend),
		wk:       NewLinear(cfg.DModel, cfg.DModel, true, cfg.Init, backend),
		wv:       NewLinear(cfg.DModel, cfg.DModel, true, cfg.Init, backend),
		wo:       NewLinear(cfg.DModel, cfg.DModel, false, cfg.Init, backend),
		dModel:   cfg.DModel,
		numHeads: cfg.NumHeads,
		depth:    cfg.DModel / cfg.NumHeads,
		backend:  backend,
	}, nil
}

// Forward computes multi-head attention.
//
// Parameters:
//   - q: [batch, seq_q, d_model]
//   - k, v: [batch, seq_kv, d_model]
//   - mask: optional, broadcastable to [batch, num_heads, seq_q, seq_kv]
//
// Returns the output [batch, seq_q, d_model] and the per-head attention
// weights [batch, num_heads, seq_q, seq_kv].
func (m *MultiHeadAttention[B]) Forward(
	q, k, v, mask *tensor.Tensor[float32, B],
) (output, weights *tensor.Tensor[float32, B], err error) {
	const op = "MultiHeadAttention.Forward"

	if err := requireInputs(op, q, k, v); err != nil {
		return nil, nil, err
	}
	if err := m.checkInput(op, "q", q.Shape()); err != nil {
		return nil, nil, err
	}
	if err := m.checkInput(op, "k", k.Shape()); err != nil {
		return nil, nil, err
	}
	if err := m.checkInput(op, "v", v.Shape()); err != nil {
		return nil, nil, err
	}

	qs, ks, vs := q.Shape(), k.Shape(), v.Shape()
	if ks[0] != qs[0] {
		return nil, nil, shapeError(op, "k", ks, "batch %d (from q)", qs[0])
	}
	if vs[0] != qs[0] || vs[1] != ks[1] {
		return nil, nil, shapeError(op, "v", vs, "[%d, %d, %d] (batch from q, seq_kv from k)", qs[0], ks[1], m.dModel)
	}

	batch, seqQ, seqKV := qs[0], qs[1], ks[1]
	if mask != nil {
		scores := tensor.Shape{batch, m.numHeads, seqQ, seqKV}
		if err := checkMask(op, mask.Shape(), scores); err != nil {
			return nil, nil, err
		}
	}

	qh := splitHeads(m.wq.forward(q), m.numHeads)
	kh := splitHeads(m.wk.forward(k), m.numHeads)
	vh := splitHeads(m.wv.forward(v), m.numHeads)

	attended, weights := attend(qh, kh, vh, mask)

	output = m.wo.forward(mergeHeads(attended))
	return output, weights, nil
}

func (m *MultiHeadAttention[B]) checkInput(op, name string, s tensor.Shape) error {
	if len(s) != 3 || s[2] != m.dModel {
		return shapeError(op, name, s, "[batch, seq, %d]", m.dModel)
	}
	return nil
}

// SplitHeads reshapes [batch, seq, d_model] to [batch, seq, heads, depth]
// and transposes it to [batch, heads, seq, depth].
func SplitHeads[B tensor.Backend](x *tensor.Tensor[float32, B], numHeads int) (*tensor.Tensor[float32, B], error) {
	s := x.Shape()
	if numHeads <= 0 {
		return nil, configError("SplitHeads", "num_heads must be positive, got %d", numHeads)
	}
	if len(s) != 3 || s[2]%numHeads != 0 {
		return nil, shapeError("SplitHeads", "x", s, "[batch, seq, d_model] with d_model divisible by %d", numHeads)
	}
	return splitHeads(x, numHeads), nil
}

// MergeHeads inverts SplitHeads: [batch, heads, seq, depth] to
// [batch, seq, heads*depth].
func MergeHeads[B tensor.Backend](x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if s := x.Shape(); len(s) != 4 {
		return nil, shapeError("MergeHeads", "x", s, "[batch, heads, seq, depth]")
	}
	return mergeHeads(x), nil
}

func splitHeads[B tensor.Backend](x *tensor.Tensor[float32, B], numHeads int) *tensor.Tensor[float32, B] {
	s := x.Shape()
	return x.Reshape(s[0], s[1], numHeads, s[2]/numHeads).Transpose(0, 2, 1, 3)
}

func mergeHeads[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	s := x.Shape()
	return x.Transpose(0, 2, 1, 3).Reshape(s[0], s[2], s[1]*s[3])
}

// DModel returns the model dimension.
func (m *MultiHeadAttention[B]) DModel() int {
	return m.dModel
}

// NumHeads returns the number of heads.
func (m *MultiHeadAttention[B]) NumHeads() int {
	return m.numHeads
}

// Depth returns the per-head dimension.
func (m *MultiHeadAttention[B]) Depth() int {
	return m.depth
}

// Parameters returns the projection parameters in wq, wk, wv, wo order.
func (m *MultiHeadAttention[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, l := range m.layers() {
		params = append(params, l.layer.Parameters()...)
	}
	return params
}

type namedLinear[B tensor.Backend] struct {
	name  string
	layer *Linear[B]
}

func (m *MultiHeadAttention[B]) layers() []namedLinear[B] {
	return []namedLinear[B]{{"wq", m.wq}, {"wk", m.wk}, {"wv", m.wv}, {"wo", m.wo}}
}

// StateDict returns the parameters keyed "wq.weight", "wq.bias", ...,
// "wo.weight".
func (m *MultiHeadAttention[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for _, l := range m.layers() {
		prefixed(stateDict, l.layer.StateDict(), l.name)
	}
	return stateDict
}

// LoadStateDict loads all four projections.
func (m *MultiHeadAttention[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, l := range m.layers() {
		if err := l.layer.LoadStateDict(sub(stateDict, l.name)); err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}
	}
	return nil
}
