package nn

import (
	"math"

	"github.com/tnn-lab/tnn/internal/tensor"
)

// maskFill is added to masked score entries before the softmax.
const maskFill = -1e9

// ScaledDotProductAttention computes softmax(Q @ K.T / sqrt(d_k) + mask * -1e9) @ V.
//
// Shapes:
//   - q: [..., seq_q, d_k]
//   - k: [..., seq_kv, d_k]
//   - v: [..., seq_kv, d_v]
//   - mask (optional): broadcastable to [..., seq_q, seq_kv]; 1 marks a
//     masked position, 0 a visible one
//
// All three inputs share the same leading axes. d_k is taken from q.
//
// Returns the output [..., seq_q, d_v] and the attention weights
// [..., seq_q, seq_kv]. Shape problems are reported as ErrShapeMismatch
// before any arithmetic runs.
//
// A query row whose keys are all masked is not an error: its shifted logits
// softmax to a near-uniform distribution. Such rows are reported once per
// call as a NumericWarning log record.
//
// Example:
//
//	q := tensor.Randn[float32](tensor.Shape{2, 8, 10, 64}, backend, nil)
//	k := tensor.Randn[float32](tensor.Shape{2, 8, 12, 64}, backend, nil)
//	v := tensor.Randn[float32](tensor.Shape{2, 8, 12, 64}, backend, nil)
//	out, weights, err := nn.ScaledDotProductAttention(q, k, v, nil)
//	// out: [2, 8, 10, 64], weights: [2, 8, 10, 12]
func ScaledDotProductAttention[B tensor.Backend](
	q, k, v, mask *tensor.Tensor[float32, B],
) (output, weights *tensor.Tensor[float32, B], err error) {
	const op = "ScaledDotProductAttention"

	if err := requireInputs(op, q, k, v); err != nil {
		return nil, nil, err
	}
	scoreShape, err := attentionShapes(op, q.Shape(), k.Shape(), v.Shape())
	if err != nil {
		return nil, nil, err
	}
	if mask != nil {
		if err := checkMask(op, mask.Shape(), scoreShape); err != nil {
			return nil, nil, err
		}
	}

	output, weights = attend(q, k, v, mask)
	return output, weights, nil
}

// attend runs the attention arithmetic on validated inputs.
func attend[B tensor.Backend](q, k, v, mask *tensor.Tensor[float32, B]) (output, weights *tensor.Tensor[float32, B]) {
	qShape := q.Shape()
	dk := qShape[len(qShape)-1]

	scores := q.BatchMatMul(k.SwapLast()).MulScalar(1 / math.Sqrt(float64(dk)))

	if mask != nil {
		scores = scores.Add(mask.MulScalar(maskFill))
		warnFullyMasked(scores)
	}

	weights = scores.Softmax(-1)
	output = weights.BatchMatMul(v)
	return output, weights
}

// attentionShapes validates q, k and v and returns the score shape.
func attentionShapes(op string, q, k, v tensor.Shape) (tensor.Shape, error) {
	rank := len(q)
	if rank < 2 {
		return nil, shapeError(op, "q", q, "rank >= 2")
	}
	if len(k) != rank {
		return nil, shapeError(op, "k", k, "rank %d to match q %v", rank, q)
	}
	if len(v) != rank {
		return nil, shapeError(op, "v", v, "rank %d to match q %v", rank, q)
	}
	if !k[:rank-2].Equal(q[:rank-2]) {
		return nil, shapeError(op, "k", k, "leading axes %v to match q", q[:rank-2])
	}
	if !v[:rank-2].Equal(q[:rank-2]) {
		return nil, shapeError(op, "v", v, "leading axes %v to match q", q[:rank-2])
	}
	if k[rank-1] != q[rank-1] {
		return nil, shapeError(op, "k", k, "last axis %d (d_k of q)", q[rank-1])
	}
	if v[rank-2] != k[rank-2] {
		return nil, shapeError(op, "v", v, "seq_kv %d (from k)", k[rank-2])
	}

	scores := q.Clone()
	scores[rank-1] = k[rank-2]
	return scores, nil
}

// checkMask requires mask to broadcast to exactly the score shape.
func checkMask(op string, mask, scores tensor.Shape) error {
	out, err := tensor.BroadcastShapes(mask, scores)
	if err != nil || !out.Equal(scores) {
		return shapeError(op, "mask", mask, "broadcastable to scores %v", scores)
	}
	return nil
}

// warnFullyMasked logs query rows whose every score carries the mask fill.
func warnFullyMasked[B tensor.Backend](scores *tensor.Tensor[float32, B]) {
	shape := scores.Shape()
	cols := shape[len(shape)-1]
	data := scores.Data()

	rows := 0
	for start := 0; start < len(data); start += cols {
		masked := true
		for _, s := range data[start : start+cols] {
			if s > maskFill/2 {
				masked = false
				break
			}
		}
		if masked {
			rows++
		}
	}

	if rows > 0 {
		log().Warn("NumericWarning: fully masked attention rows produce near-uniform weights",
			"rows", rows,
			"scores_shape", shape)
	}
}
