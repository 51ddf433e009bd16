package nn

import (
	"github.com/tnn-lab/tnn/internal/tensor"
)

// PadToken is the token id that PaddingMask treats as padding.
const PadToken = 0

// PaddingMask marks padding positions in a batch of token ids.
//
// seq has shape [batch, seq_len]. The result has shape
// [batch, 1, 1, seq_len] so it broadcasts over heads and query positions,
// with 1.0 where the token equals PadToken and 0.0 elsewhere.
func PaddingMask[B tensor.Backend](seq *tensor.Tensor[int32, B]) (*tensor.Tensor[float32, B], error) {
	s := seq.Shape()
	if len(s) != 2 {
		return nil, shapeError("PaddingMask", "seq", s, "[batch, seq_len]")
	}

	mask := tensor.Zeros[float32](tensor.Shape{s[0], 1, 1, s[1]}, seq.Backend())
	data := mask.Data()
	for i, id := range seq.Data() {
		if id == PadToken {
			data[i] = 1
		}
	}
	return mask, nil
}

// LookAheadMask returns a [size, size] mask with ones strictly above the
// diagonal, hiding future positions from each query.
//
//	LookAheadMask(3) =
//	  [[0, 1, 1],
//	   [0, 0, 1],
//	   [0, 0, 0]]
func LookAheadMask[B tensor.Backend](size int, backend B) (*tensor.Tensor[float32, B], error) {
	if size <= 0 {
		return nil, configError("LookAheadMask", "size must be positive, got %d", size)
	}

	mask := tensor.Zeros[float32](tensor.Shape{size, size}, backend)
	data := mask.Data()
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			data[i*size+j] = 1
		}
	}
	return mask, nil
}

// CombinedMask merges two masks with an element-wise maximum, so a position
// is masked if either input masks it. The typical decoder use combines a
// [seq, seq] look-ahead mask with a [batch, 1, 1, seq] padding mask into
// [batch, 1, seq, seq].
func CombinedMask[B tensor.Backend](a, b *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, shapeError("CombinedMask", "b", b.Shape(), "broadcastable with %v", a.Shape())
	}

	out := tensor.Zeros[float32](outShape, a.Backend())
	dst := out.Data()
	av, bv := a.Data(), b.Data()
	aStrides := tensor.BroadcastStrides(a.Shape(), outShape)
	bStrides := tensor.BroadcastStrides(b.Shape(), outShape)
	outStrides := outShape.ComputeStrides()

	for i := range dst {
		aOff, bOff, rem := 0, 0, i
		for d, stride := range outStrides {
			idx := rem / stride
			rem %= stride
			aOff += idx * aStrides[d]
			bOff += idx * bStrides[d]
		}
		dst[i] = max(av[aOff], bv[bOff])
	}
	return out, nil
}
