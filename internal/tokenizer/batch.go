package tokenizer

import (
	"errors"
	"fmt"

	"github.com/tnn-lab/tnn/internal/tensor"
)

// ErrEmptyBatch is returned when a batch has no sequences or only empty ones.
var ErrEmptyBatch = errors.New("empty batch")

// PadBatch right-pads sequences with PadID into a row-major
// [len(ids), maxLen] matrix. Longer sequences are truncated. maxLen <= 0
// pads to the longest sequence.
func PadBatch(ids [][]int32, maxLen int) ([]int32, tensor.Shape, error) {
	if maxLen <= 0 {
		for _, seq := range ids {
			maxLen = max(maxLen, len(seq))
		}
	}
	if len(ids) == 0 || maxLen == 0 {
		return nil, nil, ErrEmptyBatch
	}

	out := make([]int32, len(ids)*maxLen)
	for i, seq := range ids {
		copy(out[i*maxLen:(i+1)*maxLen], seq)
	}
	return out, tensor.Shape{len(ids), maxLen}, nil
}

// EncodeBatch tokenizes texts and returns a [len(texts), maxLen] int32
// tensor padded with PadID. See PadBatch for maxLen.
func EncodeBatch[B tensor.Backend](tok Tokenizer, texts []string, maxLen int, backend B) (*tensor.Tensor[int32, B], error) {
	ids := make([][]int32, len(texts))
	for i, text := range texts {
		seq, err := tok.Encode(text)
		if err != nil {
			return nil, fmt.Errorf("encode text %d: %w", i, err)
		}
		ids[i] = seq
	}

	data, shape, err := PadBatch(ids, maxLen)
	if err != nil {
		return nil, err
	}
	return tensor.FromSlice(data, shape, backend)
}
