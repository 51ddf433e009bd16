package nn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnn-lab/tnn/internal/tensor"
)

func TestNewMultiHeadAttention_Configuration(t *testing.T) {
	tests := []struct {
		name    string
		cfg     MHAConfig
		wantErr bool
	}{
		{"Valid", MHAConfig{DModel: 512, NumHeads: 8}, false},
		{"SingleHead", MHAConfig{DModel: 6, NumHeads: 1}, false},
		{"HeadPerFeature", MHAConfig{DModel: 4, NumHeads: 4}, false},
		{"NotDivisible", MHAConfig{DModel: 512, NumHeads: 7}, true},
		{"ZeroHeads", MHAConfig{DModel: 8, NumHeads: 0}, true},
		{"NegativeModel", MHAConfig{DModel: -8, NumHeads: 2}, true},
		{"ZeroModel", MHAConfig{DModel: 0, NumHeads: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mha, err := NewMultiHeadAttention(tt.cfg, testBackend)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrConfiguration)
				assert.Nil(t, mha)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.DModel, mha.DModel())
			assert.Equal(t, tt.cfg.NumHeads, mha.NumHeads())
			assert.Equal(t, tt.cfg.DModel/tt.cfg.NumHeads, mha.Depth())
		})
	}
}

func TestMultiHeadAttention_OutputShape(t *testing.T) {
	tests := []struct {
		dModel, heads, batch, seqQ, seqKV int
	}{
		{8, 2, 1, 4, 4},
		{12, 3, 2, 5, 7},
		{16, 16, 3, 1, 2},
		{6, 1, 2, 3, 3},
	}

	for _, tt := range tests {
		mha, err := NewMultiHeadAttention(MHAConfig{DModel: tt.dModel, NumHeads: tt.heads}, testBackend)
		require.NoError(t, err)

		q := randn(1, tt.batch, tt.seqQ, tt.dModel)
		kv := randn(2, tt.batch, tt.seqKV, tt.dModel)

		out, weights, err := mha.Forward(q, kv, kv, nil)
		require.NoError(t, err)
		assert.Equal(t, q.Shape(), out.Shape())
		assert.Equal(t, tensor.Shape{tt.batch, tt.heads, tt.seqQ, tt.seqKV}, weights.Shape())

		data := weights.Data()
		for row := 0; row < len(data)/tt.seqKV; row++ {
			var sum float32
			for _, w := range data[row*tt.seqKV : (row+1)*tt.seqKV] {
				sum += w
			}
			assert.InDelta(t, 1.0, sum, 1e-5)
		}
	}
}

func TestMultiHeadAttention_Masks(t *testing.T) {
	mha, err := NewMultiHeadAttention(MHAConfig{DModel: 8, NumHeads: 2}, testBackend)
	require.NoError(t, err)
	x := randn(1, 2, 4, 8)

	t.Run("LookAhead", func(t *testing.T) {
		mask, err := LookAheadMask(4, testBackend)
		require.NoError(t, err)

		_, weights, err := mha.Forward(x, x, x, mask)
		require.NoError(t, err)
		for b := 0; b < 2; b++ {
			for h := 0; h < 2; h++ {
				for i := 0; i < 4; i++ {
					for j := i + 1; j < 4; j++ {
						assert.Less(t, weights.At(b, h, i, j), float32(1e-6))
					}
				}
			}
		}
	})

	t.Run("Padding", func(t *testing.T) {
		ids, err := tensor.FromSlice([]int32{3, 4, 5, 0, 9, 0, 0, 0}, tensor.Shape{2, 4}, testBackend)
		require.NoError(t, err)
		mask, err := PaddingMask(ids)
		require.NoError(t, err)

		_, weights, err := mha.Forward(x, x, x, mask)
		require.NoError(t, err)
		for h := 0; h < 2; h++ {
			for i := 0; i < 4; i++ {
				assert.Less(t, weights.At(0, h, i, 3), float32(1e-6))
				assert.InDelta(t, 1.0, weights.At(1, h, i, 0), 1e-6)
			}
		}
	})

	t.Run("Mismatch", func(t *testing.T) {
		mask := tensor.Zeros[float32](tensor.Shape{3, 5}, testBackend)
		_, _, err := mha.Forward(x, x, x, mask)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}

func TestMultiHeadAttention_ShapeMismatch(t *testing.T) {
	mha, err := NewMultiHeadAttention(MHAConfig{DModel: 8, NumHeads: 2}, testBackend)
	require.NoError(t, err)

	tests := []struct {
		name    string
		q, k, v *T32
		input   string
	}{
		{"WrongDModel", randn(1, 2, 4, 6), randn(1, 2, 4, 8), randn(1, 2, 4, 8), "q"},
		{"Rank2", randn(1, 4, 8), randn(1, 2, 4, 8), randn(1, 2, 4, 8), "q"},
		{"BatchMismatch", randn(1, 2, 4, 8), randn(1, 3, 4, 8), randn(1, 3, 4, 8), "k"},
		{"KVSeqMismatch", randn(1, 2, 4, 8), randn(1, 2, 5, 8), randn(1, 2, 6, 8), "v"},
		{"NilKey", randn(1, 2, 4, 8), nil, randn(1, 2, 4, 8), "k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, weights, err := mha.Forward(tt.q, tt.k, tt.v, nil)
			require.ErrorIs(t, err, ErrShapeMismatch)
			assert.Nil(t, out)
			assert.Nil(t, weights)

			var se *ShapeError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.input, se.Input)
		})
	}
}

func identity(n int) []float32 {
	m := make([]float32, n*n)
	for i := 0; i < n; i++ {
		m[i*n+i] = 1
	}
	return m
}

func TestMultiHeadAttention_IdentityProjectionsMatchSDPA(t *testing.T) {
	const dModel = 4
	mha, err := NewMultiHeadAttention(MHAConfig{DModel: dModel, NumHeads: 1}, testBackend)
	require.NoError(t, err)

	eye := fromSlice(t, identity(dModel), dModel, dModel)
	zero := tensor.Zeros[float32](tensor.Shape{dModel}, testBackend)
	state := map[string]*tensor.RawTensor{
		"wq.weight": eye.Raw(), "wq.bias": zero.Raw(),
		"wk.weight": eye.Raw(), "wk.bias": zero.Raw(),
		"wv.weight": eye.Raw(), "wv.bias": zero.Raw(),
		"wo.weight": eye.Raw(),
	}
	require.NoError(t, mha.LoadStateDict(state))

	q, k, v := randn(1, 2, 3, dModel), randn(2, 2, 5, dModel), randn(3, 2, 5, dModel)
	got, _, err := mha.Forward(q, k, v, nil)
	require.NoError(t, err)
	want, _, err := ScaledDotProductAttention(q, k, v, nil)
	require.NoError(t, err)

	assert.InDeltaSlice(t, want.Data(), got.Data(), 1e-5)
}

func TestMultiHeadAttention_StateDict(t *testing.T) {
	src, err := NewMultiHeadAttention(MHAConfig{DModel: 8, NumHeads: 2}, testBackend)
	require.NoError(t, err)

	state := src.StateDict()
	assert.Len(t, state, 7)
	for _, name := range []string{"wq.weight", "wq.bias", "wk.weight", "wk.bias", "wv.weight", "wv.bias", "wo.weight"} {
		assert.Contains(t, state, name)
	}
	assert.NotContains(t, state, "wo.bias")
	assert.Len(t, src.Parameters(), 7)

	dst, err := NewMultiHeadAttention(MHAConfig{DModel: 8, NumHeads: 2}, testBackend)
	require.NoError(t, err)
	require.NoError(t, dst.LoadStateDict(state))

	x := randn(4, 1, 3, 8)
	a, _, err := src.Forward(x, x, x, nil)
	require.NoError(t, err)
	b, _, err := dst.Forward(x, x, x, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())

	t.Run("MissingEntry", func(t *testing.T) {
		partial := dst.StateDict()
		delete(partial, "wk.bias")
		assert.Error(t, dst.LoadStateDict(partial))
	})

	t.Run("WrongShape", func(t *testing.T) {
		bad := dst.StateDict()
		bad["wq.weight"] = tensor.Zeros[float32](tensor.Shape{4, 8}, testBackend).Raw()
		assert.Error(t, dst.LoadStateDict(bad))
	})
}

func TestSplitMergeHeads(t *testing.T) {
	x := fromSlice(t, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
	}, 1, 3, 4)

	split, err := SplitHeads(x, 2)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2, 3, 2}, split.Shape())
	// Head 0 holds the first two features of every position.
	assert.Equal(t, []float32{1, 2, 5, 6, 9, 10, 3, 4, 7, 8, 11, 12}, split.Data())

	merged, err := MergeHeads(split)
	require.NoError(t, err)
	assert.Equal(t, x.Shape(), merged.Shape())
	assert.Equal(t, x.Data(), merged.Data())

	_, err = SplitHeads(x, 3)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = SplitHeads(x, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = MergeHeads(x)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
