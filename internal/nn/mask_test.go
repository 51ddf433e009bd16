package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnn-lab/tnn/internal/tensor"
)

func TestLookAheadMask(t *testing.T) {
	mask, err := LookAheadMask(3, testBackend)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 3}, mask.Shape())
	assert.Equal(t, []float32{
		0, 1, 1,
		0, 0, 1,
		0, 0, 0,
	}, mask.Data())

	one, err := LookAheadMask(1, testBackend)
	require.NoError(t, err)
	assert.Equal(t, []float32{0}, one.Data())

	_, err = LookAheadMask(0, testBackend)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestPaddingMask(t *testing.T) {
	ids, err := tensor.FromSlice([]int32{
		7, 6, 0, 0, 1,
		1, 2, 3, 0, 0,
		0, 0, 0, 4, 5,
	}, tensor.Shape{3, 5}, testBackend)
	require.NoError(t, err)

	mask, err := PaddingMask(ids)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 1, 1, 5}, mask.Shape())
	assert.Equal(t, []float32{
		0, 0, 1, 1, 0,
		0, 0, 0, 1, 1,
		1, 1, 1, 0, 0,
	}, mask.Data())

	flat, err := tensor.FromSlice([]int32{1, 0}, tensor.Shape{2}, testBackend)
	require.NoError(t, err)
	_, err = PaddingMask(flat)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestCombinedMask(t *testing.T) {
	lookAhead, err := LookAheadMask(3, testBackend)
	require.NoError(t, err)

	ids, err := tensor.FromSlice([]int32{5, 0, 6, 5, 6, 0}, tensor.Shape{2, 3}, testBackend)
	require.NoError(t, err)
	padding, err := PaddingMask(ids)
	require.NoError(t, err)

	mask, err := CombinedMask(lookAhead, padding)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 1, 3, 3}, mask.Shape())
	assert.Equal(t, []float32{
		// batch 0: key 1 is padding
		0, 1, 1,
		0, 1, 1,
		0, 1, 0,
		// batch 1: key 2 is padding
		0, 1, 1,
		0, 0, 1,
		0, 0, 1,
	}, mask.Data())

	_, err = CombinedMask(lookAhead, tensor.Zeros[float32](tensor.Shape{2, 4}, testBackend))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
