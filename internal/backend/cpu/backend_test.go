package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnn-lab/tnn/internal/parallel"
	"github.com/tnn-lab/tnn/internal/tensor"
)

func rawFloat32(t *testing.T, shape tensor.Shape, data ...float32) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func TestCPUBackend_New(t *testing.T) {
	b := New()
	require.NotNil(t, b)
	assert.Equal(t, "CPU", b.Name())
	assert.Equal(t, tensor.CPU, b.Device())
	assert.Equal(t, parallel.DefaultConfig(), b.Parallel())

	seq := NewWithConfig(parallel.Sequential())
	assert.False(t, seq.Parallel().Enabled)
}

func TestCPUBackend_Binary(t *testing.T) {
	b := New()

	t.Run("SameShape", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		y := rawFloat32(t, tensor.Shape{2, 3}, 10, 20, 30, 40, 50, 60)

		assert.Equal(t, []float32{11, 22, 33, 44, 55, 66}, b.Add(x, y).AsFloat32())
		assert.Equal(t, []float32{9, 18, 27, 36, 45, 54}, b.Sub(y, x).AsFloat32())
		assert.Equal(t, []float32{10, 40, 90, 160, 250, 360}, b.Mul(x, y).AsFloat32())
	})

	t.Run("BroadcastRow", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		row := rawFloat32(t, tensor.Shape{3}, 10, 20, 30)

		out := b.Add(x, row)
		assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
		assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32())
	})

	t.Run("BroadcastBothSides", func(t *testing.T) {
		col := rawFloat32(t, tensor.Shape{2, 1}, 1, 2)
		row := rawFloat32(t, tensor.Shape{1, 3}, 10, 20, 30)

		out := b.Mul(col, row)
		assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
		assert.Equal(t, []float32{10, 20, 30, 20, 40, 60}, out.AsFloat32())
	})

	t.Run("Incompatible", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		y := rawFloat32(t, tensor.Shape{2, 2}, 1, 2, 3, 4)
		assert.Panics(t, func() { b.Add(x, y) })
	})

	t.Run("Int64", func(t *testing.T) {
		x, err := tensor.NewRaw(tensor.Shape{3}, tensor.Int64, tensor.CPU)
		require.NoError(t, err)
		copy(x.AsInt64(), []int64{1, -2, 3})
		assert.Equal(t, []int64{2, -4, 6}, b.Add(x, x).AsInt64())
	})
}

func TestCPUBackend_Scalar(t *testing.T) {
	b := New()
	x := rawFloat32(t, tensor.Shape{4}, -1, 0, 1, 2)

	assert.Equal(t, []float32{1, 2, 3, 4}, b.AddScalar(x, 2).AsFloat32())
	assert.Equal(t, []float32{-0.5, 0, 0.5, 1}, b.MulScalar(x, 0.5).AsFloat32())
	assert.Equal(t, []float32{0, 0, 1, 2}, b.ReLU(x).AsFloat32())
	// Input is untouched.
	assert.Equal(t, []float32{-1, 0, 1, 2}, x.AsFloat32())
}

func TestCPUBackend_MatMul(t *testing.T) {
	b := New()

	t.Run("Float32", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		y := rawFloat32(t, tensor.Shape{3, 2}, 7, 8, 9, 10, 11, 12)

		out := b.MatMul(x, y)
		assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
		assert.InDeltaSlice(t, []float32{58, 64, 139, 154}, out.AsFloat32(), 1e-5)
	})

	t.Run("Float64", func(t *testing.T) {
		x, _ := tensor.NewRaw(tensor.Shape{1, 2}, tensor.Float64, tensor.CPU)
		y, _ := tensor.NewRaw(tensor.Shape{2, 1}, tensor.Float64, tensor.CPU)
		copy(x.AsFloat64(), []float64{3, 4})
		copy(y.AsFloat64(), []float64{5, 6})
		assert.Equal(t, []float64{39}, b.MatMul(x, y).AsFloat64())
	})

	t.Run("Int32", func(t *testing.T) {
		x, _ := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Int32, tensor.CPU)
		copy(x.AsInt32(), []int32{1, 2, 3, 4})
		assert.Equal(t, []int32{7, 10, 15, 22}, b.MatMul(x, x).AsInt32())
	})

	t.Run("InnerMismatch", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		assert.Panics(t, func() { b.MatMul(x, x) })
	})
}

func TestCPUBackend_BatchMatMul(t *testing.T) {
	seq := NewWithConfig(parallel.Sequential())
	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})

	// Batch of two 2x2 matrices times identity / doubled identity.
	x := rawFloat32(t, tensor.Shape{2, 2, 2}, 1, 2, 3, 4, 5, 6, 7, 8)
	y := rawFloat32(t, tensor.Shape{2, 2, 2}, 1, 0, 0, 1, 2, 0, 0, 2)
	want := []float32{1, 2, 3, 4, 10, 12, 14, 16}

	for _, b := range []*CPUBackend{seq, par} {
		out := b.BatchMatMul(x, y)
		assert.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
		assert.InDeltaSlice(t, want, out.AsFloat32(), 1e-6)
	}

	t.Run("LeadingMismatch", func(t *testing.T) {
		z := rawFloat32(t, tensor.Shape{1, 2, 2}, 1, 0, 0, 1)
		assert.Panics(t, func() { seq.BatchMatMul(x, z) })
	})
}

func TestCPUBackend_Softmax(t *testing.T) {
	b := New()

	t.Run("LastAxis", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 1000, 1000, 1000)
		out := b.Softmax(x, -1).AsFloat32()

		assert.InDeltaSlice(t, []float32{0.09003057, 0.24472847, 0.66524096}, out[:3], 1e-6)
		assert.InDeltaSlice(t, []float32{1.0 / 3, 1.0 / 3, 1.0 / 3}, out[3:], 1e-6)
	})

	t.Run("MiddleAxis", func(t *testing.T) {
		// (1, 2, 2): softmax over axis 1 pairs elements {0,2} and {1,3}.
		x := rawFloat32(t, tensor.Shape{1, 2, 2}, 0, 5, 0, 5)
		out := b.Softmax(x, 1).AsFloat32()
		assert.InDeltaSlice(t, []float32{0.5, 0.5, 0.5, 0.5}, out, 1e-6)
	})

	t.Run("HugeNegativeRowIsUniform", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{4}, -1e9, -1e9, -1e9, -1e9)
		out := b.Softmax(x, 0).AsFloat32()
		assert.InDeltaSlice(t, []float32{0.25, 0.25, 0.25, 0.25}, out, 1e-6)
	})

	t.Run("IntPanics", func(t *testing.T) {
		x, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU)
		assert.Panics(t, func() { b.Softmax(x, 0) })
	})
}

func TestCPUBackend_Transpose(t *testing.T) {
	b := New()

	t.Run("2D", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		out := b.Transpose(x)
		assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
		assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())
	})

	t.Run("SplitHeadsPermutation", func(t *testing.T) {
		// (1, 2, 2, 2) -> (0, 2, 1, 3)
		x := rawFloat32(t, tensor.Shape{1, 2, 2, 2}, 1, 2, 3, 4, 5, 6, 7, 8)
		out := b.Transpose(x, 0, 2, 1, 3)
		assert.Equal(t, tensor.Shape{1, 2, 2, 2}, out.Shape())
		assert.Equal(t, []float32{1, 2, 5, 6, 3, 4, 7, 8}, out.AsFloat32())

		back := b.Transpose(out, 0, 2, 1, 3)
		assert.Equal(t, x.AsFloat32(), back.AsFloat32())
	})

	t.Run("InvalidAxes", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		assert.Panics(t, func() { b.Transpose(x, 0, 0) })
		assert.Panics(t, func() { b.Transpose(x, 0) })
	})
}

func TestCPUBackend_Reshape(t *testing.T) {
	b := New()
	x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	out := b.Reshape(x, tensor.Shape{3, 2})
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, x.AsFloat32(), out.AsFloat32())

	out.AsFloat32()[0] = 42
	assert.Equal(t, float32(1), x.AsFloat32()[0], "reshape must not alias its input")

	assert.Panics(t, func() { b.Reshape(x, tensor.Shape{4, 2}) })
}
