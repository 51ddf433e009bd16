package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tnn-lab/tnn/internal/backend/cpu"
	"github.com/tnn-lab/tnn/internal/tensor"
)

type T32 = tensor.Tensor[float32, *cpu.CPUBackend]

var testBackend = cpu.New()

func fromSlice(t *testing.T, data []float32, shape ...int) *T32 {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape(shape), testBackend)
	require.NoError(t, err)
	return x
}

func randn(seed int64, shape ...int) *T32 {
	return tensor.Randn[float32](tensor.Shape(shape), testBackend, rand.New(rand.NewSource(seed)))
}
