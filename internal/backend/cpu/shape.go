package cpu

import (
	"fmt"

	"github.com/tnn-lab/tnn/internal/tensor"
)

// Reshape returns a copy of t with a new shape of the same element count.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.Clone().WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose permutes the tensor's axes. With no axes it reverses them.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}
	result := cpu.newResult("transpose", newShape, t.DType())

	// Source strides reordered into output axis order.
	srcStrides := t.Strides()
	permStrides := make([]int, ndim)
	for i, ax := range axes {
		permStrides[i] = srcStrides[ax]
	}

	elem := t.DType().Size()
	src, dst := t.Data(), result.Data()
	idx := make([]int, ndim)
	srcOff := 0
	for i := 0; i < result.NumElements(); i++ {
		copy(dst[i*elem:(i+1)*elem], src[srcOff*elem:(srcOff+1)*elem])

		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			srcOff += permStrides[d]
			if idx[d] < newShape[d] {
				break
			}
			srcOff -= permStrides[d] * newShape[d]
			idx[d] = 0
		}
	}
	return result
}
