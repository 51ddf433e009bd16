package cpu

import (
	"fmt"
	"math"

	"github.com/tnn-lab/tnn/internal/parallel"
	"github.com/tnn-lab/tnn/internal/tensor"
)

// Softmax computes softmax along dim using the max-subtraction trick for
// numerical stability. Negative dims count from the end.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("softmax: dim %d out of range for %dD tensor", dim, ndim))
	}

	// View the tensor as (outer, size, inner).
	outer := shape[:dim].NumElements()
	size := shape[dim]
	inner := shape[dim+1:].NumElements()

	result := cpu.newResult("softmax", shape, x.DType())
	switch x.DType() {
	case tensor.Float32:
		in, out := view[float32](x), view[float32](result)
		parallel.For(outer*inner, cpu.par, func(row int) {
			softmaxRow(out, in, row/inner*size*inner+row%inner, size, inner)
		})
	case tensor.Float64:
		in, out := view[float64](x), view[float64](result)
		parallel.For(outer*inner, cpu.par, func(row int) {
			softmaxRow(out, in, row/inner*size*inner+row%inner, size, inner)
		})
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s (float types only)", x.DType()))
	}
	return result
}

// softmaxRow normalizes the size elements starting at base, spaced stride apart.
func softmaxRow[T float32 | float64](out, in []T, base, size, stride int) {
	maxVal := math.Inf(-1)
	for i := 0; i < size; i++ {
		maxVal = math.Max(maxVal, float64(in[base+i*stride]))
	}

	var sum float64
	for i := 0; i < size; i++ {
		e := math.Exp(float64(in[base+i*stride]) - maxVal)
		out[base+i*stride] = T(e)
		sum += e
	}

	for i := 0; i < size; i++ {
		out[base+i*stride] = T(float64(out[base+i*stride]) / sum)
	}
}
