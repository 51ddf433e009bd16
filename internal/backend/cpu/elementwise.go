package cpu

import (
	"fmt"

	"github.com/tnn-lab/tnn/internal/tensor"
)

type binaryOp int

const (
	opAdd binaryOp = iota
	opSub
	opMul
)

func (op binaryOp) String() string {
	switch op {
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	default:
		return "mul"
	}
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opAdd, a, b)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opSub, a, b)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opMul, a, b)
}

func (cpu *CPUBackend) binary(op binaryOp, a, b *tensor.RawTensor) *tensor.RawTensor {
	mustSameDType(op.String(), a, b)

	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	result := cpu.newResult(op.String(), outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		binaryTyped[float32](op, result, a, b)
	case tensor.Float64:
		binaryTyped[float64](op, result, a, b)
	case tensor.Int32:
		binaryTyped[int32](op, result, a, b)
	case tensor.Int64:
		binaryTyped[int64](op, result, a, b)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}
	return result
}

func apply[T tensor.DType](op binaryOp, x, y T) T {
	switch op {
	case opAdd:
		return x + y
	case opSub:
		return x - y
	default:
		return x * y
	}
}

func binaryTyped[T tensor.DType](op binaryOp, result, a, b *tensor.RawTensor) {
	out := view[T](result)
	av := view[T](a)
	bv := view[T](b)

	// Fast path: identical shapes.
	if a.Shape().Equal(b.Shape()) {
		for i := range out {
			out[i] = apply(op, av[i], bv[i])
		}
		return
	}

	outShape := result.Shape()
	aStrides := tensor.BroadcastStrides(a.Shape(), outShape)
	bStrides := tensor.BroadcastStrides(b.Shape(), outShape)

	// Walk the output in row-major order, advancing both input offsets with
	// an odometer instead of recomputing them per element.
	idx := make([]int, len(outShape))
	aOff, bOff := 0, 0
	for i := range out {
		out[i] = apply(op, av[aOff], bv[bOff])

		for d := len(outShape) - 1; d >= 0; d-- {
			idx[d]++
			aOff += aStrides[d]
			bOff += bStrides[d]
			if idx[d] < outShape[d] {
				break
			}
			aOff -= aStrides[d] * outShape[d]
			bOff -= bStrides[d] * outShape[d]
			idx[d] = 0
		}
	}
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.scalar("add_scalar", x, scalar, false)
}

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.scalar("mul_scalar", x, scalar, true)
}

func (cpu *CPUBackend) scalar(op string, x *tensor.RawTensor, s float64, mul bool) *tensor.RawTensor {
	result := cpu.newResult(op, x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		scalarTyped(view[float32](result), view[float32](x), float32(s), mul)
	case tensor.Float64:
		scalarTyped(view[float64](result), view[float64](x), s, mul)
	case tensor.Int32:
		scalarTyped(view[int32](result), view[int32](x), int32(s), mul)
	case tensor.Int64:
		scalarTyped(view[int64](result), view[int64](x), int64(s), mul)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}
	return result
}

func scalarTyped[T tensor.DType](out, in []T, s T, mul bool) {
	if mul {
		for i, v := range in {
			out[i] = v * s
		}
		return
	}
	for i, v := range in {
		out[i] = v + s
	}
}

// ReLU computes max(x, 0) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.newResult("relu", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		reluTyped(view[float32](result), view[float32](x))
	case tensor.Float64:
		reluTyped(view[float64](result), view[float64](x))
	case tensor.Int32:
		reluTyped(view[int32](result), view[int32](x))
	case tensor.Int64:
		reluTyped(view[int64](result), view[int64](x))
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", x.DType()))
	}
	return result
}

func reluTyped[T tensor.DType](out, in []T) {
	for i, v := range in {
		if v > 0 {
			out[i] = v
		}
	}
}
