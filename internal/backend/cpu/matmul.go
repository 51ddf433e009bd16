package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/tnn-lab/tnn/internal/parallel"
	"github.com/tnn-lab/tnn/internal/tensor"
)

// batchParallelThreshold is the per-batch m*k*n below which batches run
// sequentially.
const batchParallelThreshold = 4096

// MatMul performs matrix multiplication: (M, K) @ (K, N) -> (M, N).
// Float types go through gonum's GEMM; integer types use a plain triple loop.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	mustSameDType("matmul", a, b)

	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}
	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := cpu.newResult("matmul", tensor.Shape{m, n}, a.DType())
	matmulInto(result, a, b, 0, 0, 0, m, k, n)
	return result
}

// BatchMatMul multiplies the last two axes of a and b. Leading axes must be
// identical: [..., M, K] @ [..., K, N] -> [..., M, N].
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	mustSameDType("batchmatmul", a, b)

	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) < 2 || len(aShape) != len(bShape) {
		panic(fmt.Sprintf("batchmatmul: incompatible ranks %v @ %v", aShape, bShape))
	}
	rank := len(aShape)
	if !aShape[:rank-2].Equal(bShape[:rank-2]) {
		panic(fmt.Sprintf("batchmatmul: leading dimensions differ %v @ %v", aShape, bShape))
	}

	m, k := aShape[rank-2], aShape[rank-1]
	kAlt, n := bShape[rank-2], bShape[rank-1]
	if k != kAlt {
		panic(fmt.Sprintf("batchmatmul: inner dimensions differ %v @ %v", aShape, bShape))
	}

	outShape := aShape.Clone()
	outShape[rank-1] = n
	result := cpu.newResult("batchmatmul", outShape, a.DType())

	batches := aShape[:rank-2].NumElements()
	cfg := cpu.par
	if m*k*n < batchParallelThreshold {
		cfg = parallel.Sequential()
	}
	parallel.For(batches, cfg.WithMinChunk(1), func(i int) {
		matmulInto(result, a, b, i*m*k, i*k*n, i*m*n, m, k, n)
	})
	return result
}

// matmulInto computes one (M,K)@(K,N) product between element offsets of the
// flattened operands.
func matmulInto(c, a, b *tensor.RawTensor, aOff, bOff, cOff, m, k, n int) {
	switch a.DType() {
	case tensor.Float32:
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
			blas32.General{Rows: m, Cols: k, Stride: k, Data: view[float32](a)[aOff : aOff+m*k]},
			blas32.General{Rows: k, Cols: n, Stride: n, Data: view[float32](b)[bOff : bOff+k*n]},
			0,
			blas32.General{Rows: m, Cols: n, Stride: n, Data: view[float32](c)[cOff : cOff+m*n]})
	case tensor.Float64:
		blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
			blas64.General{Rows: m, Cols: k, Stride: k, Data: view[float64](a)[aOff : aOff+m*k]},
			blas64.General{Rows: k, Cols: n, Stride: n, Data: view[float64](b)[bOff : bOff+k*n]},
			0,
			blas64.General{Rows: m, Cols: n, Stride: n, Data: view[float64](c)[cOff : cOff+m*n]})
	case tensor.Int32:
		matmulNaive(view[int32](c)[cOff:cOff+m*n], view[int32](a)[aOff:aOff+m*k], view[int32](b)[bOff:bOff+k*n], m, k, n)
	case tensor.Int64:
		matmulNaive(view[int64](c)[cOff:cOff+m*n], view[int64](a)[aOff:aOff+m*k], view[int64](b)[bOff:bOff+k*n], m, k, n)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}
}

// matmulNaive computes C[i,j] = sum_k A[i,k] * B[k,j] in i-k-j order.
func matmulNaive[T tensor.DType](c, a, b []T, m, k, n int) {
	for i := 0; i < m; i++ {
		row := c[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			aik := a[i*k+p]
			if aik == 0 {
				continue
			}
			bRow := b[p*n : (p+1)*n]
			for j := range row {
				row[j] += aik * bRow[j]
			}
		}
	}
}
