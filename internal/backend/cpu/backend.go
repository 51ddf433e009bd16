// Package cpu implements the CPU backend with BLAS-backed matrix products.
package cpu

import (
	"fmt"
	"unsafe"

	"github.com/tnn-lab/tnn/internal/parallel"
	"github.com/tnn-lab/tnn/internal/tensor"
)

// CPUBackend implements tensor operations on the CPU.
//
// Batched kernels (BatchMatMul, Softmax) fan out across goroutines according
// to the parallel configuration. A CPUBackend holds no mutable state and is
// safe for concurrent use.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with a custom parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Parallel returns the backend's parallel configuration.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.par
}

// view reinterprets a tensor's bytes as []T without copying.
func view[T tensor.DType](r *tensor.RawTensor) []T {
	data := r.Data()
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // zero-copy view, dtype checked by caller
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), r.NumElements())
}

func (cpu *CPUBackend) newResult(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

func mustSameDType(op string, a, b *tensor.RawTensor) {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}
}
