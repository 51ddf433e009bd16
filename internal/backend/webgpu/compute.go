//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/tnn-lab/tnn/internal/tensor"
)

// compileShader compiles WGSL code into a cached ShaderModule.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, ok := b.shaders[name]; ok {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()
	return shader
}

// pipeline returns a cached ComputePipeline for the named kernel.
func (b *Backend) pipeline(name, code string) *wgpu.ComputePipeline {
	b.mu.RLock()
	if p, ok := b.pipelines[name]; ok {
		b.mu.RUnlock()
		return p
	}
	b.mu.RUnlock()

	p := b.device.CreateComputePipelineSimple(nil, b.compileShader(name, code), "main")

	b.mu.Lock()
	b.pipelines[name] = p
	b.mu.Unlock()
	return p
}

// upload creates a buffer initialised with data.
func (b *Backend) upload(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	//nolint:gosec // zero-copy view of the mapped range
	mapped := unsafe.Slice((*byte)(buffer.GetMappedRange(0, size)), size)
	copy(mapped, data)
	buffer.Unmap()
	return buffer
}

// uniform packs u32 parameters into a 16-byte aligned uniform buffer.
func (b *Backend) uniform(values ...uint32) *wgpu.Buffer {
	size := (len(values)*4 + 15) &^ 15
	data := make([]byte, size)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], v)
	}
	return b.upload(data, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
}

// readBuffer copies a storage buffer back to host memory via a staging buffer.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("webgpu: map staging buffer: %w", err)
	}

	//nolint:gosec // zero-copy view of the mapped range
	mapped := unsafe.Slice((*byte)(staging.GetMappedRange(0, size)), size)
	result := make([]byte, size)
	copy(result, mapped)
	staging.Unmap()
	return result, nil
}

// product describes one (batched) matrix product dispatch.
type product struct {
	name, code string
	a, b       *tensor.RawTensor
	outShape   tensor.Shape
	params     []uint32
	groupsX    uint32
	groupsY    uint32
	groupsZ    uint32
}

// run uploads both operands, dispatches the kernel and reads the result.
func (b *Backend) run(p product) (*tensor.RawTensor, error) {
	b.submitMu.Lock()
	defer b.submitMu.Unlock()

	pipeline := b.pipeline(p.name, p.code)

	storage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc
	bufA := b.upload(p.a.Data(), storage)
	defer bufA.Release()
	bufB := b.upload(p.b.Data(), storage)
	defer bufB.Release()

	//nolint:gosec // G115: element counts are positive
	resultSize := uint64(p.outShape.NumElements() * tensor.Float32.Size())
	bufResult := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  resultSize,
	})
	defer bufResult.Release()

	bufParams := b.uniform(p.params...)
	defer bufParams.Release()

	//nolint:gosec // G115: ByteSize is non-negative
	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufA, 0, uint64(p.a.ByteSize())),
		wgpu.BufferBindingEntry(1, bufB, 0, uint64(p.b.ByteSize())),
		wgpu.BufferBindingEntry(2, bufResult, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufParams, 0, 16),
	})
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(p.groupsX, p.groupsY, p.groupsZ)
	pass.End()
	b.queue.Submit(encoder.Finish(nil))

	data, err := b.readBuffer(bufResult, resultSize)
	if err != nil {
		return nil, err
	}

	result, err := tensor.NewRaw(p.outShape, tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	copy(result.Data(), data)
	return result, nil
}

func groups(n, size int) uint32 {
	//nolint:gosec // G115: dimension is positive
	return uint32((n + size - 1) / size)
}

// runMatMul computes [M, K] @ [K, N] on the GPU.
func (b *Backend) runMatMul(a, other *tensor.RawTensor) (*tensor.RawTensor, error) {
	as, bs := a.Shape(), other.Shape()
	if len(as) != 2 || len(bs) != 2 || as[1] != bs[0] {
		return nil, fmt.Errorf("webgpu: matmul shape mismatch %v @ %v", as, bs)
	}
	m, k, n := as[0], as[1], bs[1]

	//nolint:gosec // G115: dimensions are positive
	return b.run(product{
		name:     "matmul",
		code:     matmulShader,
		a:        a,
		b:        other,
		outShape: tensor.Shape{m, n},
		params:   []uint32{uint32(m), uint32(k), uint32(n)},
		groupsX:  groups(n, matmulWorkgroup),
		groupsY:  groups(m, matmulWorkgroup),
		groupsZ:  1,
	})
}

// runBatchMatMul computes [..., M, K] @ [..., K, N] on the GPU with the
// leading axes flattened into one batch axis.
func (b *Backend) runBatchMatMul(a, other *tensor.RawTensor) (*tensor.RawTensor, error) {
	as, bs := a.Shape(), other.Shape()
	rank := len(as)
	if rank < 2 || len(bs) != rank || !as[:rank-2].Equal(bs[:rank-2]) || as[rank-1] != bs[rank-2] {
		return nil, fmt.Errorf("webgpu: batchmatmul shape mismatch %v @ %v", as, bs)
	}
	batch := as[:rank-2].NumElements()
	m, k, n := as[rank-2], as[rank-1], bs[rank-1]

	outShape := as.Clone()
	outShape[rank-1] = n

	//nolint:gosec // G115: dimensions are positive
	return b.run(product{
		name:     "batchmatmul",
		code:     batchMatMulShader,
		a:        a,
		b:        other,
		outShape: outShape,
		params:   []uint32{uint32(batch), uint32(m), uint32(k), uint32(n)},
		groupsX:  groups(n, batchMatMulWorkgroup),
		groupsY:  groups(m, batchMatMulWorkgroup),
		groupsZ:  uint32(batch),
	})
}
