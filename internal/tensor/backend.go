package tensor

// Backend is the set of kernels a compute device must provide.
//
// Kernels panic on misuse (mismatched shapes or dtypes). Callers that need
// error returns, like the nn package, validate shapes before dispatching.
//
// Implementations:
//   - cpu: pure Go, gonum SGEMM for matrix products
//   - webgpu: WGSL matrix products, CPU for everything else (windows only)
type Backend interface {
	// Element-wise binary operations with NumPy broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// Element-wise scalar operations.
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// MatMul multiplies 2-D tensors: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// BatchMatMul multiplies the trailing two axes of tensors with identical
	// leading axes: [..., M, K] @ [..., K, N] -> [..., M, N].
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Softmax normalizes along dim (negative dims count from the end).
	Softmax(x *RawTensor, dim int) *RawTensor

	// ReLU computes max(x, 0).
	ReLU(x *RawTensor) *RawTensor

	// Reshape returns a tensor with the same elements in a new shape.
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// Transpose permutes axes. With no axes it reverses them.
	Transpose(t *RawTensor, axes ...int) *RawTensor

	Name() string
	Device() Device
}
