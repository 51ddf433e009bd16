package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a zero-filled tensor.
//
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, dataTypeOf[T](), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn fills a float tensor with N(0, 1) samples drawn from rng, or from the
// global source when rng is nil.
func Randn[T DType, B Backend](shape Shape, b B, rng *rand.Rand) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()

	norm := rand.NormFloat64 //nolint:gosec // G404: statistical sampling, not crypto
	if rng != nil {
		norm = rng.NormFloat64
	}

	switch dataTypeOf[T]() {
	case Float32, Float64:
		for i := range data {
			data[i] = T(norm())
		}
	default:
		panic("Randn only supports float32 and float64 types")
	}
	return t
}

// Arange creates a 1-D tensor [start, start+1, ..., end-1].
func Arange[T DType, B Backend](start, end int, b B) *Tensor[T, B] {
	t := Zeros[T, B](Shape{end - start}, b)
	data := t.Data()
	for i := range data {
		data[i] = T(start + i)
	}
	return t
}

// AllClose reports whether a and b have equal shapes and every pair of
// elements is within tol.
func AllClose[T DType, B Backend](a, b *Tensor[T, B], tol float64) bool {
	if !a.Shape().Equal(b.Shape()) {
		return false
	}
	ad, bd := a.Data(), b.Data()
	for i := range ad {
		if math.Abs(float64(ad[i])-float64(bd[i])) > tol {
			return false
		}
	}
	return true
}
