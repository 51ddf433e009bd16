package nn

import (
	"fmt"

	"github.com/tnn-lab/tnn/internal/tensor"
)

// Linear implements a fully connected layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x has shape [..., in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the optional bias vector with shape [out_features]
//   - y has shape [..., out_features]
//
// Leading axes of x are flattened into one batch axis for the product and
// restored afterwards.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(512, 512, true, nn.DefaultInit(), backend)
//
//	x := tensor.Randn[float32](tensor.Shape{2, 10, 512}, backend, nil)
//	y, err := layer.Forward(x) // [2, 10, 512]
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [out_features, in_features]
	bias        *Parameter[B] // [out_features], nil without bias
	backend     B
}

// NewLinear creates a Linear layer. Zero-valued Init fields fall back to
// DefaultInit.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, useBias bool, init Init, backend B) *Linear[B] {
	init = init.withDefaults()

	w := tensor.Zeros[float32](tensor.Shape{outFeatures, inFeatures}, backend)
	init.Weight(w.Data(), inFeatures, outFeatures)

	l := &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", w),
		backend:     backend,
	}

	if useBias {
		b := tensor.Zeros[float32](tensor.Shape{outFeatures}, backend)
		init.Bias(b.Data(), inFeatures, outFeatures)
		l.bias = NewParameter("bias", b)
	}
	return l
}

// Forward computes x @ W.T + b.
func (l *Linear[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	shape := x.Shape()
	if len(shape) == 0 || shape[len(shape)-1] != l.inFeatures {
		return nil, shapeError("Linear.Forward", "x", shape, "[..., %d]", l.inFeatures)
	}
	return l.forward(x), nil
}

// forward assumes x has already been validated.
func (l *Linear[B]) forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	rows := shape.NumElements() / l.inFeatures

	out := x.Reshape(rows, l.inFeatures).MatMul(l.weight.Tensor().Transpose())
	if l.bias != nil {
		out = out.Add(l.bias.Tensor())
	}

	outShape := shape.Clone()
	outShape[len(outShape)-1] = l.outFeatures
	return out.Reshape(outShape...)
}

// Parameters returns [weight, bias], or [weight] without bias.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns "weight" and, if present, "bias".
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for _, p := range l.Parameters() {
		stateDict[p.Name()] = p.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary.
func (l *Linear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, p := range l.Parameters() {
		raw, ok := stateDict[p.Name()]
		if !ok {
			return fmt.Errorf("missing %s in state dict", p.Name())
		}
		if err := p.Load(raw); err != nil {
			return err
		}
	}
	return nil
}
