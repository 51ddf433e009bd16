package nn

import (
	"fmt"

	"github.com/tnn-lab/tnn/internal/tensor"
)

// FFNConfig configures a FeedForward layer.
type FFNConfig struct {
	DModel int  // Input and output dimension.
	DFF    int  // Hidden dimension.
	Init   Init // Parameter initialisers; zero value means DefaultInit.
}

// Validate checks that both dimensions are positive.
func (c FFNConfig) Validate() error {
	if c.DModel <= 0 || c.DFF <= 0 {
		return configError("FFNConfig", "d_model and d_ff must be positive, got %d and %d", c.DModel, c.DFF)
	}
	return nil
}

// FeedForward is the position-wise feed-forward block of a transformer:
//
//	FFN(x) = ReLU(x @ W1.T + b1) @ W2.T + b2
//
// It is applied independently to every position of a [batch, seq, d_model]
// input.
type FeedForward[B tensor.Backend] struct {
	dense1 *Linear[B] // d_model -> d_ff
	dense2 *Linear[B] // d_ff -> d_model
}

// NewFeedForward creates a feed-forward block. It returns ErrConfiguration
// if cfg is invalid.
func NewFeedForward[B tensor.Backend](cfg FFNConfig, backend B) (*FeedForward[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FeedForward[B]{
		dense1: NewLinear(cfg.DModel, cfg.DFF, true, cfg.Init, backend),
		dense2: NewLinear(cfg.DFF, cfg.DModel, true, cfg.Init, backend),
	}, nil
}

// Forward applies the block to x with shape [..., d_model].
func (f *FeedForward[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	h, err := f.dense1.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("FeedForward: %w", err)
	}
	return f.dense2.forward(h.ReLU()), nil
}

// Parameters returns dense1 then dense2 parameters.
func (f *FeedForward[B]) Parameters() []*Parameter[B] {
	return append(f.dense1.Parameters(), f.dense2.Parameters()...)
}

// StateDict returns the parameters keyed "dense1.weight", "dense1.bias", ...
func (f *FeedForward[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	prefixed(stateDict, f.dense1.StateDict(), "dense1")
	prefixed(stateDict, f.dense2.StateDict(), "dense2")
	return stateDict
}

// LoadStateDict loads both dense layers.
func (f *FeedForward[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := f.dense1.LoadStateDict(sub(stateDict, "dense1")); err != nil {
		return fmt.Errorf("dense1: %w", err)
	}
	if err := f.dense2.LoadStateDict(sub(stateDict, "dense2")); err != nil {
		return fmt.Errorf("dense2: %w", err)
	}
	return nil
}
