package nn

import (
	"errors"
	"fmt"

	"github.com/tnn-lab/tnn/internal/tensor"
)

// Sentinel errors. Callers test for them with errors.Is.
var (
	// ErrShapeMismatch is returned at call time when inputs have incompatible shapes.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrConfiguration is returned at construction time for invalid layer settings.
	ErrConfiguration = errors.New("invalid configuration")
)

// ShapeError describes a rejected input shape. It unwraps to ErrShapeMismatch.
type ShapeError struct {
	Op    string       // Operation that rejected the input.
	Input string       // Name of the offending input (e.g. "k", "mask").
	Got   tensor.Shape // Shape that was passed.
	Want  string       // Human-readable constraint.
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s shape %v: want %s: %v", e.Op, e.Input, e.Got, e.Want, ErrShapeMismatch)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func shapeError(op, input string, got tensor.Shape, want string, args ...any) error {
	return &ShapeError{Op: op, Input: input, Got: got.Clone(), Want: fmt.Sprintf(want, args...)}
}

func configError(op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrConfiguration, fmt.Sprintf(format, args...))
}

// requireInputs reports the first nil tensor among q, k and v.
func requireInputs[B tensor.Backend](op string, q, k, v *tensor.Tensor[float32, B]) error {
	for i, t := range [...]*tensor.Tensor[float32, B]{q, k, v} {
		if t == nil {
			return shapeError(op, [...]string{"q", "k", "v"}[i], nil, "non-nil tensor")
		}
	}
	return nil
}
