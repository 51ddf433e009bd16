package detection

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultConfidenceSteps is the number of sigmoid-spaced confidence
// thresholds between the 0 and 1 end points.
const DefaultConfidenceSteps = 100

// IoUThresholds returns the IoU thresholds curves are computed at:
// 0.5, 0.7 and 0.9.
func IoUThresholds() []float64 {
	return floats.Span(make([]float64, 3), 0.5, 0.9)
}

// ConfidenceThresholds returns n sigmoid-spaced thresholds over
// linspace(-100, 100, n), bracketed by 0 and 1.
func ConfidenceThresholds(n int) []float64 {
	n = max(n, 0)
	out := make([]float64, n+2)
	out[n+1] = 1

	logits := out[1 : n+1]
	switch n {
	case 0:
	case 1:
		logits[0] = -100
	default:
		floats.Span(logits, -100, 100)
	}
	for i, x := range logits {
		logits[i] = sigmoid(x)
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
