package nn

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tnn-lab/tnn/internal/tensor"
)

// DefaultHistogramBins is the bin count Summarize uses when bins <= 0.
const DefaultHistogramBins = 30

// Summary holds descriptive statistics of a tensor's values.
type Summary struct {
	Mean   float64
	StdDev float64 // Population standard deviation.
	Min    float64
	Max    float64

	// Histogram has one count per bin. Bin i covers
	// [Dividers[i], Dividers[i+1]).
	Histogram []float64
	Dividers  []float64
}

// Summarize computes mean, standard deviation, extrema and a histogram of
// t's values. It is meant for inspecting weights and attention maps.
func Summarize[B tensor.Backend](t *tensor.Tensor[float32, B], bins int) Summary {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	data := t.Data()
	if len(data) == 0 {
		return Summary{}
	}
	x := make([]float64, len(data))
	for i, v := range data {
		x[i] = float64(v)
	}
	sort.Float64s(x)

	var s Summary
	s.Mean, s.StdDev = stat.PopMeanStdDev(x, nil)
	s.Min, s.Max = floats.Min(x), floats.Max(x)

	if s.Min == s.Max {
		bins = 1
	}
	s.Dividers = floats.Span(make([]float64, bins+1), s.Min, s.Max)
	// The top divider is exclusive; nudge it so Max lands in the last bin.
	s.Dividers[bins] = math.Nextafter(s.Max, math.Inf(1))
	s.Histogram = stat.Histogram(nil, s.Dividers, x, nil)
	return s
}
