package nn

import (
	"math"
	"math/rand"
)

// Initializer fills data for a parameter with the given fan-in and fan-out.
type Initializer func(data []float32, fanIn, fanOut int)

// Init selects the initialisers for a layer's weights and biases.
type Init struct {
	Weight Initializer
	Bias   Initializer
}

// DefaultInit returns Xavier-uniform weights and zero biases.
func DefaultInit() Init {
	return Init{Weight: XavierUniform(nil), Bias: Constant(0)}
}

// TruncatedInit returns truncated-normal weights with the given standard
// deviation and biases fixed at 0.1.
func TruncatedInit(std float64, rng *rand.Rand) Init {
	return Init{Weight: TruncatedNormal(std, rng), Bias: Constant(0.1)}
}

func (i Init) withDefaults() Init {
	d := DefaultInit()
	if i.Weight == nil {
		i.Weight = d.Weight
	}
	if i.Bias == nil {
		i.Bias = d.Bias
	}
	return i
}

func source(rng *rand.Rand) (uniform, normal func() float64) {
	if rng == nil {
		//nolint:gosec // G404: weight initialisation, not security-critical
		return rand.Float64, rand.NormFloat64
	}
	return rng.Float64, rng.NormFloat64
}

// XavierUniform draws from U(-sqrt(6/(fan_in+fan_out)), +sqrt(6/(fan_in+fan_out))).
// A nil rng uses the global source.
func XavierUniform(rng *rand.Rand) Initializer {
	uniform, _ := source(rng)
	return func(data []float32, fanIn, fanOut int) {
		bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
		for i := range data {
			data[i] = float32((uniform()*2 - 1) * bound)
		}
	}
}

// TruncatedNormal draws from N(0, std^2), redrawing samples that fall more
// than two standard deviations from the mean.
func TruncatedNormal(std float64, rng *rand.Rand) Initializer {
	_, normal := source(rng)
	return func(data []float32, _, _ int) {
		for i := range data {
			x := normal()
			for math.Abs(x) > 2 {
				x = normal()
			}
			data[i] = float32(x * std)
		}
	}
}

// Constant fills every element with v.
func Constant(v float32) Initializer {
	return func(data []float32, _, _ int) {
		for i := range data {
			data[i] = v
		}
	}
}
