package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	truth := map[string][]Box{
		"a": {{YMax: 0.5, XMax: 0.5}},
		"b": {{YMin: 0.5, XMin: 0.5, YMax: 1, XMax: 1}, {YMax: 0.2, XMax: 0.2}},
	}
	inferred := map[string][]Prediction{
		// Duplicate detection of the same object: one TP, one FP.
		"a": {
			{Box: Box{YMax: 0.5, XMax: 0.5}, Confidence: 0.8},
			{Box: Box{YMax: 0.5, XMax: 0.5}, Confidence: 0.9},
		},
		// IoU 0.8 with the first truth box.
		"b": {{Box: Box{YMin: 0.5, XMin: 0.5, YMax: 1, XMax: 0.9}, Confidence: 0.6}},
		// No ground truth at all.
		"c": {{Box: Box{YMax: 1, XMax: 1}, Confidence: 0.7}},
	}

	points := Analyze(truth, inferred, []float64{0.5, 0.9}, []float64{0, 0.75, 1})
	require.Len(t, points, 6)

	type counts struct{ tp, fp, fn int }
	want := []counts{
		{2, 2, 1}, // IoU 0.5, conf 0
		{1, 1, 2}, // IoU 0.5, conf 0.75
		{0, 0, 3}, // IoU 0.5, conf 1
		{1, 3, 2}, // IoU 0.9, conf 0
		{1, 1, 2}, // IoU 0.9, conf 0.75
		{0, 0, 3}, // IoU 0.9, conf 1
	}
	for i, p := range points {
		assert.Equal(t, want[i], counts{p.TruePositives, p.FalsePositives, p.FalseNegatives}, "point %d", i)
	}

	assert.Equal(t, 0.5, points[0].IoUThreshold)
	assert.Equal(t, 0.75, points[1].ConfidenceThreshold)
	assert.InDelta(t, 0.5, points[0].Precision, 1e-12)
	assert.InDelta(t, 2.0/3, points[0].Recall, 1e-12)
	assert.Equal(t, 1.0, points[2].Precision, "nothing predicted")
	assert.Equal(t, 0.0, points[2].Recall)
}

func TestAnalyze_EachTruthMatchedOnce(t *testing.T) {
	gt := Box{YMax: 1, XMax: 1}
	truth := map[string][]Box{"x": {gt}}
	inferred := map[string][]Prediction{"x": {
		{Box: gt, Confidence: 0.9},
		{Box: gt, Confidence: 0.8},
		{Box: gt, Confidence: 0.7},
	}}

	points := Analyze(truth, inferred, []float64{0.5}, []float64{0})
	require.Len(t, points, 1)
	assert.Equal(t, 1, points[0].TruePositives)
	assert.Equal(t, 2, points[0].FalsePositives)
	assert.Equal(t, 0, points[0].FalseNegatives)
}

func TestAnalyze_NoTruth(t *testing.T) {
	points := Analyze(nil, nil, []float64{0.5}, []float64{0})
	require.Len(t, points, 1)
	assert.Equal(t, 1.0, points[0].Precision)
	assert.Equal(t, 1.0, points[0].Recall)
}

func TestCurves(t *testing.T) {
	points := Analyze(nil, nil, IoUThresholds(), ConfidenceThresholds(3))

	curves := Curves(points)
	require.Len(t, curves, 3)
	for i, c := range curves {
		assert.Equal(t, IoUThresholds()[i], c.IoUThreshold)
		assert.Len(t, c.Points, 5)
	}
}
