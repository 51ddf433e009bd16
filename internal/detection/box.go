package detection

import (
	"errors"
	"fmt"
)

// ErrMalformedRow is returned when an inference row is too short.
var ErrMalformedRow = errors.New("detection: malformed row")

const (
	// predictionRowLen is the width of an inference row:
	// [y_min, x_min, y_max, x_max, class, score].
	predictionRowLen = 6
	scoreColumn      = 5
	validColumn      = 4
)

// Box is an axis-aligned box in normalised [0, 1] image coordinates.
type Box struct {
	YMin, XMin, YMax, XMax float64
}

// Area returns the box area, zero for degenerate boxes.
func (b Box) Area() float64 {
	return max(b.YMax-b.YMin, 0) * max(b.XMax-b.XMin, 0)
}

// Clamp limits every coordinate to [0, 1].
func (b Box) Clamp() Box {
	return Box{
		YMin: clamp01(b.YMin),
		XMin: clamp01(b.XMin),
		YMax: clamp01(b.YMax),
		XMax: clamp01(b.XMax),
	}
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// IoU returns the intersection over union of a and b.
// Boxes with zero union have IoU 0.
func IoU(a, b Box) float64 {
	inter := Box{
		YMin: max(a.YMin, b.YMin),
		XMin: max(a.XMin, b.XMin),
		YMax: min(a.YMax, b.YMax),
		XMax: min(a.XMax, b.XMax),
	}.Area()
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Prediction is a scored box.
type Prediction struct {
	Box        Box
	Confidence float64
}

// FilterPadded converts ground-truth rows to boxes, dropping padding rows
// (those whose fifth column is not positive).
func FilterPadded(gt [][]float32) []Box {
	boxes := make([]Box, 0, len(gt))
	for _, row := range gt {
		if len(row) <= validColumn || row[validColumn] <= 0 {
			continue
		}
		boxes = append(boxes, boxFromRow(row))
	}
	return boxes
}

// PredictionsFromRows reads [y1, x1, y2, x2, _, score] inference rows.
func PredictionsFromRows(rows [][]float32) ([]Prediction, error) {
	preds := make([]Prediction, len(rows))
	for i, row := range rows {
		if len(row) < predictionRowLen {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedRow, i, len(row), predictionRowLen)
		}
		preds[i] = Prediction{Box: boxFromRow(row), Confidence: float64(row[scoreColumn])}
	}
	return preds, nil
}

func boxFromRow(row []float32) Box {
	return Box{
		YMin: float64(row[0]),
		XMin: float64(row[1]),
		YMax: float64(row[2]),
		XMax: float64(row[3]),
	}
}
