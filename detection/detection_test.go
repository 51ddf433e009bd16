// Copyright 2025 The tnn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package detection_test

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/tnn-lab/tnn/detection"
)

func TestAnalyze(t *testing.T) {
	truth := map[string][]detection.Box{
		"a": detection.FilterPadded([][]float32{{0, 0, 0.5, 0.5, 1}, {0, 0, 0, 0, 0}}),
		"b": {{YMin: 0.5, XMin: 0.5, YMax: 1, XMax: 1}},
	}
	preds, err := detection.PredictionsFromRows([][]float32{
		{0, 0, 0.5, 0.5, 0, 0.9},
		{0.6, 0.6, 0.9, 0.9, 0, 0.8},
	})
	if err != nil {
		t.Fatalf("PredictionsFromRows failed: %v", err)
	}
	inferred := map[string][]detection.Prediction{"a": preds}

	curves := detection.Curves(detection.Analyze(truth, inferred,
		detection.IoUThresholds(), detection.ConfidenceThresholds(1)))
	if len(curves) != 3 {
		t.Fatalf("expected 3 curves, got %d", len(curves))
	}

	first := curves[0].Points[0]
	if first.TruePositives != 1 || first.FalsePositives != 1 || first.FalseNegatives != 1 {
		t.Errorf("unexpected counts at threshold 0: %+v", first)
	}
	if first.Precision != 0.5 || first.Recall != 0.5 {
		t.Errorf("expected precision and recall 0.5, got %v and %v", first.Precision, first.Recall)
	}

	last := curves[0].Points[len(curves[0].Points)-1]
	if last.Precision != 1 || last.Recall != 0 {
		t.Errorf("expected precision 1 and recall 0 at threshold 1, got %v and %v", last.Precision, last.Recall)
	}
}

func TestPredictionsFromRows_Malformed(t *testing.T) {
	_, err := detection.PredictionsFromRows([][]float32{{0, 0, 1}})
	if err == nil {
		t.Fatal("expected error for short row")
	}
}

type memorySource []detection.Sample

func (s memorySource) NumImages() int  { return len(s) }
func (s memorySource) NumBatches() int { return 1 }

func (s memorySource) Batch(context.Context, int) ([]detection.Sample, error) {
	return s, nil
}

func TestEvaluator(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Gray{Y: 200})

	source := memorySource{{Name: "x", Image: img, GroundTruth: [][]float32{{0, 0, 1, 1, 1}}}}
	infer := func(_ context.Context, images []image.Image) ([][][]float32, error) {
		rows := make([][][]float32, len(images))
		for i := range rows {
			rows[i] = [][]float32{{0, 0, 1, 1, 0, 0.99}}
		}
		return rows, nil
	}

	e := &detection.Evaluator{Config: detection.DefaultConfig()}
	curves, err := e.Run(context.Background(), source, infer)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, c := range curves {
		if got := c.Points[0].Recall; got != 1 {
			t.Errorf("IoU %.1f: expected recall 1, got %v", c.IoUThreshold, got)
		}
	}
}
