// Copyright 2025 The tnn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package detection scores bounding-box detectors with precision/recall
// curves and renders marked-up sample images.
//
// Boxes are [y_min, x_min, y_max, x_max] in normalised image coordinates.
// Ground truth arrives as padded rows whose fifth column flags a real box;
// inference results are rows of [y_min, x_min, y_max, x_max, class, score].
//
// Example usage:
//
//	import "github.com/tnn-lab/tnn/detection"
//
//	e := &detection.Evaluator{Config: detection.DefaultConfig(), Sink: sink}
//	curves, err := e.Run(ctx, validationSet, model.Infer)
package detection

import (
	"image"
	"math/rand"
	"time"

	"github.com/tnn-lab/tnn/internal/detection"
)

// Errors.
var (
	ErrMalformedRow = detection.ErrMalformedRow
	ErrBatchSize    = detection.ErrBatchSize
)

// Defaults.
const (
	DefaultConfidenceSteps = detection.DefaultConfidenceSteps
	DefaultMarkupThreshold = detection.DefaultMarkupThreshold
)

// Box is an axis-aligned box in normalised [0, 1] image coordinates.
type Box = detection.Box

// Prediction is a scored box.
type Prediction = detection.Prediction

// CurvePoint holds detection counts at one (IoU, confidence) threshold pair.
type CurvePoint = detection.CurvePoint

// Curve is the precision/recall curve for one IoU threshold.
type Curve = detection.Curve

// Sample is one image with its padded ground-truth rows.
type Sample = detection.Sample

// BatchSource yields a dataset in batches.
type BatchSource = detection.BatchSource

// InferFunc runs a detector on a batch of images.
type InferFunc = detection.InferFunc

// Sink receives marked-up images and precision/recall curves.
type Sink = detection.Sink

// Config controls a validation run.
type Config = detection.Config

// Evaluator runs a detector over a validation set.
type Evaluator = detection.Evaluator

// DefaultConfig returns five plot images, 100 confidence steps, IoU
// thresholds 0.5, 0.7 and 0.9, and a 0.5 markup threshold.
func DefaultConfig() Config {
	return detection.DefaultConfig()
}

// IoU returns the intersection over union of a and b.
func IoU(a, b Box) float64 {
	return detection.IoU(a, b)
}

// FilterPadded converts ground-truth rows to boxes, dropping padding rows.
func FilterPadded(gt [][]float32) []Box {
	return detection.FilterPadded(gt)
}

// PredictionsFromRows reads [y1, x1, y2, x2, class, score] inference rows.
func PredictionsFromRows(rows [][]float32) ([]Prediction, error) {
	return detection.PredictionsFromRows(rows)
}

// IoUThresholds returns 0.5, 0.7 and 0.9.
func IoUThresholds() []float64 {
	return detection.IoUThresholds()
}

// ConfidenceThresholds returns n sigmoid-spaced thresholds bracketed by 0
// and 1.
func ConfidenceThresholds(n int) []float64 {
	return detection.ConfidenceThresholds(n)
}

// Analyze scores inferred boxes against truth, keyed by image name, for
// every pair of thresholds.
func Analyze(truth map[string][]Box, inferred map[string][]Prediction, iouThresholds, confidenceThresholds []float64) []CurvePoint {
	return detection.Analyze(truth, inferred, iouThresholds, confidenceThresholds)
}

// Curves groups points by IoU threshold.
func Curves(points []CurvePoint) []Curve {
	return detection.Curves(points)
}

// Markup renders img as normalised grayscale with predictions above
// threshold in green and ground truth in red.
func Markup(img image.Image, preds []Prediction, gt []Box, threshold float64) *image.RGBA {
	return detection.Markup(img, preds, gt, threshold)
}

// SampleIndices returns k distinct sorted indices from [0, n).
func SampleIndices(n, k int, rng *rand.Rand) []int {
	return detection.SampleIndices(n, k, rng)
}

// FormatDuration renders d as hours, minutes and seconds.
func FormatDuration(d time.Duration) string {
	return detection.FormatDuration(d)
}
