// Package detection scores bounding-box detectors on a validation set.
//
// It matches predicted boxes against ground truth at several IoU and
// confidence thresholds, producing precision/recall curves, and renders
// marked-up sample images. Dataset loading, image encoding and the
// dashboard wire format live behind the BatchSource and Sink interfaces.
package detection
