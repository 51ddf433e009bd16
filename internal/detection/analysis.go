package detection

import (
	"sort"

	"github.com/tnn-lab/tnn/internal/parallel"
)

// CurvePoint holds detection counts at one (IoU, confidence) threshold pair.
type CurvePoint struct {
	IoUThreshold        float64
	ConfidenceThreshold float64
	TruePositives       int
	FalsePositives      int
	FalseNegatives      int
	Precision           float64
	Recall              float64
}

// Curve is the precision/recall curve for one IoU threshold, ordered by
// increasing confidence threshold.
type Curve struct {
	IoUThreshold float64
	Points       []CurvePoint
}

// Analyze scores inferred boxes against truth, keyed by image name, for
// every pair of thresholds. Points are ordered by IoU threshold, then by
// confidence threshold.
//
// A prediction counts when its confidence is strictly above the confidence
// threshold. Predictions are matched greedily in order of decreasing
// confidence to the unmatched ground-truth box with the highest IoU, provided
// that IoU reaches the IoU threshold. Each ground-truth box is matched at
// most once. Precision is 1 when nothing is predicted and recall is 1 when
// there is no ground truth.
func Analyze(truth map[string][]Box, inferred map[string][]Prediction, iouThresholds, confidenceThresholds []float64) []CurvePoint {
	images := collectImages(truth, inferred)

	points := make([]CurvePoint, len(iouThresholds)*len(confidenceThresholds))
	parallel.For(len(points), parallel.DefaultConfig().WithMinChunk(1), func(i int) {
		iouThr := iouThresholds[i/len(confidenceThresholds)]
		confThr := confidenceThresholds[i%len(confidenceThresholds)]
		points[i] = score(images, iouThr, confThr)
	})
	return points
}

// Curves groups points by IoU threshold, keeping their order.
func Curves(points []CurvePoint) []Curve {
	var curves []Curve
	for _, p := range points {
		if n := len(curves); n > 0 && curves[n-1].IoUThreshold == p.IoUThreshold {
			curves[n-1].Points = append(curves[n-1].Points, p)
			continue
		}
		curves = append(curves, Curve{IoUThreshold: p.IoUThreshold, Points: []CurvePoint{p}})
	}
	return curves
}

type imageBoxes struct {
	truth []Box
	preds []Prediction // sorted by decreasing confidence
}

func collectImages(truth map[string][]Box, inferred map[string][]Prediction) []imageBoxes {
	names := make([]string, 0, len(truth)+len(inferred))
	for name := range truth {
		names = append(names, name)
	}
	for name := range inferred {
		if _, ok := truth[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	images := make([]imageBoxes, len(names))
	for i, name := range names {
		preds := append([]Prediction(nil), inferred[name]...)
		sort.SliceStable(preds, func(a, b int) bool {
			return preds[a].Confidence > preds[b].Confidence
		})
		images[i] = imageBoxes{truth: truth[name], preds: preds}
	}
	return images
}

func score(images []imageBoxes, iouThr, confThr float64) CurvePoint {
	p := CurvePoint{IoUThreshold: iouThr, ConfidenceThreshold: confThr}
	for _, img := range images {
		matched := make([]bool, len(img.truth))
		tp, predicted := 0, 0
		for _, pred := range img.preds {
			if pred.Confidence <= confThr {
				break
			}
			predicted++

			best, bestIoU := -1, 0.0
			for g, gt := range img.truth {
				if matched[g] {
					continue
				}
				if iou := IoU(pred.Box, gt); iou >= iouThr && (best < 0 || iou > bestIoU) {
					best, bestIoU = g, iou
				}
			}
			if best >= 0 {
				matched[best] = true
				tp++
			}
		}
		p.TruePositives += tp
		p.FalsePositives += predicted - tp
		p.FalseNegatives += len(img.truth) - tp
	}

	p.Precision = ratio(p.TruePositives, p.TruePositives+p.FalsePositives)
	p.Recall = ratio(p.TruePositives, p.TruePositives+p.FalseNegatives)
	return p
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 1
	}
	return float64(num) / float64(den)
}
