package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tnn-lab/tnn/internal/detection"
)

// boxFile is the input of the pr command.
type boxFile struct {
	Images []struct {
		Name        string      `json:"name"`
		Truth       [][]float32 `json:"truth"`       // [y1, x1, y2, x2, valid]
		Predictions [][]float32 `json:"predictions"` // [y1, x1, y2, x2, class, score]
	} `json:"images"`
}

// prCmd scores detections from a JSON file and prints one precision/recall
// table per IoU threshold.
func prCmd(e *env, args []string) error {
	fs := newFlagSet(e, "pr")
	input := fs.String("input", "", "JSON file of images with truth and predictions rows (- for stdin)")
	steps := fs.Int("steps", 10, "Sigmoid-spaced confidence thresholds between 0 and 1")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("pr: -input is required")
	}
	if *steps < 0 {
		return fmt.Errorf("pr: steps must not be negative, got %d", *steps)
	}

	r := io.Reader(os.Stdin)
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			return fmt.Errorf("pr: %w", err)
		}
		defer f.Close()
		r = f
	}

	var file boxFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return fmt.Errorf("pr: decode %s: %w", *input, err)
	}

	truth := make(map[string][]detection.Box, len(file.Images))
	inferred := make(map[string][]detection.Prediction, len(file.Images))
	for _, img := range file.Images {
		preds, err := detection.PredictionsFromRows(img.Predictions)
		if err != nil {
			return fmt.Errorf("pr: image %q: %w", img.Name, err)
		}
		truth[img.Name] = detection.FilterPadded(img.Truth)
		inferred[img.Name] = preds
	}

	curves := detection.Curves(detection.Analyze(truth, inferred,
		detection.IoUThresholds(), detection.ConfidenceThresholds(*steps)))
	e.logger.Info("precision/recall computed", "images", len(file.Images), "curves", len(curves))

	for _, c := range curves {
		fmt.Fprintf(e.out, "IoU threshold %.2f\n", c.IoUThreshold)
		fmt.Fprintf(e.out, "  %10s %10s %10s %4s %4s %4s\n", "confidence", "precision", "recall", "tp", "fp", "fn")
		for _, p := range c.Points {
			fmt.Fprintf(e.out, "  %10.4f %10.4f %10.4f %4d %4d %4d\n",
				p.ConfidenceThreshold, p.Precision, p.Recall,
				p.TruePositives, p.FalsePositives, p.FalseNegatives)
		}
	}
	return nil
}
