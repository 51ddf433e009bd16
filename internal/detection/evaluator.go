package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"time"
)

// ErrBatchSize is returned when an InferFunc yields a different number of
// results than images it was given.
var ErrBatchSize = errors.New("detection: inference batch size mismatch")

// Sample is one validation image with its padded ground-truth rows
// [y1, x1, y2, x2, valid, ...].
type Sample struct {
	Name        string
	Image       image.Image
	GroundTruth [][]float32
}

// BatchSource yields the validation set in batches.
type BatchSource interface {
	NumImages() int
	NumBatches() int
	Batch(ctx context.Context, i int) ([]Sample, error)
}

// InferFunc runs the detector on a batch of images and returns, per image,
// rows of [y1, x1, y2, x2, class, score].
type InferFunc func(ctx context.Context, images []image.Image) ([][][]float32, error)

// Sink receives marked-up sample images and precision/recall curves.
type Sink interface {
	Images(ctx context.Context, tag string, img *image.RGBA) error
	Curves(ctx context.Context, curves []Curve) error
}

// Config controls a validation run.
type Config struct {
	NumPlotImages   int       // Sample images sent to the sink.
	ConfidenceSteps int       // Sigmoid-spaced confidence thresholds.
	IoUThresholds   []float64 // Nil uses IoUThresholds().
	MarkupThreshold float64   // Confidence a drawn prediction needs.
}

// DefaultConfig returns the configuration used by the validation callback.
func DefaultConfig() Config {
	return Config{
		NumPlotImages:   5,
		ConfidenceSteps: DefaultConfidenceSteps,
		IoUThresholds:   IoUThresholds(),
		MarkupThreshold: DefaultMarkupThreshold,
	}
}

// Evaluator runs a detector over a validation set.
type Evaluator struct {
	Config Config
	Sink   Sink         // Optional.
	Logger *slog.Logger // Nil uses slog.Default().
	Rand   *rand.Rand   // Picks plot images; nil uses the global source.

	// Train, when set with a Sink, contributes NumPlotImages marked-up
	// training images. It is not scored.
	Train BatchSource
}

// Run iterates source, runs infer on every batch and returns one curve per
// IoU threshold. Cancellation is checked between batches.
//
// With a Sink, sampled images are sent tagged "Validation Image N", and
// "Training Image N" for samples drawn from Train.
func (e *Evaluator) Run(ctx context.Context, source BatchSource, infer InferFunc) ([]Curve, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := e.Config
	if cfg.IoUThresholds == nil {
		cfg.IoUThresholds = IoUThresholds()
	}

	if e.Sink != nil && e.Train != nil {
		start := time.Now()
		n, err := e.plotTraining(ctx, infer, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("training images plotted",
			"plotted", n,
			"elapsed", FormatDuration(time.Since(start)))
	}

	var plot map[int]bool
	if e.Sink != nil {
		plot = e.sample(source.NumImages(), cfg.NumPlotImages)
	}

	start := time.Now()
	truth := make(map[string][]Box)
	inferred := make(map[string][]Prediction)
	index, plotted := 0, 0

	for b := range source.NumBatches() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		samples, err := source.Batch(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", b, err)
		}
		images := make([]image.Image, len(samples))
		for i, s := range samples {
			images[i] = s.Image
		}

		rows, err := infer(ctx, images)
		if err != nil {
			return nil, fmt.Errorf("batch %d: inference: %w", b, err)
		}
		if len(rows) != len(samples) {
			return nil, fmt.Errorf("%w: batch %d has %d images, got %d results", ErrBatchSize, b, len(samples), len(rows))
		}

		for i, s := range samples {
			preds, err := PredictionsFromRows(rows[i])
			if err != nil {
				return nil, fmt.Errorf("image %q: %w", s.Name, err)
			}
			truth[s.Name] = FilterPadded(s.GroundTruth)
			inferred[s.Name] = preds

			if plot[index] && s.Image != nil {
				plotted++
				tag := fmt.Sprintf("Validation Image %d", plotted)
				if err := e.plot(ctx, tag, s.Image, preds, truth[s.Name], cfg.MarkupThreshold); err != nil {
					return nil, err
				}
			}
			index++
		}
	}
	logger.Info("validation pass complete",
		"images", index,
		"plotted", plotted,
		"elapsed", FormatDuration(time.Since(start)))

	start = time.Now()
	curves := Curves(Analyze(truth, inferred, cfg.IoUThresholds, ConfidenceThresholds(cfg.ConfidenceSteps)))
	if e.Sink != nil {
		if err := e.Sink.Curves(ctx, curves); err != nil {
			return nil, fmt.Errorf("sink curves: %w", err)
		}
	}
	logger.Info("PR curve generation complete",
		"curves", len(curves),
		"elapsed", FormatDuration(time.Since(start)))

	return curves, nil
}

func (e *Evaluator) sample(n, k int) map[int]bool {
	set := make(map[int]bool)
	for _, i := range SampleIndices(n, k, e.Rand) {
		set[i] = true
	}
	return set
}

// plotTraining runs infer on sampled training images only and sends them to
// the sink. It returns the number of images plotted.
func (e *Evaluator) plotTraining(ctx context.Context, infer InferFunc, cfg Config) (int, error) {
	want := e.sample(e.Train.NumImages(), cfg.NumPlotImages)

	var picked []Sample
	index := 0
	for b := 0; b < e.Train.NumBatches() && len(picked) < len(want); b++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		samples, err := e.Train.Batch(ctx, b)
		if err != nil {
			return 0, fmt.Errorf("training batch %d: %w", b, err)
		}
		for _, s := range samples {
			if want[index] && s.Image != nil {
				picked = append(picked, s)
			}
			index++
		}
	}
	if len(picked) == 0 {
		return 0, nil
	}

	images := make([]image.Image, len(picked))
	for i, s := range picked {
		images[i] = s.Image
	}
	rows, err := infer(ctx, images)
	if err != nil {
		return 0, fmt.Errorf("training images: inference: %w", err)
	}
	if len(rows) != len(picked) {
		return 0, fmt.Errorf("%w: %d training images, got %d results", ErrBatchSize, len(picked), len(rows))
	}

	for i, s := range picked {
		preds, err := PredictionsFromRows(rows[i])
		if err != nil {
			return 0, fmt.Errorf("image %q: %w", s.Name, err)
		}
		tag := fmt.Sprintf("Training Image %d", i+1)
		if err := e.plot(ctx, tag, s.Image, preds, FilterPadded(s.GroundTruth), cfg.MarkupThreshold); err != nil {
			return 0, err
		}
	}
	return len(picked), nil
}

func (e *Evaluator) plot(ctx context.Context, tag string, img image.Image, preds []Prediction, gt []Box, threshold float64) error {
	clamped := make([]Prediction, len(preds))
	for i, p := range preds {
		clamped[i] = Prediction{Box: p.Box.Clamp(), Confidence: p.Confidence}
	}
	if err := e.Sink.Images(ctx, tag, Markup(img, clamped, gt, threshold)); err != nil {
		return fmt.Errorf("sink %s: %w", tag, err)
	}
	return nil
}
