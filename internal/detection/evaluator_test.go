package detection

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	batches [][]Sample
}

func (s *sliceSource) NumImages() int {
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func (s *sliceSource) NumBatches() int { return len(s.batches) }

func (s *sliceSource) Batch(_ context.Context, i int) ([]Sample, error) {
	return s.batches[i], nil
}

type recordingSink struct {
	tags   []string
	curves []Curve
}

func (s *recordingSink) Images(_ context.Context, tag string, _ *image.RGBA) error {
	s.tags = append(s.tags, tag)
	return nil
}

func (s *recordingSink) Curves(_ context.Context, curves []Curve) error {
	s.curves = curves
	return nil
}

func newSource() *sliceSource {
	sample := func(name string) Sample {
		return Sample{
			Name:  name,
			Image: gradient(8, 8),
			GroundTruth: [][]float32{
				{0, 0, 0.5, 0.5, 1},
				{0, 0, 0, 0, 0},
			},
		}
	}
	return &sliceSource{batches: [][]Sample{
		{sample("img0"), sample("img1")},
		{sample("img2")},
	}}
}

// perfectInfer predicts every ground-truth box exactly.
func perfectInfer(_ context.Context, images []image.Image) ([][][]float32, error) {
	rows := make([][][]float32, len(images))
	for i := range images {
		rows[i] = [][]float32{{0, 0, 0.5, 0.5, 0, 0.95}}
	}
	return rows, nil
}

func TestEvaluator_Run(t *testing.T) {
	var logs bytes.Buffer
	sink := &recordingSink{}
	e := &Evaluator{
		Config: Config{NumPlotImages: 2, ConfidenceSteps: 4, MarkupThreshold: DefaultMarkupThreshold},
		Sink:   sink,
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
		Rand:   rand.New(rand.NewSource(1)),
	}

	curves, err := e.Run(context.Background(), newSource(), perfectInfer)
	require.NoError(t, err)

	require.Len(t, curves, 3)
	for _, c := range curves {
		require.Len(t, c.Points, 6)
		first := c.Points[0]
		assert.Equal(t, 3, first.TruePositives)
		assert.Equal(t, 0, first.FalsePositives)
		assert.Equal(t, 0, first.FalseNegatives)
	}
	assert.Equal(t, curves, sink.curves)
	assert.Equal(t, []string{"Validation Image 1", "Validation Image 2"}, sink.tags)

	assert.Contains(t, logs.String(), "validation pass complete")
	assert.Contains(t, logs.String(), "images=3")
	assert.Contains(t, logs.String(), "PR curve generation complete")
}

func TestEvaluator_TrainingImages(t *testing.T) {
	sink := &recordingSink{}
	calls := 0
	counting := func(ctx context.Context, images []image.Image) ([][][]float32, error) {
		calls++
		return perfectInfer(ctx, images)
	}
	e := &Evaluator{
		Config: Config{NumPlotImages: 2, ConfidenceSteps: 4},
		Sink:   sink,
		Rand:   rand.New(rand.NewSource(3)),
		Train:  newSource(),
	}

	curves, err := e.Run(context.Background(), newSource(), counting)
	require.NoError(t, err)
	require.Len(t, curves, 3)

	assert.Equal(t, []string{
		"Training Image 1", "Training Image 2",
		"Validation Image 1", "Validation Image 2",
	}, sink.tags)
	// One call for the sampled training images, one per validation batch.
	assert.Equal(t, 3, calls)

	// Training images are not scored.
	for _, c := range curves {
		assert.Equal(t, 3, c.Points[0].TruePositives)
	}
}

func TestEvaluator_TrainingImagesNeedSink(t *testing.T) {
	calls := 0
	counting := func(ctx context.Context, images []image.Image) ([][][]float32, error) {
		calls++
		return perfectInfer(ctx, images)
	}
	e := &Evaluator{Config: DefaultConfig(), Train: newSource()}

	_, err := e.Run(context.Background(), newSource(), counting)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestEvaluator_RunWithoutSink(t *testing.T) {
	e := &Evaluator{Config: DefaultConfig()}

	curves, err := e.Run(context.Background(), newSource(), perfectInfer)
	require.NoError(t, err)
	require.Len(t, curves, 3)
	assert.Len(t, curves[0].Points, DefaultConfidenceSteps+2)
}

func TestEvaluator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &Evaluator{Config: DefaultConfig()}
	_, err := e.Run(ctx, newSource(), perfectInfer)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluator_InferErrors(t *testing.T) {
	e := &Evaluator{Config: DefaultConfig()}

	short := func(context.Context, []image.Image) ([][][]float32, error) {
		return nil, nil
	}
	_, err := e.Run(context.Background(), newSource(), short)
	assert.ErrorIs(t, err, ErrBatchSize)

	boom := fmt.Errorf("device lost")
	failing := func(context.Context, []image.Image) ([][][]float32, error) {
		return nil, boom
	}
	_, err = e.Run(context.Background(), newSource(), failing)
	assert.ErrorIs(t, err, boom)
}
