package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"github.com/tnn-lab/tnn/internal/nn"
	"github.com/tnn-lab/tnn/internal/serialization"
	"github.com/tnn-lab/tnn/internal/tensor"
	"github.com/tnn-lab/tnn/internal/tokenizer"
)

type f32 = tensor.Tensor[float32, tensor.Backend]

// textList collects repeated -text flags.
type textList []string

func (t *textList) String() string { return fmt.Sprint(*t) }

func (t *textList) Set(s string) error {
	*t = append(*t, s)
	return nil
}

func newFlagSet(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.out)
	return fs
}

// attendCmd runs a single attention head over a fixed key/value table:
// each query selects, or averages, the values whose keys it aligns with.
func attendCmd(e *env, args []string) error {
	if err := newFlagSet(e, "attend").Parse(args); err != nil {
		return err
	}

	k, err := tensor.FromSlice([]float32{
		10, 0, 0,
		0, 10, 0,
		0, 0, 10,
		0, 0, 10,
	}, tensor.Shape{4, 3}, e.backend)
	if err != nil {
		return err
	}
	v, err := tensor.FromSlice([]float32{
		1, 0,
		10, 0,
		100, 5,
		1000, 6,
	}, tensor.Shape{4, 2}, e.backend)
	if err != nil {
		return err
	}
	q, err := tensor.FromSlice([]float32{
		0, 10, 0,
		0, 0, 10,
		10, 10, 0,
	}, tensor.Shape{3, 3}, e.backend)
	if err != nil {
		return err
	}

	output, weights, err := nn.ScaledDotProductAttention(q, k, v, nil)
	if err != nil {
		return err
	}
	printMatrix(e.out, "Attention weights", weights)
	printMatrix(e.out, "Output", output)
	return nil
}

func mhaCmd(e *env, args []string) error {
	var texts textList
	fs := newFlagSet(e, "mha")
	dModel := fs.Int("d-model", 512, "Model width")
	heads := fs.Int("heads", 8, "Number of attention heads")
	batch := fs.Int("batch", 1, "Batch size for random input")
	seq := fs.Int("seq", 60, "Sequence length (max length for -text, 0 pads to the longest)")
	seed := fs.Int64("seed", 1, "Random seed")
	encoding := fs.String("encoding", "", "tiktoken encoding for -text; empty builds a word vocabulary")
	save := fs.String("save", "", "Write the layer weights to this SafeTensors file")
	fs.Var(&texts, "text", "Input text; repeat for a batch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // G404: reproducible demo input
	mha, err := nn.NewMultiHeadAttention(nn.MHAConfig{
		DModel:   *dModel,
		NumHeads: *heads,
		Init:     nn.Init{Weight: nn.XavierUniform(rng)},
	}, e.backend)
	if err != nil {
		return err
	}

	var mask *f32
	shape := tensor.Shape{*batch, *seq, *dModel}
	if len(texts) > 0 {
		ids, err := encodeTexts(texts, *encoding, *seq, e.backend)
		if err != nil {
			return err
		}
		if mask, err = nn.PaddingMask(ids); err != nil {
			return err
		}
		shape = tensor.Shape{ids.Shape()[0], ids.Shape()[1], *dModel}
		e.logger.Info("encoded texts", "count", len(texts), "ids_shape", ids.Shape())
	}

	x := tensor.Randn[float32](shape, e.backend, rng)
	output, weights, err := mha.Forward(x, x, x, mask)
	if err != nil {
		return err
	}

	s := nn.Summarize(weights, 0)
	e.logger.Info("multi-head attention",
		"backend", e.backend.Name(),
		"output_shape", output.Shape(),
		"weights_shape", weights.Shape(),
		"weights_mean", s.Mean,
		"weights_std", s.StdDev,
		"weights_max", s.Max)
	fmt.Fprintf(e.out, "output:  %v\nweights: %v\n", output.Shape(), weights.Shape())

	if *save != "" {
		meta := map[string]string{
			"d_model":   strconv.Itoa(*dModel),
			"num_heads": strconv.Itoa(*heads),
		}
		if err := serialization.WriteSafeTensors(*save, mha.StateDict(), meta); err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}
		e.logger.Info("checkpoint written", "path", *save, "tensors", len(mha.Parameters()))
	}
	return nil
}

func masksCmd(e *env, args []string) error {
	var texts textList
	fs := newFlagSet(e, "masks")
	size := fs.Int("size", 3, "Look-ahead mask size")
	encoding := fs.String("encoding", "", "tiktoken encoding for -text; empty builds a word vocabulary")
	fs.Var(&texts, "text", "Text to build a padding mask for; repeat for a batch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lookAhead, err := nn.LookAheadMask(*size, e.backend)
	if err != nil {
		return err
	}
	printMatrix(e.out, "Look-ahead mask", lookAhead)

	if len(texts) == 0 {
		return nil
	}
	ids, err := encodeTexts(texts, *encoding, 0, e.backend)
	if err != nil {
		return err
	}
	padding, err := nn.PaddingMask(ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Token ids %v:\n", ids.Shape())
	for i, id := range ids.Data() {
		fmt.Fprintf(e.out, " %6d", id)
		if (i+1)%ids.Shape()[1] == 0 {
			fmt.Fprintln(e.out)
		}
	}
	printMatrix(e.out, "Padding mask", padding)
	return nil
}

func encodeTexts(texts []string, encoding string, maxLen int, backend tensor.Backend) (*tensor.Tensor[int32, tensor.Backend], error) {
	var tok tokenizer.Tokenizer
	if encoding == "" {
		tok = tokenizer.NewVocab(texts...)
	} else {
		tt, err := tokenizer.NewTikToken(encoding)
		if err != nil {
			return nil, err
		}
		tok = tt
	}
	return tokenizer.EncodeBatch(tok, texts, maxLen, backend)
}

// printMatrix prints t as rows of its last axis.
func printMatrix(w io.Writer, title string, t *f32) {
	shape := t.Shape()
	cols := shape[len(shape)-1]
	fmt.Fprintf(w, "%s %v:\n", title, shape)
	for i, v := range t.Data() {
		fmt.Fprintf(w, " %10.4f", v)
		if (i+1)%cols == 0 {
			fmt.Fprintln(w)
		}
	}
}
