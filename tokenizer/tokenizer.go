// Package tokenizer turns text into padded id batches for the tnn
// attention layers.
//
// Id 0 is reserved for padding in every tokenizer, so the output of
// EncodeBatch feeds nn.PaddingMask directly.
//
// Supported tokenizers:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//   - Vocab: whitespace word vocabulary built from a corpus, no downloads
//
// Example usage:
//
//	import "github.com/tnn-lab/tnn/tokenizer"
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := tokenizer.EncodeBatch(tok, []string{"Hello, world!", "Hi"}, 0, backend)
//	mask, err := nn.PaddingMask(ids)
package tokenizer

import (
	"github.com/tnn-lab/tnn/internal/tokenizer"
	"github.com/tnn-lab/tnn/tensor"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// PadID is the id every tokenizer reserves for padding.
const PadID = tokenizer.PadID

// ErrEmptyBatch is returned when a batch has nothing to pad.
var ErrEmptyBatch = tokenizer.ErrEmptyBatch

// TikToken wraps a tiktoken encoding with ids shifted by one.
type TikToken = tokenizer.TikToken

// NewTikToken creates a TikToken tokenizer with the specified encoding.
//
// The encoding's BPE ranks are downloaded and cached on first use.
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
//
// Example models: "gpt-4", "gpt-3.5-turbo", "text-embedding-ada-002".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	return tokenizer.NewTikTokenForModel(modelName)
}

// Vocab is a whitespace word tokenizer with a fixed vocabulary.
type Vocab = tokenizer.Vocab

// NewVocab builds a vocabulary from every word in corpus.
func NewVocab(corpus ...string) *Vocab {
	return tokenizer.NewVocab(corpus...)
}

// PadBatch right-pads id sequences into a row-major [len(ids), maxLen]
// matrix. maxLen <= 0 pads to the longest sequence.
func PadBatch(ids [][]int32, maxLen int) ([]int32, tensor.Shape, error) {
	return tokenizer.PadBatch(ids, maxLen)
}

// EncodeBatch tokenizes texts into a padded [len(texts), maxLen] tensor.
func EncodeBatch[B tensor.Backend](tok Tokenizer, texts []string, maxLen int, backend B) (*tensor.Tensor[int32, B], error) {
	return tokenizer.EncodeBatch(tok, texts, maxLen, backend)
}
