package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// encodingCL100kBase is the encoding name for GPT-4 and GPT-3.5-turbo.
	encodingCL100kBase = "cl100k_base"
	// encodingP50kBase is the encoding name for GPT-3.
	encodingP50kBase = "p50k_base"
	// encodingR50kBase is the encoding name for older GPT-3 models.
	encodingR50kBase = "r50k_base"
)

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI tokenizers.
//
// tiktoken assigns id 0 to a real token, so every id is shifted up by one
// and 0 is left free for padding.
//
// Supported encodings:
//   - cl100k_base: GPT-4, GPT-3.5-turbo, text-embedding-ada-002
//   - p50k_base: GPT-3, Codex
//   - r50k_base: GPT-3, davinci-002, babbage-002
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken creates a TikToken tokenizer with the specified encoding.
//
// The encoding's BPE ranks are downloaded on first use and cached by
// tiktoken-go (see TIKTOKEN_CACHE_DIR).
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
//
// Example models: "gpt-4", "gpt-3.5-turbo", "text-embedding-ada-002".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken for model %q: %w", modelName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     modelName,
	}, nil
}

// Encode converts text to shifted token ids.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)

	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		result[i] = int32(tok) + 1 //nolint:gosec // G115: vocab size < 2^31.
	}
	return result, nil
}

// Decode converts shifted token ids back to text, skipping padding.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	ids := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if tok == PadID {
			continue
		}
		if tok < 0 {
			return "", fmt.Errorf("negative token id %d", tok)
		}
		ids = append(ids, int(tok)-1)
	}
	return t.encoding.Decode(ids), nil
}

// VocabSize returns the number of ordinary ids, counting the padding id.
func (t *TikToken) VocabSize() int {
	// tiktoken-go doesn't expose the rank table size.
	switch t.name {
	case encodingCL100kBase:
		return 100256 + 1
	case encodingP50kBase, encodingR50kBase:
		return 50257 + 1
	default:
		return 100000 + 1
	}
}

// PadToken returns PadID.
func (t *TikToken) PadToken() int32 {
	return PadID
}

// Name returns the encoding or model name.
func (t *TikToken) Name() string {
	return t.name
}
