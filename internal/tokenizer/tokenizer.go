package tokenizer

// PadID is the token id used for padding.
const PadID int32 = 0

// Tokenizer is the core interface for text tokenization.
type Tokenizer interface {
	// Encode converts text to token ids. Ids are never PadID.
	Encode(text string) ([]int32, error)

	// Decode converts token ids back to text. PadID is skipped.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the number of ids, including PadID.
	VocabSize() int

	// PadToken returns the padding id (always PadID).
	PadToken() int32
}
