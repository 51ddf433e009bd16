package tokenizer

import (
	"fmt"
	"strings"
)

// UnknownID is the id Vocab assigns to words it has never seen.
const UnknownID int32 = 1

const unknownWord = "<unk>"

// Vocab is a whitespace word tokenizer with a fixed vocabulary.
//
// Id 0 is padding and id 1 is the unknown word; corpus words get ids from 2
// in order of first appearance.
type Vocab struct {
	vocab        map[string]int32 // word -> id
	reverseVocab []string         // id -> word
}

// NewVocab builds a vocabulary from every whitespace-separated word in corpus.
func NewVocab(corpus ...string) *Vocab {
	v := &Vocab{
		vocab:        map[string]int32{unknownWord: UnknownID},
		reverseVocab: []string{"", unknownWord},
	}
	for _, text := range corpus {
		for _, word := range strings.Fields(text) {
			if _, ok := v.vocab[word]; ok {
				continue
			}
			v.vocab[word] = int32(len(v.reverseVocab)) //nolint:gosec // G115: vocab fits in int32.
			v.reverseVocab = append(v.reverseVocab, word)
		}
	}
	return v
}

// Encode maps each word of text to its id, or UnknownID.
func (v *Vocab) Encode(text string) ([]int32, error) {
	words := strings.Fields(text)
	ids := make([]int32, len(words))
	for i, word := range words {
		id, ok := v.vocab[word]
		if !ok {
			id = UnknownID
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode joins the words for ids with single spaces, skipping padding.
func (v *Vocab) Decode(tokens []int32) (string, error) {
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == PadID {
			continue
		}
		if tok < 0 || int(tok) >= len(v.reverseVocab) {
			return "", fmt.Errorf("token id %d out of range (vocab size %d)", tok, len(v.reverseVocab))
		}
		words = append(words, v.reverseVocab[tok])
	}
	return strings.Join(words, " "), nil
}

// VocabSize returns the number of ids, including padding and unknown.
func (v *Vocab) VocabSize() int {
	return len(v.reverseVocab)
}

// PadToken returns PadID.
func (v *Vocab) PadToken() int32 {
	return PadID
}
