package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocab(t *testing.T) {
	v := NewVocab("the cat sat", "the dog sat down")

	// pad, <unk>, the, cat, sat, dog, down
	assert.Equal(t, 7, v.VocabSize())
	assert.Equal(t, PadID, v.PadToken())

	ids, err := v.Encode("the dog sat on the cat")
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 5, 4, UnknownID, 2, 3}, ids)

	text, err := v.Decode([]int32{2, 3, 4, PadID, PadID})
	require.NoError(t, err)
	assert.Equal(t, "the cat sat", text)

	text, err = v.Decode([]int32{UnknownID})
	require.NoError(t, err)
	assert.Equal(t, "<unk>", text)

	_, err = v.Decode([]int32{99})
	assert.Error(t, err)
}

func TestVocab_Empty(t *testing.T) {
	v := NewVocab()
	assert.Equal(t, 2, v.VocabSize())

	ids, err := v.Encode("   ")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
