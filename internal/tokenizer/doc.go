// Package tokenizer turns text into padded token-id batches for attention.
//
// Token id 0 is reserved for padding in every tokenizer here, matching the
// pad sentinel that nn.PaddingMask looks for.
//
// Tokenizers:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base),
//     with ids shifted by one to free id 0
//   - Vocab: whitespace word vocabulary built from a corpus, for tests and
//     offline use
//
// Example usage:
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := tokenizer.EncodeBatch(tok, []string{"hello world", "hi"}, 0, backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mask, err := nn.PaddingMask(ids) // [2, 1, 1, 2]
package tokenizer
