package chunking

import (
	"fmt"
	"iter"

	"chunkflow/internal/tokenizer"
)

// Chunker splits cleaned text into token-bounded windows with overlap.
// Documents below minSingle tokens are kept whole as a single chunk.
type Chunker struct {
	enc       tokenizer.Encoder
	size      int
	overlap   int
	minSingle int
}

// NewChunker validates the window configuration up front. An overlap equal
// to or larger than the chunk size is a configuration error, not something
// to discover per document.
func NewChunker(enc tokenizer.Encoder, size, overlap, minSingle int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if size-overlap <= 0 {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return &Chunker{enc: enc, size: size, overlap: overlap, minSingle: minSingle}, nil
}

// Split yields successive chunk texts for one document. The sequence is
// lazy, finite and forward-only; iterating again re-derives everything.
//
// Short documents (< minSingle tokens) are yielded verbatim without a
// tokenizer round-trip so their original formatting survives. Longer ones
// are windowed over the token sequence: starts at 0, step, 2*step, ... with
// step = size - overlap; the final window may be shorter than size. Windows
// that decode to an empty string are skipped.
func (c *Chunker) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		tokens := c.enc.Encode(text)
		if len(tokens) == 0 {
			return
		}

		if len(tokens) < c.minSingle {
			yield(text)
			return
		}

		step := c.size - c.overlap
		for start := 0; start < len(tokens); start += step {
			end := min(start+c.size, len(tokens))
			chunkText := c.enc.Decode(tokens[start:end])
			if chunkText == "" {
				continue
			}
			if !yield(chunkText) {
				return
			}
		}
	}
}
