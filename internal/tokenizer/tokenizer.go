package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Encoder is the tokenizer capability the chunker depends on. Chunk
// boundaries are defined in token space, so the pipeline only ever needs
// encode, decode and a count.
type Encoder interface {
	Encode(text string) []int
	Decode(tokens []int) string
	Count(text string) int
}

// TiktokenEncoder wraps a tiktoken BPE encoding.
type TiktokenEncoder struct {
	name string
	tke  *tiktoken.Tiktoken
}

// NewTiktokenEncoder loads the named encoding, e.g. "cl100k_base".
func NewTiktokenEncoder(encodingName string) (*TiktokenEncoder, error) {
	tke, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("get encoding %q: %w", encodingName, err)
	}
	return &TiktokenEncoder{name: encodingName, tke: tke}, nil
}

func (e *TiktokenEncoder) Encode(text string) []int {
	return e.tke.Encode(text, nil, nil)
}

func (e *TiktokenEncoder) Decode(tokens []int) string {
	return e.tke.Decode(tokens)
}

func (e *TiktokenEncoder) Count(text string) int {
	return len(e.tke.Encode(text, nil, nil))
}

// Name returns the encoding name in use.
func (e *TiktokenEncoder) Name() string {
	return e.name
}
