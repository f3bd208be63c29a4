package chunking

import (
	"fmt"
	"iter"
	"strings"
	"testing"
)

// wordEncoder tokenizes on spaces, one token per word. Deterministic and
// cheap, so tests never need a real BPE vocabulary.
type wordEncoder struct {
	words []string
	ids   map[string]int
}

func newWordEncoder() *wordEncoder {
	return &wordEncoder{ids: map[string]int{}}
}

func (e *wordEncoder) Encode(text string) []int {
	var out []int
	for _, w := range strings.Fields(text) {
		id, ok := e.ids[w]
		if !ok {
			id = len(e.words)
			e.words = append(e.words, w)
			e.ids[w] = id
		}
		out = append(out, id)
	}
	return out
}

func (e *wordEncoder) Decode(tokens []int) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = e.words[t]
	}
	return strings.Join(parts, " ")
}

func (e *wordEncoder) Count(text string) int {
	return len(strings.Fields(text))
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func collect(seq iter.Seq[string]) []string {
	var out []string
	for s := range seq {
		out = append(out, s)
	}
	return out
}

func TestNewChunkerRejectsBadConfig(t *testing.T) {
	enc := newWordEncoder()

	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative overlap", 350, -1},
		{"overlap equals size", 350, 350},
		{"overlap exceeds size", 350, 400},
	}

	for _, tt := range tests {
		if _, err := NewChunker(enc, tt.size, tt.overlap, 220); err == nil {
			t.Errorf("%s: expected configuration error, got nil", tt.name)
		}
	}
}

func TestSplitEmptyText(t *testing.T) {
	c, err := NewChunker(newWordEncoder(), 350, 70, 220)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}
	if got := collect(c.Split("")); len(got) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(got))
	}
}

func TestSplitShortDocumentSingleChunk(t *testing.T) {
	c, err := NewChunker(newWordEncoder(), 350, 70, 220)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	text := words(219)
	chunks := collect(c.Split(text))

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for a %d-token document, got %d", 219, len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("short document chunk must be the full cleaned text verbatim")
	}
}

func TestSplitWindowCountAndOverlap(t *testing.T) {
	enc := newWordEncoder()
	c, err := NewChunker(enc, 350, 70, 220)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	// 700 tokens, step 280: windows start at 0, 280, 560.
	chunks := collect(c.Split(words(700)))

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 700 tokens, got %d", len(chunks))
	}

	wantCounts := []int{350, 350, 140}
	for i, chunk := range chunks {
		if got := enc.Count(chunk); got != wantCounts[i] {
			t.Errorf("chunk %d: expected %d tokens, got %d", i+1, wantCounts[i], got)
		}
	}

	// Consecutive chunks overlap by exactly 70 tokens.
	for i := 0; i < len(chunks)-1; i++ {
		cur := strings.Fields(chunks[i])
		next := strings.Fields(chunks[i+1])
		tail := cur[len(cur)-70:]
		head := next[:70]
		for j := range tail {
			if tail[j] != head[j] {
				t.Fatalf("chunks %d/%d: overlap mismatch at token %d: %q vs %q", i+1, i+2, j, tail[j], head[j])
			}
		}
	}
}

func TestSplitFinalShortWindow(t *testing.T) {
	enc := newWordEncoder()
	c, err := NewChunker(enc, 350, 70, 220)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	// 300 tokens: starts at 0 and 280, the trailing 20-token window is
	// still emitted.
	chunks := collect(c.Split(words(300)))

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks for 300 tokens, got %d", len(chunks))
	}
	if got := enc.Count(chunks[0]); got != 300 {
		t.Errorf("first chunk: expected 300 tokens, got %d", got)
	}
	if got := enc.Count(chunks[1]); got != 20 {
		t.Errorf("final chunk: expected 20 tokens, got %d", got)
	}
}

func TestSplitThresholdBoundary(t *testing.T) {
	enc := newWordEncoder()
	c, err := NewChunker(enc, 350, 70, 220)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	// Exactly at the threshold the sliding window applies; 220 tokens fit
	// into one window.
	chunks := collect(c.Split(words(220)))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for 220 tokens, got %d", len(chunks))
	}
	if got := enc.Count(chunks[0]); got != 220 {
		t.Errorf("expected 220 tokens, got %d", got)
	}
}
