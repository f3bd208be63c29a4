package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"chunkflow/internal/chunking"
	"chunkflow/internal/domain/chunkModel"
	"chunkflow/internal/metrics"
	"chunkflow/internal/tokenizer"
	"chunkflow/pkg/logger_i"
)

// Options is the explicit configuration surface of the pipeline. Defaults
// live in the config package; the CLI overrides them per run.
type Options struct {
	ChunkSize      int
	ChunkOverlap   int
	MinSingleChunk int
	// MinWordsPerDoc drops documents below a word count, 0 disables the
	// filter. Used on the upload path only.
	MinWordsPerDoc int
	// CleanOCR selects the heavier upload-path cleaner.
	CleanOCR bool
}

// Pipeline turns raw documents into chunk records.
type Pipeline struct {
	enc     tokenizer.Encoder
	chunker *chunking.Chunker
	opts    Options
	logger  *logger_i.Logger
}

func New(enc tokenizer.Encoder, opts Options) (*Pipeline, error) {
	chunker, err := chunking.NewChunker(enc, opts.ChunkSize, opts.ChunkOverlap, opts.MinSingleChunk)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		enc:     enc,
		chunker: chunker,
		opts:    opts,
		logger:  logger_i.NewLogger("Pipeline"),
	}, nil
}

func (p *Pipeline) clean(raw string) string {
	if p.opts.CleanOCR {
		return chunking.CleanOCRText(raw)
	}
	return chunking.CleanText(raw)
}

// ChunkDocument produces the ordered chunk records for one document.
// Documents that clean to nothing, or fall under the word minimum, are
// silently dropped (nil return).
func (p *Pipeline) ChunkDocument(doc chunkModel.Document) []chunkModel.Chunk {
	text := p.clean(doc.RawText)
	if text == "" {
		metrics.IncrementDocumentsSkipped()
		return nil
	}
	if p.opts.MinWordsPerDoc > 0 && len(strings.Fields(text)) < p.opts.MinWordsPerDoc {
		metrics.IncrementDocumentsSkipped()
		return nil
	}

	docID, sourceGroup := chunking.DeriveIDs(doc.Path)

	var chunks []chunkModel.Chunk
	ordinal := 1
	for chunkText := range p.chunker.Split(text) {
		chunks = append(chunks, chunkModel.Chunk{
			DocID:       docID,
			ChunkID:     chunking.ChunkID(docID, ordinal),
			SourceGroup: sourceGroup,
			Text:        chunkText,
		})
		ordinal++
	}

	metrics.IncrementDocumentsProcessed()
	metrics.AddChunksEmitted(len(chunks))
	return chunks
}

// Stream walks the input directories in order and hands each document's
// chunk set to fn. Documents producing no chunks are passed over. This is
// the lazy path used by the csv sink.
func (p *Pipeline) Stream(dirs []string, fn func(chunks []chunkModel.Chunk) error) error {
	paths := chunking.CollectTxtPaths(dirs, p.logger)
	if len(paths) == 0 {
		p.logger.Info("No .txt files found in input directories")
		return nil
	}

	for _, path := range paths {
		doc, err := chunking.ReadDocument(path)
		if err != nil {
			p.logger.Warn("Could not read file, skipping", "path", path, "error", err)
			continue
		}
		chunks := p.ChunkDocument(doc)
		if len(chunks) == 0 {
			continue
		}
		if err := fn(chunks); err != nil {
			return err
		}
	}
	return nil
}

// CollectAll materializes every chunk record of the run up front, so the
// uploader knows the total count before the first batch goes out. The
// trade-off is a memory bound on corpus size, accepted deliberately.
func (p *Pipeline) CollectAll(dirs []string) ([]chunkModel.Chunk, error) {
	var all []chunkModel.Chunk
	err := p.Stream(dirs, func(chunks []chunkModel.Chunk) error {
		all = append(all, chunks...)
		return nil
	})
	return all, err
}

// CountTokens walks each directory recursively and reports its total token
// count over the raw (uncleaned) file contents. Unreadable files are
// skipped.
func (p *Pipeline) CountTokens(dirs []string) map[string]int {
	totals := make(map[string]int, len(dirs))
	for _, dir := range dirs {
		total := 0
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			total += p.enc.Count(strings.ToValidUTF8(string(raw), ""))
			return nil
		})
		if err != nil {
			p.logger.Warn("Could not walk input directory", "dir", dir, "error", err)
			continue
		}
		totals[dir] = total
	}
	return totals
}
