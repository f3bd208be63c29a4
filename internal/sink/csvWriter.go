package sink

import (
	"encoding/csv"
	"fmt"
	"os"

	"chunkflow/internal/domain/chunkModel"
	"chunkflow/pkg/logger_i"
)

var csvHeader = []string{"doc_id", "chunk_id", "source_group", "text"}

// RotatingCSVWriter serializes chunks into size-bounded csv files named
// {basename}_001.csv, {basename}_002.csv, ... Each file starts with the
// schema header. Containers open on first use, so a run that produces no
// chunks leaves no file behind. The size check happens after a document's
// full chunk set has been flushed, so rotation never splits a document
// across files and no chunk is lost to rotation timing.
type RotatingCSVWriter struct {
	basename string
	maxBytes int64
	index    int
	file     *os.File
	writer   *csv.Writer
	logger   *logger_i.Logger
}

func NewRotatingCSVWriter(basename string, maxBytes int64) (*RotatingCSVWriter, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max output bytes must be positive, got %d", maxBytes)
	}
	return &RotatingCSVWriter{
		basename: basename,
		maxBytes: maxBytes,
		logger:   logger_i.NewLogger("CSV Writer"),
	}, nil
}

func (w *RotatingCSVWriter) openNext() error {
	w.index++
	name := fmt.Sprintf("%s_%03d.csv", w.basename, w.index)
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create output file %s: %w", name, err)
	}
	w.file = f
	w.writer = csv.NewWriter(f)
	if err := w.writer.Write(csvHeader); err != nil {
		f.Close()
		return fmt.Errorf("write header to %s: %w", name, err)
	}
	w.logger.Debug("Opened output file", "file", name)
	return nil
}

// WriteDocument appends one document's chunk set, then rotates if the
// current file has reached the byte threshold.
func (w *RotatingCSVWriter) WriteDocument(chunks []chunkModel.Chunk) error {
	if w.writer == nil {
		if err := w.openNext(); err != nil {
			return err
		}
	}
	for _, c := range chunks {
		if err := w.writer.Write(c.CSVRecord()); err != nil {
			return err
		}
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return err
	}

	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() >= w.maxBytes {
		// Close now; the next container opens when the next document
		// arrives, so a run never ends on an empty trailing file.
		if err := w.file.Close(); err != nil {
			return err
		}
		w.file = nil
		w.writer = nil
	}
	return nil
}

// Close flushes and closes the current output file, if one is open.
func (w *RotatingCSVWriter) Close() error {
	if w.file == nil {
		return nil
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// FileCount reports how many output files this run created.
func (w *RotatingCSVWriter) FileCount() int {
	return w.index
}
