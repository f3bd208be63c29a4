package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"chunkflow/internal/config"
	"chunkflow/internal/metrics"
	"chunkflow/internal/pipeline"
	"chunkflow/internal/sink"
	"chunkflow/internal/tokenizer"
	"chunkflow/internal/vectorDB"
	"chunkflow/internal/vectorDB/weaviateDB"
	"chunkflow/pkg/logger_i"
)

var (
	mode       string
	inputs     string
	output     string
	maxBytes   int64
	chunkSize  int
	overlap    int
	minSingle  int
	minWords   int
	batchSize  int
	batchDelay time.Duration
	collection string
	replayFile string
)

func main() {
	logger_i.Init()
	logger := logger_i.NewLogger("main")

	flag.StringVar(&mode, "mode", "csv", "run mode: csv, upload or count")
	flag.StringVar(&inputs, "input", "", "comma-separated input directories containing .txt files")
	flag.StringVar(&output, "output", config.OutputBasename, "basename for csv output files")
	flag.Int64Var(&maxBytes, "max-bytes", config.MaxOutputBytes, "rotate csv output when a file reaches this many bytes")
	flag.IntVar(&chunkSize, "chunk-size", config.ChunkSizeTokens, "chunk window size in tokens")
	flag.IntVar(&overlap, "overlap", config.ChunkOverlapTokens, "token overlap between consecutive chunks")
	flag.IntVar(&minSingle, "min-single", config.MinDocTokensSingleChunk, "documents under this token count stay a single chunk")
	flag.IntVar(&minWords, "min-words", config.MinWordsPerDoc, "upload mode: drop documents with fewer words")
	flag.IntVar(&batchSize, "batch-size", config.BatchSize, "objects per upload batch")
	flag.DurationVar(&batchDelay, "batch-delay", config.PerBatchSleep, "fixed delay between upload batches")
	flag.StringVar(&collection, "collection", "", "vector store collection, overrides COLLECTION_NAME")
	flag.StringVar(&replayFile, "replay-file", config.ReplayFilePath, "where rejected objects are persisted")
	flag.Parse()

	dirs := splitDirs(inputs)
	if len(dirs) == 0 {
		logger.Error("No input directories given, use -input dir1,dir2")
		os.Exit(2)
	}

	enc, err := tokenizer.NewTiktokenEncoder(config.EncodingName)
	if err != nil {
		logger.Error("Could not load tokenizer encoding", "encoding", config.EncodingName, "error", err)
		os.Exit(1)
	}

	opts := pipeline.Options{
		ChunkSize:      chunkSize,
		ChunkOverlap:   overlap,
		MinSingleChunk: minSingle,
	}
	if mode == "upload" {
		opts.MinWordsPerDoc = minWords
		opts.CleanOCR = true
	}

	p, err := pipeline.New(enc, opts)
	if err != nil {
		logger.Error("Bad chunking configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	switch mode {
	case "csv":
		runCSV(p, dirs, logger)
	case "upload":
		runUpload(ctx, p, dirs, logger)
	case "count":
		runCount(p, dirs, logger)
	default:
		logger.Error("Unknown mode", "mode", mode)
		os.Exit(2)
	}

	metrics.LogRunSummary(logger)
}

func splitDirs(list string) []string {
	var dirs []string
	for _, dir := range strings.Split(list, ",") {
		dir = strings.TrimSpace(dir)
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func runCSV(p *pipeline.Pipeline, dirs []string, logger *logger_i.Logger) {
	writer, err := sink.NewRotatingCSVWriter(output, maxBytes)
	if err != nil {
		logger.Error("Could not open csv output", "error", err)
		os.Exit(1)
	}

	streamErr := p.Stream(dirs, writer.WriteDocument)
	if err := writer.Close(); err != nil && streamErr == nil {
		streamErr = err
	}
	if streamErr != nil {
		logger.Error("CSV run failed", "error", streamErr)
		os.Exit(1)
	}
	logger.Info("Done", "files", writer.FileCount())
}

func runUpload(ctx context.Context, p *pipeline.Pipeline, dirs []string, logger *logger_i.Logger) {
	settings := config.LoadSettings()
	if collection != "" {
		settings.Collection = collection
	}

	records, err := p.CollectAll(dirs)
	if err != nil {
		logger.Error("Could not collect chunk records", "error", err)
		os.Exit(1)
	}

	connect := func(ctx context.Context) (vectorDB.BatchIngestor, error) {
		return weaviateDB.Connect(ctx, settings)
	}
	uploader, err := sink.NewBatchUploader(connect, batchSize, batchDelay, replayFile)
	if err != nil {
		logger.Error("Bad upload configuration", "error", err)
		os.Exit(1)
	}

	report, err := uploader.Run(ctx, records)
	if err != nil {
		logger.Error("Upload run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Finished upload loop", "seen", report.Submitted, "batches", report.Batches, "failed", report.Failed)
}

func runCount(p *pipeline.Pipeline, dirs []string, logger *logger_i.Logger) {
	totals := p.CountTokens(dirs)
	for _, dir := range dirs {
		logger.Info("Token count", "dir", dir, "tokens", totals[dir])
	}
}
