package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo

	//tokenizer, matches text-embedding-3-* models
	EncodingName = "cl100k_base"

	//chunking
	ChunkSizeTokens         = 350
	ChunkOverlapTokens      = 70
	MinDocTokensSingleChunk = 220 //below this, keep the document as one chunk
	MinWordsPerDoc          = 5   //upload path only, drop documents smaller than this

	//csv sink
	OutputBasename = "chunks" //creates chunks_001.csv, chunks_002.csv, ...
	MaxOutputBytes = 9 << 20  //~9 MiB, checked at document boundaries

	//upload sink
	BatchSize             = 100 //keep each server-side embedding request modest
	PerBatchSleep         = 3 * time.Second
	ProgressLogInterval   = 1000
	ReplayFilePath        = "failed_objects.jsonl"
	DefaultCollectionName = "MyDocs"

	//vector store HTTP client
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
	RequestTimeout      = 120 * time.Second
	ReadinessTimeout    = 10 * time.Second
)
