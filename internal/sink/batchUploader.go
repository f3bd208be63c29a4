package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"chunkflow/internal/config"
	"chunkflow/internal/domain/chunkModel"
	"chunkflow/internal/metrics"
	"chunkflow/internal/vectorDB"
	"chunkflow/pkg/logger_i"
)

// ConnectFunc acquires the remote connection. Injected so a zero-record run
// never connects and tests can swap in a mock store.
type ConnectFunc func(ctx context.Context) (vectorDB.BatchIngestor, error)

// UploadReport summarizes one upload run.
type UploadReport struct {
	Total      int
	Submitted  int
	Batches    int
	Failed     int
	ReplayFile string //empty when nothing was rejected
}

// BatchUploader delivers a materialized chunk collection to the vector store
// in fixed-size batches, with a fixed pacing delay between batches, and
// persists every rejected object to a replay file.
type BatchUploader struct {
	connect       ConnectFunc
	batchSize     int
	pacer         *rate.Limiter
	progressEvery int
	replayPath    string
	logger        *logger_i.Logger
}

// NewBatchUploader validates the batch configuration up front. The delay is
// a deliberate fixed backpressure policy to respect the remote request-rate
// budget; it is not adaptive and not contingent on rate-limit errors.
func NewBatchUploader(connect ConnectFunc, batchSize int, delay time.Duration, replayPath string) (*BatchUploader, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	u := &BatchUploader{
		connect:       connect,
		batchSize:     batchSize,
		progressEvery: config.ProgressLogInterval,
		replayPath:    replayPath,
		logger:        logger_i.NewLogger("Batch Uploader"),
	}
	if delay > 0 {
		// Burst 1: the first batch goes out immediately, every following
		// batch waits out the fixed interval.
		u.pacer = rate.NewLimiter(rate.Every(delay), 1)
	}
	return u, nil
}

// Run uploads all records in their original order. Zero records is a no-op:
// no connection is opened. The connection is released on every exit path,
// and failures captured before a mid-run error are still persisted.
func (u *BatchUploader) Run(ctx context.Context, records []chunkModel.Chunk) (*UploadReport, error) {
	report := &UploadReport{Total: len(records)}

	if len(records) == 0 {
		u.logger.Info("Nothing to upload, exiting")
		return report, nil
	}
	u.logger.Info("Total objects to upload", "count", len(records))

	db, err := u.connect(ctx)
	if err != nil {
		return report, fmt.Errorf("connect to vector store: %w", err)
	}

	var failed []chunkModel.Chunk
	runErr := u.uploadAll(ctx, db, records, report, &failed)

	report.Failed = len(failed)
	metrics.AddObjectsFailed(len(failed))

	if len(failed) > 0 {
		u.logger.Info("Objects failed in batch, capturing for replay", "count", len(failed))
		if werr := u.writeReplay(failed); werr != nil {
			u.logger.Error("Could not persist failed objects", "error", werr)
			if runErr == nil {
				runErr = werr
			}
		} else {
			report.ReplayFile = u.replayPath
			u.logger.Info("Saved failed objects for rerun with a smaller batch or later window",
				"file", u.replayPath, "count", len(failed))
		}
	} else if runErr == nil {
		u.logger.Info("No failed objects recorded by the batch client")
	}

	return report, runErr
}

func (u *BatchUploader) uploadAll(
	ctx context.Context,
	db vectorDB.BatchIngestor,
	records []chunkModel.Chunk,
	report *UploadReport,
	failed *[]chunkModel.Chunk,
) error {
	defer func() {
		if err := db.Close(); err != nil {
			u.logger.Warn("Closing vector store connection", "error", err)
		}
	}()

	total := len(records)
	for start := 0; start < total; start += u.batchSize {
		end := min(start+u.batchSize, total)

		if u.pacer != nil {
			if err := u.pacer.Wait(ctx); err != nil {
				return err
			}
		}

		began := time.Now()
		rejected, err := db.SubmitBatch(ctx, records[start:end])
		metrics.CaptureExecutionMetrics("vector_store_submit", time.Since(began))
		if err != nil {
			return fmt.Errorf("submit batch %d: %w", report.Batches+1, err)
		}

		report.Batches++
		report.Submitted = end
		metrics.IncrementBatchesSubmitted()

		for _, rej := range rejected {
			props, ok := vectorDB.FailedProperties(rej)
			if !ok {
				u.logger.Warn("Rejected object carried no recoverable properties", "message", rej.Message)
				continue
			}
			*failed = append(*failed, props)
		}

		if u.progressDue(start, end, total) {
			pct := float64(end) / float64(total) * 100
			u.logger.Info("Upload progress", "uploaded", end, "total", total,
				"percent", fmt.Sprintf("%.1f", pct))
		}
	}
	return nil
}

// progressDue reports whether the batch covering records [start, end) of
// total warrants a progress line: crossing a progress-interval boundary, or
// finishing the run.
func (u *BatchUploader) progressDue(start, end, total int) bool {
	return end == total || end/u.progressEvery > start/u.progressEvery
}

// writeReplay persists rejected objects as one JSON object per line so a
// later run can resubmit them.
func (u *BatchUploader) writeReplay(failed []chunkModel.Chunk) error {
	f, err := os.Create(u.replayPath)
	if err != nil {
		return fmt.Errorf("create replay file %s: %w", u.replayPath, err)
	}

	enc := json.NewEncoder(f)
	for _, c := range failed {
		if err := enc.Encode(c); err != nil {
			f.Close()
			return fmt.Errorf("write replay record: %w", err)
		}
	}
	return f.Close()
}
