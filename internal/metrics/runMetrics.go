package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"chunkflow/pkg/logger_i"
)

var documentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "documents_processed_total",
	Help: "Documents that produced at least one chunk",
})

var documentsSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "documents_skipped_total",
	Help: "Documents dropped as empty or below the word minimum",
})

var chunksEmitted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_emitted_total",
	Help: "Chunk records produced across all documents",
})

var batchesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "batches_submitted_total",
	Help: "Batches sent to the vector store",
})

var objectsFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "objects_failed_total",
	Help: "Objects the vector store rejected",
})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func IncrementDocumentsProcessed() {
	documentsProcessed.Inc()
}

func IncrementDocumentsSkipped() {
	documentsSkipped.Inc()
}

func AddChunksEmitted(n int) {
	chunksEmitted.Add(float64(n))
}

func IncrementBatchesSubmitted() {
	batchesSubmitted.Inc()
}

func AddObjectsFailed(n int) {
	objectsFailed.Add(float64(n))
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

// LogRunSummary dumps the counter values at the end of a run. A one-shot CLI
// has nothing to scrape, so the registry is read once and logged instead.
func LogRunSummary(log *logger_i.Logger) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		log.Warn("Could not gather run metrics", "error", err)
		return
	}

	var args []any
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		args = append(args, mf.GetName(), total)
	}
	log.Info("Run summary", args...)
}
