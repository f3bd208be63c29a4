package vectorDB

import (
	"context"

	"chunkflow/internal/domain/chunkModel"
)

// BatchIngestor is the remote ingestion boundary. The pipeline depends only
// on this contract, not on any particular vector store: submit a batch of
// property objects, get back the ones the server rejected, close when done.
// A returned error means the batch could not be delivered at all (transport
// or request-level failure); per-object rejections are not errors.
type BatchIngestor interface {
	SubmitBatch(ctx context.Context, objects []chunkModel.Chunk) ([]Rejected, error)
	Close() error
}

// Rejected is one object the endpoint refused to persist. Store clients
// differ in how they hand the original properties back: some expose them
// directly, some wrap them in an object envelope. Both shapes are carried
// here and normalized by FailedProperties, so the ambiguity stays at this
// boundary.
type Rejected struct {
	Properties *chunkModel.Chunk
	Object     *RejectedObject
	Message    string
}

// RejectedObject is the nested envelope variant.
type RejectedObject struct {
	Properties *chunkModel.Chunk
}

// FailedProperties recovers the original chunk properties from either
// rejected shape. The second return is false when neither shape carries
// anything recoverable.
func FailedProperties(r Rejected) (chunkModel.Chunk, bool) {
	if r.Properties != nil {
		return *r.Properties, true
	}
	if r.Object != nil && r.Object.Properties != nil {
		return *r.Object.Properties, true
	}
	return chunkModel.Chunk{}, false
}
