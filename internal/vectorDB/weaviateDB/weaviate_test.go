package weaviateDB

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chunkflow/internal/config"
	"chunkflow/internal/domain/chunkModel"
)

func testChunks() []chunkModel.Chunk {
	return []chunkModel.Chunk{
		{DocID: "42", ChunkID: "42_c001", SourceGroup: "001", Text: "first"},
		{DocID: "42", ChunkID: "42_c002", SourceGroup: "001", Text: "second"},
	}
}

func newStoreServer(t *testing.T, perObject func(i int, obj batchObject) *objectResult) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", r.Header.Get("Authorization"))
		}
		switch r.URL.Path {
		case "/v1/.well-known/ready":
			w.WriteHeader(http.StatusOK)
		case "/v1/batch/objects":
			var req batchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode batch request: %v", err)
			}
			results := make([]batchResult, len(req.Objects))
			for i, obj := range req.Objects {
				if obj.Class != "MyDocs" {
					t.Errorf("object %d: class = %q, want MyDocs", i, obj.Class)
				}
				if obj.ID == "" {
					t.Errorf("object %d: missing id", i)
				}
				results[i] = batchResult{ID: obj.ID, Result: perObject(i, obj)}
			}
			json.NewEncoder(w).Encode(results)
		default:
			t.Errorf("unexpected request path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func settingsFor(srv *httptest.Server) config.Settings {
	return config.Settings{
		WeaviateURL:    srv.URL,
		WeaviateAPIKey: "test-key",
		Collection:     "MyDocs",
	}
}

func TestConnectRequiresParameters(t *testing.T) {
	if _, err := Connect(context.Background(), config.Settings{}); err == nil {
		t.Error("expected error for missing URL and key")
	}
	if _, err := Connect(context.Background(), config.Settings{WeaviateURL: "https://x"}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestConnectChecksReadiness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	settings := config.Settings{WeaviateURL: srv.URL, WeaviateAPIKey: "test-key", Collection: "MyDocs"}
	if _, err := Connect(context.Background(), settings); err == nil {
		t.Error("expected error for unready endpoint")
	}
}

func TestSubmitBatchAllAccepted(t *testing.T) {
	srv := newStoreServer(t, func(i int, obj batchObject) *objectResult {
		return &objectResult{Status: "SUCCESS"}
	})
	defer srv.Close()

	c, err := Connect(context.Background(), settingsFor(srv))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	rejected, err := c.SubmitBatch(context.Background(), testChunks())
	if err != nil {
		t.Fatalf("SubmitBatch: %v", err)
	}
	if len(rejected) != 0 {
		t.Errorf("expected no rejections, got %d", len(rejected))
	}
}

func TestSubmitBatchReportsPerObjectFailures(t *testing.T) {
	srv := newStoreServer(t, func(i int, obj batchObject) *objectResult {
		if i == 1 {
			return &objectResult{
				Status: "FAILED",
				Errors: &objectErrors{Error: []objectError{{Message: "vectorizer module timed out"}}},
			}
		}
		return &objectResult{Status: "SUCCESS"}
	})
	defer srv.Close()

	c, err := Connect(context.Background(), settingsFor(srv))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	chunks := testChunks()
	rejected, err := c.SubmitBatch(context.Background(), chunks)
	if err != nil {
		t.Fatalf("SubmitBatch: %v", err)
	}
	if len(rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(rejected))
	}
	if rejected[0].Properties == nil || *rejected[0].Properties != chunks[1] {
		t.Errorf("rejection must carry the original properties, got %+v", rejected[0].Properties)
	}
	if rejected[0].Message != "vectorizer module timed out" {
		t.Errorf("Message = %q", rejected[0].Message)
	}
}

func TestSubmitBatchRequestLevelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/.well-known/ready" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := Connect(context.Background(), settingsFor(srv))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	if _, err := c.SubmitBatch(context.Background(), testChunks()); err == nil {
		t.Error("expected error for non-2xx batch response")
	}
}

func TestObjectIDStable(t *testing.T) {
	chunks := testChunks()
	if ObjectID(chunks[0]) != ObjectID(chunks[0]) {
		t.Error("object id must be deterministic")
	}
	if ObjectID(chunks[0]) == ObjectID(chunks[1]) {
		t.Error("distinct chunks must get distinct ids")
	}
}
