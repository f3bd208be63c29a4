package weaviateDB

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"chunkflow/internal/config"
	"chunkflow/internal/domain/chunkModel"
	"chunkflow/internal/vectorDB"
	"chunkflow/pkg/logger_i"
)

// Shared transport so repeated batch requests reuse connections.
var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// Client talks to a Weaviate-compatible REST batch endpoint. Objects are
// submitted without vectors; the collection's vectorizer embeds them server
// side.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	openAIKey  string
	class      string
	logger     *logger_i.Logger
}

// Connect validates the connection parameters and probes the readiness
// endpoint. Missing URL or API key is a configuration error and fails fast
// before any upload starts.
func Connect(ctx context.Context, settings config.Settings) (*Client, error) {
	if settings.WeaviateURL == "" || settings.WeaviateAPIKey == "" {
		return nil, errors.New("WEAVIATE_URL and WEAVIATE_API_KEY must be set")
	}

	base := strings.TrimRight(settings.WeaviateURL, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	c := &Client{
		httpClient: &http.Client{Transport: customTransport, Timeout: config.RequestTimeout},
		baseURL:    base,
		apiKey:     settings.WeaviateAPIKey,
		openAIKey:  settings.OpenAIAPIKeyEmbed,
		class:      settings.Collection,
		logger:     logger_i.NewLogger("Weaviate"),
	}

	if err := c.ready(ctx); err != nil {
		return nil, fmt.Errorf("vector store not ready: %w", err)
	}
	c.logger.Debug("Connected to vector store", "url", base, "collection", c.class)
	return c, nil
}

func (c *Client) ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.ReadinessTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/.well-known/ready", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("readiness check returned %s", resp.Status)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.openAIKey != "" {
		req.Header.Set("X-OpenAI-Api-Key", c.openAIKey)
	}
}

// Wire types for POST /v1/batch/objects.
type batchRequest struct {
	Objects []batchObject `json:"objects"`
}

type batchObject struct {
	Class      string         `json:"class"`
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

type batchResult struct {
	ID     string        `json:"id"`
	Result *objectResult `json:"result,omitempty"`
}

type objectResult struct {
	Status string        `json:"status"`
	Errors *objectErrors `json:"errors,omitempty"`
}

type objectErrors struct {
	Error []objectError `json:"error"`
}

type objectError struct {
	Message string `json:"message"`
}

// ObjectID derives a stable UUID for a chunk, so replaying a rejected object
// overwrites instead of duplicating.
func ObjectID(ch chunkModel.Chunk) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("chunkflow/"+ch.SourceGroup+"/"+ch.ChunkID)).String()
}

// SubmitBatch posts one batch of chunk objects. The response carries a
// per-object status; objects the server refused come back as Rejected with
// their original properties attached. A non-2xx response or transport error
// fails the whole batch.
func (c *Client) SubmitBatch(ctx context.Context, objects []chunkModel.Chunk) ([]vectorDB.Rejected, error) {
	payload := batchRequest{Objects: make([]batchObject, len(objects))}
	for i, ch := range objects {
		payload.Objects[i] = batchObject{
			Class:      c.class,
			ID:         ObjectID(ch),
			Properties: ch.Properties(),
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/batch/objects", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("batch request returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var results []batchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}

	var rejected []vectorDB.Rejected
	for i, res := range results {
		if res.Result == nil || res.Result.Status != "FAILED" {
			continue
		}
		if i >= len(objects) {
			c.logger.Warn("Batch response longer than request, ignoring extra result", "index", i)
			continue
		}
		ch := objects[i]
		rejected = append(rejected, vectorDB.Rejected{
			Properties: &ch,
			Message:    firstErrorMessage(res.Result.Errors),
		})
	}
	return rejected, nil
}

func firstErrorMessage(errs *objectErrors) string {
	if errs == nil || len(errs.Error) == 0 {
		return ""
	}
	return errs.Error[0].Message
}

// Close releases pooled connections. Safe to call on every exit path.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	c.logger.Debug("Vector store connection released")
	return nil
}
