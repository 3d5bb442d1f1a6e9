package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quotable-io/quotable/internal/vector"
)

// DefaultPathPrefix is the subpath under which GenAI-style gateways expose
// the OpenAI embeddings surface.
const DefaultPathPrefix = "/openai/v1"

// Client calls an OpenAI-compatible embeddings endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	http       *http.Client
}

// NewClient returns a client for an OpenAI-compatible embeddings API.
// The request URL is baseURL + pathPrefix + "/embeddings"; pathPrefix
// defaults to DefaultPathPrefix when empty. When dimensions is positive,
// responses of any other dimension are rejected rather than coerced.
func NewClient(baseURL, pathPrefix, apiKey, model string, dimensions int, timeout time.Duration) *Client {
	if pathPrefix == "" {
		pathPrefix = DefaultPathPrefix
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + pathPrefix,
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
		http:       &http.Client{Timeout: timeout},
	}
}

// Embed returns the embedding for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch returns one embedding per input text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, ErrEmptyText
		}
	}

	body := map[string]any{
		"model": c.model,
		"input": texts,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Message: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
			Permanent:  permanentStatus(resp.StatusCode),
		}
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &ProviderError{Message: fmt.Sprintf("decode response: %s", err), Permanent: true}
	}
	if len(result.Data) != len(texts) {
		return nil, &ProviderError{
			Message:   fmt.Sprintf("got %d embeddings for %d inputs", len(result.Data), len(texts)),
			Permanent: true,
		}
	}

	embeddings := make([][]float32, len(result.Data))
	for i, d := range result.Data {
		if c.dimensions > 0 && len(d.Embedding) != c.dimensions {
			return nil, &vector.DimensionError{Want: c.dimensions, Got: len(d.Embedding)}
		}
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}

// Dimensions returns the configured embedding dimension.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// permanentStatus reports whether the HTTP status indicates an error that a
// retry cannot fix. 429 and 5xx are transient.
func permanentStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return false
	}
	return code >= 400 && code < 500
}
