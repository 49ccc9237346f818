// Package embedder is the client for the external embedding provider. The
// store never computes embeddings itself: given belief text and a type tag,
// the provider returns a fixed-dimension vector and a scalar norm.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Embedding is the provider's response: a fixed-dimension vector and its
// scalar norm.
type Embedding struct {
	Vector     []float32 `json:"embedding"`
	Norm       float64   `json:"norm"`
	Dimensions int       `json:"dimensions"`
}

// Provider produces embeddings for belief text.
type Provider interface {
	Embed(ctx context.Context, text, beliefType string) (*Embedding, error)
}

// Request/response errors.
var (
	ErrEmptyText     = errors.New("text must not be empty")
	ErrProviderError = errors.New("embedding provider returned an error")
	ErrEmptyVector   = errors.New("provider returned an empty vector")
)

// Client is the HTTP implementation of Provider.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// Compile-time interface check.
var _ Provider = (*Client)(nil)

// embedRequest is the JSON body sent to the provider.
type embedRequest struct {
	Text       string `json:"text"`
	BeliefType string `json:"belief_type"`
}

// NewClient creates a client for the provider at baseURL. A nil logger
// disables logging.
func NewClient(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Embed requests an embedding for the given belief text and type tag.
func (c *Client) Embed(ctx context.Context, text, beliefType string) (*Embedding, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	body, err := json.Marshal(embedRequest{Text: text, BeliefType: beliefType})
	if err != nil {
		return nil, fmt.Errorf("encoding embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling embedding provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("embedding provider error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet))
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, ErrProviderError)
	}

	var emb Embedding
	if err := json.NewDecoder(resp.Body).Decode(&emb); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}
	if len(emb.Vector) == 0 {
		return nil, ErrEmptyVector
	}
	if emb.Dimensions == 0 {
		emb.Dimensions = len(emb.Vector)
	}

	c.log.Debug("embedded belief text",
		zap.String("belief_type", beliefType),
		zap.Int("dimensions", emb.Dimensions),
		zap.Duration("elapsed", time.Since(start)))

	return &emb, nil
}
