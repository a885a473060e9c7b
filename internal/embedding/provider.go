// Package embedding wraps the external text-embedding model. The model is a
// black box reached over HTTP: text in, fixed-length float vector out.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider turns text into a fixed-length embedding vector.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HTTPProvider calls an embedding service over HTTP.
type HTTPProvider struct {
	baseURL   string
	dimension int
	client    *http.Client
}

// NewHTTPProvider creates a provider for the service at baseURL. dimension
// is the expected vector length; responses of any other length are rejected
// so stored vectors stay mutually comparable.
func NewHTTPProvider(baseURL string, dimension int) *HTTPProvider {
	return &HTTPProvider{
		baseURL:   baseURL,
		dimension: dimension,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	reqBody, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embed", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("invalid embedding response: %w", err)
	}

	if p.dimension > 0 && len(result.Embedding) != p.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(result.Embedding), p.dimension)
	}

	return result.Embedding, nil
}
