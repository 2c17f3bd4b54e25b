package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// EmbeddingService converts free text into a fixed-length vector via the
// HuggingFace feature-extraction endpoint. Results are memoised briefly so
// repeated queries don't re-hit the upstream service.
type EmbeddingService struct {
	httpClient *http.Client
	url        string
	token      string
	limiter    *rate.Limiter
	cache      *gocache.Cache
}

// NewEmbeddingService creates a new embedding client
func NewEmbeddingService(url, token string, timeout time.Duration) *EmbeddingService {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &EmbeddingService{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		url:     url,
		token:   token,
		limiter: rate.NewLimiter(rate.Limit(5), 10), // 5 req/s burst 10 against the inference API
		cache:   gocache.New(5*time.Minute, 10*time.Minute),
	}
}

type embeddingRequest struct {
	Inputs string `json:"inputs"`
}

// Embed converts text into an embedding vector. The upstream endpoint
// returns either a flat vector or a nested [[...]] array depending on the
// model pipeline; nested responses are flattened.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float64, error) {
	if cached, found := s.cache.Get(text); found {
		return cached.([]float64), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &EmbeddingError{Message: "rate limiter interrupted", Cause: err}
	}

	if m := GetMetrics(); m != nil {
		m.EmbeddingRequests.Inc()
	}

	body, err := json.Marshal(embeddingRequest{Inputs: text})
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if m := GetMetrics(); m != nil {
			m.EmbeddingErrors.Inc()
		}
		return nil, &EmbeddingError{Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if m := GetMetrics(); m != nil {
			m.EmbeddingErrors.Inc()
		}
		return nil, &EmbeddingError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to generate embedding: %s", http.StatusText(resp.StatusCode)),
		}
	}

	vector, err := parseEmbedding(respBody)
	if err != nil {
		if m := GetMetrics(); m != nil {
			m.EmbeddingErrors.Inc()
		}
		return nil, &EmbeddingError{Message: "unexpected response shape", Cause: err}
	}

	s.cache.Set(text, vector, gocache.DefaultExpiration)
	return vector, nil
}

// parseEmbedding decodes a flat or nested vector response
func parseEmbedding(data []byte) ([]float64, error) {
	var flat []float64
	if err := json.Unmarshal(data, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	var nested [][]float64
	if err := json.Unmarshal(data, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	return nil, fmt.Errorf("response is neither a vector nor a nested vector array")
}
