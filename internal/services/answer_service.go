package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"tungra/internal/config"
	"tungra/internal/models"
)

// AnswerService turns an assembled context and a question into a grounded
// natural-language answer via the Anthropic messages endpoint.
type AnswerService struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	version      string
	model        string
	maxTokens    int
	temperature  float64
	paragraphCap int
	persona      config.Persona
}

// NewAnswerService creates a new answer generator from config
func NewAnswerService(cfg *config.Config) *AnswerService {
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

	return &AnswerService{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.AnswerTimeout,
		},
		baseURL:      cfg.AnthropicBaseURL,
		apiKey:       cfg.AnthropicAPIKey,
		version:      cfg.AnthropicVersion,
		model:        cfg.AnswerModel,
		maxTokens:    cfg.AnswerMaxTokens,
		temperature:  cfg.AnswerTemp,
		paragraphCap: cfg.AnswerParagraphCap,
		persona:      cfg.Persona,
	}
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate calls the generative model with the context and question and
// post-processes the reply down to the configured paragraph cap.
func (s *AnswerService) Generate(ctx context.Context, question, promptContext string) (*models.AnswerResult, error) {
	reqBody := messageRequest{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		System:      s.persona.SystemPrompt,
		Messages: []message{
			{Role: "user", Content: fmt.Sprintf(s.persona.UserTemplate, promptContext, question)},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &GenerationError{Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, &GenerationError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", s.version)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &GenerationError{Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GenerationError{Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		genErr := &GenerationError{
			StatusCode: resp.StatusCode,
			Message:    "failed to generate answer",
		}
		// Surface the upstream error message when the body parses
		var apiErr apiErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			genErr.Detail = apiErr.Error.Message
		}
		return nil, genErr
	}

	var parsed messageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &GenerationError{Message: "unexpected response shape", Cause: err}
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return nil, &GenerationError{Message: "response contained no text content"}
	}

	answer := CapParagraphs(parsed.Content[0].Text, s.paragraphCap)
	return &models.AnswerResult{
		Text:           answer,
		ParagraphCount: len(strings.Split(answer, "\n\n")),
	}, nil
}

// CapParagraphs limits text to at most limit paragraphs (blank-line
// separated). Text already within the limit is returned unchanged.
func CapParagraphs(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	paragraphs := strings.Split(text, "\n\n")
	if len(paragraphs) <= limit {
		return text
	}
	return strings.Join(paragraphs[:limit], "\n\n")
}
