package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tungra/internal/config"
)

func newTestAnswerService(baseURL string) *AnswerService {
	cfg := &config.Config{
		AnthropicBaseURL:   baseURL,
		AnthropicAPIKey:    "test-key",
		AnthropicVersion:   "2023-06-01",
		AnswerModel:        "claude-3-5-sonnet-20240620",
		AnswerMaxTokens:    3000,
		AnswerTemp:         0.2,
		AnswerTimeout:      5 * time.Second,
		AnswerParagraphCap: 3,
		Persona:            config.DefaultPersona(),
	}
	return NewAnswerService(cfg)
}

func TestGenerateReturnsAnswer(t *testing.T) {
	var gotRequest messageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header, got %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "Tungra was founded by the wandering clans."},
			},
		})
	}))
	defer server.Close()

	service := newTestAnswerService(server.URL)
	result, err := service.Generate(context.Background(), "Who founded Tungra?", "Tungra Founding: the wandering clans settled here.")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Text != "Tungra was founded by the wandering clans." {
		t.Errorf("Unexpected answer: %q", result.Text)
	}
	if result.ParagraphCount != 1 {
		t.Errorf("Expected 1 paragraph, got %d", result.ParagraphCount)
	}

	if gotRequest.Model != "claude-3-5-sonnet-20240620" {
		t.Errorf("Unexpected model: %q", gotRequest.Model)
	}
	if gotRequest.MaxTokens != 3000 {
		t.Errorf("Unexpected max_tokens: %d", gotRequest.MaxTokens)
	}
	if len(gotRequest.Messages) != 1 {
		t.Fatalf("Expected one message, got %d", len(gotRequest.Messages))
	}
	content := gotRequest.Messages[0].Content
	if !strings.Contains(content, "Tungra Founding") || !strings.Contains(content, "Who founded Tungra?") {
		t.Errorf("Prompt should carry both context and question: %q", content)
	}
	// The context block must precede the question
	if strings.Index(content, "Tungra Founding") > strings.Index(content, "Who founded Tungra?") {
		t.Error("Context should come before the question in the prompt")
	}
}

func TestGenerateCapsParagraphs(t *testing.T) {
	longAnswer := "One.\n\nTwo.\n\nThree.\n\nFour.\n\nFive."

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": longAnswer}},
		})
	}))
	defer server.Close()

	service := newTestAnswerService(server.URL)
	result, err := service.Generate(context.Background(), "question", "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Text != "One.\n\nTwo.\n\nThree." {
		t.Errorf("Expected first three paragraphs, got %q", result.Text)
	}
	if result.ParagraphCount != 3 {
		t.Errorf("Expected 3 paragraphs, got %d", result.ParagraphCount)
	}
}

func TestGenerateSurfacesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "overloaded_error", "message": "Overloaded"},
		})
	}))
	defer server.Close()

	service := newTestAnswerService(server.URL)
	_, err := service.Generate(context.Background(), "question", "context")
	if err == nil {
		t.Fatal("Expected error from 500 response")
	}

	genErr, ok := err.(*GenerationError)
	if !ok {
		t.Fatalf("Expected *GenerationError, got %T", err)
	}
	if genErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", genErr.StatusCode)
	}
	if genErr.Detail != "Overloaded" {
		t.Errorf("Expected upstream detail, got %q", genErr.Detail)
	}
	if !strings.Contains(genErr.Error(), "Details: Overloaded") {
		t.Errorf("Error string should carry the upstream detail: %q", genErr.Error())
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"content": []map[string]string{}})
	}))
	defer server.Close()

	service := newTestAnswerService(server.URL)
	if _, err := service.Generate(context.Background(), "question", "context"); err == nil {
		t.Fatal("Expected error for empty content")
	}
}

func TestCapParagraphs(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"under cap unchanged", "a\n\nb", 3, "a\n\nb"},
		{"at cap unchanged", "a\n\nb\n\nc", 3, "a\n\nb\n\nc"},
		{"over cap trimmed", "a\n\nb\n\nc\n\nd", 3, "a\n\nb\n\nc"},
		{"zero cap unchanged", "a\n\nb\n\nc\n\nd", 0, "a\n\nb\n\nc\n\nd"},
		{"single paragraph", "only one", 3, "only one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CapParagraphs(tt.text, tt.limit); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
