package services

import "fmt"

// EmbeddingError is returned when the embedding service fails or responds
// with an unexpected shape.
type EmbeddingError struct {
	StatusCode int // HTTP status code if applicable
	Message    string
	Cause      error
}

func (e *EmbeddingError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("embedding service: [%d] %s", e.StatusCode, e.Message)
	}
	return "embedding service: " + e.Message
}

func (e *EmbeddingError) Unwrap() error { return e.Cause }

// RetrievalError is returned when the lore store is unavailable or rejects
// the search query.
type RetrievalError struct {
	Message string
	Cause   error
}

func (e *RetrievalError) Error() string { return "lore retrieval: " + e.Message }

func (e *RetrievalError) Unwrap() error { return e.Cause }

// GenerationError is returned when the generative model service fails.
// Detail carries the upstream error message when the response body parses.
type GenerationError struct {
	StatusCode int
	Message    string
	Detail     string
	Cause      error
}

func (e *GenerationError) Error() string {
	msg := e.Message
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
	}
	if e.Detail != "" {
		msg += " Details: " + e.Detail
	}
	return "generation service: " + msg
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// PipelineError is the single externally visible failure of the answer
// pipeline. The stage that failed is logged, not exposed; Detail carries
// upstream error text when available.
type PipelineError struct {
	Detail string
	Cause  error
}

func (e *PipelineError) Error() string {
	msg := "An error occurred while processing your question."
	if e.Detail != "" {
		msg += " Details: " + e.Detail
	}
	return msg
}

func (e *PipelineError) Unwrap() error { return e.Cause }
