package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tungra/internal/logging"
	"tungra/internal/models"
)

// Embedder converts text into an embedding vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Retriever returns the top-k lore chunks for a query
type Retriever interface {
	Retrieve(ctx context.Context, query string, queryEmbedding []float64, k int) ([]models.RetrievedChunk, error)
}

// Generator produces a grounded answer from context and question
type Generator interface {
	Generate(ctx context.Context, question, promptContext string) (*models.AnswerResult, error)
}

// Pipeline stages, in execution order
type pipelineStage string

const (
	stageEmbedding  pipelineStage = "embedding"
	stageRetrieving pipelineStage = "retrieving"
	stageAssembling pipelineStage = "assembling"
	stageGenerating pipelineStage = "generating"
)

// AISearchService orchestrates the retrieval-augmented answer pipeline:
// embed the question, retrieve the top-K lore chunks, assemble a bounded
// context and generate an answer. Stages run strictly in order, each at
// most once per invocation; no retries, no partial results. Every failure
// surfaces as a single *PipelineError.
type AISearchService struct {
	embedder  Embedder
	retriever Retriever
	generator Generator
	cache     *AnswerCache // optional

	topK            int
	maxContextChars int
}

// NewAISearchService creates the pipeline orchestrator. cache may be nil.
func NewAISearchService(embedder Embedder, retriever Retriever, generator Generator, cache *AnswerCache, topK, maxContextChars int) *AISearchService {
	return &AISearchService{
		embedder:        embedder,
		retriever:       retriever,
		generator:       generator,
		cache:           cache,
		topK:            topK,
		maxContextChars: maxContextChars,
	}
}

// Answer runs the pipeline for one question. userID is only used for
// logging; pass "anonymous" when unknown.
func (s *AISearchService) Answer(ctx context.Context, question, userID string) (*models.AnswerResult, error) {
	queryID := uuid.NewString()
	logger := logging.WithQuery(queryID, userID)
	started := time.Now()

	if m := GetMetrics(); m != nil {
		m.AISearchRequests.Inc()
	}

	if s.cache != nil {
		if answer, found := s.cache.Get(ctx, question); found {
			logger.Info("answer served from cache")
			if m := GetMetrics(); m != nil {
				m.AnswerCacheHits.Inc()
			}
			return &models.AnswerResult{Text: answer, ParagraphCount: countParagraphs(answer)}, nil
		}
	}

	stage := stageEmbedding
	queryEmbedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, s.fail(logger, stage, err)
	}

	stage = stageRetrieving
	chunks, err := s.retriever.Retrieve(ctx, question, queryEmbedding, s.topK)
	if err != nil {
		return nil, s.fail(logger, stage, err)
	}
	logger.Debug("lore retrieved", "chunks", len(chunks))

	// Zero matches is not a failure: generation proceeds with empty
	// context and the model answers from the question alone.
	stage = stageAssembling
	promptContext := BuildContext(chunks, s.maxContextChars)

	stage = stageGenerating
	result, err := s.generator.Generate(ctx, question, promptContext)
	if err != nil {
		return nil, s.fail(logger, stage, err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, question, result.Text)
	}

	if m := GetMetrics(); m != nil {
		m.AISearchLatency.Observe(time.Since(started).Seconds())
	}
	logger.Info("answer generated",
		"paragraphs", result.ParagraphCount,
		"duration", time.Since(started),
	)

	return result, nil
}

// fail flattens a stage failure into the single user-facing pipeline error.
// The stage and internal error kind are logged, never exposed.
func (s *AISearchService) fail(logger *slog.Logger, stage pipelineStage, err error) error {
	logger.Error("answer pipeline failed", "stage", string(stage), "error", err)
	if m := GetMetrics(); m != nil {
		m.AISearchErrors.WithLabelValues(string(stage)).Inc()
	}

	pipeErr := &PipelineError{Cause: err}
	if genErr, ok := err.(*GenerationError); ok {
		pipeErr.Detail = genErr.Detail
	}
	return pipeErr
}

func countParagraphs(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Split(text, "\n\n"))
}
