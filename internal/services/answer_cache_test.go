package services

import (
	"context"
	"testing"
	"time"

	"tungra/internal/models"
)

func TestAnswerCacheLocalRoundtrip(t *testing.T) {
	cache := NewAnswerCache("", 10*time.Minute)
	ctx := context.Background()

	if _, found := cache.Get(ctx, "who rules the holds?"); found {
		t.Fatal("Expected miss on empty cache")
	}

	cache.Set(ctx, "who rules the holds?", "The Iron Council rules the holds.")
	answer, found := cache.Get(ctx, "who rules the holds?")
	if !found {
		t.Fatal("Expected hit after set")
	}
	if answer != "The Iron Council rules the holds." {
		t.Errorf("Unexpected cached answer: %q", answer)
	}
}

func TestAnswerCacheNormalizesQuery(t *testing.T) {
	cache := NewAnswerCache("", 10*time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "Who Founded Tungra?", "answer")
	if _, found := cache.Get(ctx, "  who founded tungra?  "); !found {
		t.Error("Case and whitespace variants should share a cache entry")
	}
}

func TestAnswerCacheInvalidRedisURLFallsBack(t *testing.T) {
	cache := NewAnswerCache("not-a-valid-url", time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "query", "answer")
	if _, found := cache.Get(ctx, "query"); !found {
		t.Error("In-process fallback should still cache")
	}
}

func TestAnswerCacheHitSkipsPipeline(t *testing.T) {
	cache := NewAnswerCache("", time.Minute)
	ctx := context.Background()
	cache.Set(ctx, "cached question", "cached answer")

	embedder := &fakeEmbedder{vector: []float64{0.1}}
	generator := &fakeGenerator{result: &models.AnswerResult{Text: "fresh answer", ParagraphCount: 1}}
	service := NewAISearchService(embedder, &fakeRetriever{}, generator, cache, 5, 4000)

	result, err := service.Answer(ctx, "cached question", "user-1")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if result.Text != "cached answer" {
		t.Errorf("Expected cached answer, got %q", result.Text)
	}
	if embedder.calls != 0 || generator.calls != 0 {
		t.Error("Cache hit must skip every pipeline stage")
	}
}
