package services

import (
	"testing"

	"tungra/internal/models"
)

func TestRankChunksBoostsLexicalMatches(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Title: "The Iron Council", Description: "Governing body of the dwarven holds.", Score: 0.9},
		{Title: "Tungra Founding", Description: "How the city of Tungra was founded.", Score: 0.7},
	}

	ranked := RankChunks(chunks, "tungra")
	if ranked[0].Title != "Tungra Founding" {
		t.Errorf("Expected lexical match ranked first, got %q", ranked[0].Title)
	}
	if ranked[0].Score != 0.7+lexicalBoost {
		t.Errorf("Expected boosted score %v, got %v", 0.7+lexicalBoost, ranked[0].Score)
	}
	if ranked[1].Score != 0.9 {
		t.Errorf("Non-matching chunk score should be unchanged, got %v", ranked[1].Score)
	}
}

func TestRankChunksMatchIsCaseInsensitive(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Title: "THE SUNDERED GATE", Description: "", Score: 0.1},
	}

	ranked := RankChunks(chunks, "Sundered Gate")
	if ranked[0].Score != 0.1+lexicalBoost {
		t.Errorf("Expected case-insensitive boost, got score %v", ranked[0].Score)
	}
}

func TestRankChunksSortsDescending(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Title: "low", Score: 0.2},
		{Title: "high", Score: 0.8},
		{Title: "mid", Score: 0.5},
	}

	ranked := RankChunks(chunks, "no match here at all")
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Score < ranked[i].Score {
			t.Fatalf("Scores not descending at index %d: %v < %v", i, ranked[i-1].Score, ranked[i].Score)
		}
	}
}

func TestRankChunksStableForTies(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Title: "first", Score: 0.5},
		{Title: "second", Score: 0.5},
	}

	ranked := RankChunks(chunks, "")
	if ranked[0].Title != "first" || ranked[1].Title != "second" {
		t.Error("Equal scores should keep store-returned order")
	}
}

func TestRankChunksEmptyQuery(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Title: "entry", Description: "text", Score: 0.3},
	}

	ranked := RankChunks(chunks, "   ")
	if ranked[0].Score != 0.3 {
		t.Errorf("Blank query must not boost, got score %v", ranked[0].Score)
	}
}
