package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"tungra/internal/models"
)

func TestBuildContextFormatsChunks(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Title: "The Sundered Gate", Description: "A broken portal in the northern wastes."},
		{Title: "House Veyra", Description: "Merchant dynasty of the coastal cities."},
	}

	got := BuildContext(chunks, 4000)
	want := "The Sundered Gate: A broken portal in the northern wastes.\n\nHouse Veyra: Merchant dynasty of the coastal cities."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestBuildContextEmptyChunks(t *testing.T) {
	got := BuildContext(nil, 4000)
	if got != "" {
		t.Errorf("Expected empty context, got %q", got)
	}
}

func TestBuildContextPreservesOrder(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Title: "First", Description: "most relevant"},
		{Title: "Second", Description: "less relevant"},
		{Title: "Third", Description: "least relevant"},
	}

	got := BuildContext(chunks, 4000)
	first := strings.Index(got, "First")
	second := strings.Index(got, "Second")
	third := strings.Index(got, "Third")
	if !(first < second && second < third) {
		t.Errorf("Chunks out of retriever order: %q", got)
	}
}

func TestTruncateContextUnderBudget(t *testing.T) {
	input := "short context"
	if got := TruncateContext(input, len(input)); got != input {
		t.Errorf("Context at budget should be unchanged, got %q", got)
	}
}

func TestTruncateContextOverBudget(t *testing.T) {
	input := strings.Repeat("a", 4001)

	got := TruncateContext(input, 4000)
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Errorf("Expected truncation marker suffix, got %q", got[len(got)-30:])
	}
	if len(got) != 4000+len(TruncationMarker) {
		t.Errorf("Expected length %d, got %d", 4000+len(TruncationMarker), len(got))
	}
	if !strings.HasPrefix(got, strings.Repeat("a", 4000)) {
		t.Error("Truncated content should be the first 4000 characters")
	}
}

func TestTruncateContextKeepsRunesWhole(t *testing.T) {
	// "é" is two bytes; a budget landing inside it must back off to the
	// rune boundary instead of emitting a split character.
	input := strings.Repeat("é", 10)

	got := TruncateContext(input, 5)
	if !utf8.ValidString(got) {
		t.Fatalf("Truncated context is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Fatalf("Expected truncation marker suffix, got %q", got)
	}
	kept := strings.TrimSuffix(got, TruncationMarker)
	if kept != strings.Repeat("é", 2) {
		t.Errorf("Expected two whole runes kept, got %q", kept)
	}
}

func TestBuildContextTruncatesAfterAssembly(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Title: "Alpha", Description: strings.Repeat("x", 60)},
		{Title: "Beta", Description: strings.Repeat("y", 60)},
	}

	got := BuildContext(chunks, 80)
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Fatalf("Expected truncated context, got %q", got)
	}
	// The cut must fall on the assembled string, keeping the head intact
	if !strings.HasPrefix(got, "Alpha: ") {
		t.Errorf("Truncation should drop the tail, not the head: %q", got)
	}
}
