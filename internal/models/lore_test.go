package models

import "testing"

func TestStripWhitespace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The Sundered Gate", "TheSunderedGate"},
		{"  leading and trailing  ", "leadingandtrailing"},
		{"tabs\tand\nnewlines", "tabsandnewlines"},
		{"", ""},
		{"nospaces", "nospaces"},
	}

	for _, tt := range tests {
		if got := StripWhitespace(tt.input); got != tt.want {
			t.Errorf("StripWhitespace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEmbeddingText(t *testing.T) {
	entry := &LoreEntry{
		OriginalTitle:       "House Veyra",
		OriginalDescription: "Merchant dynasty of the coastal cities.",
	}
	want := "House Veyra: Merchant dynasty of the coastal cities."
	if got := entry.EmbeddingText(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
