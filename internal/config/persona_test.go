package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPersonaTemplate(t *testing.T) {
	persona := DefaultPersona()
	if persona.SystemPrompt == "" {
		t.Fatal("Default system prompt is empty")
	}
	if strings.Count(persona.UserTemplate, "%s") != 2 {
		t.Errorf("User template must take context then question, got %q", persona.UserTemplate)
	}
}

func TestLoadPersona(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persona.yaml")
	content := "system_prompt: You are the archive keeper.\nuser_template: |-\n  Context:\n  %s\n\n  Question: %s\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write persona file: %v", err)
	}

	persona, err := LoadPersona(path)
	if err != nil {
		t.Fatalf("LoadPersona failed: %v", err)
	}
	if persona.SystemPrompt != "You are the archive keeper." {
		t.Errorf("Unexpected system prompt: %q", persona.SystemPrompt)
	}
	if !strings.Contains(persona.UserTemplate, "Context:") {
		t.Errorf("Unexpected user template: %q", persona.UserTemplate)
	}
}

func TestLoadPersonaMissingFile(t *testing.T) {
	if _, err := LoadPersona("/nonexistent/persona.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "5000" {
		t.Errorf("Expected default port 5000, got %q", cfg.Port)
	}
	if cfg.MaxContextChars != 4000 {
		t.Errorf("Expected context budget 4000, got %d", cfg.MaxContextChars)
	}
	if cfg.AnswerParagraphCap != 3 {
		t.Errorf("Expected paragraph cap 3, got %d", cfg.AnswerParagraphCap)
	}
	if cfg.RetrievalMaxK != 25 {
		t.Errorf("Expected max K 25, got %d", cfg.RetrievalMaxK)
	}
}
