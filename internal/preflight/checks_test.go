package preflight

import (
	"testing"

	"tungra/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "a-secret-long-enough-to-pass-the-length-check",
		EmbeddingToken:  "hf-token",
		AnthropicAPIKey: "api-key",
		SearchIndex:     "DndSemanticSearch",
		RetrievalK:      5,
		MaxContextChars: 4000,
	}
}

func TestCheckAuthConfigMissingSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""

	checker := NewChecker(nil, cfg)
	result := checker.checkAuthConfig()
	if result.Status != "fail" {
		t.Errorf("Expected fail for missing secret, got %q", result.Status)
	}
}

func TestCheckAuthConfigShortSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "too-short"

	checker := NewChecker(nil, cfg)
	result := checker.checkAuthConfig()
	if result.Status != "warning" {
		t.Errorf("Expected warning for short secret, got %q", result.Status)
	}
}

func TestCheckUpstreamConfigMissingCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.EmbeddingToken = ""
	cfg.AnthropicAPIKey = ""

	checker := NewChecker(nil, cfg)
	result := checker.checkUpstreamConfig()
	if result.Status != "warning" {
		t.Errorf("Missing upstream credentials should warn, not fail: got %q", result.Status)
	}
}

func TestCheckRetrievalConfig(t *testing.T) {
	checker := NewChecker(nil, testConfig())
	if result := checker.checkRetrievalConfig(); result.Status != "pass" {
		t.Errorf("Expected pass, got %q: %s", result.Status, result.Message)
	}

	cfg := testConfig()
	cfg.SearchIndex = ""
	checker = NewChecker(nil, cfg)
	if result := checker.checkRetrievalConfig(); result.Status != "fail" {
		t.Errorf("Empty search index should fail, got %q", result.Status)
	}
}

func TestHasFailures(t *testing.T) {
	results := []CheckResult{
		{Name: "a", Status: "pass"},
		{Name: "b", Status: "warning"},
	}
	if HasFailures(results) {
		t.Error("Warnings alone should not count as failures")
	}

	results = append(results, CheckResult{Name: "c", Status: "fail"})
	if !HasFailures(results) {
		t.Error("Expected failure to be detected")
	}
}
