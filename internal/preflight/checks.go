package preflight

import (
	"context"
	"fmt"
	"log"
	"time"

	"tungra/internal/config"
	"tungra/internal/database"
)

// CheckResult represents the result of a preflight check
type CheckResult struct {
	Name    string
	Status  string // "pass", "fail", "warning"
	Message string
	Error   error
}

// Checker performs pre-flight checks before the server starts
type Checker struct {
	db  *database.MongoDB
	cfg *config.Config
}

// NewChecker creates a new preflight checker
func NewChecker(db *database.MongoDB, cfg *config.Config) *Checker {
	return &Checker{
		db:  db,
		cfg: cfg,
	}
}

// RunAll runs all preflight checks and returns results
func (c *Checker) RunAll() []CheckResult {
	log.Println("🔍 Running pre-flight checks...")

	results := []CheckResult{
		c.checkDatabaseConnection(),
		c.checkAuthConfig(),
		c.checkUpstreamConfig(),
		c.checkRetrievalConfig(),
	}

	passed := 0
	failed := 0
	warnings := 0

	for _, result := range results {
		switch result.Status {
		case "pass":
			log.Printf("   ✅ %s: %s", result.Name, result.Message)
			passed++
		case "fail":
			log.Printf("   ❌ %s: %s", result.Name, result.Message)
			if result.Error != nil {
				log.Printf("      Error: %v", result.Error)
			}
			failed++
		case "warning":
			log.Printf("   ⚠️  %s: %s", result.Name, result.Message)
			warnings++
		}
	}

	log.Printf("\n📊 Pre-flight summary: %d passed, %d failed, %d warnings\n", passed, failed, warnings)

	return results
}

// HasFailures returns true if any check failed
func HasFailures(results []CheckResult) bool {
	for _, result := range results {
		if result.Status == "fail" {
			return true
		}
	}
	return false
}

// checkDatabaseConnection verifies MongoDB connectivity
func (c *Checker) checkDatabaseConnection() CheckResult {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.db.Ping(ctx); err != nil {
		return CheckResult{
			Name:    "Database Connection",
			Status:  "fail",
			Message: "Cannot connect to MongoDB",
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Database Connection",
		Status:  "pass",
		Message: "MongoDB connection successful",
	}
}

// checkAuthConfig verifies the token signing configuration
func (c *Checker) checkAuthConfig() CheckResult {
	if c.cfg.JWTSecret == "" {
		return CheckResult{
			Name:    "Auth Configuration",
			Status:  "fail",
			Message: "JWT_SECRET is not set",
		}
	}
	if len(c.cfg.JWTSecret) < 32 {
		return CheckResult{
			Name:    "Auth Configuration",
			Status:  "warning",
			Message: "JWT_SECRET is shorter than 32 characters",
		}
	}

	return CheckResult{
		Name:    "Auth Configuration",
		Status:  "pass",
		Message: "Token signing configured",
	}
}

// checkUpstreamConfig verifies credentials for the embedding and
// generation services. Missing credentials are warnings, not failures:
// the CRUD surface still works without them.
func (c *Checker) checkUpstreamConfig() CheckResult {
	missing := []string{}
	if c.cfg.EmbeddingToken == "" {
		missing = append(missing, "HF_TOKEN")
	}
	if c.cfg.AnthropicAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}

	if len(missing) > 0 {
		return CheckResult{
			Name:    "Upstream Credentials",
			Status:  "warning",
			Message: fmt.Sprintf("Missing credentials: %v (AI search will fail until set)", missing),
		}
	}

	return CheckResult{
		Name:    "Upstream Credentials",
		Status:  "pass",
		Message: "Embedding and generation credentials configured",
	}
}

// checkRetrievalConfig verifies the search pipeline configuration
func (c *Checker) checkRetrievalConfig() CheckResult {
	if c.cfg.SearchIndex == "" {
		return CheckResult{
			Name:    "Retrieval Configuration",
			Status:  "fail",
			Message: "SEARCH_INDEX is empty",
		}
	}
	if c.cfg.RetrievalK <= 0 || c.cfg.MaxContextChars <= 0 {
		return CheckResult{
			Name:    "Retrieval Configuration",
			Status:  "fail",
			Message: fmt.Sprintf("Invalid pipeline bounds (topK=%d, contextChars=%d)", c.cfg.RetrievalK, c.cfg.MaxContextChars),
		}
	}

	return CheckResult{
		Name:    "Retrieval Configuration",
		Status:  "pass",
		Message: fmt.Sprintf("Index %q, topK=%d, context budget %d chars", c.cfg.SearchIndex, c.cfg.RetrievalK, c.cfg.MaxContextChars),
	}
}
