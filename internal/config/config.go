package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port     string
	MongoURI string
	RedisURL string

	// Auth configuration
	JWTSecret   string
	TokenExpiry time.Duration

	// Embedding service (HuggingFace feature-extraction endpoint)
	EmbeddingURL     string
	EmbeddingToken   string
	EmbeddingTimeout time.Duration

	// Generative model service (Anthropic messages endpoint)
	AnthropicBaseURL string
	AnthropicAPIKey  string
	AnthropicVersion string
	AnswerModel      string
	AnswerMaxTokens  int
	AnswerTemp       float64
	AnswerTimeout    time.Duration

	// Retrieval-augmented answer pipeline
	SearchIndex        string // Atlas search index over the lore collection
	RetrievalK         int    // top-K for the answer pipeline
	SemanticSearchK    int    // default top-K for plain semantic search
	RetrievalMaxK      int    // hard cap on caller-supplied limits
	NumCandidates      int    // $vectorSearch candidate pool
	MaxContextChars    int    // context budget before truncation
	AnswerParagraphCap int    // paragraphs kept after generation
	AnswerCacheTTL     time.Duration

	// Embedding backfill job
	BackfillInterval time.Duration

	// Persona / prompt configuration, loadable from a YAML file
	Persona Persona
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "5000"),
		MongoURI: getEnv("MONGO_URI", ""),
		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenExpiry: getDurationEnv("TOKEN_EXPIRY", 24*time.Hour),

		EmbeddingURL: getEnv("EMBEDDING_URL",
			"https://api-inference.huggingface.co/pipeline/feature-extraction/sentence-transformers/all-mpnet-base-v2"),
		EmbeddingToken:   getEnv("HF_TOKEN", ""),
		EmbeddingTimeout: getDurationEnv("EMBEDDING_TIMEOUT", 30*time.Second),

		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicVersion: getEnv("ANTHROPIC_VERSION", "2023-06-01"),
		AnswerModel:      getEnv("ANSWER_MODEL", "claude-3-5-sonnet-20240620"),
		AnswerMaxTokens:  getIntEnv("ANSWER_MAX_TOKENS", 3000),
		AnswerTemp:       getFloatEnv("ANSWER_TEMPERATURE", 0.2),
		AnswerTimeout:    getDurationEnv("ANSWER_TIMEOUT", 60*time.Second),

		SearchIndex:        getEnv("SEARCH_INDEX", "DndSemanticSearch"),
		RetrievalK:         getIntEnv("RETRIEVAL_K", 5),
		SemanticSearchK:    getIntEnv("SEMANTIC_SEARCH_K", 10),
		RetrievalMaxK:      getIntEnv("RETRIEVAL_MAX_K", 25),
		NumCandidates:      getIntEnv("NUM_CANDIDATES", 100),
		MaxContextChars:    getIntEnv("MAX_CONTEXT_CHARS", 4000),
		AnswerParagraphCap: getIntEnv("ANSWER_PARAGRAPH_CAP", 3),
		AnswerCacheTTL:     getDurationEnv("ANSWER_CACHE_TTL", 10*time.Minute),

		BackfillInterval: getDurationEnv("BACKFILL_INTERVAL", 1*time.Hour),

		Persona: DefaultPersona(),
	}

	// Optional persona file overrides the built-in prompt settings
	if personaFile := getEnv("PERSONA_FILE", ""); personaFile != "" {
		persona, err := LoadPersona(personaFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load persona file: %v\n", err)
		} else {
			cfg.Persona = *persona
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
