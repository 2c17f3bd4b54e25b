package middleware

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Global limits (per IP)
	GlobalAPIMax        int
	GlobalAPIExpiration time.Duration

	// Login attempts (per IP) - brute force protection
	LoginMax        int
	LoginExpiration time.Duration

	// AI search (per user) - each request costs two upstream API calls
	AISearchMax        int
	AISearchExpiration time.Duration
}

// DefaultRateLimitConfig returns production-safe defaults
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		// Global: 200/min - generous for normal archive browsing
		GlobalAPIMax:        200,
		GlobalAPIExpiration: 1 * time.Minute,

		// Login: 5 attempts per 15 minutes
		LoginMax:        5,
		LoginExpiration: 15 * time.Minute,

		// AI search: 20/min per user
		AISearchMax:        20,
		AISearchExpiration: 1 * time.Minute,
	}
}

// LoadRateLimitConfig loads config from environment variables with defaults
func LoadRateLimitConfig() *RateLimitConfig {
	config := DefaultRateLimitConfig()

	if v := os.Getenv("RATE_LIMIT_GLOBAL_API"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.GlobalAPIMax = n
		}
	}

	if v := os.Getenv("RATE_LIMIT_LOGIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.LoginMax = n
		}
	}

	if v := os.Getenv("RATE_LIMIT_AI_SEARCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.AISearchMax = n
		}
	}

	// Development mode: more lenient limits
	if os.Getenv("ENVIRONMENT") == "development" {
		config.GlobalAPIMax = 1000
		config.LoginMax = 100
		log.Println("⚠️  [RATE-LIMIT] Development mode: using relaxed rate limits")
	}

	return config
}

// GlobalAPIRateLimiter creates a rate limiter for all API requests
func GlobalAPIRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.GlobalAPIMax,
		Expiration: config.GlobalAPIExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "global:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] Global limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests. Please slow down.",
				"retry_after": int(config.GlobalAPIExpiration.Seconds()),
			})
		},
	})
}

// LoginRateLimiter protects the login endpoint from brute force attempts
func LoginRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.LoginMax,
		Expiration: config.LoginExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "login:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] Login limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many login attempts. Try again later.",
				"retry_after": int(config.LoginExpiration.Seconds()),
			})
		},
		SkipSuccessfulRequests: true,
	})
}

// AISearchRateLimiter throttles the answer pipeline per user, falling back
// to IP for safety
func AISearchRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.AISearchMax,
		Expiration: config.AISearchExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
				return "ai-search:" + userID
			}
			return "ai-search:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many AI search requests.",
				"retry_after": int(config.AISearchExpiration.Seconds()),
			})
		},
	})
}
