package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"tungra/internal/config"
	"tungra/internal/database"
	"tungra/internal/handlers"
	"tungra/internal/jobs"
	"tungra/internal/logging"
	"tungra/internal/middleware"
	"tungra/internal/models"
	"tungra/internal/preflight"
	"tungra/internal/services"
	"tungra/pkg/auth"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Tungra Archive Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	if cfg.MongoURI == "" {
		log.Fatal("❌ MONGO_URI environment variable is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET environment variable is required")
	}

	// Connect to MongoDB
	log.Println("🔗 Connecting to MongoDB...")
	mongoDB, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close(context.Background())

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongoDB.Initialize(initCtx); err != nil {
		cancelInit()
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	cancelInit()
	log.Println("✅ MongoDB connected and indexes ensured")

	// Pre-flight checks
	checker := preflight.NewChecker(mongoDB, cfg)
	if results := checker.RunAll(); preflight.HasFailures(results) {
		log.Fatal("❌ Pre-flight checks failed, refusing to start")
	}

	// Initialize metrics registry
	services.InitMetrics()

	// Initialize auth
	jwtAuth, err := auth.NewJWTAuth(cfg.JWTSecret, cfg.TokenExpiry)
	if err != nil {
		log.Fatalf("❌ Failed to initialize JWT auth: %v", err)
	}

	// Initialize services
	userService := services.NewUserService(mongoDB)
	embeddingService := services.NewEmbeddingService(cfg.EmbeddingURL, cfg.EmbeddingToken, cfg.EmbeddingTimeout)
	retrievalService := services.NewRetrievalService(mongoDB, cfg.SearchIndex, cfg.NumCandidates)
	answerService := services.NewAnswerService(cfg)
	loreService := services.NewLoreService(mongoDB, embeddingService)
	answerCache := services.NewAnswerCache(cfg.RedisURL, cfg.AnswerCacheTTL)
	aiSearchService := services.NewAISearchService(
		embeddingService,
		retrievalService,
		answerService,
		answerCache,
		cfg.RetrievalK,
		cfg.MaxContextChars,
	)
	log.Println("✅ Services initialized")

	// Bootstrap the first admin account when the user collection is empty
	if err := ensureAdminUser(userService); err != nil {
		log.Fatalf("❌ Failed to bootstrap admin user: %v", err)
	}

	// Background jobs
	jobScheduler := jobs.NewJobScheduler()
	backfillJob := jobs.NewEmbeddingBackfillJob(loreService, cfg.BackfillInterval)
	jobScheduler.Register("embedding-backfill", backfillJob)
	jobScheduler.Start()
	log.Printf("🕐 Background jobs: embedding backfill (every %s)", cfg.BackfillInterval)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Tungra Archive v1.0",
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second, // generation can take a while on long questions
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("tungra")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Rate limiting configuration
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Login=%d/15min, AISearch=%d/min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.LoginMax,
		rateLimitConfig.AISearchMax,
	)

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}

	// Fiber's CORS middleware does not allow AllowCredentials with wildcard origins.
	allowCredentials := allowedOrigins != "*"

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowCredentials,
	}))
	log.Printf("🔒 [SECURITY] CORS allowed origins: %s", allowedOrigins)

	// Global API rate limiter
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(mongoDB)
	authHandler := handlers.NewAuthHandler(jwtAuth, userService)
	userHandler := handlers.NewUserHandler(userService)
	loreHandler := handlers.NewLoreHandler(loreService, embeddingService, retrievalService, cfg.SemanticSearchK, cfg.RetrievalMaxK)
	aiSearchHandler := handlers.NewAISearchHandler(aiSearchService)

	// Public routes
	app.Get("/health", healthHandler.Check)
	app.Post("/api/auth/login", middleware.LoginRateLimiter(rateLimitConfig), authHandler.Login)

	// Authenticated routes
	api := app.Group("/api", middleware.AuthMiddleware(jwtAuth))

	api.Get("/auth/me", authHandler.GetCurrentUser)

	lore := api.Group("/lore")
	lore.Get("/", loreHandler.ListEntries)
	lore.Post("/search", loreHandler.Search)
	lore.Get("/:id", loreHandler.GetEntry)
	lore.Post("/", middleware.RequireRoles(models.RoleEditor, models.RoleAdmin), loreHandler.CreateEntry)
	lore.Put("/:id", middleware.RequireRoles(models.RoleEditor, models.RoleAdmin), loreHandler.UpdateEntry)
	lore.Delete("/:id", middleware.RequireRoles(models.RoleEditor, models.RoleAdmin), loreHandler.DeleteEntry)

	api.Post("/ai-search", middleware.AISearchRateLimiter(rateLimitConfig), aiSearchHandler.Search)

	users := api.Group("/users", middleware.RequireRoles(models.RoleAdmin))
	users.Get("/", userHandler.ListUsers)
	users.Post("/", userHandler.CreateUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)

	log.Printf("🌐 Server starting on port %s", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		jobScheduler.Stop()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// ensureAdminUser creates the initial admin account when no users exist.
// Credentials come from ADMIN_USERNAME/ADMIN_PASSWORD, defaulting the
// username to "admin". Without a password the bootstrap is skipped so an
// operator can seed users out of band.
func ensureAdminUser(userService *services.UserService) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := userService.GetUserCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("⚠️  No users exist and ADMIN_PASSWORD is not set - skipping admin bootstrap")
		return nil
	}
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}

	username := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	if username == "" {
		username = "admin"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if err := userService.CreateUser(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}); err != nil {
		return err
	}

	log.Printf("✅ Bootstrap admin user created: %s", username)
	return nil
}
