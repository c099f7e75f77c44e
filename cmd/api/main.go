package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"talentmatch/cv-matcher/internal/config"
	"talentmatch/cv-matcher/internal/handlers"
	"talentmatch/cv-matcher/internal/logger"
	"talentmatch/cv-matcher/internal/repositories"
	"talentmatch/cv-matcher/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	zlog.Info("database connected")

	// Initialize repositories
	jobRepo := repositories.NewJobRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		zlog.Fatal("failed to create upload directory", zap.Error(err))
	}

	pdfParser := services.NewPDFParserService()

	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.EmbedModel,
		cfg.Worker.RetryInitialDelay,
		zlog,
	)
	if err != nil {
		zlog.Fatal("failed to initialize Gemini", zap.Error(err))
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		zlog,
	)
	if err != nil {
		zlog.Fatal("failed to initialize Qdrant", zap.Error(err))
	}

	if err := qdrantService.InitCollection(); err != nil {
		zlog.Fatal("failed to initialize Qdrant collection", zap.Error(err))
	}
	zlog.Info("qdrant initialized", zap.String("collection", cfg.Qdrant.Collection))

	extractionService := services.NewExtractionService(
		geminiService,
		cfg.Gemini.Model,
		cfg.Worker.RetryMaxAttempts,
		zlog,
	)

	// Scoring stack: Gemini evaluator behind a memoization layer, one
	// parametrized dimension scorer, weighted aggregation.
	evaluator := services.NewMemoizedEvaluator(services.NewGeminiEvaluator(
		geminiService,
		cfg.Matching.EvaluatorTimeout,
		cfg.Worker.RetryMaxAttempts,
		zlog,
	))
	scorer := services.NewDimensionScorer(evaluator, zlog)

	aggregator, err := services.NewScoreAggregator()
	if err != nil {
		zlog.Fatal("invalid dimension weights", zap.Error(err))
	}

	pipeline := services.NewMatchingPipeline(
		jobRepo,
		candidateRepo,
		scorer,
		aggregator,
		cfg.Matching.PairConcurrency,
		zlog,
	)

	searchService := services.NewSearchService(geminiService, qdrantService)

	// Extraction worker
	worker := services.NewWorker(
		candidateRepo,
		extractionService,
		pdfParser,
		geminiService,
		qdrantService,
		cfg.Worker.Concurrency,
		zlog,
	)

	ctx := context.Background()
	worker.Start(ctx)
	zlog.Info("extraction worker started", zap.Int("concurrency", cfg.Worker.Concurrency))

	// Initialize handlers
	jobHandler := handlers.NewJobHandler(jobRepo, candidateRepo, extractionService)
	candidateHandler := handlers.NewCandidateHandler(
		candidateRepo,
		jobRepo,
		storageService,
		searchService,
		qdrantService,
		worker,
		cfg.Storage.MaxFileSize,
	)
	matchHandler := handlers.NewMatchHandler(pipeline)
	dashboardHandler := handlers.NewDashboardHandler(jobRepo, candidateRepo)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CV Matcher API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/jobs", jobHandler.HandleCreate)
	api.Get("/jobs", jobHandler.HandleList)
	api.Get("/jobs/:id", jobHandler.HandleGet)
	api.Patch("/jobs/:id", jobHandler.HandleUpdate)
	api.Delete("/jobs/:id", jobHandler.HandleDelete)
	api.Post("/jobs/:id/extract", jobHandler.HandleExtract)

	api.Post("/jobs/:id/candidates", candidateHandler.HandleUpload)
	api.Get("/jobs/:id/candidates", candidateHandler.HandleListByJob)
	api.Get("/jobs/:id/candidates/search", candidateHandler.HandleSearch)
	api.Get("/candidates/:id", candidateHandler.HandleGet)
	api.Delete("/candidates/:id", candidateHandler.HandleDelete)

	api.Post("/jobs/:id/matches", matchHandler.HandleRunBatch)

	api.Get("/dashboard/stats/jobs/count", dashboardHandler.HandleJobCount)
	api.Get("/dashboard/stats/candidates-per-job", dashboardHandler.HandleCandidatesPerJob)
	api.Get("/dashboard/best-candidate-per-job", dashboardHandler.HandleBestCandidatePerJob)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
