package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/upagnaduba/ChatWithPdf/docs"
	"github.com/upagnaduba/ChatWithPdf/internal/answerer"
	"github.com/upagnaduba/ChatWithPdf/internal/config"
	"github.com/upagnaduba/ChatWithPdf/internal/database"
	"github.com/upagnaduba/ChatWithPdf/internal/database/migration"
	"github.com/upagnaduba/ChatWithPdf/internal/extractor"
	handlers "github.com/upagnaduba/ChatWithPdf/internal/http/handler"
	"github.com/upagnaduba/ChatWithPdf/internal/http/middleware"
	"github.com/upagnaduba/ChatWithPdf/internal/otel"
	"github.com/upagnaduba/ChatWithPdf/internal/prompt"
	"github.com/upagnaduba/ChatWithPdf/internal/repository/postgres"
	"github.com/upagnaduba/ChatWithPdf/internal/service"
	"github.com/upagnaduba/ChatWithPdf/internal/storage"
)

// @title ChatWithPdf API
// @version 1.0
// @description Upload PDF documents and ask questions about their contents.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC
	ctx := context.Background()

	// Initialize tracing before any instrumented dependency
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Create the documents schema on first start
	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Wire repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	qaSvc := service.NewQAService(
		objStore,
		docRepo,
		extractor.NewPDF(),
		prompt.NewBuilder(cfg.MaxPromptChars),
		answerer.NewOpenAI(cfg.LLM),
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Leave headroom above the file limit for multipart framing
		BodyLimit: cfg.MaxUploadBytes + 1<<20,
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, qaSvc, int64(cfg.MaxUploadBytes))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
