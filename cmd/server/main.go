package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	flag "github.com/spf13/pflag"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/cache"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/database/postgres"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/metrics"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/middleware/requestid"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/pkg/log"
	platformconfig "github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/platform/config"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search"
	searchErrors "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/errors"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/handlers"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/repository"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/services"
)

func main() {
	envFile := flag.String("env-file", "", "path to a .env file tried before the default locations")
	migrate := flag.Bool("migrate", false, "apply the document schema before serving (postgresql only)")
	flag.Parse()

	if err := run(*envFile, *migrate); err != nil {
		log.Error("server stopped: %v", err)
		os.Exit(1)
	}
}

func run(envFile string, migrate bool) error {
	cfg, err := platformconfig.LoadFromEnvFile(envFile)
	if err != nil {
		return fmt.Errorf("failed to load platform config: %w", err)
	}
	log.SetDebug(cfg.Server.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := newRepository(ctx, cfg, migrate)
	if err != nil {
		return err
	}
	defer closeRepo()

	var countCache *cache.GenericCacheService
	if cfg.Cache.Enabled {
		countCache, err = cache.NewFromConfig(ctx, cfg.Cache)
		if err != nil {
			return fmt.Errorf("failed to create cache: %w", err)
		}
		defer countCache.Close()
	}

	collectors := metrics.New()
	searchService := services.NewSearchService(repo, services.Options{
		Executor: services.ExecutorOptionsFrom(cfg.Search),
		Cache:    countCache,
		CountTTL: cfg.Search.PreviewCacheTTL,
		Metrics:  collectors,
	})
	searchHandler := handlers.NewSearchHandler(searchService)

	app := newApp(cfg)
	app.Get("/health", searchHandler.Health)
	app.Get("/metrics", collectors.Handler())

	api := app.Group(cfg.Server.BaseRoute)
	search.RegisterRoutes(api, &search.SearchHandlers{SearchHandler: searchHandler}, cfg)

	errc := make(chan error, 1)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Info("Starting document search API on %s (store=%s, cache=%t)", addr, cfg.Database.Type, countCache.IsEnabled())
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func newApp(cfg *platformconfig.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code := searchErrors.CodeInternalError
				if fe.Code == fiber.StatusNotFound {
					code = searchErrors.CodeNotFound
				}
				return c.Status(fe.Code).JSON(searchErrors.ErrorResponse{Code: code, Error: fe.Message})
			}
			return searchErrors.HandleServiceError(c, err)
		},
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.WebDomain,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, OPTIONS",
	}))
	return app
}

func newRepository(ctx context.Context, cfg *platformconfig.Config, migrate bool) (repository.DocumentRepository, func(), error) {
	switch cfg.Database.Type {
	case platformconfig.DatabaseTypeMemory:
		log.Warn("Using the in-memory document store; data is not persisted")
		return repository.NewMemoryRepository(), func() {}, nil
	case platformconfig.DatabaseTypePostgreSQL:
		client, err := postgres.NewClient(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres client: %w", err)
		}
		if migrate {
			if err := repository.Migrate(ctx, client); err != nil {
				client.Close()
				return nil, nil, err
			}
			log.Info("Document schema applied")
		}
		return repository.NewPostgresRepository(client), func() { client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported database type %q", cfg.Database.Type)
}
