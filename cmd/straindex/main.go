package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/leaf-cloud/straindex/internal/collections"
	"github.com/leaf-cloud/straindex/internal/config"
	dbRedis "github.com/leaf-cloud/straindex/internal/db/redis"
	"github.com/leaf-cloud/straindex/internal/docstore"
	"github.com/leaf-cloud/straindex/internal/domain"
	"github.com/leaf-cloud/straindex/internal/events"
	logpkg "github.com/leaf-cloud/straindex/internal/logger"
	"github.com/leaf-cloud/straindex/internal/metrics"
	"github.com/leaf-cloud/straindex/internal/repository/embcache"
	interactionrepo "github.com/leaf-cloud/straindex/internal/repository/interaction"
	strainrepo "github.com/leaf-cloud/straindex/internal/repository/strain"
	terpenerepo "github.com/leaf-cloud/straindex/internal/repository/terpene"
	chiTransport "github.com/leaf-cloud/straindex/internal/transport/chi"
	openaiT "github.com/leaf-cloud/straindex/internal/transport/openai"
	analyticsuc "github.com/leaf-cloud/straindex/internal/usecase/analytics"
	askuc "github.com/leaf-cloud/straindex/internal/usecase/ask"
	eventuc "github.com/leaf-cloud/straindex/internal/usecase/event"
	healthuc "github.com/leaf-cloud/straindex/internal/usecase/health"
	strainuc "github.com/leaf-cloud/straindex/internal/usecase/strain"
	terpeneuc "github.com/leaf-cloud/straindex/internal/usecase/terpene"
	"github.com/leaf-cloud/straindex/internal/vectorstore"
	"github.com/leaf-cloud/straindex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting straindex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Vector store (redis / FT indexes)
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create vector store client", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		// The API starts anyway: document CRUD keeps working and vector
		// endpoints answer 503 until the store comes back.
		logger.Warn("Vector store not ready, starting degraded", zap.Error(err))
	} else {
		logger.Info("Connected to vector store")
	}

	// Document store (sqlite)
	sqlDB, err := docstore.Open(ctx, cfg.Docstore.Path)
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()
	logger.Info("Document store ready", zap.String("path", cfg.Docstore.Path))

	// Register metrics explicitly (no init())
	metrics.RegisterAIMetrics()
	metrics.RegisterEventMetrics()

	// OpenAI clients — an empty API key disables the AI surface, it never
	// blocks startup.
	var (
		baseEmbedder *openaiT.Embedder
		embedder     domain.Embedder
		chat         domain.ChatCompleter
	)
	if cfg.OpenAI.APIKey != "" {
		baseEmbedder = openaiT.NewEmbedder(&openaiT.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.EmbeddingModel,
			Dimensions: cfg.OpenAI.EmbeddingDimensions,
			Logger:     logger,
		})
		embedder = embcache.New(
			baseEmbedder, store,
			time.Duration(cfg.OpenAI.CacheTTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
		chat = openaiT.NewChatClient(&openaiT.ChatConfig{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.ChatModel,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Logger:      logger,
		})
		logger.Info("OpenAI clients created",
			zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
			zap.Int("dimensions", cfg.OpenAI.EmbeddingDimensions),
			zap.String("chat_model", cfg.OpenAI.ChatModel),
		)
	} else {
		logger.Warn("OpenAI API key not configured, AI endpoints disabled")
	}

	// Repositories (domain-native, no adapters)
	terpRepo := terpenerepo.New(sqlDB)
	strRepo := strainrepo.New(sqlDB)
	interRepo := interactionrepo.New(sqlDB).
		WithSessionGap(time.Duration(cfg.Analytics.SessionGapMinutes) * time.Minute)

	// Vector gateway with the two collections the product uses
	gateway := vectorstore.New(store, logger).
		WithBatchSize(cfg.Index.UpsertBatchSize).
		WithHNSW(cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct)
	dims := cfg.OpenAI.EmbeddingDimensions
	if err := gateway.Register(collections.UserEventsDescriptor(dims)); err != nil {
		logger.Fatal("Failed to register collection", zap.Error(err))
	}
	if err := gateway.Register(collections.TerpenesDescriptor(dims)); err != nil {
		logger.Fatal("Failed to register collection", zap.Error(err))
	}
	if err := gateway.Init(ctx); err != nil {
		logger.Warn("Vector collections not initialized, similarity features degraded", zap.Error(err))
	}

	// Event pipeline: classifier + bus + pipeline service
	bus := events.NewBus(logger)
	bus.Subscribe(events.Wildcard, func(_ context.Context, e *domain.UserEvent) error {
		logger.Debug("Event observed",
			zap.String("event_type", e.EventType),
			zap.String("category", string(e.Category)),
			zap.String("user_id", e.UserID),
		)
		return nil
	})
	classifier := eventuc.NewClassifier(chat, logger)
	eventSvc := eventuc.New(interRepo, gateway, embedder, classifier, bus, logger)

	// Use case services
	terpeneSvc := terpeneuc.New(terpRepo, strRepo, gateway, embedder, chat, logger).
		WithPaging(cfg.Index.DefaultPageSize, cfg.Index.MaxPageSize)
	strainSvc := strainuc.New(strRepo).
		WithPaging(cfg.Index.DefaultPageSize, cfg.Index.MaxPageSize)
	askSvc := askuc.New(chat)
	analyticsSvc := analyticsuc.New(gateway, interRepo, logger).
		WithLimits(cfg.Analytics.SimilarUsersSampleSize, 0, cfg.Analytics.TimelineLimit)

	// Health service
	var embHealth healthuc.EmbeddingChecker
	if baseEmbedder != nil {
		embHealth = baseEmbedder
	}
	healthSvc := healthuc.New(store, docPinger{db: sqlDB}, embHealth)

	// HTTP server
	server := chiTransport.NewServer(
		askSvc, terpeneSvc, strainSvc, analyticsSvc, eventSvc, healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// docPinger adapts *sql.DB to the health check Pinger.
type docPinger struct {
	db *sql.DB
}

func (p docPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
