package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/helio-cloud/groundex/internal/config"
	dbRedis "github.com/helio-cloud/groundex/internal/db/redis"
	"github.com/helio-cloud/groundex/internal/domain"
	"github.com/helio-cloud/groundex/internal/domain/intent"
	"github.com/helio-cloud/groundex/internal/domain/profile"
	logpkg "github.com/helio-cloud/groundex/internal/logger"
	"github.com/helio-cloud/groundex/internal/metrics"
	documentrepo "github.com/helio-cloud/groundex/internal/repository/document"
	"github.com/helio-cloud/groundex/internal/repository/embcache"
	passagerepo "github.com/helio-cloud/groundex/internal/repository/passage"
	chiTransport "github.com/helio-cloud/groundex/internal/transport/chi"
	openaiTransport "github.com/helio-cloud/groundex/internal/transport/openai"
	answeruc "github.com/helio-cloud/groundex/internal/usecase/answer"
	healthuc "github.com/helio-cloud/groundex/internal/usecase/health"
	ingestuc "github.com/helio-cloud/groundex/internal/usecase/ingest"
	retrievaluc "github.com/helio-cloud/groundex/internal/usecase/retrieval"
	"github.com/helio-cloud/groundex/internal/version"
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

	logger.Info("Starting groundex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register domain metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	embedder := buildEmbedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.Cache),
	)

	// Pass nil interface (not typed nil pointer!) if moderation is disabled.
	// Go gotcha: (*Moderator)(nil) wrapped in retrieval.Moderator != nil.
	var moderator retrievaluc.Moderator
	if cfg.Moderation.Enabled {
		moderator = openaiTransport.NewModerator(&openaiTransport.ModeratorConfig{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Moderation.Model,
			Logger:  logger,
		})
		logger.Info("Moderation pre-check enabled", zap.String("model", cfg.Moderation.Model))
	}

	// Create repositories
	passageRepo := passagerepo.New(store)
	docRepo := documentrepo.New(store)

	if err := passageRepo.EnsureIndex(ctx, passagerepo.IndexOptions{
		Dimensions:     cfg.Embedding.Dimensions,
		HNSWM:          cfg.Index.HNSWM,
		EFConstruction: cfg.Index.HNSWEFConstruct,
	}); err != nil {
		logger.Fatal("Failed to ensure passage index", zap.Error(err))
	}

	profiles, err := buildProfiles(cfg.Retrieval)
	if err != nil {
		logger.Fatal("Invalid retrieval profiles", zap.Error(err))
	}

	// Create use case services
	retrievalSvc := retrievaluc.New(retrievaluc.Options{
		Repo:           passageRepo,
		Embedder:       embedder,
		Moderator:      moderator,
		Classifier:     intent.Default(),
		Ranker:         retrievaluc.NewRanker(buildAliasGroups(cfg.Retrieval.DocumentAliases)),
		Profiles:       profiles,
		DefaultProfile: cfg.Retrieval.DefaultProfile,
		Logger:         logger,
	})
	ingestSvc := ingestuc.New(passageRepo, docRepo, cfg.Embedding.Dimensions, logger)

	var answerSvc *answeruc.Service
	if cfg.Generation.Enabled {
		generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:    cfg.Embedding.APIKey,
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Generation.Model,
			MaxTokens: cfg.Generation.MaxTokens,
			Logger:    logger,
		})
		answerSvc = answeruc.New(retrievalSvc, generator, cfg.Generation.SystemInstructions, logger)
		logger.Info("Answer generation enabled", zap.String("model", cfg.Generation.Model))
	}

	// Health service
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder))

	// Create chi server
	server := chiTransport.NewServer(retrievalSvc, answerSvc, ingestSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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

// buildEmbedder assembles the decorator chain: OpenAI -> Cached
func buildEmbedder(cfg config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	if !cfg.Cache {
		return base
	}
	return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
}

// buildProfiles merges the built-in profiles with config overrides. A config
// profile with a known name replaces the built-in; new names are added.
func buildProfiles(cfg config.RetrievalConfig) (map[string]profile.Profile, error) {
	profiles := map[string]profile.Profile{
		"product": profile.Product(),
		"legal":   profile.Legal(),
		"gtm":     profile.GTM(),
	}

	for name, pc := range cfg.Profiles {
		p := profile.Profile{
			Name:                name,
			SimilarityThreshold: pc.SimilarityThreshold,
			MaxResults:          pc.MaxResults,
			MinContentLength:    pc.MinContentLength,
			TokenBudget:         pc.TokenBudget,
			KeywordSimilarity:   pc.KeywordSimilarity,
			KeywordResultCap:    pc.KeywordResultCap,
			OverflowAllowance:   pc.OverflowAllowance,
		}
		p.ApplyDefaults()
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		profiles[name] = p
	}

	if _, ok := profiles[cfg.DefaultProfile]; !ok {
		return nil, fmt.Errorf("default profile %q is not defined", cfg.DefaultProfile)
	}

	return profiles, nil
}

func buildAliasGroups(groups []config.AliasGroupConfig) []retrievaluc.AliasGroup {
	out := make([]retrievaluc.AliasGroup, len(groups))
	for i, g := range groups {
		out[i] = retrievaluc.AliasGroup{Name: g.Name, Aliases: g.Aliases}
	}
	return out
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
