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

	"github.com/DominicD213/shoprank/internal/config"
	"github.com/DominicD213/shoprank/internal/db"
	dbRedis "github.com/DominicD213/shoprank/internal/db/redis"
	"github.com/DominicD213/shoprank/internal/domain"
	hashEmb "github.com/DominicD213/shoprank/internal/embedder/hash"
	logpkg "github.com/DominicD213/shoprank/internal/logger"
	"github.com/DominicD213/shoprank/internal/metrics"
	activityrepo "github.com/DominicD213/shoprank/internal/repository/activity"
	catalogrepo "github.com/DominicD213/shoprank/internal/repository/catalog"
	"github.com/DominicD213/shoprank/internal/repository/embcache"
	embeddingrepo "github.com/DominicD213/shoprank/internal/repository/embedding"
	chiTransport "github.com/DominicD213/shoprank/internal/transport/chi"
	openaiEmb "github.com/DominicD213/shoprank/internal/transport/openai"
	"github.com/DominicD213/shoprank/internal/usecase/health"
	"github.com/DominicD213/shoprank/internal/usecase/recommend"
	"github.com/DominicD213/shoprank/internal/usecase/scoring"
	searchuc "github.com/DominicD213/shoprank/internal/usecase/search"
	"github.com/DominicD213/shoprank/internal/usecase/validate"
	"github.com/DominicD213/shoprank/internal/version"
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

	logger.Info("Starting shoprank API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
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

	// Register metrics explicitly (no init())
	metrics.RegisterCoreMetrics()

	embedder := buildEmbedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Repositories (domain-native, no adapters)
	catalogRepo := catalogrepo.New(store)
	embeddingRepo := embeddingrepo.New(store)
	activityRepo := activityrepo.New(store)

	// Speller dictionary: base vocabulary plus catalog titles, so product
	// names survive correction.
	var corpus []string
	if items, err := catalogRepo.All(ctx); err != nil {
		logger.Warn("Failed to load catalog for speller training", zap.Error(err))
	} else {
		corpus = make([]string, 0, len(items))
		for i := range items {
			corpus = append(corpus, items[i].Title())
		}
	}
	speller := validate.NewFuzzySpeller(corpus...)

	// Use case services
	validateSvc := validate.New(catalogRepo, speller)
	scoringSvc := scoring.New(asDimEmbedder(embedder, logger))
	searchSvc := searchuc.New(validateSvc, catalogRepo, embeddingRepo, scoringSvc)
	recommendSvc := recommend.New(embeddingRepo, catalogRepo, activityRepo, recommend.Config{
		WindowDays:        cfg.Recommend.WindowDays,
		MinUserSimilarity: cfg.Recommend.MinUserSimilarity,
		MaxSimilarUsers:   cfg.Recommend.MaxSimilarUsers,
	})

	healthSvc := health.New(store, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(
		searchSvc, recommendSvc, validateSvc, catalogRepo, activityRepo, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

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

// buildEmbedder assembles the embedder: provider base, then query cache.
func buildEmbedder(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) domain.Embedder {
	var base domain.Embedder
	switch cfg.Provider {
	case "openai":
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
	default:
		h, err := hashEmb.New(cfg.Dimensions)
		if err != nil {
			logger.Fatal("Failed to create hash embedder", zap.Error(err))
		}
		base = h
	}

	if cfg.CacheQuery && store != nil {
		return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}
	return base
}

// asDimEmbedder narrows the embedder chain to the dimension-aware contract
// the scorer needs. Both providers and the cache decorator implement it.
func asDimEmbedder(e domain.Embedder, logger *zap.Logger) domain.DimEmbedder {
	de, ok := e.(domain.DimEmbedder)
	if !ok {
		logger.Fatal("Embedder does not support explicit dimensions")
	}
	return de
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
