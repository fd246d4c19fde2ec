package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecompass/backend/internal/config"
	"carecompass/backend/internal/db"
	"carecompass/backend/internal/logging"
	"carecompass/backend/internal/server"
)

// @title CareCompass API
// @version 1.0
// @description Symptom, photo and lab-report analysis relay.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.AppName)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	if !strings.EqualFold(cfg.AppEnv, "local") {
		gin.SetMode(gin.ReleaseMode)
	}
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		logger.Warn("external credentials missing; dependent routes will fail", zap.Strings("missing", missing))
	}

	ctx := context.Background()
	supervisor := db.NewSupervisor(db.SupervisorOptions{
		URL:        cfg.DatabaseURL,
		MaxRetries: cfg.DBConnectRetries,
		Backoff:    time.Duration(cfg.DBRetryBackoffMS) * time.Millisecond,
		Logger:     logger,
	})
	defer supervisor.Close()
	if err := supervisor.Connect(ctx); err != nil {
		logger.Error("database not available; account routes will fail", zap.Error(err))
	} else if err := supervisor.Do(ctx, db.ValidateSchema); err != nil {
		logger.Error("database schema mismatch", zap.Error(err))
	}

	var ai server.AIClient = server.NewOpenAIResponsesClient(cfg)
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" && strings.EqualFold(cfg.AppEnv, "local") {
		logger.Warn("OPENAI_API_KEY not set; using mock AI client")
		ai = server.MockAIClient{}
	}

	vision, err := server.NewGoogleVisionClient(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("vision client init failed", zap.Error(err))
	}
	storage := server.NewRESTStorageClient(cfg, logger)

	deps := server.Dependencies{
		AI:     ai,
		Places: server.NewGooglePlacesClient(cfg, logger),
		Vision: vision,
		Store:  storage,
		Auth:   storage,
		DB:     supervisor,
	}
	if cfg.RedisURL != "" && cfg.RateLimitPerMinute > 0 {
		limiter, err := server.NewRedisRateLimiter(cfg.RedisURL, cfg.RateLimitPerMinute)
		if err != nil {
			logger.Fatal("rate limiter init failed", zap.Error(err))
		}
		defer limiter.Close()
		deps.RateLimiter = limiter
	}

	app := server.New(cfg, logger, deps)
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("carecompass api listening", zap.String("addr", "http://localhost:"+cfg.AppPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}
