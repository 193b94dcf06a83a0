package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"libraryhub/database"
	"libraryhub/internal/authz"
	"libraryhub/internal/cache"
	"libraryhub/internal/config"
	"libraryhub/internal/http-api/handler"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"
	"libraryhub/internal/metrics"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	db, err := database.OpenGorm(cfg, logger)
	if err != nil {
		log.Fatalf("could not open database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db, logger); err != nil {
		log.Fatalf("could not migrate database: %v", err)
	}

	// redis is optional: without it every identity is loaded from the database
	identityCache, err := cache.NewIdentityCache(cfg.RedisURL, cfg.RedisPassword, cfg.CacheDuration())
	if err != nil {
		logger.Warn("identity_cache_disabled", "error", err)
		identityCache = cache.NewIdentityCacheWithClient(nil, cfg.CacheDuration())
	}
	defer identityCache.Close()

	authorizer := authz.NewAuthorizer(logger)
	authorizer.OnDecision(metrics.ObserveAuthzDecision)

	users := repository.NewUserRepository(db)
	services := handler.Services{
		Auth:       service.NewAuthService(users, repository.NewRefreshTokenRepository(db), cfg, logger),
		Identities: service.NewIdentityService(users, identityCache, logger),
		Books: service.NewBookService(
			repository.NewBookRepo(db),
			repository.NewLibraryRepository(db),
			authorizer,
			logger,
		),
		Authorizer: authorizer,
		Limiter:    middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
		Logger:     logger,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := handler.NewRouter(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("could not build router: %v", err)
	}

	r.GET("/check-conn", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
	})
	if cfg.PrometheusEnabled {
		r.GET("/metrics", metrics.Handler())
	}

	handler.RegisterRoutes(r, services)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown_failed", "error", err)
		return
	}
	logger.Info("server_stopped_gracefully")
}
