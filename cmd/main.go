package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/LucianoSainz/w5d1/docs"
	authMiddleware "github.com/LucianoSainz/w5d1/internal/auth/middleware"
	"github.com/LucianoSainz/w5d1/internal/auth/policy"
	"github.com/LucianoSainz/w5d1/internal/auth/service"
	"github.com/LucianoSainz/w5d1/internal/config"
	"github.com/LucianoSainz/w5d1/internal/database"
	"github.com/LucianoSainz/w5d1/internal/handlers"
	"github.com/LucianoSainz/w5d1/internal/logger"
	loggerMiddleware "github.com/LucianoSainz/w5d1/internal/logger/middleware"
	"github.com/LucianoSainz/w5d1/internal/metrics"
	sharedMiddleware "github.com/LucianoSainz/w5d1/internal/middleware"
	"github.com/LucianoSainz/w5d1/internal/services"
	"github.com/LucianoSainz/w5d1/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/sessions"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	loginPath = "/login"
	homePath  = "/"
)

// @title Passport local authentication API
// @version 1.0
// @description Username and password authentication with server side sessions and role gated pages

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	zapLogger, err := logger.New(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting auth service", zap.String("dbDriver", cfg.Database.Driver), zap.String("sessionBackend", cfg.Session.Backend))

	// Connect to database
	store, err := database.Open(context.Background(), cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	// Run migrations
	if err := store.Migrate(); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to redis when sessions live there
	var redisClient *redis.Client
	if cfg.Session.Backend == config.SessionBackendRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			zapLogger.Fatal("Failed to connect to redis", zap.String("addr", cfg.RedisAddr()), zap.Error(err))
		}
	}

	// Initialize auth core
	hasher, err := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		zapLogger.Fatal("Failed to initialize password hasher", zap.Error(err))
	}
	authService := services.NewAuthService(store.Users, hasher, zapLogger)
	identityCodec := service.NewIdentityCodec(store.Users)
	guard := service.NewGuard(loginPath, homePath)

	policies, err := policy.Parse(cfg.Auth.RoutePolicies)
	if err != nil {
		zapLogger.Fatal("Failed to parse route policies", zap.Error(err))
	}

	// Initialize sessions
	sessionStore, err := newSessionStore(cfg, redisClient)
	if err != nil {
		zapLogger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	sessionManager := session.NewManager(sessionStore, cfg.Session.Name, zapLogger)

	// Initialize handlers
	templates, err := handlers.ParseTemplates()
	if err != nil {
		zapLogger.Fatal("Failed to parse templates", zap.Error(err))
	}
	appMetrics := metrics.New()

	authHandler := handlers.NewAuthHandler(authService, sessionManager, identityCodec, appMetrics, templates, cfg.Auth.UnifiedFailureMessage, zapLogger)
	pagesHandler := handlers.NewPagesHandler(templates, zapLogger)
	healthHandler := handlers.NewHealthHandler(store.Users, zapLogger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(zapLogger))
	r.Use(sharedMiddleware.RecoveryMiddleware(zapLogger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(1 * 1024 * 1024)) // 1MB
	r.Use(appMetrics.Middleware)

	// Operational endpoints stay outside the session layer
	r.Handle("/metrics", appMetrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))
	healthHandler.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.IdentityMiddleware(sessionManager, identityCodec, zapLogger))
		r.Use(authMiddleware.PolicyMiddleware(policies, guard, sessionManager, zapLogger))

		authHandler.RegisterRoutes(r)
		pagesHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

// newSessionStore builds the session store, passing the redis client only when one was created.
// A nil *redis.Client must not reach the store as a non-nil interface.
func newSessionStore(cfg *config.Config, client *redis.Client) (sessions.Store, error) {
	if client == nil {
		return session.NewStore(cfg.Session, nil)
	}
	return session.NewStore(cfg.Session, client)
}
