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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/handlers"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/middleware"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/routes"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/milestones"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/progress"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/infrastructure/cache"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/infrastructure/persistence/postgres/connection"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/infrastructure/persistence/postgres/migrations"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/pkg/config"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/pkg/logger"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// @title           Soteria Progress API
// @version         1.0
// @description     Progress metrics for the Soteria wellness platform: streaks, harmony score, avatar states and milestones derived from the completion log.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @host      localhost:8000
// @BasePath

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := ""
		if traceCtx := middleware.GetTraceContext(c); traceCtx != nil {
			requestID = traceCtx.RequestID
		}

		log.Info("Request started",
			zap.String("request_id", requestID),
			zap.String("path", path),
			zap.String("method", method),
			zap.String("client_ip", c.ClientIP()),
		)

		c.Next()

		log.Info("Request completed",
			zap.String("request_id", requestID),
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("") // Empty string will make it search in default locations
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	log := logger.NewLogger(cfg.Logging.Level)
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	// Log progress engine configuration
	log.Info("Progress engine configuration",
		zap.Int("lookback_days", cfg.Progress.LookbackDays),
		zap.Int("harmony_window_days", cfg.Progress.HarmonyWindowDays),
		zap.Int("min_balanced_streak", cfg.Progress.MinBalancedStreak))

	// Set up Gin
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Request validation happens in the validation middleware, not in bind
	gin.DisableBindValidation()
	gin.DefaultWriter = os.Stdout

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	tracing := middleware.NewTracingMiddleware()
	router.Use(tracing.TraceRequest())
	router.Use(RequestLoggerMiddleware(log))
	metrics := middleware.NewMetricsMiddleware()
	router.Use(metrics.CollectMetrics())
	// Configure gin to use proper content type for JSON
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    cfg.CORS.AllowedMethods,
		AllowHeaders: append(cfg.CORS.AllowedHeaders,
			"Accept-Encoding",
			"Content-Encoding",
			"Content-Type",
			middleware.RequestIDHeader,
			middleware.TraceIDHeader,
			"X-Forwarded-For",
			"X-Real-IP",
		),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Encoding",
			"Content-Type",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			middleware.RequestIDHeader,
			middleware.TraceIDHeader,
			"Vary",
		},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	// Add Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Connect to database
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize logrus logger for the milestone service
	milestoneLogger := logrus.New()
	milestoneLogger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Server.Mode == "production" {
		milestoneLogger.SetLevel(logrus.InfoLevel)
	} else {
		milestoneLogger.SetLevel(logrus.DebugLevel)
	}

	// Initialize repositories
	wellnessRepo := wellness.NewRepository(db)
	progressRepo := progress.NewRepository(db)
	milestonesRepo := milestones.NewRepository(db)

	// Initialize Redis
	redisConfig := cache.NewConfigFromEnv(cfg)
	redisClient, err := cache.NewRedisClient(redisConfig)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize rate limiter with Redis client
	rateLimiter := ratelimit.NewRedisLimiter(redisClient.GetClient(), 1*time.Minute, 1000)

	// Initialize services
	milestonesService := milestones.NewService(milestonesRepo, milestoneLogger)
	progressService := progress.NewService(wellnessRepo, progressRepo, milestonesService, redisClient, log.Logger, cfg.Progress)

	// Initialize handlers
	progressHandler := handlers.NewProgressHandler(progressService)
	milestonesHandler := handlers.NewMilestonesHandler(milestonesService, progressService)

	// Debug: Print all registered routes
	log.Info("Registering routes...")

	// Health check routes (no /api prefix as these are system endpoints)
	routes.SetupHealthRoutes(router, db, redisClient)
	log.Info("Registered health check routes at /health, /health/ready and /health/cache")

	// Apply rate limiting middleware globally
	router.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Progress routes
	progressRoutes := routes.NewProgressRoutes(progressHandler)
	progressRoutes.RegisterRoutes(router)
	log.Info("Registered progress routes at /api/progress")

	// Milestone routes
	milestonesRoutes := routes.NewMilestonesRoutes(milestonesHandler)
	milestonesRoutes.RegisterRoutes(router)
	log.Info("Registered milestone routes at /api/progress/:user_id/milestones")

	// Print all registered routes for debugging
	for _, route := range router.Routes() {
		log.Info("Route registered",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

	// Start server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))

		err := server.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}
