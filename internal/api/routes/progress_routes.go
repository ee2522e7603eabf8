package routes

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/dto"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/handlers"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/middleware"
)

type ProgressRoutes struct {
	handler *handlers.ProgressHandler
}

func NewProgressRoutes(handler *handlers.ProgressHandler) *ProgressRoutes {
	return &ProgressRoutes{handler: handler}
}

// RegisterRoutes registers all progress-related routes
func (r *ProgressRoutes) RegisterRoutes(router *gin.Engine) {
	// Initialize middleware components
	validation := middleware.NewValidationMiddleware()
	circuitBreaker := middleware.NewCircuitBreaker(middleware.DefaultCircuitBreakerConfig())

	progress := router.Group("/api/progress")

	// Apply circuit breaker to the entire progress group - every endpoint
	// triggers a full recompute against storage
	progress.Use(circuitBreaker.CircuitBreakerMiddleware())

	// The recompute hook the completion-logging service calls after each write
	progress.POST("/:user_id/recompute", validation.ValidateRequest(&dto.RecomputeRequest{}), r.handler.Recompute)

	// Read endpoints - stats payloads compress well
	progress.GET("/:user_id/stats", gzip.Gzip(gzip.DefaultCompression), r.handler.GetStats)
	progress.GET("/:user_id/avatars", r.handler.GetAvatarStates)

	// Hard reset
	progress.DELETE("/:user_id", r.handler.Purge)
}
