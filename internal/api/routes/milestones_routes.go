package routes

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/handlers"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/middleware"
)

type MilestonesRoutes struct {
	handler *handlers.MilestonesHandler
}

func NewMilestonesRoutes(handler *handlers.MilestonesHandler) *MilestonesRoutes {
	return &MilestonesRoutes{handler: handler}
}

// RegisterRoutes registers all milestone-related routes
func (r *MilestonesRoutes) RegisterRoutes(router *gin.Engine) {
	circuitBreaker := middleware.NewCircuitBreaker(middleware.DefaultCircuitBreakerConfig())

	milestones := router.Group("/api/progress")
	milestones.Use(circuitBreaker.CircuitBreakerMiddleware())

	// Full catalog with per-user achievement status
	milestones.GET("/:user_id/milestones", gzip.Gzip(gzip.DefaultCompression), r.handler.GetMilestones)

	// Celebration queue, oldest first
	milestones.GET("/:user_id/milestones/uncelebrated", r.handler.GetUncelebrated)

	milestones.POST("/:user_id/milestones/:milestone_id/celebrate", r.handler.MarkCelebrated)
	milestones.POST("/:user_id/milestones/:milestone_id/share", r.handler.MarkShared)
}
