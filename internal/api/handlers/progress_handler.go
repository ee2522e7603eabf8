package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/dto"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/progress"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
)

var log = logrus.New()

// recomputeDuration tracks full engine runs, labelled by the endpoint
// that triggered them.
var recomputeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "progress_recompute_duration_seconds",
		Help:    "Duration of full progress recomputes in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "outcome"},
)

// ProgressHandler handles HTTP requests for progress operations
type ProgressHandler struct {
	service progress.Service
}

// NewProgressHandler creates a new ProgressHandler instance
func NewProgressHandler(service progress.Service) *ProgressHandler {
	return &ProgressHandler{service: service}
}

func observeRecompute(endpoint string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	recomputeDuration.WithLabelValues(endpoint, outcome).Observe(time.Since(start).Seconds())
}

// Recompute godoc
// @Summary Recompute a user's progress
// @Description Rebuild the user's stats snapshot from the completion log and evaluate milestones
// @Tags progress
// @Accept json
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Param trigger body dto.RecomputeRequest false "Triggering category"
// @Success 202 {object} dto.RecomputeResponse "Recompute completed"
// @Failure 400 {object} map[string]string "Invalid user ID or category"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/progress/{user_id}/recompute [post]
func (h *ProgressHandler) Recompute(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	// Get validated model from context (set by validation middleware)
	var req dto.RecomputeRequest
	validatedModel, exists := c.Get("validated_model")

	if exists {
		if validatedPtr, ok := validatedModel.(*dto.RecomputeRequest); ok {
			req = *validatedPtr
		} else {
			log.Errorf("Invalid model type: %T, expected *dto.RecomputeRequest", validatedModel)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model type from validation"})
			return
		}
	} else if c.Request.ContentLength > 0 {
		// If validation middleware didn't run, do manual binding
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var trigger wellness.Category
	if req.Category != "" {
		trigger, err = wellness.ParseCategory(req.Category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	start := time.Now()
	stats, err := h.service.Recompute(c.Request.Context(), userID, trigger)
	observeRecompute("recompute", start, err)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err == progress.ErrInvalidUserID {
			statusCode = http.StatusBadRequest
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": dto.RecomputeResponse{
		UserID:       userID,
		RecomputedAt: stats.UpdatedAt,
	}})
}

// GetStats godoc
// @Summary Get a user's stats snapshot
// @Description Recompute and return the user's full progress snapshot
// @Tags progress
// @Accept json
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Success 200 {object} dto.UserStatsResponse "Stats retrieved successfully"
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/progress/{user_id}/stats [get]
func (h *ProgressHandler) GetStats(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	start := time.Now()
	stats, err := h.service.GetStats(c.Request.Context(), userID)
	observeRecompute("stats", start, err)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err == progress.ErrInvalidUserID {
			statusCode = http.StatusBadRequest
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	// Explicitly set content type
	c.Header("Content-Type", "application/json; charset=utf-8")

	c.JSON(http.StatusOK, gin.H{"data": StatsToResponse(stats)})
}

// GetAvatarStates godoc
// @Summary Get avatar states
// @Description Derive the avatar state for each category from today's and yesterday's progress
// @Tags progress
// @Accept json
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Param executing query []string false "Categories with a routine currently running" collectionFormat(multi)
// @Success 200 {object} dto.AvatarStatesResponse "Avatar states retrieved successfully"
// @Failure 400 {object} map[string]string "Invalid user ID or category"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/progress/{user_id}/avatars [get]
func (h *ProgressHandler) GetAvatarStates(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	executing := make(map[wellness.Category]bool)
	for _, raw := range c.QueryArray("executing") {
		category, err := wellness.ParseCategory(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		executing[category] = true
	}

	start := time.Now()
	states, err := h.service.GetAvatarStates(c.Request.Context(), userID, executing)
	observeRecompute("avatars", start, err)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err == progress.ErrInvalidUserID {
			statusCode = http.StatusBadRequest
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": AvatarStatesToResponse(userID, states)})
}

// Purge godoc
// @Summary Purge a user's progress data
// @Description Hard-delete all progress data for a user, resetting them to a zero baseline
// @Tags progress
// @Accept json
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Success 204 "Progress data purged"
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/progress/{user_id} [delete]
func (h *ProgressHandler) Purge(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	if err := h.service.Purge(c.Request.Context(), userID); err != nil {
		statusCode := http.StatusInternalServerError
		if err == progress.ErrInvalidUserID {
			statusCode = http.StatusBadRequest
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
