package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/dto"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/milestones"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/progress"
)

// MilestonesHandler handles HTTP requests for milestone operations
type MilestonesHandler struct {
	service  milestones.Service
	progress progress.Service
}

// NewMilestonesHandler creates a new MilestonesHandler instance
func NewMilestonesHandler(service milestones.Service, progressService progress.Service) *MilestonesHandler {
	return &MilestonesHandler{
		service:  service,
		progress: progressService,
	}
}

// GetMilestones godoc
// @Summary List milestones for a user
// @Description Get the full milestone catalog with the user's achieved and in-progress standing
// @Tags milestones
// @Accept json
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Success 200 {object} dto.MilestoneListResponse "Milestones retrieved successfully"
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/progress/{user_id}/milestones [get]
func (h *MilestonesHandler) GetMilestones(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	// Refresh the snapshot first so progress values match the log
	if _, err := h.progress.Run(c.Request.Context(), userID); err != nil {
		statusCode := http.StatusInternalServerError
		if err == progress.ErrInvalidUserID {
			statusCode = http.StatusBadRequest
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	statuses, err := h.service.GetMilestones(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]dto.MilestoneStatusResponse, len(statuses))
	achievedCount := 0
	for i := range statuses {
		responses[i] = *MilestoneStatusToResponse(&statuses[i])
		if responses[i].Achieved {
			achievedCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.MilestoneListResponse{
		Milestones:    responses,
		TotalCount:    len(responses),
		AchievedCount: achievedCount,
	}})
}

// GetUncelebrated godoc
// @Summary List uncelebrated milestones
// @Description Get achieved milestones not yet shown to the user, oldest first
// @Tags milestones
// @Accept json
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Success 200 {array} dto.UncelebratedMilestoneResponse "Pending celebrations retrieved successfully"
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/progress/{user_id}/milestones/uncelebrated [get]
func (h *MilestonesHandler) GetUncelebrated(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	statuses, err := h.service.GetUncelebrated(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]dto.UncelebratedMilestoneResponse, 0, len(statuses))
	for i := range statuses {
		if resp := UncelebratedToResponse(&statuses[i]); resp != nil {
			responses = append(responses, *resp)
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": responses})
}

// MarkCelebrated godoc
// @Summary Mark a milestone celebration as shown
// @Description Flip the shown_celebration flag; repeated calls succeed
// @Tags milestones
// @Accept json
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Param milestone_id path string true "Milestone ID" format(uuid)
// @Success 200 {object} map[string]string "Celebration acknowledged"
// @Failure 400 {object} map[string]string "Invalid user or milestone ID"
// @Failure 404 {object} map[string]string "Milestone not found or not awarded"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/progress/{user_id}/milestones/{milestone_id}/celebrate [post]
func (h *MilestonesHandler) MarkCelebrated(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	milestoneID, err := uuid.Parse(c.Param("milestone_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone ID"})
		return
	}

	if err := h.service.MarkCelebrated(c.Request.Context(), userID, milestoneID); err != nil {
		statusCode := http.StatusInternalServerError
		if err == milestones.ErrMilestoneNotFound || err == milestones.ErrNotAwarded {
			statusCode = http.StatusNotFound
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "milestone celebration acknowledged"})
}

// MarkShared godoc
// @Summary Share a milestone to the activity feed
// @Description Flip the shared_to_activity flag and re-evaluate share-driven milestones
// @Tags milestones
// @Accept json
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Param milestone_id path string true "Milestone ID" format(uuid)
// @Success 200 {object} map[string]string "Milestone shared"
// @Failure 400 {object} map[string]string "Invalid user or milestone ID"
// @Failure 404 {object} map[string]string "Milestone not found or not awarded"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/progress/{user_id}/milestones/{milestone_id}/share [post]
func (h *MilestonesHandler) MarkShared(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	milestoneID, err := uuid.Parse(c.Param("milestone_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone ID"})
		return
	}

	if err := h.service.MarkShared(c.Request.Context(), userID, milestoneID); err != nil {
		statusCode := http.StatusInternalServerError
		if err == milestones.ErrMilestoneNotFound || err == milestones.ErrNotAwarded {
			statusCode = http.StatusNotFound
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	// The share changed the milestones_shared metric, so share-driven
	// milestones can award without waiting for the next completion
	go func() {
		if _, err := h.progress.Run(context.Background(), userID); err != nil {
			log.Errorf("Recompute after milestone share failed: %v", err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"message": "milestone shared"})
}
