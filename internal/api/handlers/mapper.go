package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/api/dto"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/milestones"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/progress"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
)

// Progress
func StatsToResponse(s *progress.UserStats) *dto.UserStatsResponse {
	if s == nil {
		return nil
	}
	categories := make([]dto.CategoryProgressResponse, 0, len(wellness.Categories()))
	for _, c := range wellness.Categories() {
		streak := s.StreakFor(c)
		categories = append(categories, dto.CategoryProgressResponse{
			Category:     c.String(),
			Streak:       dto.StreakResponse{Current: streak.Current, Longest: streak.Longest},
			RoutineCount: s.RoutineCountFor(c),
			LastActivity: s.LastActivityFor(c),
		})
	}
	return &dto.UserStatsResponse{
		UserID:        s.UserID,
		HarmonyStreak: dto.StreakResponse{Current: s.CurrentStreak, Longest: s.LongestStreak},
		HarmonyScore:  s.HarmonyScore,
		Categories:    categories,
		UpdatedAt:     s.UpdatedAt,
	}
}

func AvatarStatesToResponse(userID uuid.UUID, states map[wellness.Category]progress.AvatarState) *dto.AvatarStatesResponse {
	avatars := make(map[string]string, len(states))
	for category, state := range states {
		avatars[category.String()] = string(state)
	}
	return &dto.AvatarStatesResponse{
		UserID:  userID,
		Date:    wellness.DayOf(time.Now()).Format("2006-01-02"),
		Avatars: avatars,
	}
}

// Milestones
func MilestoneDefinitionToResponse(def *milestones.MilestoneDefinition) *dto.MilestoneDefinitionResponse {
	if def == nil {
		return nil
	}
	return &dto.MilestoneDefinitionResponse{
		ID:            def.ID,
		Code:          def.Code,
		Name:          def.Name,
		Description:   def.Description,
		Category:      def.Category,
		Metric:        def.Metric,
		Threshold:     def.Threshold,
		ThresholdType: string(def.ThresholdType),
		Rarity:        string(def.Rarity),
	}
}

func MilestoneStatusToResponse(status *milestones.MilestoneStatus) *dto.MilestoneStatusResponse {
	if status == nil {
		return nil
	}
	resp := &dto.MilestoneStatusResponse{
		Definition: *MilestoneDefinitionToResponse(&status.Definition),
	}
	if status.Achieved != nil {
		resp.Achieved = true
		achievedAt := status.Achieved.AchievedAt
		resp.AchievedAt = &achievedAt
		resp.CurrentValue = status.Achieved.ProgressValue
		resp.ShownCelebration = status.Achieved.ShownCelebration
		resp.SharedToActivity = status.Achieved.SharedToActivity
	} else if status.Progress != nil {
		resp.CurrentValue = status.Progress.CurrentValue
	}
	return resp
}

func UncelebratedToResponse(status *milestones.MilestoneStatus) *dto.UncelebratedMilestoneResponse {
	if status == nil || status.Achieved == nil {
		return nil
	}
	return &dto.UncelebratedMilestoneResponse{
		MilestoneID:   status.Definition.ID,
		Code:          status.Definition.Code,
		Name:          status.Definition.Name,
		Description:   status.Definition.Description,
		Rarity:        string(status.Definition.Rarity),
		AchievedAt:    status.Achieved.AchievedAt,
		ProgressValue: status.Achieved.ProgressValue,
	}
}
