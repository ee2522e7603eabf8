package dto

import (
	"time"

	"github.com/google/uuid"
)

// StreakResponse represents a current/longest streak pair
type StreakResponse struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// CategoryProgressResponse represents one category's slice of the stats snapshot
type CategoryProgressResponse struct {
	Category     string         `json:"category"`
	Streak       StreakResponse `json:"streak"`
	RoutineCount int64          `json:"routine_count"`
	LastActivity *time.Time     `json:"last_activity,omitempty"`
}

// UserStatsResponse represents the full recomputed stats snapshot
type UserStatsResponse struct {
	UserID        uuid.UUID                  `json:"user_id"`
	HarmonyStreak StreakResponse             `json:"harmony_streak"`
	HarmonyScore  int                        `json:"harmony_score"`
	Categories    []CategoryProgressResponse `json:"categories"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// AvatarStatesResponse maps each category to its avatar state for today
type AvatarStatesResponse struct {
	UserID  uuid.UUID         `json:"user_id"`
	Date    string            `json:"date"`
	Avatars map[string]string `json:"avatars"`
}

// RecomputeRequest optionally names the category whose completion
// triggered the recompute, for the published event
type RecomputeRequest struct {
	Category string `json:"category,omitempty" validate:"omitempty,wellness_category"`
}

// RecomputeResponse acknowledges a recompute request
type RecomputeResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	RecomputedAt time.Time `json:"recomputed_at"`
}
