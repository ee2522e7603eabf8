package dto

import (
	"time"

	"github.com/google/uuid"
)

// MilestoneDefinitionResponse represents one catalog entry
type MilestoneDefinitionResponse struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category,omitempty"`
	Metric        string    `json:"metric"`
	Threshold     int64     `json:"threshold"`
	ThresholdType string    `json:"threshold_type"`
	Rarity        string    `json:"rarity"`
}

// MilestoneStatusResponse pairs a catalog entry with the user's standing
type MilestoneStatusResponse struct {
	Definition       MilestoneDefinitionResponse `json:"definition"`
	Achieved         bool                        `json:"achieved"`
	AchievedAt       *time.Time                  `json:"achieved_at,omitempty"`
	CurrentValue     int64                       `json:"current_value"`
	ShownCelebration bool                        `json:"shown_celebration"`
	SharedToActivity bool                        `json:"shared_to_activity"`
}

// MilestoneListResponse represents the response for listing milestones
type MilestoneListResponse struct {
	Milestones    []MilestoneStatusResponse `json:"milestones"`
	TotalCount    int                       `json:"total_count"`
	AchievedCount int                       `json:"achieved_count"`
}

// UncelebratedMilestoneResponse represents one pending celebration
type UncelebratedMilestoneResponse struct {
	MilestoneID   uuid.UUID `json:"milestone_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Rarity        string    `json:"rarity"`
	AchievedAt    time.Time `json:"achieved_at"`
	ProgressValue int64     `json:"progress_value"`
}
