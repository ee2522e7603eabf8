package milestones

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThresholdType describes how a definition's threshold is compared.
type ThresholdType string

const (
	ThresholdCount      ThresholdType = "count"
	ThresholdDays       ThresholdType = "days"
	ThresholdPercentage ThresholdType = "percentage"
	ThresholdBoolean    ThresholdType = "boolean"
)

// Rarity tiers, used by clients for celebration styling only.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Scope values a definition's Category column may carry. The empty
// scope means the rule reads an overall metric, harmony reads the
// combined all-three streak and score.
const (
	ScopeMind    = "mind"
	ScopeBody    = "body"
	ScopeSoul    = "soul"
	ScopeHarmony = "harmony"
	ScopeOverall = ""
)

// Metric keys a definition may reference. Anything else makes the rule
// unresolvable and the rule is skipped.
const (
	MetricTotalCompletions = "total_completions"
	MetricUniqueRoutines   = "unique_routines"
	MetricCurrentStreak    = "current_streak"
	MetricLongestStreak    = "longest_streak"
	MetricHarmonyScore     = "harmony_score"
	MetricPerfectDays      = "perfect_days"
	MetricActiveDays       = "active_days"
	MetricMilestonesShared = "milestones_shared"
)

// MilestoneDefinition is one row of the static achievement catalog.
// The engine treats the catalog as read-only; migrations seed it.
type MilestoneDefinition struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Code          string        `gorm:"size:64;not null;uniqueIndex"`
	Name          string        `gorm:"size:255;not null"`
	Description   string        `gorm:"type:text"`
	Category      string        `gorm:"size:16;not null;default:''"`
	Metric        string        `gorm:"size:64;not null"`
	Threshold     int64         `gorm:"not null"`
	ThresholdType ThresholdType `gorm:"size:16;not null"`
	Rarity        Rarity        `gorm:"size:16;not null;default:'common'"`
	SortOrder     int           `gorm:"default:0;not null"`
	CreatedAt     time.Time     `gorm:"not null;default:current_timestamp"`
}

// TableName specifies the table name for the MilestoneDefinition model
func (MilestoneDefinition) TableName() string {
	return "milestone_definitions"
}

// UserMilestone records one achieved milestone. The composite unique
// index carries the exactly-once guarantee under concurrent checks.
type UserMilestone struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index:idx_user_milestone,unique,priority:1"`
	MilestoneID      uuid.UUID `gorm:"type:uuid;not null;index:idx_user_milestone,unique,priority:2"`
	AchievedAt       time.Time `gorm:"not null"`
	ProgressValue    int64     `gorm:"default:0;not null"`
	ShownCelebration bool      `gorm:"default:false;not null"`
	SharedToActivity bool      `gorm:"default:false;not null"`
}

// TableName specifies the table name for the UserMilestone model
func (UserMilestone) TableName() string {
	return "user_milestones"
}

// BeforeCreate is called before inserting a user milestone
func (m *UserMilestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MilestoneProgress tracks how far a user is from a not-yet-achieved
// milestone, for progress bars. One row per user and definition.
type MilestoneProgress struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_milestone_progress,unique,priority:1"`
	MilestoneID  uuid.UUID `gorm:"type:uuid;not null;index:idx_milestone_progress,unique,priority:2"`
	CurrentValue int64     `gorm:"default:0;not null"`
	LastUpdated  time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName specifies the table name for the MilestoneProgress model
func (MilestoneProgress) TableName() string {
	return "milestone_progress"
}

// BeforeCreate is called before inserting a milestone progress row
func (p *MilestoneProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// MilestoneStatus pairs a catalog definition with one user's standing
// against it for list endpoints.
type MilestoneStatus struct {
	Definition MilestoneDefinition
	Achieved   *UserMilestone
	Progress   *MilestoneProgress
}
