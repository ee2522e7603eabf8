package progress

import (
	"time"

	"github.com/google/uuid"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
)

// UserStats is the single derived snapshot row per user. Every field is
// recomputed from source data on each engine run and the whole row is
// overwritten at once; nothing in it is ever incremented in place.
// CurrentStreak and LongestStreak track harmony days, the days on which
// all three dimensions were completed.
type UserStats struct {
	UserID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	CurrentStreak     int        `gorm:"default:0;not null"`
	LongestStreak     int        `gorm:"default:0;not null"`
	MindCurrentStreak int        `gorm:"default:0;not null"`
	MindLongestStreak int        `gorm:"default:0;not null"`
	BodyCurrentStreak int        `gorm:"default:0;not null"`
	BodyLongestStreak int        `gorm:"default:0;not null"`
	SoulCurrentStreak int        `gorm:"default:0;not null"`
	SoulLongestStreak int        `gorm:"default:0;not null"`
	MindRoutineCount  int64      `gorm:"default:0;not null"`
	BodyRoutineCount  int64      `gorm:"default:0;not null"`
	SoulRoutineCount  int64      `gorm:"default:0;not null"`
	MindLastActivity  *time.Time `gorm:"default:null"`
	BodyLastActivity  *time.Time `gorm:"default:null"`
	SoulLastActivity  *time.Time `gorm:"default:null"`
	HarmonyScore      int        `gorm:"default:0;not null"`
	UpdatedAt         time.Time  `gorm:"not null;default:current_timestamp;autoUpdateTime"`
}

// TableName specifies the table name for the UserStats model
func (UserStats) TableName() string {
	return "user_stats"
}

// StreakFor returns the streak pair for one category.
func (s *UserStats) StreakFor(category wellness.Category) Streak {
	switch category {
	case wellness.CategoryMind:
		return Streak{Current: s.MindCurrentStreak, Longest: s.MindLongestStreak}
	case wellness.CategoryBody:
		return Streak{Current: s.BodyCurrentStreak, Longest: s.BodyLongestStreak}
	case wellness.CategorySoul:
		return Streak{Current: s.SoulCurrentStreak, Longest: s.SoulLongestStreak}
	}
	return Streak{}
}

// RoutineCountFor returns the unique routine count for one category.
func (s *UserStats) RoutineCountFor(category wellness.Category) int64 {
	switch category {
	case wellness.CategoryMind:
		return s.MindRoutineCount
	case wellness.CategoryBody:
		return s.BodyRoutineCount
	case wellness.CategorySoul:
		return s.SoulRoutineCount
	}
	return 0
}

// LastActivityFor returns the most recent completion time for one
// category, nil when the user never completed anything in it.
func (s *UserStats) LastActivityFor(category wellness.Category) *time.Time {
	switch category {
	case wellness.CategoryMind:
		return s.MindLastActivity
	case wellness.CategoryBody:
		return s.BodyLastActivity
	case wellness.CategorySoul:
		return s.SoulLastActivity
	}
	return nil
}

func (s *UserStats) setStreak(category wellness.Category, streak Streak) {
	switch category {
	case wellness.CategoryMind:
		s.MindCurrentStreak, s.MindLongestStreak = streak.Current, streak.Longest
	case wellness.CategoryBody:
		s.BodyCurrentStreak, s.BodyLongestStreak = streak.Current, streak.Longest
	case wellness.CategorySoul:
		s.SoulCurrentStreak, s.SoulLongestStreak = streak.Current, streak.Longest
	}
}

func (s *UserStats) setRoutineCount(category wellness.Category, count int64) {
	switch category {
	case wellness.CategoryMind:
		s.MindRoutineCount = count
	case wellness.CategoryBody:
		s.BodyRoutineCount = count
	case wellness.CategorySoul:
		s.SoulRoutineCount = count
	}
}

func (s *UserStats) setLastActivity(category wellness.Category, at *time.Time) {
	switch category {
	case wellness.CategoryMind:
		s.MindLastActivity = at
	case wellness.CategoryBody:
		s.BodyLastActivity = at
	case wellness.CategorySoul:
		s.SoulLastActivity = at
	}
}
