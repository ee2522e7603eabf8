package wellness

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidCategory = errors.New("invalid wellness category")

// Category is the closed set of wellness dimensions. Values outside
// Mind, Body and Soul are rejected at the boundary, never stored.
type Category string

const (
	CategoryMind Category = "mind"
	CategoryBody Category = "body"
	CategorySoul Category = "soul"
)

// Categories returns the three dimensions in canonical order.
func Categories() []Category {
	return []Category{CategoryMind, CategoryBody, CategorySoul}
}

// ParseCategory maps external input onto the closed category set.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryMind:
		return CategoryMind, nil
	case CategoryBody:
		return CategoryBody, nil
	case CategorySoul:
		return CategorySoul, nil
	}
	return "", ErrInvalidCategory
}

func (c Category) String() string {
	return string(c)
}

// DayOf truncates a timestamp to its UTC calendar day. Every
// day-boundary decision in the engine goes through this one function.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// CompletionEvent is one routine completion recorded by the logging
// service. This engine only ever reads the table; rows are removed
// solely through a user hard reset.
type CompletionEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_completion_user_time,priority:1"`
	Category    Category  `gorm:"type:varchar(16);not null"`
	RoutineID   uuid.UUID `gorm:"type:uuid;not null"`
	CompletedAt time.Time `gorm:"not null;index:idx_completion_user_time,priority:2"`
	CreatedAt   time.Time `gorm:"not null;default:current_timestamp"`
}

// TableName specifies the table name for the CompletionEvent model
func (CompletionEvent) TableName() string {
	return "completion_events"
}

// DailyProgressRecord collapses a user's events for one UTC day into
// three completion flags. One row per user per day.
type DailyProgressRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_daily_progress_user_day,unique,priority:1"`
	Day          datatypes.Date `gorm:"not null;index:idx_daily_progress_user_day,unique,priority:2"`
	MindComplete bool           `gorm:"default:false;not null"`
	BodyComplete bool           `gorm:"default:false;not null"`
	SoulComplete bool           `gorm:"default:false;not null"`
	CreatedAt    time.Time      `gorm:"not null;default:current_timestamp"`
	UpdatedAt    time.Time      `gorm:"not null;default:current_timestamp;autoUpdateTime"`
}

// TableName specifies the table name for the DailyProgressRecord model
func (DailyProgressRecord) TableName() string {
	return "daily_progress_records"
}

// BeforeCreate is called before inserting a daily progress record
func (d *DailyProgressRecord) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Complete reports whether the given category was finished that day.
func (d *DailyProgressRecord) Complete(category Category) bool {
	switch category {
	case CategoryMind:
		return d.MindComplete
	case CategoryBody:
		return d.BodyComplete
	case CategorySoul:
		return d.SoulComplete
	}
	return false
}

// AllComplete reports whether all three dimensions were finished.
func (d *DailyProgressRecord) AllComplete() bool {
	return d.MindComplete && d.BodyComplete && d.SoulComplete
}

// SetComplete flips the flag for one category.
func (d *DailyProgressRecord) SetComplete(category Category, done bool) {
	switch category {
	case CategoryMind:
		d.MindComplete = done
	case CategoryBody:
		d.BodyComplete = done
	case CategorySoul:
		d.SoulComplete = done
	}
}
