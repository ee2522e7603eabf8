package wellness

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/infrastructure/persistence/postgres/connection"
)

var ErrDailyRecordNotFound = errors.New("daily progress record not found")

// Repository is the read side of the completion log plus the store for
// the per-day rollup rows derived from it. Completion events are never
// written here; the logging service owns inserts.
type Repository interface {
	ActiveDays(ctx context.Context, userID uuid.UUID, since time.Time) (map[Category][]time.Time, error)
	CompletionCounts(ctx context.Context, userID uuid.UUID, since *time.Time) (map[Category]int, error)
	UniqueRoutineCounts(ctx context.Context, userID uuid.UUID) (map[Category]int64, error)
	LastActivity(ctx context.Context, userID uuid.UUID) (map[Category]time.Time, error)

	GetDailyRecord(ctx context.Context, userID uuid.UUID, day time.Time) (*DailyProgressRecord, error)
	PerfectDayCount(ctx context.Context, userID uuid.UUID) (int64, error)
	ActiveDayCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

// ActiveDays returns the distinct UTC days carrying at least one
// completion per category, oldest first, bounded by since.
func (r *repository) ActiveDays(ctx context.Context, userID uuid.UUID, since time.Time) (map[Category][]time.Time, error) {
	var rows []struct {
		Category Category
		Day      time.Time
	}

	query := `
		SELECT
			category,
			DATE(completed_at AT TIME ZONE 'UTC') AS day
		FROM
			completion_events
		WHERE
			user_id = ?
			AND completed_at >= ?
		GROUP BY
			category, DATE(completed_at AT TIME ZONE 'UTC')
		ORDER BY
			day;
	`

	if err := r.db.WithContext(ctx).Raw(query, userID, since).Scan(&rows).Error; err != nil {
		return nil, err
	}

	days := make(map[Category][]time.Time)
	for _, row := range rows {
		days[row.Category] = append(days[row.Category], DayOf(row.Day))
	}

	return days, nil
}

func (r *repository) CompletionCounts(ctx context.Context, userID uuid.UUID, since *time.Time) (map[Category]int, error) {
	var rows []struct {
		Category Category
		Count    int
	}

	query := r.db.WithContext(ctx).Model(&CompletionEvent{}).
		Select("category, count(*) as count").
		Where("user_id = ?", userID)

	if since != nil {
		query = query.Where("completed_at >= ?", *since)
	}

	if err := query.Group("category").Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[Category]int)
	for _, row := range rows {
		counts[row.Category] = row.Count
	}

	return counts, nil
}

func (r *repository) UniqueRoutineCounts(ctx context.Context, userID uuid.UUID) (map[Category]int64, error) {
	var rows []struct {
		Category Category
		Count    int64
	}

	err := r.db.WithContext(ctx).Model(&CompletionEvent{}).
		Select("category, count(distinct routine_id) as count").
		Where("user_id = ?", userID).
		Group("category").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[Category]int64)
	for _, row := range rows {
		counts[row.Category] = row.Count
	}

	return counts, nil
}

func (r *repository) LastActivity(ctx context.Context, userID uuid.UUID) (map[Category]time.Time, error) {
	var rows []struct {
		Category Category
		Last     time.Time
	}

	err := r.db.WithContext(ctx).Model(&CompletionEvent{}).
		Select("category, max(completed_at) as last").
		Where("user_id = ?", userID).
		Group("category").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	last := make(map[Category]time.Time)
	for _, row := range rows {
		last[row.Category] = row.Last
	}

	return last, nil
}

func (r *repository) GetDailyRecord(ctx context.Context, userID uuid.UUID, day time.Time) (*DailyProgressRecord, error) {
	var record DailyProgressRecord
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, datatypes.Date(DayOf(day))).
		First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDailyRecordNotFound
		}
		return nil, result.Error
	}
	return &record, nil
}

func (r *repository) PerfectDayCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DailyProgressRecord{}).
		Where("user_id = ? AND mind_complete = ? AND body_complete = ? AND soul_complete = ?",
			userID, true, true, true).
		Count(&count).Error
	return count, err
}

func (r *repository) ActiveDayCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DailyProgressRecord{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
