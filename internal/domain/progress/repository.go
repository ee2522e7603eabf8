package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/milestones"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/infrastructure/persistence/postgres/connection"
)

var ErrStatsNotFound = errors.New("user stats not found")

// Repository persists the derived snapshot. The stats row is only ever
// written whole; there is no partial update path.
type Repository interface {
	GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error)
	SaveSnapshot(ctx context.Context, stats *UserStats, records []wellness.DailyProgressRecord) error
	Purge(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	var stats UserStats
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&stats)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStatsNotFound
		}
		return nil, result.Error
	}
	return &stats, nil
}

// SaveSnapshot writes the recomputed daily rollups and the stats row in
// one transaction. A failure leaves the previous snapshot untouched.
func (r *repository) SaveSnapshot(ctx context.Context, stats *UserStats, records []wellness.DailyProgressRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(records) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
				DoUpdates: clause.AssignmentColumns([]string{"mind_complete", "body_complete", "soul_complete", "updated_at"}),
			}).Create(&records).Error; err != nil {
				return err
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(stats).Error
	})
}

// Purge removes every row the engine holds for the user. The catalog
// stays; the next recompute rebuilds a zero baseline from an empty log.
func (r *repository) Purge(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&wellness.CompletionEvent{},
			&wellness.DailyProgressRecord{},
			&milestones.UserMilestone{},
			&milestones.MilestoneProgress{},
			&UserStats{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
