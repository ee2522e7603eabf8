package milestones

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/infrastructure/persistence/postgres/connection"
)

var (
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrNotAwarded        = errors.New("milestone not awarded to user")
)

// Repository persists the achievement catalog state for users.
type Repository interface {
	ListDefinitions(ctx context.Context) ([]MilestoneDefinition, error)
	FindDefinition(ctx context.Context, id uuid.UUID) (*MilestoneDefinition, error)
	ListUserMilestones(ctx context.Context, userID uuid.UUID) ([]UserMilestone, error)
	ListProgress(ctx context.Context, userID uuid.UUID) ([]MilestoneProgress, error)
	Award(ctx context.Context, milestone *UserMilestone) (bool, error)
	UpsertProgress(ctx context.Context, progress *MilestoneProgress) error
	DeleteProgress(ctx context.Context, userID, milestoneID uuid.UUID) error
	ListUncelebrated(ctx context.Context, userID uuid.UUID) ([]UserMilestone, error)
	MarkCelebrated(ctx context.Context, userID, milestoneID uuid.UUID) error
	MarkShared(ctx context.Context, userID, milestoneID uuid.UUID) error
	CountShared(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) ListDefinitions(ctx context.Context) ([]MilestoneDefinition, error) {
	var definitions []MilestoneDefinition
	err := r.db.WithContext(ctx).
		Order("sort_order asc, code asc").
		Find(&definitions).Error
	return definitions, err
}

func (r *repository) FindDefinition(ctx context.Context, id uuid.UUID) (*MilestoneDefinition, error) {
	var definition MilestoneDefinition
	result := r.db.WithContext(ctx).First(&definition, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, result.Error
	}
	return &definition, nil
}

func (r *repository) ListUserMilestones(ctx context.Context, userID uuid.UUID) ([]UserMilestone, error) {
	var milestones []UserMilestone
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("achieved_at asc").
		Find(&milestones).Error
	return milestones, err
}

func (r *repository) ListProgress(ctx context.Context, userID uuid.UUID) ([]MilestoneProgress, error) {
	var progress []MilestoneProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&progress).Error
	return progress, err
}

// Award inserts the achievement row. The unique (user_id, milestone_id)
// index makes the insert a no-op when another run already awarded it;
// that case returns false with no error.
func (r *repository) Award(ctx context.Context, milestone *UserMilestone) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "milestone_id"}},
		DoNothing: true,
	}).Create(milestone)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) UpsertProgress(ctx context.Context, progress *MilestoneProgress) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "milestone_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_value", "last_updated"}),
	}).Create(progress).Error
}

func (r *repository) DeleteProgress(ctx context.Context, userID, milestoneID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND milestone_id = ?", userID, milestoneID).
		Delete(&MilestoneProgress{}).Error
}

func (r *repository) ListUncelebrated(ctx context.Context, userID uuid.UUID) ([]UserMilestone, error) {
	var milestones []UserMilestone
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND shown_celebration = ?", userID, false).
		Order("achieved_at asc").
		Find(&milestones).Error
	return milestones, err
}

func (r *repository) MarkCelebrated(ctx context.Context, userID, milestoneID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&UserMilestone{}).
		Where("user_id = ? AND milestone_id = ?", userID, milestoneID).
		Update("shown_celebration", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotAwarded
	}
	return nil
}

func (r *repository) MarkShared(ctx context.Context, userID, milestoneID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&UserMilestone{}).
		Where("user_id = ? AND milestone_id = ?", userID, milestoneID).
		Update("shared_to_activity", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotAwarded
	}
	return nil
}

func (r *repository) CountShared(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserMilestone{}).
		Where("user_id = ? AND shared_to_activity = ?", userID, true).
		Count(&count).Error
	return count, err
}
