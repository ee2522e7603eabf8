package milestones

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
)

var ErrUnresolvableRule = errors.New("unresolvable milestone rule")

// Metrics is the snapshot a progress recompute hands to the rule
// engine. Every rule resolves against these values only, so a check
// never observes state newer than the stats row it belongs to.
type Metrics struct {
	TotalCompletions     int64
	Completions          map[wellness.Category]int64
	UniqueRoutines       map[wellness.Category]int64
	CurrentStreaks       map[wellness.Category]int64
	LongestStreaks       map[wellness.Category]int64
	HarmonyCurrentStreak int64
	HarmonyLongestStreak int64
	HarmonyScore         int64
	PerfectDays          int64
	ActiveDays           int64
	MilestonesShared     int64
}

// resolve maps a definition's (metric, category) pair onto a snapshot
// value. Unknown pairs are configuration errors, not user errors.
func (m Metrics) resolve(def MilestoneDefinition) (int64, error) {
	switch def.Metric {
	case MetricTotalCompletions:
		switch def.Category {
		case ScopeOverall:
			return m.TotalCompletions, nil
		case ScopeMind, ScopeBody, ScopeSoul:
			return m.Completions[wellness.Category(def.Category)], nil
		}
	case MetricUniqueRoutines:
		switch def.Category {
		case ScopeOverall:
			var total int64
			for _, c := range wellness.Categories() {
				total += m.UniqueRoutines[c]
			}
			return total, nil
		case ScopeMind, ScopeBody, ScopeSoul:
			return m.UniqueRoutines[wellness.Category(def.Category)], nil
		}
	case MetricCurrentStreak:
		switch def.Category {
		case ScopeOverall, ScopeHarmony:
			return m.HarmonyCurrentStreak, nil
		case ScopeMind, ScopeBody, ScopeSoul:
			return m.CurrentStreaks[wellness.Category(def.Category)], nil
		}
	case MetricLongestStreak:
		switch def.Category {
		case ScopeOverall, ScopeHarmony:
			return m.HarmonyLongestStreak, nil
		case ScopeMind, ScopeBody, ScopeSoul:
			return m.LongestStreaks[wellness.Category(def.Category)], nil
		}
	case MetricHarmonyScore:
		if def.Category == ScopeOverall || def.Category == ScopeHarmony {
			return m.HarmonyScore, nil
		}
	case MetricPerfectDays:
		if def.Category == ScopeOverall || def.Category == ScopeHarmony {
			return m.PerfectDays, nil
		}
	case MetricActiveDays:
		if def.Category == ScopeOverall {
			return m.ActiveDays, nil
		}
	case MetricMilestonesShared:
		if def.Category == ScopeOverall {
			return m.MilestonesShared, nil
		}
	}
	return 0, fmt.Errorf("%w: metric %q category %q", ErrUnresolvableRule, def.Metric, def.Category)
}

type Service interface {
	CheckAndAward(ctx context.Context, userID uuid.UUID, metrics Metrics) ([]UserMilestone, error)
	GetMilestones(ctx context.Context, userID uuid.UUID) ([]MilestoneStatus, error)
	GetUncelebrated(ctx context.Context, userID uuid.UUID) ([]MilestoneStatus, error)
	MarkCelebrated(ctx context.Context, userID, milestoneID uuid.UUID) error
	MarkShared(ctx context.Context, userID, milestoneID uuid.UUID) error
}

type service struct {
	repo Repository
	log  *logrus.Logger
}

func NewService(repo Repository, log *logrus.Logger) Service {
	return &service{
		repo: repo,
		log:  log,
	}
}

// CheckAndAward evaluates every catalog rule against the snapshot and
// returns the milestones this call newly awarded. A rule that cannot
// be resolved is logged and skipped; the remaining rules still run.
func (s *service) CheckAndAward(ctx context.Context, userID uuid.UUID, metrics Metrics) ([]UserMilestone, error) {
	definitions, err := s.repo.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestone catalog: %w", err)
	}

	achieved, err := s.repo.ListUserMilestones(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user milestones: %w", err)
	}
	achievedSet := make(map[uuid.UUID]struct{}, len(achieved))
	for _, m := range achieved {
		achievedSet[m.MilestoneID] = struct{}{}
	}

	shared, err := s.repo.CountShared(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count shared milestones: %w", err)
	}
	metrics.MilestonesShared = shared

	var awarded []UserMilestone
	for _, def := range definitions {
		if _, ok := achievedSet[def.ID]; ok {
			continue
		}

		value, err := metrics.resolve(def)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"milestone": def.Code,
				"metric":    def.Metric,
				"category":  def.Category,
			}).Warn("Skipping unresolvable milestone rule")
			continue
		}

		threshold := def.Threshold
		if def.ThresholdType == ThresholdBoolean && threshold < 1 {
			threshold = 1
		}

		if value >= threshold {
			milestone := &UserMilestone{
				ID:            uuid.New(),
				UserID:        userID,
				MilestoneID:   def.ID,
				AchievedAt:    time.Now().UTC(),
				ProgressValue: value,
			}
			created, err := s.repo.Award(ctx, milestone)
			if err != nil {
				return awarded, fmt.Errorf("failed to award milestone %s: %w", def.Code, err)
			}
			if !created {
				// Another run got there first, which is fine
				continue
			}
			if err := s.repo.DeleteProgress(ctx, userID, def.ID); err != nil {
				s.log.WithError(err).WithField("milestone", def.Code).Warn("Failed to clear milestone progress")
			}
			s.log.WithFields(logrus.Fields{
				"user_id":   userID,
				"milestone": def.Code,
				"value":     value,
			}).Info("Milestone achieved")
			awarded = append(awarded, *milestone)
		} else {
			progress := &MilestoneProgress{
				ID:           uuid.New(),
				UserID:       userID,
				MilestoneID:  def.ID,
				CurrentValue: value,
			}
			if err := s.repo.UpsertProgress(ctx, progress); err != nil {
				return awarded, fmt.Errorf("failed to update progress for milestone %s: %w", def.Code, err)
			}
		}
	}

	return awarded, nil
}

func (s *service) GetMilestones(ctx context.Context, userID uuid.UUID) ([]MilestoneStatus, error) {
	definitions, err := s.repo.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestone catalog: %w", err)
	}

	achieved, err := s.repo.ListUserMilestones(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user milestones: %w", err)
	}
	achievedByID := make(map[uuid.UUID]*UserMilestone, len(achieved))
	for i := range achieved {
		achievedByID[achieved[i].MilestoneID] = &achieved[i]
	}

	progress, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestone progress: %w", err)
	}
	progressByID := make(map[uuid.UUID]*MilestoneProgress, len(progress))
	for i := range progress {
		progressByID[progress[i].MilestoneID] = &progress[i]
	}

	statuses := make([]MilestoneStatus, 0, len(definitions))
	for _, def := range definitions {
		statuses = append(statuses, MilestoneStatus{
			Definition: def,
			Achieved:   achievedByID[def.ID],
			Progress:   progressByID[def.ID],
		})
	}

	return statuses, nil
}

// GetUncelebrated returns pending celebrations oldest first so clients
// replay them in the order they were earned.
func (s *service) GetUncelebrated(ctx context.Context, userID uuid.UUID) ([]MilestoneStatus, error) {
	pending, err := s.repo.ListUncelebrated(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load uncelebrated milestones: %w", err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	definitions, err := s.repo.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestone catalog: %w", err)
	}
	defByID := make(map[uuid.UUID]MilestoneDefinition, len(definitions))
	for _, def := range definitions {
		defByID[def.ID] = def
	}

	statuses := make([]MilestoneStatus, 0, len(pending))
	for i := range pending {
		statuses = append(statuses, MilestoneStatus{
			Definition: defByID[pending[i].MilestoneID],
			Achieved:   &pending[i],
		})
	}
	return statuses, nil
}

func (s *service) MarkCelebrated(ctx context.Context, userID, milestoneID uuid.UUID) error {
	if _, err := s.repo.FindDefinition(ctx, milestoneID); err != nil {
		return err
	}
	return s.repo.MarkCelebrated(ctx, userID, milestoneID)
}

func (s *service) MarkShared(ctx context.Context, userID, milestoneID uuid.UUID) error {
	if _, err := s.repo.FindDefinition(ctx, milestoneID); err != nil {
		return err
	}
	return s.repo.MarkShared(ctx, userID, milestoneID)
}
