package milestones

import (
	"context"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
)

func TestCheckAndAwardAtThreshold(t *testing.T) {
	def := MilestoneDefinition{
		ID:            uuid.New(),
		Code:          "getting_started",
		Metric:        MetricTotalCompletions,
		Threshold:     10,
		ThresholdType: ThresholdCount,
	}
	repo := newMockRepo(def)
	repo.progress[def.ID] = &MilestoneProgress{MilestoneID: def.ID, CurrentValue: 9}
	svc := newTestMilestoneService(repo)

	userID := uuid.New()
	awarded, err := svc.CheckAndAward(context.Background(), userID, Metrics{TotalCompletions: 10})

	assert.NoError(t, err)
	assert.Len(t, awarded, 1)
	assert.Equal(t, def.ID, awarded[0].MilestoneID)
	assert.Equal(t, int64(10), awarded[0].ProgressValue)
	assert.False(t, awarded[0].ShownCelebration)

	// The progress row is gone once the milestone is earned
	assert.NotContains(t, repo.progress, def.ID)

	// A second pass over the same snapshot awards nothing new
	awarded, err = svc.CheckAndAward(context.Background(), userID, Metrics{TotalCompletions: 10})
	assert.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestCheckAndAwardTracksProgressBelowThreshold(t *testing.T) {
	def := MilestoneDefinition{
		ID:            uuid.New(),
		Code:          "century_club",
		Metric:        MetricTotalCompletions,
		Threshold:     100,
		ThresholdType: ThresholdCount,
	}
	repo := newMockRepo(def)
	svc := newTestMilestoneService(repo)

	userID := uuid.New()
	awarded, err := svc.CheckAndAward(context.Background(), userID, Metrics{TotalCompletions: 7})
	assert.NoError(t, err)
	assert.Empty(t, awarded)
	assert.Equal(t, int64(7), repo.progress[def.ID].CurrentValue)

	_, err = svc.CheckAndAward(context.Background(), userID, Metrics{TotalCompletions: 8})
	assert.NoError(t, err)
	assert.Equal(t, int64(8), repo.progress[def.ID].CurrentValue)
}

func TestCheckAndAwardSkipsUnresolvableRule(t *testing.T) {
	broken := MilestoneDefinition{
		ID:            uuid.New(),
		Code:          "mystery",
		Metric:        "mystery_metric",
		Threshold:     1,
		ThresholdType: ThresholdCount,
	}
	valid := MilestoneDefinition{
		ID:            uuid.New(),
		Code:          "mind_week",
		Category:      ScopeMind,
		Metric:        MetricCurrentStreak,
		Threshold:     3,
		ThresholdType: ThresholdDays,
	}
	repo := newMockRepo(broken, valid)
	svc := newTestMilestoneService(repo)

	metrics := Metrics{
		CurrentStreaks: map[wellness.Category]int64{wellness.CategoryMind: 5},
	}
	awarded, err := svc.CheckAndAward(context.Background(), uuid.New(), metrics)

	assert.NoError(t, err)
	assert.Len(t, awarded, 1)
	assert.Equal(t, valid.ID, awarded[0].MilestoneID)
}

func TestCheckAndAwardSurvivesConcurrentDuplicate(t *testing.T) {
	def := MilestoneDefinition{
		ID:            uuid.New(),
		Code:          "first_steps",
		Metric:        MetricTotalCompletions,
		Threshold:     1,
		ThresholdType: ThresholdBoolean,
	}
	repo := newMockRepo(def)
	repo.awardConflict = true
	svc := newTestMilestoneService(repo)

	awarded, err := svc.CheckAndAward(context.Background(), uuid.New(), Metrics{TotalCompletions: 1})

	assert.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestBooleanThresholdTreatsZeroAsOne(t *testing.T) {
	def := MilestoneDefinition{
		ID:            uuid.New(),
		Code:          "community_voice",
		Metric:        MetricMilestonesShared,
		Threshold:     0,
		ThresholdType: ThresholdBoolean,
	}
	repo := newMockRepo(def)
	svc := newTestMilestoneService(repo)

	userID := uuid.New()
	awarded, err := svc.CheckAndAward(context.Background(), userID, Metrics{})
	assert.NoError(t, err)
	assert.Empty(t, awarded, "a zero threshold must not fire on a zero metric")

	repo.sharedCount = 1
	awarded, err = svc.CheckAndAward(context.Background(), userID, Metrics{})
	assert.NoError(t, err)
	assert.Len(t, awarded, 1)
}

func TestGetUncelebratedOrderAndCelebrate(t *testing.T) {
	older := MilestoneDefinition{ID: uuid.New(), Code: "first_steps", Metric: MetricTotalCompletions, Threshold: 1, ThresholdType: ThresholdBoolean}
	newer := MilestoneDefinition{ID: uuid.New(), Code: "getting_started", Metric: MetricTotalCompletions, Threshold: 10, ThresholdType: ThresholdCount}
	repo := newMockRepo(older, newer)

	now := time.Now().UTC()
	repo.awarded[older.ID] = &UserMilestone{MilestoneID: older.ID, AchievedAt: now.Add(-2 * time.Hour)}
	repo.awarded[newer.ID] = &UserMilestone{MilestoneID: newer.ID, AchievedAt: now.Add(-time.Hour)}

	svc := newTestMilestoneService(repo)
	userID := uuid.New()

	pending, err := svc.GetUncelebrated(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, pending, 2)
	assert.Equal(t, "first_steps", pending[0].Definition.Code)
	assert.Equal(t, "getting_started", pending[1].Definition.Code)

	// Celebrating pops the oldest; repeating the call is harmless
	assert.NoError(t, svc.MarkCelebrated(context.Background(), userID, older.ID))
	assert.NoError(t, svc.MarkCelebrated(context.Background(), userID, older.ID))

	pending, err = svc.GetUncelebrated(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, "getting_started", pending[0].Definition.Code)
}

func TestMarkCelebratedErrors(t *testing.T) {
	def := MilestoneDefinition{ID: uuid.New(), Code: "committed", Metric: MetricTotalCompletions, Threshold: 50, ThresholdType: ThresholdCount}
	repo := newMockRepo(def)
	svc := newTestMilestoneService(repo)
	userID := uuid.New()

	err := svc.MarkCelebrated(context.Background(), userID, uuid.New())
	assert.ErrorIs(t, err, ErrMilestoneNotFound)

	err = svc.MarkCelebrated(context.Background(), userID, def.ID)
	assert.ErrorIs(t, err, ErrNotAwarded)

	err = svc.MarkShared(context.Background(), userID, def.ID)
	assert.ErrorIs(t, err, ErrNotAwarded)
}

func TestMarkSharedCounts(t *testing.T) {
	def := MilestoneDefinition{ID: uuid.New(), Code: "first_steps", Metric: MetricTotalCompletions, Threshold: 1, ThresholdType: ThresholdBoolean}
	repo := newMockRepo(def)
	repo.awarded[def.ID] = &UserMilestone{MilestoneID: def.ID, AchievedAt: time.Now().UTC()}
	svc := newTestMilestoneService(repo)
	userID := uuid.New()

	assert.NoError(t, svc.MarkShared(context.Background(), userID, def.ID))
	assert.Equal(t, int64(1), repo.sharedCount)

	// Sharing again flips nothing
	assert.NoError(t, svc.MarkShared(context.Background(), userID, def.ID))
	assert.Equal(t, int64(1), repo.sharedCount)
}

func TestGetMilestones(t *testing.T) {
	achievedDef := MilestoneDefinition{ID: uuid.New(), Code: "first_steps", Metric: MetricTotalCompletions, Threshold: 1, ThresholdType: ThresholdBoolean}
	pendingDef := MilestoneDefinition{ID: uuid.New(), Code: "century_club", Metric: MetricTotalCompletions, Threshold: 100, ThresholdType: ThresholdCount}
	repo := newMockRepo(achievedDef, pendingDef)
	repo.awarded[achievedDef.ID] = &UserMilestone{MilestoneID: achievedDef.ID, AchievedAt: time.Now().UTC(), ProgressValue: 1}
	repo.progress[pendingDef.ID] = &MilestoneProgress{MilestoneID: pendingDef.ID, CurrentValue: 42}
	svc := newTestMilestoneService(repo)

	statuses, err := svc.GetMilestones(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Len(t, statuses, 2)

	assert.Equal(t, "first_steps", statuses[0].Definition.Code)
	assert.NotNil(t, statuses[0].Achieved)
	assert.Nil(t, statuses[0].Progress)

	assert.Equal(t, "century_club", statuses[1].Definition.Code)
	assert.Nil(t, statuses[1].Achieved)
	assert.Equal(t, int64(42), statuses[1].Progress.CurrentValue)
}

func newTestMilestoneService(repo *mockRepo) Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(repo, log)
}

// Mock repository for testing. All state is keyed by milestone id since
// each test exercises a single user.

type mockRepo struct {
	definitions   []MilestoneDefinition
	awarded       map[uuid.UUID]*UserMilestone
	progress      map[uuid.UUID]*MilestoneProgress
	sharedCount   int64
	awardConflict bool
}

func newMockRepo(definitions ...MilestoneDefinition) *mockRepo {
	return &mockRepo{
		definitions: definitions,
		awarded:     make(map[uuid.UUID]*UserMilestone),
		progress:    make(map[uuid.UUID]*MilestoneProgress),
	}
}

func (m *mockRepo) ListDefinitions(ctx context.Context) ([]MilestoneDefinition, error) {
	return m.definitions, nil
}

func (m *mockRepo) FindDefinition(ctx context.Context, id uuid.UUID) (*MilestoneDefinition, error) {
	for i := range m.definitions {
		if m.definitions[i].ID == id {
			return &m.definitions[i], nil
		}
	}
	return nil, ErrMilestoneNotFound
}

func (m *mockRepo) ListUserMilestones(ctx context.Context, userID uuid.UUID) ([]UserMilestone, error) {
	milestones := make([]UserMilestone, 0, len(m.awarded))
	for _, um := range m.awarded {
		milestones = append(milestones, *um)
	}
	sort.Slice(milestones, func(i, j int) bool { return milestones[i].AchievedAt.Before(milestones[j].AchievedAt) })
	return milestones, nil
}

func (m *mockRepo) ListProgress(ctx context.Context, userID uuid.UUID) ([]MilestoneProgress, error) {
	progress := make([]MilestoneProgress, 0, len(m.progress))
	for _, p := range m.progress {
		progress = append(progress, *p)
	}
	return progress, nil
}

func (m *mockRepo) Award(ctx context.Context, milestone *UserMilestone) (bool, error) {
	if m.awardConflict {
		return false, nil
	}
	if _, ok := m.awarded[milestone.MilestoneID]; ok {
		return false, nil
	}
	stored := *milestone
	m.awarded[milestone.MilestoneID] = &stored
	return true, nil
}

func (m *mockRepo) UpsertProgress(ctx context.Context, progress *MilestoneProgress) error {
	stored := *progress
	m.progress[progress.MilestoneID] = &stored
	return nil
}

func (m *mockRepo) DeleteProgress(ctx context.Context, userID, milestoneID uuid.UUID) error {
	delete(m.progress, milestoneID)
	return nil
}

func (m *mockRepo) ListUncelebrated(ctx context.Context, userID uuid.UUID) ([]UserMilestone, error) {
	milestones := make([]UserMilestone, 0)
	for _, um := range m.awarded {
		if !um.ShownCelebration {
			milestones = append(milestones, *um)
		}
	}
	sort.Slice(milestones, func(i, j int) bool { return milestones[i].AchievedAt.Before(milestones[j].AchievedAt) })
	return milestones, nil
}

func (m *mockRepo) MarkCelebrated(ctx context.Context, userID, milestoneID uuid.UUID) error {
	um, ok := m.awarded[milestoneID]
	if !ok {
		return ErrNotAwarded
	}
	um.ShownCelebration = true
	return nil
}

func (m *mockRepo) MarkShared(ctx context.Context, userID, milestoneID uuid.UUID) error {
	um, ok := m.awarded[milestoneID]
	if !ok {
		return ErrNotAwarded
	}
	if !um.SharedToActivity {
		um.SharedToActivity = true
		m.sharedCount++
	}
	return nil
}

func (m *mockRepo) CountShared(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.sharedCount, nil
}
