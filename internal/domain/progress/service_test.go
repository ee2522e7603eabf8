package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/milestones"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/pkg/config"
)

func TestRunNewUser(t *testing.T) {
	wellnessRepo := &mockWellnessRepo{}
	statsRepo := &mockStatsRepo{}
	milestoneSvc := &mockMilestoneService{}
	svc := newTestService(wellnessRepo, statsRepo, milestoneSvc)

	userID := uuid.New()
	stats, err := svc.Run(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, userID, stats.UserID)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.LongestStreak)
	assert.Equal(t, 0, stats.MindCurrentStreak)
	assert.Equal(t, 0, stats.HarmonyScore)
	assert.Nil(t, stats.MindLastActivity)
	assert.Nil(t, stats.BodyLastActivity)
	assert.Nil(t, stats.SoulLastActivity)
	assert.False(t, stats.UpdatedAt.IsZero())

	assert.Equal(t, 1, statsRepo.saveCalls)
	assert.Empty(t, statsRepo.savedRecords)

	assert.Equal(t, 1, milestoneSvc.checkCalls)
	assert.Equal(t, int64(0), milestoneSvc.lastMetrics.TotalCompletions)
}

func TestRunSingleDimension(t *testing.T) {
	today := wellness.DayOf(time.Now())
	days := make([]time.Time, 0, 5)
	for i := 4; i >= 0; i-- {
		days = append(days, today.AddDate(0, 0, -i))
	}
	lastMind := today.Add(9 * time.Hour)

	wellnessRepo := &mockWellnessRepo{
		activeDays: map[wellness.Category][]time.Time{
			wellness.CategoryMind: days,
		},
		totals:        map[wellness.Category]int{wellness.CategoryMind: 5},
		windowCounts:  map[wellness.Category]int{wellness.CategoryMind: 5},
		routineCounts: map[wellness.Category]int64{wellness.CategoryMind: 2},
		lastActivity:  map[wellness.Category]time.Time{wellness.CategoryMind: lastMind},
	}
	statsRepo := &mockStatsRepo{}
	milestoneSvc := &mockMilestoneService{}
	svc := newTestService(wellnessRepo, statsRepo, milestoneSvc)

	stats, err := svc.Run(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, 5, stats.MindCurrentStreak)
	assert.Equal(t, 5, stats.MindLongestStreak)
	assert.Equal(t, 0, stats.BodyCurrentStreak)
	assert.Equal(t, 0, stats.SoulCurrentStreak)
	assert.Equal(t, int64(2), stats.MindRoutineCount)
	assert.NotNil(t, stats.MindLastActivity)
	assert.True(t, stats.MindLastActivity.Equal(lastMind))

	// No day had all three done, so the harmony streak and score stay flat
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.LongestStreak)
	assert.Equal(t, 0, stats.HarmonyScore)

	// One rollup row per active day, mind flag only, oldest first
	assert.Len(t, statsRepo.savedRecords, 5)
	for i, record := range statsRepo.savedRecords {
		assert.True(t, record.MindComplete)
		assert.False(t, record.BodyComplete)
		assert.False(t, record.SoulComplete)
		assert.True(t, time.Time(record.Day).Equal(days[i]))
	}

	metrics := milestoneSvc.lastMetrics
	assert.Equal(t, int64(5), metrics.TotalCompletions)
	assert.Equal(t, int64(5), metrics.CurrentStreaks[wellness.CategoryMind])
	assert.Equal(t, int64(0), metrics.HarmonyCurrentStreak)
}

func TestRunBalancedDays(t *testing.T) {
	today := wellness.DayOf(time.Now())
	days := []time.Time{
		today.AddDate(0, 0, -2),
		today.AddDate(0, 0, -1),
		today,
	}

	wellnessRepo := &mockWellnessRepo{
		activeDays: map[wellness.Category][]time.Time{
			wellness.CategoryMind: days,
			wellness.CategoryBody: days,
			wellness.CategorySoul: days,
		},
		totals: map[wellness.Category]int{
			wellness.CategoryMind: 3,
			wellness.CategoryBody: 3,
			wellness.CategorySoul: 3,
		},
		windowCounts: map[wellness.Category]int{
			wellness.CategoryMind: 3,
			wellness.CategoryBody: 3,
			wellness.CategorySoul: 3,
		},
		perfectDays: 3,
		activeCount: 3,
	}
	statsRepo := &mockStatsRepo{}
	milestoneSvc := &mockMilestoneService{}
	svc := newTestService(wellnessRepo, statsRepo, milestoneSvc)

	stats, err := svc.Run(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, 3, stats.LongestStreak)
	assert.Equal(t, 100, stats.HarmonyScore)

	assert.Len(t, statsRepo.savedRecords, 3)
	for _, record := range statsRepo.savedRecords {
		assert.True(t, record.AllComplete())
	}

	metrics := milestoneSvc.lastMetrics
	assert.Equal(t, int64(3), metrics.HarmonyCurrentStreak)
	assert.Equal(t, int64(3), metrics.HarmonyLongestStreak)
	assert.Equal(t, int64(100), metrics.HarmonyScore)
	assert.Equal(t, int64(3), metrics.PerfectDays)
	assert.Equal(t, int64(3), metrics.ActiveDays)
}

func TestRunTwiceIsStable(t *testing.T) {
	today := wellness.DayOf(time.Now())
	wellnessRepo := &mockWellnessRepo{
		activeDays: map[wellness.Category][]time.Time{
			wellness.CategoryBody: {today.AddDate(0, 0, -1), today},
		},
		totals:       map[wellness.Category]int{wellness.CategoryBody: 4},
		windowCounts: map[wellness.Category]int{wellness.CategoryBody: 4},
	}
	statsRepo := &mockStatsRepo{}
	milestoneSvc := &mockMilestoneService{}
	svc := newTestService(wellnessRepo, statsRepo, milestoneSvc)

	first, err := svc.Run(context.Background(), uuid.New())
	assert.NoError(t, err)
	second, err := svc.Run(context.Background(), first.UserID)
	assert.NoError(t, err)

	a, b := *first, *second
	a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, a, b)
	assert.Equal(t, 2, statsRepo.saveCalls)
	assert.Equal(t, 2, milestoneSvc.checkCalls)
}

func TestRunRejectsNilUser(t *testing.T) {
	svc := newTestService(&mockWellnessRepo{}, &mockStatsRepo{}, &mockMilestoneService{})
	ctx := context.Background()

	_, err := svc.Run(ctx, uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = svc.Recompute(ctx, uuid.Nil, wellness.CategoryMind)
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = svc.GetStats(ctx, uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = svc.GetAvatarStates(ctx, uuid.Nil, nil)
	assert.ErrorIs(t, err, ErrInvalidUserID)

	assert.ErrorIs(t, svc.Purge(ctx, uuid.Nil), ErrInvalidUserID)
}

func TestRunSaveFailureSkipsMilestones(t *testing.T) {
	statsRepo := &mockStatsRepo{saveErr: errors.New("connection reset")}
	milestoneSvc := &mockMilestoneService{}
	svc := newTestService(&mockWellnessRepo{}, statsRepo, milestoneSvc)

	_, err := svc.Run(context.Background(), uuid.New())

	assert.Error(t, err)
	assert.Equal(t, 0, milestoneSvc.checkCalls)
}

func TestPurgeResetsBaseline(t *testing.T) {
	wellnessRepo := &mockWellnessRepo{}
	statsRepo := &mockStatsRepo{}
	svc := newTestService(wellnessRepo, statsRepo, &mockMilestoneService{})

	userID := uuid.New()
	_, err := svc.Run(context.Background(), userID)
	assert.NoError(t, err)
	assert.NotNil(t, statsRepo.saved)

	assert.NoError(t, svc.Purge(context.Background(), userID))
	assert.True(t, statsRepo.purged)

	// The next run rebuilds a zero snapshot from the empty log
	stats, err := svc.Run(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.HarmonyScore)
}

func TestGetAvatarStates(t *testing.T) {
	today := wellness.DayOf(time.Now())

	t.Run("New user is dormant across the board", func(t *testing.T) {
		svc := newTestService(&mockWellnessRepo{}, &mockStatsRepo{}, &mockMilestoneService{})

		states, err := svc.GetAvatarStates(context.Background(), uuid.New(), nil)

		assert.NoError(t, err)
		for _, c := range wellness.Categories() {
			assert.Equal(t, AvatarDormant, states[c])
		}
	})

	t.Run("Partial day with an executing routine", func(t *testing.T) {
		wellnessRepo := &mockWellnessRepo{
			dailyRecords: map[time.Time]*wellness.DailyProgressRecord{
				today: {MindComplete: true},
			},
		}
		svc := newTestService(wellnessRepo, &mockStatsRepo{}, &mockMilestoneService{})

		executing := map[wellness.Category]bool{wellness.CategorySoul: true}
		states, err := svc.GetAvatarStates(context.Background(), uuid.New(), executing)

		assert.NoError(t, err)
		assert.Equal(t, AvatarGlowing, states[wellness.CategoryMind])
		assert.Equal(t, AvatarDormant, states[wellness.CategoryBody])
		assert.Equal(t, AvatarAwakening, states[wellness.CategorySoul])
	})

	t.Run("Yesterday's full day shows sleepy", func(t *testing.T) {
		wellnessRepo := &mockWellnessRepo{
			dailyRecords: map[time.Time]*wellness.DailyProgressRecord{
				today.AddDate(0, 0, -1): {MindComplete: true, BodyComplete: true, SoulComplete: true},
			},
		}
		svc := newTestService(wellnessRepo, &mockStatsRepo{}, &mockMilestoneService{})

		states, err := svc.GetAvatarStates(context.Background(), uuid.New(), nil)

		assert.NoError(t, err)
		for _, c := range wellness.Categories() {
			assert.Equal(t, AvatarSleepy, states[c])
		}
	})
}

func newTestService(wellnessRepo *mockWellnessRepo, statsRepo *mockStatsRepo, milestoneSvc *mockMilestoneService) Service {
	return NewService(wellnessRepo, statsRepo, milestoneSvc, nil, zap.NewNop(), config.ProgressConfig{})
}

// Mock repositories for testing

type mockWellnessRepo struct {
	activeDays    map[wellness.Category][]time.Time
	totals        map[wellness.Category]int
	windowCounts  map[wellness.Category]int
	routineCounts map[wellness.Category]int64
	lastActivity  map[wellness.Category]time.Time
	dailyRecords  map[time.Time]*wellness.DailyProgressRecord
	perfectDays   int64
	activeCount   int64
}

func (m *mockWellnessRepo) ActiveDays(ctx context.Context, userID uuid.UUID, since time.Time) (map[wellness.Category][]time.Time, error) {
	return m.activeDays, nil
}

func (m *mockWellnessRepo) CompletionCounts(ctx context.Context, userID uuid.UUID, since *time.Time) (map[wellness.Category]int, error) {
	if since != nil {
		return m.windowCounts, nil
	}
	return m.totals, nil
}

func (m *mockWellnessRepo) UniqueRoutineCounts(ctx context.Context, userID uuid.UUID) (map[wellness.Category]int64, error) {
	return m.routineCounts, nil
}

func (m *mockWellnessRepo) LastActivity(ctx context.Context, userID uuid.UUID) (map[wellness.Category]time.Time, error) {
	return m.lastActivity, nil
}

func (m *mockWellnessRepo) GetDailyRecord(ctx context.Context, userID uuid.UUID, day time.Time) (*wellness.DailyProgressRecord, error) {
	if record, ok := m.dailyRecords[wellness.DayOf(day)]; ok {
		return record, nil
	}
	return nil, wellness.ErrDailyRecordNotFound
}

func (m *mockWellnessRepo) PerfectDayCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.perfectDays, nil
}

func (m *mockWellnessRepo) ActiveDayCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.activeCount, nil
}

type mockStatsRepo struct {
	saved        *UserStats
	savedRecords []wellness.DailyProgressRecord
	saveCalls    int
	saveErr      error
	purged       bool
}

func (m *mockStatsRepo) GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	if m.saved == nil {
		return nil, ErrStatsNotFound
	}
	return m.saved, nil
}

func (m *mockStatsRepo) SaveSnapshot(ctx context.Context, stats *UserStats, records []wellness.DailyProgressRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saveCalls++
	snapshot := *stats
	m.saved = &snapshot
	m.savedRecords = records
	return nil
}

func (m *mockStatsRepo) Purge(ctx context.Context, userID uuid.UUID) error {
	m.purged = true
	m.saved = nil
	m.savedRecords = nil
	return nil
}

type mockMilestoneService struct {
	checkCalls  int
	lastMetrics *milestones.Metrics
	award       []milestones.UserMilestone
}

func (m *mockMilestoneService) CheckAndAward(ctx context.Context, userID uuid.UUID, metrics milestones.Metrics) ([]milestones.UserMilestone, error) {
	m.checkCalls++
	m.lastMetrics = &metrics
	return m.award, nil
}

func (m *mockMilestoneService) GetMilestones(ctx context.Context, userID uuid.UUID) ([]milestones.MilestoneStatus, error) {
	return nil, nil
}

func (m *mockMilestoneService) GetUncelebrated(ctx context.Context, userID uuid.UUID) ([]milestones.MilestoneStatus, error) {
	return nil, nil
}

func (m *mockMilestoneService) MarkCelebrated(ctx context.Context, userID, milestoneID uuid.UUID) error {
	return nil
}

func (m *mockMilestoneService) MarkShared(ctx context.Context, userID, milestoneID uuid.UUID) error {
	return nil
}
