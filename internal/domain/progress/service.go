package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/events"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/milestones"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/infrastructure/cache"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/pkg/config"
)

var ErrInvalidUserID = errors.New("invalid user id")

// Service is the progress engine. Every public read funnels through
// Run first, so callers always observe a snapshot consistent with the
// completion log at the time of the call. There is no scheduler and no
// cached snapshot; a stale or missing row heals on the next call.
type Service interface {
	Run(ctx context.Context, userID uuid.UUID) (*UserStats, error)
	Recompute(ctx context.Context, userID uuid.UUID, trigger wellness.Category) (*UserStats, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error)
	GetAvatarStates(ctx context.Context, userID uuid.UUID, executing map[wellness.Category]bool) (map[wellness.Category]AvatarState, error)
	Purge(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	wellnessRepo wellness.Repository
	statsRepo    Repository
	milestoneSvc milestones.Service
	redis        *cache.RedisClient
	logger       *zap.Logger
	cfg          config.ProgressConfig
}

func NewService(wellnessRepo wellness.Repository, statsRepo Repository, milestoneSvc milestones.Service, redis *cache.RedisClient, logger *zap.Logger, cfg config.ProgressConfig) Service {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 365
	}
	if cfg.HarmonyWindowDays <= 0 {
		cfg.HarmonyWindowDays = 7
	}
	if cfg.MinBalancedStreak <= 0 {
		cfg.MinBalancedStreak = 3
	}
	return &service{
		wellnessRepo: wellnessRepo,
		statsRepo:    statsRepo,
		milestoneSvc: milestoneSvc,
		redis:        redis,
		logger:       logger,
		cfg:          cfg,
	}
}

// Run recomputes the user's full snapshot from the completion log and
// overwrites the stats row, then evaluates milestones against exactly
// that snapshot. Running it again without new events produces the same
// values, so the completion hook and lazy reads can both call it freely.
func (s *service) Run(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	return s.recompute(ctx, userID, "")
}

// Recompute is Run with the triggering category stamped on the
// published event, for the completion-write hook.
func (s *service) Recompute(ctx context.Context, userID uuid.UUID, trigger wellness.Category) (*UserStats, error) {
	return s.recompute(ctx, userID, trigger)
}

func (s *service) recompute(ctx context.Context, userID uuid.UUID, trigger wellness.Category) (*UserStats, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	today := wellness.DayOf(time.Now())
	lookbackStart := today.AddDate(0, 0, -(s.cfg.LookbackDays - 1))

	activeDays, err := s.wellnessRepo.ActiveDays(ctx, userID, lookbackStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load active days: %w", err)
	}

	stats := &UserStats{UserID: userID}

	streaks := make(map[wellness.Category]Streak, len(wellness.Categories()))
	for _, c := range wellness.Categories() {
		streak := CalculateStreak(activeDays[c], today)
		streaks[c] = streak
		stats.setStreak(c, streak)
	}

	records := buildDailyRecords(userID, activeDays)

	harmonyDays := make([]time.Time, 0, len(records))
	for i := range records {
		if records[i].AllComplete() {
			harmonyDays = append(harmonyDays, time.Time(records[i].Day))
		}
	}
	harmony := CalculateStreak(harmonyDays, today)
	stats.CurrentStreak = harmony.Current
	stats.LongestStreak = harmony.Longest

	routineCounts, err := s.wellnessRepo.UniqueRoutineCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unique routines: %w", err)
	}
	for _, c := range wellness.Categories() {
		stats.setRoutineCount(c, routineCounts[c])
	}

	lastActivity, err := s.wellnessRepo.LastActivity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load last activity: %w", err)
	}
	for _, c := range wellness.Categories() {
		if at, ok := lastActivity[c]; ok {
			t := at
			stats.setLastActivity(c, &t)
		}
	}

	windowStart := today.AddDate(0, 0, -(s.cfg.HarmonyWindowDays - 1))
	windowCounts, err := s.wellnessRepo.CompletionCounts(ctx, userID, &windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count window completions: %w", err)
	}
	stats.HarmonyScore = HarmonyScore(windowCounts, streaks, s.cfg.MinBalancedStreak)

	stats.UpdatedAt = time.Now().UTC()
	if err := s.statsRepo.SaveSnapshot(ctx, stats, records); err != nil {
		return nil, fmt.Errorf("failed to persist stats snapshot: %w", err)
	}

	metrics, err := s.buildMilestoneMetrics(ctx, userID, stats, harmony)
	if err != nil {
		return nil, err
	}

	awarded, err := s.milestoneSvc.CheckAndAward(ctx, userID, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate milestones: %w", err)
	}

	details := map[string]interface{}{
		"harmony_score":  stats.HarmonyScore,
		"current_streak": stats.CurrentStreak,
	}
	if trigger != "" {
		details["trigger"] = trigger.String()
	}
	s.publishEvent(ctx, events.EventStatsRecomputed, userID, uuid.Nil, details)
	for _, m := range awarded {
		s.publishEvent(ctx, events.EventMilestoneAchieved, userID, m.MilestoneID, map[string]interface{}{
			"progress_value": m.ProgressValue,
			"achieved_at":    m.AchievedAt.Format(time.RFC3339),
		})
	}

	return stats, nil
}

// GetStats recomputes before returning. Readers never see a snapshot
// older than the log, whatever happened to earlier recompute attempts.
func (s *service) GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	return s.Run(ctx, userID)
}

func (s *service) GetAvatarStates(ctx context.Context, userID uuid.UUID, executing map[wellness.Category]bool) (map[wellness.Category]AvatarState, error) {
	if _, err := s.Run(ctx, userID); err != nil {
		return nil, err
	}

	today := wellness.DayOf(time.Now())

	todayRecord, err := s.wellnessRepo.GetDailyRecord(ctx, userID, today)
	if err != nil && !errors.Is(err, wellness.ErrDailyRecordNotFound) {
		return nil, fmt.Errorf("failed to load today's record: %w", err)
	}

	yesterdayRecord, err := s.wellnessRepo.GetDailyRecord(ctx, userID, today.AddDate(0, 0, -1))
	if err != nil && !errors.Is(err, wellness.ErrDailyRecordNotFound) {
		return nil, fmt.Errorf("failed to load yesterday's record: %w", err)
	}

	return DeriveAvatarStates(todayRecord, yesterdayRecord, executing), nil
}

// Purge hard-deletes the user's events, rollups, stats and milestone
// rows. The next Run rebuilds a zero baseline from the empty log, so
// there is no dedicated reset mode to maintain.
func (s *service) Purge(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrInvalidUserID
	}

	if err := s.statsRepo.Purge(ctx, userID); err != nil {
		return fmt.Errorf("failed to purge user progress: %w", err)
	}

	s.logger.Info("Purged user progress data", zap.String("user_id", userID.String()))
	s.publishEvent(ctx, events.EventProgressReset, userID, uuid.Nil, nil)

	return nil
}

// buildDailyRecords collapses per-category active days into one rollup
// row per day, ordered by day for deterministic writes.
func buildDailyRecords(userID uuid.UUID, activeDays map[wellness.Category][]time.Time) []wellness.DailyProgressRecord {
	byDay := make(map[time.Time]*wellness.DailyProgressRecord)
	days := make([]time.Time, 0)

	for category, categoryDays := range activeDays {
		for _, d := range categoryDays {
			day := wellness.DayOf(d)
			record, ok := byDay[day]
			if !ok {
				record = &wellness.DailyProgressRecord{
					ID:     uuid.New(),
					UserID: userID,
					Day:    datatypes.Date(day),
				}
				byDay[day] = record
				days = append(days, day)
			}
			record.SetComplete(category, true)
		}
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	records := make([]wellness.DailyProgressRecord, 0, len(days))
	for _, day := range days {
		records = append(records, *byDay[day])
	}
	return records
}

func (s *service) buildMilestoneMetrics(ctx context.Context, userID uuid.UUID, stats *UserStats, harmony Streak) (milestones.Metrics, error) {
	totals, err := s.wellnessRepo.CompletionCounts(ctx, userID, nil)
	if err != nil {
		return milestones.Metrics{}, fmt.Errorf("failed to count completions: %w", err)
	}

	perfectDays, err := s.wellnessRepo.PerfectDayCount(ctx, userID)
	if err != nil {
		return milestones.Metrics{}, fmt.Errorf("failed to count perfect days: %w", err)
	}

	activeDays, err := s.wellnessRepo.ActiveDayCount(ctx, userID)
	if err != nil {
		return milestones.Metrics{}, fmt.Errorf("failed to count active days: %w", err)
	}

	metrics := milestones.Metrics{
		Completions:          make(map[wellness.Category]int64, len(wellness.Categories())),
		UniqueRoutines:       make(map[wellness.Category]int64, len(wellness.Categories())),
		CurrentStreaks:       make(map[wellness.Category]int64, len(wellness.Categories())),
		LongestStreaks:       make(map[wellness.Category]int64, len(wellness.Categories())),
		HarmonyCurrentStreak: int64(harmony.Current),
		HarmonyLongestStreak: int64(harmony.Longest),
		HarmonyScore:         int64(stats.HarmonyScore),
		PerfectDays:          perfectDays,
		ActiveDays:           activeDays,
	}
	for _, c := range wellness.Categories() {
		metrics.TotalCompletions += int64(totals[c])
		metrics.Completions[c] = int64(totals[c])
		metrics.UniqueRoutines[c] = stats.RoutineCountFor(c)
		streak := stats.StreakFor(c)
		metrics.CurrentStreaks[c] = int64(streak.Current)
		metrics.LongestStreaks[c] = int64(streak.Longest)
	}

	return metrics, nil
}

func (s *service) publishEvent(ctx context.Context, eventType string, userID, entityID uuid.UUID, details map[string]interface{}) {
	if s.redis == nil {
		return
	}

	event := &events.ProgressEvent{
		EventType: eventType,
		UserID:    userID,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Details:   details,
	}
	if err := s.redis.PublishProgressEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish progress event", zap.Error(err))
	}
}
