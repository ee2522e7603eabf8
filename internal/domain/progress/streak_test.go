package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func utcDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCalculateStreak(t *testing.T) {
	today := utcDay(2024, 3, 15)

	tests := []struct {
		name     string
		days     []time.Time
		expected Streak
	}{
		{
			name:     "No active days returns zero streaks",
			days:     []time.Time{},
			expected: Streak{},
		},
		{
			name:     "Single completion today",
			days:     []time.Time{utcDay(2024, 3, 15)},
			expected: Streak{Current: 1, Longest: 1},
		},
		{
			name: "Run ending today counts as current",
			days: []time.Time{
				utcDay(2024, 3, 13),
				utcDay(2024, 3, 14),
				utcDay(2024, 3, 15),
			},
			expected: Streak{Current: 3, Longest: 3},
		},
		{
			name: "Run ending yesterday resets current to zero",
			days: []time.Time{
				utcDay(2024, 3, 12),
				utcDay(2024, 3, 13),
				utcDay(2024, 3, 14),
			},
			expected: Streak{Current: 0, Longest: 3},
		},
		{
			name: "Longest run in the past beats the current run",
			days: []time.Time{
				utcDay(2024, 3, 7),
				utcDay(2024, 3, 8),
				utcDay(2024, 3, 9),
				utcDay(2024, 3, 10),
				utcDay(2024, 3, 14),
				utcDay(2024, 3, 15),
			},
			expected: Streak{Current: 2, Longest: 4},
		},
		{
			name: "Unsorted days with duplicates and clock times",
			days: []time.Time{
				time.Date(2024, 3, 15, 23, 45, 10, 0, time.UTC),
				time.Date(2024, 3, 13, 6, 0, 0, 0, time.UTC),
				time.Date(2024, 3, 14, 12, 30, 0, 0, time.UTC),
				time.Date(2024, 3, 14, 19, 0, 0, 0, time.UTC),
			},
			expected: Streak{Current: 3, Longest: 3},
		},
		{
			name: "Runs across a month boundary stay consecutive",
			days: []time.Time{
				utcDay(2024, 2, 28),
				utcDay(2024, 2, 29),
				utcDay(2024, 3, 1),
			},
			expected: Streak{Current: 0, Longest: 3},
		},
		{
			name: "Isolated days never chain",
			days: []time.Time{
				utcDay(2024, 3, 1),
				utcDay(2024, 3, 5),
				utcDay(2024, 3, 9),
			},
			expected: Streak{Current: 0, Longest: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateStreak(tt.days, today))
		})
	}
}
