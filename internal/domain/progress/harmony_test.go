package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
)

func TestHarmonyScore(t *testing.T) {
	tests := []struct {
		name     string
		counts   map[wellness.Category]int
		streaks  map[wellness.Category]Streak
		expected int
	}{
		{
			name:     "Empty window scores zero",
			counts:   map[wellness.Category]int{},
			streaks:  map[wellness.Category]Streak{},
			expected: 0,
		},
		{
			name: "Balanced week with streaks scores full marks",
			counts: map[wellness.Category]int{
				wellness.CategoryMind: 2,
				wellness.CategoryBody: 2,
				wellness.CategorySoul: 2,
			},
			streaks: map[wellness.Category]Streak{
				wellness.CategoryMind: {Current: 3},
				wellness.CategoryBody: {Current: 4},
				wellness.CategorySoul: {Current: 3},
			},
			expected: 100,
		},
		{
			name: "Balanced week without streaks loses the streak bonus",
			counts: map[wellness.Category]int{
				wellness.CategoryMind: 2,
				wellness.CategoryBody: 2,
				wellness.CategorySoul: 2,
			},
			streaks: map[wellness.Category]Streak{
				wellness.CategoryMind: {Current: 1},
				wellness.CategoryBody: {Current: 1},
				wellness.CategorySoul: {Current: 1},
			},
			expected: 80,
		},
		{
			name: "Everything in one dimension scores zero",
			counts: map[wellness.Category]int{
				wellness.CategoryMind: 6,
			},
			streaks: map[wellness.Category]Streak{
				wellness.CategoryMind: {Current: 6},
			},
			expected: 0, // the balance term bottoms out and the clamp floors the total
		},
		{
			name: "Two active dimensions cancel the balance term",
			counts: map[wellness.Category]int{
				wellness.CategoryMind: 5,
				wellness.CategoryBody: 4,
			},
			streaks:  map[wellness.Category]Streak{},
			expected: 0,
		},
		{
			name: "Dominant dimension halves the balance term",
			counts: map[wellness.Category]int{
				wellness.CategoryMind: 2,
				wellness.CategoryBody: 1,
				wellness.CategorySoul: 1,
			},
			streaks: map[wellness.Category]Streak{
				wellness.CategoryMind: {Current: 2},
				wellness.CategoryBody: {Current: 2},
				wellness.CategorySoul: {Current: 2},
			},
			expected: 55, // 30 all-active + 25 balance
		},
		{
			name: "Slight imbalance with strong streaks",
			counts: map[wellness.Category]int{
				wellness.CategoryMind: 4,
				wellness.CategoryBody: 3,
				wellness.CategorySoul: 3,
			},
			streaks: map[wellness.Category]Streak{
				wellness.CategoryMind: {Current: 4},
				wellness.CategoryBody: {Current: 3},
				wellness.CategorySoul: {Current: 3},
			},
			expected: 90, // 30 all-active + 20 streak + 40 balance
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HarmonyScore(tt.counts, tt.streaks, 3))
		})
	}
}

func TestHarmonyScoreMinBalancedStreak(t *testing.T) {
	counts := map[wellness.Category]int{
		wellness.CategoryMind: 2,
		wellness.CategoryBody: 2,
		wellness.CategorySoul: 2,
	}
	streaks := map[wellness.Category]Streak{
		wellness.CategoryMind: {Current: 2},
		wellness.CategoryBody: {Current: 2},
		wellness.CategorySoul: {Current: 2},
	}

	// The same week flips the streak bonus as the bar moves
	assert.Equal(t, 100, HarmonyScore(counts, streaks, 2))
	assert.Equal(t, 80, HarmonyScore(counts, streaks, 3))
}
