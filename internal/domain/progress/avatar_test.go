package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
)

func fullDay() *wellness.DailyProgressRecord {
	return &wellness.DailyProgressRecord{
		MindComplete: true,
		BodyComplete: true,
		SoulComplete: true,
	}
}

func mindOnlyDay() *wellness.DailyProgressRecord {
	return &wellness.DailyProgressRecord{MindComplete: true}
}

func TestDeriveAvatarState(t *testing.T) {
	tests := []struct {
		name      string
		category  wellness.Category
		today     *wellness.DailyProgressRecord
		yesterday *wellness.DailyProgressRecord
		executing bool
		expected  AvatarState
	}{
		{
			name:     "All three done today is radiant",
			category: wellness.CategoryMind,
			today:    fullDay(),
			expected: AvatarRadiant,
		},
		{
			name:      "Radiant wins over an executing routine",
			category:  wellness.CategorySoul,
			today:     fullDay(),
			executing: true,
			expected:  AvatarRadiant,
		},
		{
			name:     "Own category done today is glowing",
			category: wellness.CategoryMind,
			today:    mindOnlyDay(),
			expected: AvatarGlowing,
		},
		{
			name:      "Executing an unfinished category is awakening",
			category:  wellness.CategoryBody,
			today:     mindOnlyDay(),
			executing: true,
			expected:  AvatarAwakening,
		},
		{
			name:      "Executing beats sleepy when today has no record",
			category:  wellness.CategoryBody,
			yesterday: fullDay(),
			executing: true,
			expected:  AvatarAwakening,
		},
		{
			name:      "Full day yesterday with no record today is sleepy",
			category:  wellness.CategoryBody,
			yesterday: fullDay(),
			expected:  AvatarSleepy,
		},
		{
			name:      "A record for today suppresses sleepy",
			category:  wellness.CategoryBody,
			today:     mindOnlyDay(),
			yesterday: fullDay(),
			expected:  AvatarDormant,
		},
		{
			name:      "Partial day yesterday does not earn sleepy",
			category:  wellness.CategorySoul,
			yesterday: mindOnlyDay(),
			expected:  AvatarDormant,
		},
		{
			name:     "No history at all is dormant",
			category: wellness.CategoryMind,
			expected: AvatarDormant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := DeriveAvatarState(tt.category, tt.today, tt.yesterday, tt.executing)
			assert.Equal(t, tt.expected, state)
		})
	}
}

func TestDeriveAvatarStates(t *testing.T) {
	t.Run("Full day makes every avatar radiant", func(t *testing.T) {
		states := DeriveAvatarStates(fullDay(), nil, nil)
		for _, c := range wellness.Categories() {
			assert.Equal(t, AvatarRadiant, states[c])
		}
	})

	t.Run("Mixed day resolves each category independently", func(t *testing.T) {
		executing := map[wellness.Category]bool{wellness.CategoryBody: true}
		states := DeriveAvatarStates(mindOnlyDay(), nil, executing)

		assert.Equal(t, AvatarGlowing, states[wellness.CategoryMind])
		assert.Equal(t, AvatarAwakening, states[wellness.CategoryBody])
		assert.Equal(t, AvatarDormant, states[wellness.CategorySoul])
	})

	t.Run("Nil executing map is accepted", func(t *testing.T) {
		states := DeriveAvatarStates(nil, fullDay(), nil)
		for _, c := range wellness.Categories() {
			assert.Equal(t, AvatarSleepy, states[c])
		}
	})
}
