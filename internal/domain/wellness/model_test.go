package wellness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Category
		wantErr  bool
	}{
		{name: "Plain lowercase", input: "mind", expected: CategoryMind},
		{name: "Uppercase is accepted", input: "BODY", expected: CategoryBody},
		{name: "Surrounding whitespace is trimmed", input: "  soul \n", expected: CategorySoul},
		{name: "Unknown category is rejected", input: "spirit", wantErr: true},
		{name: "Empty string is rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, err := ParseCategory(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCategory)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, category)
		})
	}
}

func TestDayOf(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "Truncates the clock component",
			input:    time.Date(2024, 3, 15, 18, 42, 7, 120, time.UTC),
			expected: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Midnight stays put",
			input:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Local evening west of UTC lands on the next UTC day",
			input:    time.Date(2024, 3, 15, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			expected: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Local morning east of UTC lands on the previous UTC day",
			input:    time.Date(2024, 3, 15, 1, 30, 0, 0, time.FixedZone("UTC+9", 9*3600)),
			expected: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DayOf(tt.input))
		})
	}
}

func TestDailyProgressRecordFlags(t *testing.T) {
	record := &DailyProgressRecord{}

	assert.False(t, record.AllComplete())

	record.SetComplete(CategoryMind, true)
	record.SetComplete(CategoryBody, true)
	assert.True(t, record.Complete(CategoryMind))
	assert.True(t, record.Complete(CategoryBody))
	assert.False(t, record.Complete(CategorySoul))
	assert.False(t, record.AllComplete())

	record.SetComplete(CategorySoul, true)
	assert.True(t, record.AllComplete())

	record.SetComplete(CategoryBody, false)
	assert.False(t, record.AllComplete())
	assert.False(t, record.Complete(CategoryBody))
}
