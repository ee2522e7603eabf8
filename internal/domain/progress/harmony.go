package progress

import (
	"math"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
)

// Harmony score components. The three parts sum to at most 100.
const (
	allActiveBonus = 30.0
	streakBonus    = 20.0
	balanceWeight  = 50.0

	// With three dimensions the ideal share is a third. The summed
	// deviation is scaled against 200/3; past that the balance term
	// goes negative and drags the score down until the final clamp.
	idealShare     = 100.0 / 3.0
	deviationScale = 200.0 / 3.0
)

// HarmonyScore grades how evenly effort is spread across the three
// dimensions inside the trailing window. counts holds per-category
// completion counts for that window, streaks the per-category current
// runs. A window without a single completion scores zero.
func HarmonyScore(counts map[wellness.Category]int, streaks map[wellness.Category]Streak, minBalancedStreak int) int {
	total := 0
	active := 0
	for _, c := range wellness.Categories() {
		total += counts[c]
		if counts[c] > 0 {
			active++
		}
	}
	if total == 0 {
		return 0
	}

	score := 0.0

	if active == len(wellness.Categories()) {
		score += allActiveBonus
	}

	minStreak := math.MaxInt
	for _, c := range wellness.Categories() {
		if s := streaks[c].Current; s < minStreak {
			minStreak = s
		}
	}
	if minStreak >= minBalancedStreak {
		score += streakBonus
	}

	deviation := 0.0
	for _, c := range wellness.Categories() {
		share := float64(counts[c]) / float64(total) * 100.0
		deviation += math.Abs(share - idealShare)
	}
	score += balanceWeight * (1.0 - deviation/deviationScale)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(math.Round(score))
}
