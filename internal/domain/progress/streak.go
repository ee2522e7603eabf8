package progress

import (
	"sort"
	"time"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
)

// Streak is a pair of consecutive-day run lengths.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// CalculateStreak derives both run lengths from a set of active days.
// The current run walks backwards from today and is zero when today
// itself carries no activity. The longest run scans the distinct days
// in ascending order. Inputs may be unsorted, duplicated and carry
// time-of-day components; everything is truncated to UTC days first.
func CalculateStreak(days []time.Time, today time.Time) Streak {
	if len(days) == 0 {
		return Streak{}
	}

	set := make(map[time.Time]struct{}, len(days))
	distinct := make([]time.Time, 0, len(days))
	for _, d := range days {
		day := wellness.DayOf(d)
		if _, ok := set[day]; ok {
			continue
		}
		set[day] = struct{}{}
		distinct = append(distinct, day)
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i].Before(distinct[j]) })

	current := 0
	for day := wellness.DayOf(today); ; day = day.AddDate(0, 0, -1) {
		if _, ok := set[day]; !ok {
			break
		}
		current++
	}

	longest := 0
	run := 0
	var prev time.Time
	for i, day := range distinct {
		if i > 0 && day.Equal(prev.AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = day
	}

	if current > longest {
		longest = current
	}

	return Streak{Current: current, Longest: longest}
}
