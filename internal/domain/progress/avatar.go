package progress

import (
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
)

// AvatarState is the mood of one category's companion avatar. It is
// derived on every read and never stored.
type AvatarState string

const (
	AvatarDormant   AvatarState = "dormant"
	AvatarSleepy    AvatarState = "sleepy"
	AvatarAwakening AvatarState = "awakening"
	AvatarGlowing   AvatarState = "glowing"
	AvatarRadiant   AvatarState = "radiant"
)

// DeriveAvatarState resolves one avatar's mood. Precedence is fixed:
// radiant when all three dimensions are done today, glowing when this
// category is done today, awakening while a routine is executing,
// sleepy when today has no record yet but yesterday was a full day,
// dormant otherwise. A radiant avatar stays radiant even while another
// routine is executing.
func DeriveAvatarState(category wellness.Category, today, yesterday *wellness.DailyProgressRecord, executing bool) AvatarState {
	if today != nil && today.AllComplete() {
		return AvatarRadiant
	}
	if today != nil && today.Complete(category) {
		return AvatarGlowing
	}
	if executing {
		return AvatarAwakening
	}
	if today == nil && yesterday != nil && yesterday.AllComplete() {
		return AvatarSleepy
	}
	return AvatarDormant
}

// DeriveAvatarStates resolves all three avatars at once. The executing
// map carries the caller's transient in-session flags and may be nil.
func DeriveAvatarStates(today, yesterday *wellness.DailyProgressRecord, executing map[wellness.Category]bool) map[wellness.Category]AvatarState {
	states := make(map[wellness.Category]AvatarState, len(wellness.Categories()))
	for _, c := range wellness.Categories() {
		states[c] = DeriveAvatarState(c, today, yesterday, executing[c])
	}
	return states
}
