package events

import (
	"time"

	"github.com/google/uuid"
)

// Progress event types published after engine writes
const (
	EventStatsRecomputed   = "stats_recomputed"
	EventMilestoneAchieved = "milestone_achieved"
	EventProgressReset     = "progress_reset"
)

// ProgressEvent notifies subscribers that a user's derived progress
// changed. It is a refresh signal only; consumers re-read state through
// the API, the payload never substitutes for it.
type ProgressEvent struct {
	EventType string      `json:"event_type"`
	UserID    uuid.UUID   `json:"user_id"`
	EntityID  uuid.UUID   `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
	Details   interface{} `json:"details,omitempty"`
}
