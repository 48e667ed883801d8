// Package domain holds the core types shared by all layers: activities,
// participants, and the sentinel errors the adapters translate into.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Activity is a scheduled group event with a name, a time, a creator, and a
// roster of participants.
type Activity struct {
	ID uuid.UUID

	// Name is a free-text label, never empty.
	Name string

	// ScheduledAt is the date/time string exactly as the datetime picker
	// delivered it (e.g. "2024-01-01T20:00"). It is stored opaquely and only
	// split for display, never parsed into a time.Time.
	ScheduledAt string

	// CreatorID is the messaging-platform user ID that created the activity.
	// Immutable once set; only the creator may delete the activity.
	CreatorID string

	CreatedAt time.Time
}

// ScheduleParts splits ScheduledAt into its date and time halves for display.
// Both " " and "T" separators are accepted. If no separator is found the
// whole string is returned as the date and the time half is empty.
func (a Activity) ScheduleParts() (date, clock string) {
	if i := strings.IndexAny(a.ScheduledAt, " T"); i >= 0 {
		return a.ScheduledAt[:i], a.ScheduledAt[i+1:]
	}
	return a.ScheduledAt, ""
}

// ActivityWithCount pairs an activity with its current headcount for list
// rendering.
type ActivityWithCount struct {
	Activity
	ParticipantCount int
}

// Participant links one user to one activity. DisplayName is captured at
// join time and never refreshed, so it may go stale.
type Participant struct {
	ID          uuid.UUID
	UserID      string
	DisplayName string
	ActivityID  uuid.UUID
	CreatedAt   time.Time
}
