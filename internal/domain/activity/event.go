package activity

import (
	"fmt"
	"time"
)

// Event is one append-only activity record. ItemID is empty for pure search
// events. Events are never mutated or deleted; the recommendation engine
// consumes them only in aggregate.
type Event struct {
	userID    string
	itemID    string
	action    Action
	timestamp time.Time
}

// NewEvent validates and creates an Event.
func NewEvent(userID, itemID string, action Action, ts time.Time) (Event, error) {
	if userID == "" {
		return Event{}, fmt.Errorf("user ID is required")
	}
	if !action.IsValid() {
		return Event{}, fmt.Errorf("unknown action %q", action)
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Event{userID: userID, itemID: itemID, action: action, timestamp: ts}, nil
}

// Reconstruct creates an Event without validation (storage hydration).
func Reconstruct(userID, itemID string, action Action, ts time.Time) Event {
	return Event{userID: userID, itemID: itemID, action: action, timestamp: ts}
}

// UserID returns the acting user.
func (e *Event) UserID() string { return e.userID }

// ItemID returns the referenced item, or "" for search-only events.
func (e *Event) ItemID() string { return e.itemID }

// Action returns the interaction kind.
func (e *Event) Action() Action { return e.action }

// Timestamp returns when the event occurred.
func (e *Event) Timestamp() time.Time { return e.timestamp }
