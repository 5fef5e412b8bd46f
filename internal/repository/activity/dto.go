package activity

import (
	"strconv"
	"time"

	domact "github.com/DominicD213/shoprank/internal/domain/activity"
)

// buildHashFields converts an Event into a flat map[string]string for HSET.
func buildHashFields(ev *domact.Event) map[string]string {
	return map[string]string{
		"user_id": ev.UserID(),
		"item_id": ev.ItemID(),
		"action":  string(ev.Action()),
		"ts":      strconv.FormatInt(ev.Timestamp().UnixNano(), 10),
	}
}

// parseHashFields converts a hash map back into an Event.
func parseHashFields(m map[string]string) (domact.Event, bool) {
	if len(m) == 0 {
		return domact.Event{}, false
	}
	action, err := domact.ParseAction(m["action"])
	if err != nil {
		return domact.Event{}, false
	}
	nanos, err := strconv.ParseInt(m["ts"], 10, 64)
	if err != nil {
		return domact.Event{}, false
	}
	return domact.Reconstruct(m["user_id"], m["item_id"], action, time.Unix(0, nanos).UTC()), true
}
