// Package activity is the store-backed reader/appender for the user
// activity log.
package activity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DominicD213/shoprank/internal/domain"
	domact "github.com/DominicD213/shoprank/internal/domain/activity"
)

const keyPrefix = domain.KeyPrefix + "activity:"

// store is the consumer interface for activity operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo appends and reads activity events. One hash per event, keyed by
// user id and event timestamp; events are never mutated or deleted.
type Repo struct {
	store store
}

// New creates an activity repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Append records one event.
func (r *Repo) Append(ctx context.Context, ev domact.Event) error {
	if strings.Contains(ev.UserID(), ":") {
		return fmt.Errorf("append activity: user id %q must not contain ':'", ev.UserID())
	}
	key := fmt.Sprintf("%s%s:%d", keyPrefix, ev.UserID(), ev.Timestamp().UnixNano())
	if err := r.store.HSet(ctx, key, buildHashFields(&ev)); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// EventsByUserSince returns the user's events with timestamp >= since,
// oldest first.
func (r *Repo) EventsByUserSince(ctx context.Context, userID string, since time.Time) ([]domact.Event, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+userID+":*")
	if err != nil {
		return nil, fmt.Errorf("scan activity for %s: %w", userID, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get activity for %s: %w", userID, err)
	}

	events := make([]domact.Event, 0, len(maps))
	for _, m := range maps {
		ev, ok := parseHashFields(m)
		if !ok || ev.Timestamp().Before(since) {
			continue
		}
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp().Before(events[j].Timestamp())
	})
	return events, nil
}

// Users returns the distinct user ids present in the log, sorted.
func (r *Repo) Users(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan activity users: %w", err)
	}

	seen := make(map[string]struct{})
	for _, k := range keys {
		rest := strings.TrimPrefix(k, keyPrefix)
		user, _, ok := strings.Cut(rest, ":")
		if !ok || user == "" {
			continue
		}
		seen[user] = struct{}{}
	}

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}
