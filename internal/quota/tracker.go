package quota

import (
	"fmt"
	"sync"
	"time"

	"github.com/haulstack/supportbot/pkg/models"
)

// Config holds the daily usage gate settings.
type Config struct {
	// DailyLimit is the number of questions a standard identity may ask per
	// calendar day.
	DailyLimit int `yaml:"daily_limit"`

	// PrivilegedRoles and PrivilegedUsers bypass the limit entirely. Roles
	// arrive on the inbound message, resolved by the messaging collaborator.
	PrivilegedRoles []string `yaml:"privileged_roles"`
	PrivilegedUsers []string `yaml:"privileged_users"`

	// ResetLocation names the time zone whose midnight resets the counter.
	// Empty means the process-local zone.
	ResetLocation string `yaml:"reset_location"`
}

// DefaultConfig returns the shipped quota settings.
func DefaultConfig() Config {
	return Config{
		DailyLimit:      10,
		PrivilegedRoles: []string{"admin"},
	}
}

// counter tracks one identity's usage inside the current day window.
type counter struct {
	count       int
	windowStart time.Time
}

// Tracker enforces the per-identity daily question cap. The window rolls
// over when the calendar date changes, not after an elapsed duration, so a
// question asked at 23:59 and one at 00:01 land in different windows.
type Tracker struct {
	limit    int
	location *time.Location
	roles    map[string]struct{}
	users    map[string]struct{}

	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time
}

// NewTracker builds a tracker from config. It fails only when the reset
// location cannot be resolved.
func NewTracker(config Config) (*Tracker, error) {
	location := time.Local
	if config.ResetLocation != "" {
		loc, err := time.LoadLocation(config.ResetLocation)
		if err != nil {
			return nil, fmt.Errorf("quota reset location: %w", err)
		}
		location = loc
	}

	roles := make(map[string]struct{}, len(config.PrivilegedRoles))
	for _, role := range config.PrivilegedRoles {
		roles[role] = struct{}{}
	}
	users := make(map[string]struct{}, len(config.PrivilegedUsers))
	for _, user := range config.PrivilegedUsers {
		users[user] = struct{}{}
	}

	return &Tracker{
		limit:    config.DailyLimit,
		location: location,
		roles:    roles,
		users:    users,
		counters: make(map[string]*counter),
		now:      time.Now,
	}, nil
}

// Privileged reports whether the identity bypasses the daily limit.
func (t *Tracker) Privileged(identity models.Identity) bool {
	if _, ok := t.users[identity.UserID]; ok {
		return true
	}
	for _, role := range identity.Roles {
		if _, ok := t.roles[role]; ok {
			return true
		}
	}
	return false
}

// CanAsk reports whether the identity may ask another question right now.
// Read-only; the counter is not touched.
func (t *Tracker) CanAsk(identity models.Identity) bool {
	if t.Privileged(identity) {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.effectiveCount(identity.UserID) < t.limit
}

// Increment charges one question to the identity. Privileged identities are
// never counted. The window rolls over to a fresh count first when the
// calendar day has changed since the stored window start.
func (t *Tracker) Increment(identity models.Identity) {
	if t.Privileged(identity) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	c, ok := t.counters[identity.UserID]
	if !ok {
		t.counters[identity.UserID] = &counter{count: 1, windowStart: now}
		return
	}

	if !t.sameDay(c.windowStart, now) {
		c.count = 0
		c.windowStart = now
	}
	c.count++
}

// Remaining returns how many questions the identity has left today.
// Privileged identities report unlimited=true and the count is meaningless.
func (t *Tracker) Remaining(identity models.Identity) (int, bool) {
	if t.Privileged(identity) {
		return 0, true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.limit - t.effectiveCount(identity.UserID)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, false
}

// Limit returns the configured daily cap.
func (t *Tracker) Limit() int {
	return t.limit
}

// LimitMessage is the fixed text shown when the daily cap is reached.
func (t *Tracker) LimitMessage() string {
	return fmt.Sprintf(
		"You've used all %d of your questions for today. The counter resets at midnight, so check back tomorrow!",
		t.limit)
}

// ActiveUsers counts identities with a tracked counter.
func (t *Tracker) ActiveUsers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counters)
}

// Prune drops counters whose window started before the given instant. Used
// by the periodic cleanup pass; live windows are never dropped as long as
// the cutoff trails the current day.
func (t *Tracker) Prune(before time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for userID, c := range t.counters {
		if c.windowStart.Before(before) {
			delete(t.counters, userID)
			evicted++
		}
	}
	return evicted
}

// effectiveCount returns the identity's count inside the current day
// window without mutating anything. Callers hold the lock.
func (t *Tracker) effectiveCount(userID string) int {
	c, ok := t.counters[userID]
	if !ok {
		return 0
	}
	if !t.sameDay(c.windowStart, t.now()) {
		return 0
	}
	return c.count
}

// sameDay reports whether two instants fall on the same calendar date in
// the tracker's reset location.
func (t *Tracker) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(t.location).Date()
	by, bm, bd := b.In(t.location).Date()
	return ay == by && am == bm && ad == bd
}
