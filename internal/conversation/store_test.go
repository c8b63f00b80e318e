package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBoundsHistory(t *testing.T) {
	const maxEntries = 10
	store := NewStore(maxEntries)

	for i := 0; i < maxEntries+5; i++ {
		store.Add("chan:user", RoleUser, fmt.Sprintf("message %d", i))
	}

	history := store.History("chan:user")
	require.Len(t, history, maxEntries)

	// Oldest five were evicted; the rest are chronological.
	assert.Equal(t, "message 5", history[0].Content)
	assert.Equal(t, "message 14", history[maxEntries-1].Content)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp))
	}
}

func TestHistoryAlternatesRoles(t *testing.T) {
	store := NewStore(10)

	store.Add("key", RoleUser, "how do I add a truck?")
	store.Add("key", RoleAssistant, "Go to Fleet > Vehicles > Add.")

	history := store.History("key")
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, RoleAssistant, history[1].Role)
}

func TestHistoryUnknownKey(t *testing.T) {
	store := NewStore(10)
	assert.Empty(t, store.History("never-seen"))
}

func TestHistoryReturnsCopy(t *testing.T) {
	store := NewStore(10)
	store.Add("key", RoleUser, "original")

	history := store.History("key")
	history[0].Content = "mutated"

	assert.Equal(t, "original", store.History("key")[0].Content)
}

func TestClearIsIdempotent(t *testing.T) {
	store := NewStore(10)
	store.Add("key", RoleUser, "hello")

	store.Clear("key")
	assert.Empty(t, store.History("key"))

	// Clearing an absent key is a no-op, not an error.
	store.Clear("key")
	store.Clear("never-existed")
	assert.Empty(t, store.History("key"))
}

func TestKeysAreIsolated(t *testing.T) {
	store := NewStore(10)

	store.Add("a", RoleUser, "question from a")
	store.Add("b", RoleUser, "question from b")
	store.Clear("a")

	assert.Empty(t, store.History("a"))
	require.Len(t, store.History("b"), 1)
	assert.Equal(t, "question from b", store.History("b")[0].Content)
}

func TestStats(t *testing.T) {
	store := NewStore(10)
	assert.Equal(t, Stats{}, store.Stats())

	store.Add("a", RoleUser, "one")
	store.Add("a", RoleAssistant, "two")
	store.Add("b", RoleUser, "three")

	stats := store.Stats()
	assert.Equal(t, 2, stats.ActiveConversations)
	assert.Equal(t, 3, stats.TotalMessages)
}

func TestPruneEvictsLeastRecentlyActive(t *testing.T) {
	store := NewStore(10)

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	store.Add("oldest", RoleUser, "x")
	clock = clock.Add(time.Minute)
	store.Add("middle", RoleUser, "x")
	clock = clock.Add(time.Minute)
	store.Add("newest", RoleUser, "x")

	evicted := store.Prune(1)
	assert.Equal(t, 2, evicted)

	assert.Empty(t, store.History("oldest"))
	assert.Empty(t, store.History("middle"))
	assert.Len(t, store.History("newest"), 1)
}

func TestPruneUnderCapIsNoop(t *testing.T) {
	store := NewStore(10)
	store.Add("a", RoleUser, "x")

	assert.Equal(t, 0, store.Prune(5))
	assert.Len(t, store.History("a"), 1)
}
