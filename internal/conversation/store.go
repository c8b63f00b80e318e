package conversation

import (
	"sort"
	"sync"
	"time"
)

// Role identifies who authored a conversation entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one turn of a conversation.
type Entry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats aggregates the store for observability.
type Stats struct {
	ActiveConversations int `json:"active_conversations"`
	TotalMessages       int `json:"total_messages"`
}

// thread holds the bounded entry ring for one conversation key.
type thread struct {
	entries    []Entry
	lastActive time.Time
}

// Store keeps a bounded recent-turn history per conversation key. Keys are
// composite channel+user identities; entries for different keys never
// interact. All operations take the store lock, so a read-modify-write for
// one key can never interleave with a prune.
type Store struct {
	mu            sync.Mutex
	maxEntries    int
	conversations map[string]*thread
	now           func() time.Time
}

// NewStore creates a conversation store that keeps at most maxEntries
// turns per conversation.
func NewStore(maxEntries int) *Store {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Store{
		maxEntries:    maxEntries,
		conversations: make(map[string]*thread),
		now:           time.Now,
	}
}

// Add appends a turn to the keyed conversation, creating it on first use.
// When the conversation exceeds the entry bound the oldest turn is evicted.
func (s *Store) Add(key string, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.conversations[key]
	if !ok {
		t = &thread{entries: make([]Entry, 0, s.maxEntries)}
		s.conversations[key] = t
	}

	t.entries = append(t.entries, Entry{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	})
	if len(t.entries) > s.maxEntries {
		t.entries = t.entries[len(t.entries)-s.maxEntries:]
	}
	t.lastActive = s.now()
}

// History returns the keyed conversation oldest-first. The slice is a copy;
// callers can hold it while the store keeps mutating.
func (s *Store) History(key string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.conversations[key]
	if !ok {
		return nil
	}

	history := make([]Entry, len(t.entries))
	copy(history, t.entries)
	return history
}

// Clear drops the keyed conversation entirely. Clearing an absent key is a
// no-op.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, key)
}

// Stats counts tracked conversations and their messages.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, t := range s.conversations {
		total += len(t.entries)
	}

	return Stats{
		ActiveConversations: len(s.conversations),
		TotalMessages:       total,
	}
}

// Prune evicts the least-recently-active conversations until at most
// maxConversations remain. It returns the number evicted. Used by the
// periodic cleanup pass, never by request handling.
func (s *Store) Prune(maxConversations int) int {
	if maxConversations < 0 {
		maxConversations = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	excess := len(s.conversations) - maxConversations
	if excess <= 0 {
		return 0
	}

	type aged struct {
		key        string
		lastActive time.Time
	}
	byAge := make([]aged, 0, len(s.conversations))
	for key, t := range s.conversations {
		byAge = append(byAge, aged{key: key, lastActive: t.lastActive})
	}
	sort.Slice(byAge, func(i, j int) bool {
		return byAge[i].lastActive.Before(byAge[j].lastActive)
	})

	for _, a := range byAge[:excess] {
		delete(s.conversations, a.key)
	}
	return excess
}
