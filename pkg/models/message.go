package models

import (
	"fmt"
	"time"
)

// InboundMessage is a user-authored message delivered by the messaging
// collaborator (the Discord-facing shim). The collaborator resolves platform
// identifiers and role membership before forwarding; this core never talks to
// the gateway itself.
type InboundMessage struct {
	MessageID string    `json:"message_id"`
	GuildID   string    `json:"guild_id,omitempty"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Validate checks the fields the pipeline cannot work without.
func (m InboundMessage) Validate() error {
	if m.MessageID == "" {
		return fmt.Errorf("message_id is required")
	}
	if m.ChannelID == "" {
		return fmt.Errorf("channel_id is required")
	}
	if m.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	return nil
}

// Identity returns the rate-limiting identity carried by the message.
func (m InboundMessage) Identity() Identity {
	return Identity{
		UserID:   m.UserID,
		Username: m.Username,
		Roles:    m.Roles,
	}
}

// ConversationKey returns the composite key that scopes conversation memory
// to one user in one channel.
func (m InboundMessage) ConversationKey() string {
	return m.ChannelID + ":" + m.UserID
}

// Identity identifies a user for quota accounting and privilege checks.
type Identity struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// HasRole reports whether the identity carries the given role name.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Reply is the pipeline's answer to one inbound message, plus the quota
// metadata the collaborator renders alongside it.
type Reply struct {
	Text       string    `json:"text"`
	Remaining  int       `json:"remaining"`
	Unlimited  bool      `json:"unlimited"`
	Limited    bool      `json:"limited,omitempty"`
	Failed     bool      `json:"failed,omitempty"`
	Sources    int       `json:"sources,omitempty"`
	AnsweredAt time.Time `json:"answered_at"`
}

// ServiceStats aggregates the observability counters exposed on the stats
// surface. Counts only; no message content ever leaves the process this way.
type ServiceStats struct {
	Documents           int            `json:"documents"`
	Categories          map[string]int `json:"categories"`
	ActiveConversations int            `json:"active_conversations"`
	TotalMessages       int            `json:"total_messages"`
	ActiveUsers         int            `json:"active_users"`
	TrackedReplies      int            `json:"tracked_replies"`
}

// UserStats is the per-identity view behind the stats command: the asker's
// quota standing and conversation depth next to the service-wide counters.
type UserStats struct {
	Remaining     int          `json:"remaining"`
	Unlimited     bool         `json:"unlimited"`
	HistoryLength int          `json:"history_length"`
	Service       ServiceStats `json:"service"`
}
