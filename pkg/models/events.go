package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of bot analytics event
type EventType string

const (
	EventTypeQuestionAnswered EventType = "question.answered"
	EventTypeQuestionRejected EventType = "question.rejected"
	EventTypeQuestionFailed   EventType = "question.failed"
	EventTypeHistoryCleared   EventType = "history.cleared"
	EventTypeKnowledgeRefresh EventType = "knowledge.refreshed"
	EventTypeCommandUnknown   EventType = "command.unknown"
)

// BotEvent is the analytics record emitted for each handled interaction.
// Published fire-and-forget; consumers live outside this service.
type BotEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	GuildID   string                 `json:"guild_id,omitempty"`
	ChannelID string                 `json:"channel_id,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	Source    string                 `json:"source"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewBotEvent builds an event for the given message with a fresh ID.
func NewBotEvent(eventType EventType, msg InboundMessage) BotEvent {
	return BotEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		UserID:    msg.UserID,
		Source:    "supportbot",
	}
}

// WithMetadata attaches a metadata entry and returns the event for chaining.
func (e BotEvent) WithMetadata(key string, value interface{}) BotEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}
