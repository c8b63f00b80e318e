package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/haulstack/supportbot/internal/events"
	"github.com/haulstack/supportbot/internal/knowledge"
	"github.com/haulstack/supportbot/pkg/models"
)

// ErrInFlight is returned when a message ID is already being processed.
// Duplicate gateway deliveries and rapid edits hit this instead of running
// the pipeline twice.
var ErrInFlight = errors.New("message is already being processed")

// Assistant is the pipeline surface the handler drives.
type Assistant interface {
	Answer(ctx context.Context, question string, identity models.Identity, conversationKey string) (*models.Reply, error)
	RefreshKnowledge(identity models.Identity) (knowledge.Stats, error)
	ClearHistory(conversationKey string)
	StatsFor(identity models.Identity, conversationKey string) models.UserStats
	HelpMessage() string
	ServiceStats() models.ServiceStats
	Prune(maxConversations int, countersBefore time.Time) (int, int)
}

// Config bounds the handler's retained state. Values come from the cleanup
// and memory sections of the service config.
type Config struct {
	MaxConversations  int
	MaxTrackedReplies int
	CounterRetention  time.Duration
}

// DefaultConfig returns the shipped handler bounds.
func DefaultConfig() Config {
	return Config{
		MaxConversations:  500,
		MaxTrackedReplies: 1000,
		CounterRetention:  48 * time.Hour,
	}
}

// trackedReply remembers the last reply produced for a message so an edit
// to the original question can regenerate it.
type trackedReply struct {
	msg       models.InboundMessage
	reply     *models.Reply
	trackedAt time.Time
}

// Handler is the message boundary: it validates inbound messages, routes
// commands, runs questions through the assistant, and publishes an event
// per handled interaction.
type Handler struct {
	assistant Assistant
	publisher events.Publisher
	logger    *zap.Logger
	config    Config

	mu       sync.Mutex
	inflight map[string]struct{}
	replies  map[string]*trackedReply

	now func() time.Time
}

// NewHandler wires the boundary. Non-positive config values fall back to
// the defaults.
func NewHandler(assistant Assistant, publisher events.Publisher, logger *zap.Logger, config Config) *Handler {
	defaults := DefaultConfig()
	if config.MaxConversations <= 0 {
		config.MaxConversations = defaults.MaxConversations
	}
	if config.MaxTrackedReplies <= 0 {
		config.MaxTrackedReplies = defaults.MaxTrackedReplies
	}
	if config.CounterRetention <= 0 {
		config.CounterRetention = defaults.CounterRetention
	}

	return &Handler{
		assistant: assistant,
		publisher: publisher,
		logger:    logger,
		config:    config,
		inflight:  make(map[string]struct{}),
		replies:   make(map[string]*trackedReply),
		now:       time.Now,
	}
}

// HandleMessage processes one inbound message end to end. Commands and
// quota rejections come back as normal replies; a generation failure comes
// back as the canned failure reply. The only errors are validation and the
// in-flight guard.
func (h *Handler) HandleMessage(ctx context.Context, msg models.InboundMessage) (*models.Reply, error) {
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	if !h.begin(msg.MessageID) {
		return nil, ErrInFlight
	}
	defer h.finish(msg.MessageID)

	content := strings.TrimSpace(msg.Content)
	switch {
	case content == "":
		return commandReply(h.assistant.HelpMessage()), nil
	case strings.HasPrefix(content, "!"):
		return h.handleCommand(content, msg)
	default:
		reply, err := h.answerQuestion(ctx, content, msg, false)
		if err != nil {
			return nil, err
		}
		h.trackReply(msg, reply)
		return reply, nil
	}
}

// HandleEdit regenerates the reply for an edited question. Edits to
// messages the handler is not tracking are ignored and return a nil reply,
// as are edits that turn the message into a command or blank it out.
func (h *Handler) HandleEdit(ctx context.Context, messageID, content string) (*models.Reply, error) {
	h.mu.Lock()
	tracked, ok := h.replies[messageID]
	var msg models.InboundMessage
	if ok {
		msg = tracked.msg
	}
	h.mu.Unlock()
	if !ok {
		return nil, nil
	}

	content = strings.TrimSpace(content)
	if content == "" || strings.HasPrefix(content, "!") {
		return nil, nil
	}

	if !h.begin(messageID) {
		return nil, ErrInFlight
	}
	defer h.finish(messageID)

	msg.Content = content
	reply, err := h.answerQuestion(ctx, content, msg, true)
	if err != nil {
		return nil, err
	}

	// Update only if still tracked; the cleanup pass may have evicted the
	// entry while the answer was being generated.
	h.mu.Lock()
	if current, stillTracked := h.replies[messageID]; stillTracked {
		current.msg = msg
		current.reply = reply
		current.trackedAt = h.now()
	}
	h.mu.Unlock()

	return reply, nil
}

// answerQuestion runs the assistant and publishes the matching event. A
// generation failure is folded into the returned reply; the pipeline
// already made sure nothing was charged.
func (h *Handler) answerQuestion(ctx context.Context, question string, msg models.InboundMessage, edited bool) (*models.Reply, error) {
	reply, err := h.assistant.Answer(ctx, question, msg.Identity(), msg.ConversationKey())
	if err != nil {
		if reply == nil {
			return nil, err
		}
		h.logger.Warn("replying with failure text",
			zap.String("message_id", msg.MessageID),
			zap.Error(err))
		h.publish(models.NewBotEvent(models.EventTypeQuestionFailed, msg).
			WithMetadata("error", err.Error()))
		return reply, nil
	}

	if reply.Limited {
		h.publish(models.NewBotEvent(models.EventTypeQuestionRejected, msg))
		return reply, nil
	}

	event := models.NewBotEvent(models.EventTypeQuestionAnswered, msg).
		WithMetadata("sources", reply.Sources)
	if edited {
		event = event.WithMetadata("edited", true)
	}
	h.publish(event)

	return reply, nil
}

// begin claims the in-flight slot for a message ID.
func (h *Handler) begin(messageID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.inflight[messageID]; exists {
		return false
	}
	h.inflight[messageID] = struct{}{}
	return true
}

// finish releases the in-flight slot.
func (h *Handler) finish(messageID string) {
	h.mu.Lock()
	delete(h.inflight, messageID)
	h.mu.Unlock()
}

// trackReply remembers the reply for edit regeneration, evicting the
// oldest entry when the cap is exceeded.
func (h *Handler) trackReply(msg models.InboundMessage, reply *models.Reply) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.replies[msg.MessageID] = &trackedReply{
		msg:       msg,
		reply:     reply,
		trackedAt: h.now(),
	}
	if len(h.replies) > h.config.MaxTrackedReplies {
		h.evictOldestLocked()
	}
}

// evictOldestLocked drops the oldest tracked reply. Callers hold the lock.
func (h *Handler) evictOldestLocked() {
	oldestID := ""
	var oldestAt time.Time
	for id, tracked := range h.replies {
		if oldestID == "" || tracked.trackedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = tracked.trackedAt
		}
	}
	if oldestID != "" {
		delete(h.replies, oldestID)
	}
}

// publish sends the event without blocking the interaction. Failures are
// logged and dropped.
func (h *Handler) publish(event models.BotEvent) {
	go func() {
		if err := h.publisher.Publish(context.Background(), event); err != nil {
			h.logger.Warn("event publish failed",
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}()
}

// StartCleanup runs the periodic cleanup pass until the context ends.
func (h *Handler) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanup()
			}
		}
	}()
}

// cleanup prunes idle conversations, stale quota counters, and aged
// tracked replies.
func (h *Handler) cleanup() {
	cutoff := h.now().Add(-h.config.CounterRetention)
	conversations, counters := h.assistant.Prune(h.config.MaxConversations, cutoff)
	replies := h.pruneReplies(cutoff)

	if conversations > 0 || counters > 0 || replies > 0 {
		h.logger.Info("cleanup pass",
			zap.Int("conversations", conversations),
			zap.Int("counters", counters),
			zap.Int("replies", replies))
	}
}

// pruneReplies drops tracked replies older than the cutoff, then enforces
// the cap. Returns the eviction count.
func (h *Handler) pruneReplies(cutoff time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	evicted := 0
	for id, tracked := range h.replies {
		if tracked.trackedAt.Before(cutoff) {
			delete(h.replies, id)
			evicted++
		}
	}
	for len(h.replies) > h.config.MaxTrackedReplies {
		h.evictOldestLocked()
		evicted++
	}
	return evicted
}

// Stats reports the assistant's counters plus the handler's own.
func (h *Handler) Stats() models.ServiceStats {
	stats := h.assistant.ServiceStats()

	h.mu.Lock()
	stats.TrackedReplies = len(h.replies)
	h.mu.Unlock()

	return stats
}
