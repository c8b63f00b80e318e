package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haulstack/supportbot/internal/conversation"
	"github.com/haulstack/supportbot/internal/knowledge"
	"github.com/haulstack/supportbot/internal/quota"
	"github.com/haulstack/supportbot/pkg/models"
)

var (
	// ErrNotPrivileged is returned when a standard identity attempts an
	// operation reserved for privileged roles or users.
	ErrNotPrivileged = errors.New("identity is not privileged")

	// ErrEmptyQuestion is returned when Answer receives blank input. The
	// message boundary routes those to the help text before calling here.
	ErrEmptyQuestion = errors.New("question is empty")
)

// GenerationFailureMessage is shown when the model call fails. The question
// is not charged, so the user can simply retry.
const GenerationFailureMessage = "Sorry, I couldn't put an answer together right now. Please try again in a moment. Your question was not counted against today's limit."

// Generator produces answer text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service orchestrates the answer pipeline: quota gate, knowledge
// retrieval, conversation history, prompt assembly, and generation.
type Service struct {
	engine    *knowledge.Engine
	memory    *conversation.Store
	quota     *quota.Tracker
	generator Generator
	logger    *zap.Logger
}

// NewService wires the pipeline collaborators together.
func NewService(engine *knowledge.Engine, memory *conversation.Store, tracker *quota.Tracker, generator Generator, logger *zap.Logger) *Service {
	return &Service{
		engine:    engine,
		memory:    memory,
		quota:     tracker,
		generator: generator,
		logger:    logger,
	}
}

// Answer runs one question through the pipeline. A quota rejection is a
// normal reply (Limited set), not an error. On generation failure the
// returned reply carries the canned failure text alongside the error, and
// nothing is charged or recorded, so retrying costs the user nothing.
// History and usage are only written after a successful generation.
func (s *Service) Answer(ctx context.Context, question string, identity models.Identity, conversationKey string) (*models.Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	if !s.quota.CanAsk(identity) {
		s.logger.Info("question rejected, daily limit reached",
			zap.String("user_id", identity.UserID),
			zap.Int("limit", s.quota.Limit()))
		return &models.Reply{
			Text:       s.quota.LimitMessage(),
			Limited:    true,
			AnsweredAt: time.Now().UTC(),
		}, nil
	}

	snippets := s.engine.Retrieve(question)
	history := s.memory.History(conversationKey)
	prompt := buildPrompt(snippets, history, question)

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("answer generation failed",
			zap.String("user_id", identity.UserID),
			zap.Error(err))
		remaining, unlimited := s.quota.Remaining(identity)
		return &models.Reply{
			Text:       GenerationFailureMessage,
			Failed:     true,
			Remaining:  remaining,
			Unlimited:  unlimited,
			AnsweredAt: time.Now().UTC(),
		}, fmt.Errorf("generate answer: %w", err)
	}

	s.memory.Add(conversationKey, conversation.RoleUser, question)
	s.memory.Add(conversationKey, conversation.RoleAssistant, answer)
	s.quota.Increment(identity)

	remaining, unlimited := s.quota.Remaining(identity)
	s.logger.Debug("question answered",
		zap.String("user_id", identity.UserID),
		zap.Int("sources", len(snippets)),
		zap.Int("remaining", remaining))

	return &models.Reply{
		Text:       answer,
		Remaining:  remaining,
		Unlimited:  unlimited,
		Sources:    len(snippets),
		AnsweredAt: time.Now().UTC(),
	}, nil
}

// RefreshKnowledge revalidates and reloads the knowledge base. Privileged
// identities only.
func (s *Service) RefreshKnowledge(identity models.Identity) (knowledge.Stats, error) {
	if !s.quota.Privileged(identity) {
		return knowledge.Stats{}, ErrNotPrivileged
	}

	stats, err := s.engine.Refresh()
	if err != nil {
		s.logger.Error("knowledge refresh failed", zap.Error(err))
		return knowledge.Stats{}, err
	}

	s.logger.Info("knowledge base refreshed",
		zap.String("user_id", identity.UserID),
		zap.Int("documents", stats.Documents))
	return stats, nil
}

// ClearHistory forgets the conversation behind the key. Quota counters are
// untouched.
func (s *Service) ClearHistory(conversationKey string) {
	s.memory.Clear(conversationKey)
	s.logger.Debug("conversation cleared", zap.String("conversation", conversationKey))
}

// StatsFor reports the identity's quota standing and history depth along
// with service-wide numbers.
func (s *Service) StatsFor(identity models.Identity, conversationKey string) models.UserStats {
	remaining, unlimited := s.quota.Remaining(identity)
	return models.UserStats{
		Remaining:     remaining,
		Unlimited:     unlimited,
		HistoryLength: len(s.memory.History(conversationKey)),
		Service:       s.ServiceStats(),
	}
}

// ServiceStats aggregates counts across the pipeline stores.
func (s *Service) ServiceStats() models.ServiceStats {
	knowledgeStats := s.engine.Stats()
	memoryStats := s.memory.Stats()
	return models.ServiceStats{
		Documents:           knowledgeStats.Documents,
		Categories:          knowledgeStats.Categories,
		ActiveConversations: memoryStats.ActiveConversations,
		TotalMessages:       memoryStats.TotalMessages,
		ActiveUsers:         s.quota.ActiveUsers(),
	}
}

// HelpMessage describes the bot's commands and the daily cap.
func (s *Service) HelpMessage() string {
	return fmt.Sprintf(`Hi! I'm HaulBot, the HaulStack support assistant. Ask me anything about loads, trucks, billing, or the API and I'll answer from our help docs.

Commands:
  !help     show this message
  !stats    your remaining questions and service numbers
  !clear    forget our current conversation
  !refresh  reload the knowledge base (staff only)

Standard accounts get %d questions per day. The counter resets at midnight.`, s.quota.Limit())
}

// Prune evicts idle conversations past the cap and quota counters whose
// window started before the cutoff. Returns the eviction counts.
func (s *Service) Prune(maxConversations int, countersBefore time.Time) (int, int) {
	conversations := s.memory.Prune(maxConversations)
	counters := s.quota.Prune(countersBefore)
	if conversations > 0 || counters > 0 {
		s.logger.Debug("pruned idle state",
			zap.Int("conversations", conversations),
			zap.Int("counters", counters))
	}
	return conversations, counters
}
