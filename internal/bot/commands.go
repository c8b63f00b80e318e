package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haulstack/supportbot/internal/assistant"
	"github.com/haulstack/supportbot/pkg/models"
)

// handleCommand routes a "!" prefixed message. Only the first word counts;
// matching is case-insensitive. Command replies are never tracked, so
// editing a command later does nothing.
func (h *Handler) handleCommand(content string, msg models.InboundMessage) (*models.Reply, error) {
	command := strings.ToLower(strings.Fields(content)[0])

	switch command {
	case "!help":
		return commandReply(h.assistant.HelpMessage()), nil

	case "!stats":
		stats := h.assistant.StatsFor(msg.Identity(), msg.ConversationKey())
		return commandReply(renderStats(stats)), nil

	case "!clear":
		h.assistant.ClearHistory(msg.ConversationKey())
		h.publish(models.NewBotEvent(models.EventTypeHistoryCleared, msg))
		return commandReply("Got it, I've cleared our conversation. Ask me anything to start fresh."), nil

	case "!refresh":
		return h.handleRefresh(msg)

	default:
		h.publish(models.NewBotEvent(models.EventTypeCommandUnknown, msg).
			WithMetadata("command", command))
		return commandReply(fmt.Sprintf("I don't recognize %s.\n\n%s", command, h.assistant.HelpMessage())), nil
	}
}

// handleRefresh reloads the knowledge base for privileged identities. A
// failed refresh leaves the previous corpus serving.
func (h *Handler) handleRefresh(msg models.InboundMessage) (*models.Reply, error) {
	stats, err := h.assistant.RefreshKnowledge(msg.Identity())
	if errors.Is(err, assistant.ErrNotPrivileged) {
		return commandReply("The !refresh command is reserved for staff."), nil
	}
	if err != nil {
		h.logger.Error("knowledge refresh failed",
			zap.String("user_id", msg.UserID),
			zap.Error(err))
		return commandReply("The knowledge base could not be refreshed. The previous version is still active."), nil
	}

	h.publish(models.NewBotEvent(models.EventTypeKnowledgeRefresh, msg).
		WithMetadata("documents", stats.Documents))
	return commandReply(fmt.Sprintf("Knowledge base reloaded: %d documents across %d categories.",
		stats.Documents, len(stats.Categories))), nil
}

// renderStats formats the stats command output.
func renderStats(stats models.UserStats) string {
	var b strings.Builder

	if stats.Unlimited {
		b.WriteString("You have unlimited questions.\n")
	} else {
		fmt.Fprintf(&b, "You have %d questions left today.\n", stats.Remaining)
	}
	fmt.Fprintf(&b, "Our conversation holds %d messages.\n", stats.HistoryLength)
	fmt.Fprintf(&b, "Service: %d documents in %d categories, %d active conversations, %d users today.",
		stats.Service.Documents, len(stats.Service.Categories),
		stats.Service.ActiveConversations, stats.Service.ActiveUsers)

	return b.String()
}

// commandReply wraps plain text in a reply envelope.
func commandReply(text string) *models.Reply {
	return &models.Reply{
		Text:       text,
		AnsweredAt: time.Now().UTC(),
	}
}
