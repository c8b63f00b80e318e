package assistant

import (
	"strings"

	"github.com/haulstack/supportbot/internal/conversation"
)

// buildPrompt assembles the generation prompt from retrieved snippets, the
// recent conversation, and the question. Empty sections are omitted so the
// model never sees a bare header.
func buildPrompt(snippets []string, history []conversation.Entry, question string) string {
	var b strings.Builder

	if len(snippets) > 0 {
		b.WriteString("Context from the knowledge base:\n\n")
		for _, snippet := range snippets {
			b.WriteString(snippet)
			b.WriteString("\n\n")
		}
	}

	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, entry := range history {
			switch entry.Role {
			case conversation.RoleAssistant:
				b.WriteString("Assistant: ")
			default:
				b.WriteString("User: ")
			}
			b.WriteString(entry.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)

	return b.String()
}
