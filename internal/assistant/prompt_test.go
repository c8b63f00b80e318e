package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haulstack/supportbot/internal/conversation"
)

func TestBuildPromptAllSections(t *testing.T) {
	snippets := []string{"INSTALL_DOC", "PRICING_DOC"}
	history := []conversation.Entry{
		{Role: conversation.RoleUser, Content: "what plans do you have?"},
		{Role: conversation.RoleAssistant, Content: "Starter, Fleet, and Enterprise."},
	}

	prompt := buildPrompt(snippets, history, "which one includes the API?")

	contextAt := strings.Index(prompt, "Context from the knowledge base:")
	historyAt := strings.Index(prompt, "Recent conversation:")
	questionAt := strings.Index(prompt, "Question: which one includes the API?")

	assert.GreaterOrEqual(t, contextAt, 0)
	assert.Greater(t, historyAt, contextAt, "history follows the context section")
	assert.Greater(t, questionAt, historyAt, "the question comes last")

	assert.Contains(t, prompt, "INSTALL_DOC")
	assert.Contains(t, prompt, "PRICING_DOC")
	assert.Contains(t, prompt, "User: what plans do you have?")
	assert.Contains(t, prompt, "Assistant: Starter, Fleet, and Enterprise.")
}

func TestBuildPromptOmitsEmptyContext(t *testing.T) {
	history := []conversation.Entry{{Role: conversation.RoleUser, Content: "hello"}}

	prompt := buildPrompt(nil, history, "where is my load?")
	assert.NotContains(t, prompt, "Context from the knowledge base:")
	assert.Contains(t, prompt, "Recent conversation:")
}

func TestBuildPromptOmitsEmptyHistory(t *testing.T) {
	prompt := buildPrompt([]string{"TRACKING_DOC"}, nil, "where is my load?")
	assert.Contains(t, prompt, "Context from the knowledge base:")
	assert.NotContains(t, prompt, "Recent conversation:")
}

func TestBuildPromptBareQuestion(t *testing.T) {
	prompt := buildPrompt(nil, nil, "why is my load stuck")
	assert.Equal(t, "Question: why is my load stuck", prompt)
}
