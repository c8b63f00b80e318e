package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haulstack/supportbot/internal/conversation"
	"github.com/haulstack/supportbot/internal/knowledge"
	"github.com/haulstack/supportbot/internal/quota"
	"github.com/haulstack/supportbot/pkg/models"
)

// stubGenerator counts calls and returns a fixed answer or error.
type stubGenerator struct {
	mu         sync.Mutex
	answer     string
	err        error
	calls      int
	lastPrompt string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastPrompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *stubGenerator) prompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastPrompt
}

func newTestService(t *testing.T, gen *stubGenerator, quotaConfig quota.Config) *Service {
	t.Helper()

	engine, err := knowledge.NewEngine([]knowledge.Document{
		{Keywords: []string{"install"}, Content: "INSTALL_DOC", Category: "getting-started", Priority: 10},
		{Keywords: []string{"pricing"}, Content: "PRICING_DOC", Category: "billing", Priority: 5},
	}, knowledge.DefaultEngineConfig())
	require.NoError(t, err)

	tracker, err := quota.NewTracker(quotaConfig)
	require.NoError(t, err)

	return NewService(engine, conversation.NewStore(10), tracker, gen, zap.NewNop())
}

func testIdentity() models.Identity {
	return models.Identity{UserID: "u-1", Username: "dispatcher-dan", Roles: []string{"member"}}
}

func TestAnswerSuccessRecordsAndCharges(t *testing.T) {
	gen := &stubGenerator{answer: "Install the HaulStack agent from the downloads page."}
	svc := newTestService(t, gen, quota.Config{DailyLimit: 5})
	identity := testIdentity()

	reply, err := svc.Answer(context.Background(), "how to install the agent", identity, "chan:u-1")
	require.NoError(t, err)
	require.NotNil(t, reply)

	assert.Equal(t, gen.answer, reply.Text)
	assert.False(t, reply.Limited)
	assert.False(t, reply.Failed)
	assert.Equal(t, 1, reply.Sources, "only the install document should clear the threshold")
	assert.Equal(t, 4, reply.Remaining)
	assert.False(t, reply.Unlimited)
	assert.False(t, reply.AnsweredAt.IsZero())

	history := svc.memory.History("chan:u-1")
	require.Len(t, history, 2)
	assert.Equal(t, conversation.RoleUser, history[0].Role)
	assert.Equal(t, "how to install the agent", history[0].Content)
	assert.Equal(t, conversation.RoleAssistant, history[1].Role)
	assert.Equal(t, gen.answer, history[1].Content)

	assert.Equal(t, 1, gen.callCount())
	assert.Contains(t, gen.prompt(), "Context from the knowledge base:")
	assert.Contains(t, gen.prompt(), "INSTALL_DOC")
	assert.Contains(t, gen.prompt(), "Question: how to install the agent")
}

func TestAnswerFailureChargesNothing(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream timeout")}
	svc := newTestService(t, gen, quota.Config{DailyLimit: 5})
	identity := testIdentity()

	reply, err := svc.Answer(context.Background(), "how to install the agent", identity, "chan:u-1")
	require.Error(t, err)
	require.NotNil(t, reply, "a failure still produces a user-facing reply")

	assert.True(t, reply.Failed)
	assert.Equal(t, GenerationFailureMessage, reply.Text)
	assert.Equal(t, 5, reply.Remaining, "failed generation must not consume quota")

	assert.Empty(t, svc.memory.History("chan:u-1"), "failed generation must not touch history")

	// A retry after the failure still has the full allowance.
	gen.mu.Lock()
	gen.err = nil
	gen.answer = "retry answer"
	gen.mu.Unlock()

	reply, err = svc.Answer(context.Background(), "how to install the agent", identity, "chan:u-1")
	require.NoError(t, err)
	assert.Equal(t, 4, reply.Remaining)
	assert.Len(t, svc.memory.History("chan:u-1"), 2)
}

func TestAnswerLimitedSkipsGenerator(t *testing.T) {
	gen := &stubGenerator{answer: "answer"}
	svc := newTestService(t, gen, quota.Config{DailyLimit: 1})
	identity := testIdentity()

	reply, err := svc.Answer(context.Background(), "pricing question", identity, "chan:u-1")
	require.NoError(t, err)
	assert.False(t, reply.Limited)

	reply, err = svc.Answer(context.Background(), "another question", identity, "chan:u-1")
	require.NoError(t, err, "hitting the limit is not an error")
	assert.True(t, reply.Limited)
	assert.Contains(t, reply.Text, "midnight")

	assert.Equal(t, 1, gen.callCount(), "limited questions never reach the generator")
	assert.Len(t, svc.memory.History("chan:u-1"), 2, "limited questions are not recorded")
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	gen := &stubGenerator{answer: "answer"}
	svc := newTestService(t, gen, quota.Config{DailyLimit: 5})

	reply, err := svc.Answer(context.Background(), "   \t  ", testIdentity(), "chan:u-1")
	require.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Nil(t, reply)
	assert.Equal(t, 0, gen.callCount())
}

func TestAnswerPrivilegedIsUnlimited(t *testing.T) {
	gen := &stubGenerator{answer: "answer"}
	svc := newTestService(t, gen, quota.Config{DailyLimit: 1, PrivilegedUsers: []string{"staff-9"}})
	identity := models.Identity{UserID: "staff-9", Username: "ops"}

	for i := 0; i < 4; i++ {
		reply, err := svc.Answer(context.Background(), "how to install", identity, "chan:staff-9")
		require.NoError(t, err)
		assert.False(t, reply.Limited)
		assert.True(t, reply.Unlimited)
	}
	assert.Equal(t, 4, gen.callCount())
}

func TestRefreshKnowledgeRequiresPrivilege(t *testing.T) {
	gen := &stubGenerator{answer: "answer"}
	svc := newTestService(t, gen, quota.Config{DailyLimit: 5, PrivilegedRoles: []string{"admin"}})

	_, err := svc.RefreshKnowledge(testIdentity())
	require.ErrorIs(t, err, ErrNotPrivileged)

	stats, err := svc.RefreshKnowledge(models.Identity{UserID: "u-2", Roles: []string{"admin"}})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, map[string]int{"getting-started": 1, "billing": 1}, stats.Categories)
}

func TestClearHistory(t *testing.T) {
	gen := &stubGenerator{answer: "answer"}
	svc := newTestService(t, gen, quota.Config{DailyLimit: 5})
	identity := testIdentity()

	_, err := svc.Answer(context.Background(), "how to install", identity, "chan:u-1")
	require.NoError(t, err)
	require.NotEmpty(t, svc.memory.History("chan:u-1"))

	svc.ClearHistory("chan:u-1")
	assert.Empty(t, svc.memory.History("chan:u-1"))

	// Quota stands regardless of the wiped conversation.
	stats := svc.StatsFor(identity, "chan:u-1")
	assert.Equal(t, 4, stats.Remaining)
	assert.Equal(t, 0, stats.HistoryLength)
}

func TestStatsFor(t *testing.T) {
	gen := &stubGenerator{answer: "answer"}
	svc := newTestService(t, gen, quota.Config{DailyLimit: 5})
	identity := testIdentity()

	_, err := svc.Answer(context.Background(), "how to install", identity, "chan:u-1")
	require.NoError(t, err)

	stats := svc.StatsFor(identity, "chan:u-1")
	assert.Equal(t, 4, stats.Remaining)
	assert.False(t, stats.Unlimited)
	assert.Equal(t, 2, stats.HistoryLength)
	assert.Equal(t, 2, stats.Service.Documents)
	assert.Equal(t, map[string]int{"getting-started": 1, "billing": 1}, stats.Service.Categories)
	assert.Equal(t, 1, stats.Service.ActiveConversations)
	assert.Equal(t, 2, stats.Service.TotalMessages)
	assert.Equal(t, 1, stats.Service.ActiveUsers)
}

func TestHelpMessageListsCommands(t *testing.T) {
	gen := &stubGenerator{answer: "answer"}
	svc := newTestService(t, gen, quota.Config{DailyLimit: 10})

	help := svc.HelpMessage()
	for _, command := range []string{"!help", "!stats", "!clear", "!refresh"} {
		assert.Contains(t, help, command)
	}
	assert.Contains(t, help, "10 questions per day")
}

func TestPruneEvictsConversationsAndCounters(t *testing.T) {
	gen := &stubGenerator{answer: "answer"}
	svc := newTestService(t, gen, quota.Config{DailyLimit: 5})

	for _, key := range []string{"chan:u-1", "chan:u-2", "chan:u-3"} {
		svc.memory.Add(key, conversation.RoleUser, "hello")
	}
	svc.quota.Increment(models.Identity{UserID: "u-1"})
	svc.quota.Increment(models.Identity{UserID: "u-2"})

	conversations, counters := svc.Prune(1, time.Now().Add(time.Hour))
	assert.Equal(t, 2, conversations)
	assert.Equal(t, 2, counters)
	assert.Equal(t, 1, svc.memory.Stats().ActiveConversations)
	assert.Equal(t, 0, svc.quota.ActiveUsers())
}
