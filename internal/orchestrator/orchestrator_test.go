package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/synapse/internal/acontext"
	"github.com/normanking/synapse/internal/bus"
	"github.com/normanking/synapse/internal/knowledge"
	"github.com/normanking/synapse/internal/memory"
	"github.com/normanking/synapse/internal/response"
	"github.com/normanking/synapse/internal/router"
	"github.com/normanking/synapse/internal/tools"
	"github.com/normanking/synapse/pkg/types"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()

	store := memory.NewStore("test-session")

	kstore, err := knowledge.Open(context.Background(), ":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { kstore.Close() })

	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(tools.NewMemoryRecallTool(store)))
	require.NoError(t, registry.Register(tools.NewKnowledgeSearchTool(kstore)))
	require.NoError(t, registry.Register(tools.NewClarificationCheckTool()))

	builder := acontext.NewBuilder(registry)
	generator := response.NewRuleBased(registry)

	return New(router.New(), registry, builder, generator, store)
}

func TestProcessMessage_Greeting(t *testing.T) {
	o := newTestOrchestrator(t)

	result := o.ProcessMessage(context.Background(), "Hello!")

	require.True(t, result.Success)
	assert.Equal(t, router.IntentConversation, result.Decision.Intent)
	assert.Empty(t, result.ToolResults)
	assert.Equal(t, "Hello! How can I help you today?", result.Response)
	assert.Positive(t, result.TotalTime)

	// Greeting exchanges are not promoted.
	assert.Zero(t, o.SessionInfo().LongTermCount)
	assert.Equal(t, 2, o.SessionInfo().MessageCount)
}

func TestProcessMessage_KnowledgeRetrieval(t *testing.T) {
	o := newTestOrchestrator(t)

	result := o.ProcessMessage(context.Background(), "How do I implement caching in TypeScript?")

	require.True(t, result.Success)
	assert.Equal(t, router.IntentKnowledgeRetrieval, result.Decision.Intent)

	input := result.Decision.ToolInputs[types.ToolKnowledgeSearch]
	require.NotNil(t, input)
	assert.Equal(t, knowledge.CategoryProgramming, input.Category)

	require.Len(t, result.ToolResults, 1)
	require.True(t, result.ToolResults[0].Success)

	search, ok := result.ToolResults[0].Data.(tools.KnowledgeResult)
	require.True(t, ok)
	require.NotEmpty(t, search.Entries)

	matched := false
	for _, e := range search.Entries {
		text := strings.ToLower(e.Title + " " + e.Content)
		if strings.Contains(text, "typescript") || strings.Contains(text, "caching") {
			matched = true
		}
	}
	assert.True(t, matched, "expected a caching-related knowledge entry")

	// Knowledge exchanges are promoted into long-term memory.
	assert.Equal(t, 1, o.SessionInfo().LongTermCount)
}

func TestProcessMessage_Clarification(t *testing.T) {
	o := newTestOrchestrator(t)

	result := o.ProcessMessage(context.Background(), "it")

	require.True(t, result.Success)
	assert.Equal(t, router.IntentClarificationNeeded, result.Decision.Intent)
	assert.True(t, result.Decision.NeedsClarification)

	require.Len(t, result.ToolResults, 1)
	clar, ok := result.ToolResults[0].Data.(tools.ClarificationResult)
	require.True(t, ok)
	assert.Equal(t, tools.AmbiguityHigh, clar.Level)
	assert.NotEmpty(t, clar.SuggestedQuestions)

	assert.NotEmpty(t, result.Response)
}

func TestProcessMessage_MemoryRoundTrip(t *testing.T) {
	o := newTestOrchestrator(t)

	first := o.ProcessMessage(context.Background(), "How do I implement caching in TypeScript?")
	require.True(t, first.Success)
	require.Equal(t, 1, o.SessionInfo().LongTermCount)

	second := o.ProcessMessage(context.Background(), "What did we discuss about caching earlier?")
	require.True(t, second.Success)
	assert.Equal(t, router.IntentMemoryAccess, second.Decision.Intent)

	require.Len(t, second.ToolResults, 1)
	search, ok := second.ToolResults[0].Data.(memory.SearchResult)
	require.True(t, ok)
	assert.NotEmpty(t, search.Entries, "promoted exchange should be recalled")
}

func TestProcessMessage_RouterSeesPriorHistoryOnly(t *testing.T) {
	o := newTestOrchestrator(t)

	o.ProcessMessage(context.Background(), "Hello!")
	assert.Equal(t, 2, o.SessionInfo().MessageCount)

	o.ProcessMessage(context.Background(), "I went hiking last weekend with friends")
	assert.Equal(t, 4, o.SessionInfo().MessageCount)

	history := o.ConversationHistory()
	require.Len(t, history, 4)
	assert.Equal(t, types.RoleUser, history[0].Role)
	assert.Equal(t, types.RoleAssistant, history[1].Role)
}

func TestProcessMessage_GeneratorFailure(t *testing.T) {
	store := memory.NewStore("test-session")
	registry := tools.NewRegistry()
	builder := acontext.NewBuilder(registry)

	o := New(router.New(), registry, builder, &failingGenerator{}, store)

	result := o.ProcessMessage(context.Background(), "Hello!")

	assert.False(t, result.Success)
	assert.Equal(t, apologyResponse, result.Response)
	assert.Contains(t, result.Error, "generator exploded")
}

type failingGenerator struct{}

func (f *failingGenerator) Generate(ctx context.Context, frame *acontext.Frame) (*response.Response, error) {
	return nil, fmt.Errorf("generator exploded")
}

func TestReset_Idempotent(t *testing.T) {
	o := newTestOrchestrator(t)

	o.ProcessMessage(context.Background(), "How do I implement caching in TypeScript?")
	require.NotZero(t, o.SessionInfo().MessageCount)
	longTerm := o.SessionInfo().LongTermCount

	o.Reset()
	assert.Zero(t, o.SessionInfo().MessageCount)

	o.Reset()
	assert.Zero(t, o.SessionInfo().MessageCount)

	// Long-term memory survives a session reset.
	assert.Equal(t, longTerm, o.SessionInfo().LongTermCount)
}

func TestProcessMessage_PublishesLifecycleEvents(t *testing.T) {
	store := memory.NewStore("test-session")

	kstore, err := knowledge.Open(context.Background(), ":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { kstore.Close() })

	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(tools.NewKnowledgeSearchTool(kstore)))

	events := bus.New()
	var seen []bus.EventType
	events.SubscribeAll(func(e bus.Event) { seen = append(seen, e.Type) })

	o := New(router.New(), registry, acontext.NewBuilder(registry),
		response.NewRuleBased(registry), store, WithBus(events))

	result := o.ProcessMessage(context.Background(), "How do I implement caching in TypeScript?")
	require.True(t, result.Success)

	assert.Equal(t, []bus.EventType{
		bus.EventMessageReceived,
		bus.EventRoutingCompleted,
		bus.EventToolExecuted,
		bus.EventResponseReady,
	}, seen)
}

func TestSessionInfo(t *testing.T) {
	o := newTestOrchestrator(t)

	info := o.SessionInfo()
	assert.Equal(t, "test-session", info.SessionID)
	assert.False(t, info.StartedAt.IsZero())
	assert.Zero(t, info.MessageCount)
}
