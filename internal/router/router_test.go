package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/synapse/pkg/types"
)

func userMsg(content string) types.Message {
	return types.NewMessage(types.RoleUser, content)
}

func TestRoute_MultiTool(t *testing.T) {
	r := New()

	d := r.Route(userMsg("What did we discuss about how to design caching?"), nil)

	assert.Equal(t, IntentMultiTool, d.Intent)
	assert.Equal(t, 0.85, d.Confidence)
	assert.Equal(t, []string{types.ToolMemoryRecall, types.ToolKnowledgeSearch}, d.SelectedTools)
	for _, name := range d.SelectedTools {
		assert.Contains(t, d.ToolInputs, name)
	}
}

func TestRoute_MemoryAccess(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		timeframe types.Timeframe
	}{
		{"recall with day trigger", "What did we talk about yesterday?", types.TimeframeDay},
		{"recall with week trigger", "Remind me what we covered last week", types.TimeframeWeek},
		{"recall with month trigger", "What did we discuss recently?", types.TimeframeMonth},
		{"recall without trigger", "Do you remember my deployment setup?", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			d := r.Route(userMsg(tt.message), nil)

			assert.Equal(t, IntentMemoryAccess, d.Intent)
			assert.Equal(t, 0.9, d.Confidence)
			require.Equal(t, []string{types.ToolMemoryRecall}, d.SelectedTools)

			input := d.ToolInputs[types.ToolMemoryRecall]
			require.NotNil(t, input)
			assert.Equal(t, tt.timeframe, input.Timeframe)
			assert.NotEmpty(t, input.Keywords)
		})
	}
}

func TestRoute_KnowledgeRetrieval(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		category string
	}{
		{"programming question", "How do I implement caching in TypeScript?", "programming"},
		{"design question", "Explain pipeline architecture patterns", "design"},
		{"data question", "What is the best way to index a database table?", "data"},
		{"no category", "Tell me more about your capabilities", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			d := r.Route(userMsg(tt.message), nil)

			assert.Equal(t, IntentKnowledgeRetrieval, d.Intent)
			assert.Equal(t, 0.9, d.Confidence)
			require.Equal(t, []string{types.ToolKnowledgeSearch}, d.SelectedTools)

			input := d.ToolInputs[types.ToolKnowledgeSearch]
			require.NotNil(t, input)
			assert.Equal(t, tt.category, input.Category)
		})
	}
}

func TestRoute_Clarification(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{"bare pronoun", "it"},
		{"single noun", "Kubernetes"},
		{"bare reply", "yes"},
		{"short noun phrase", "the database thing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			d := r.Route(userMsg(tt.message), nil)

			assert.Equal(t, IntentClarificationNeeded, d.Intent)
			assert.Equal(t, 0.85, d.Confidence)
			assert.True(t, d.NeedsClarification)
			assert.NotEmpty(t, d.ClarificationQuestion)
			require.Equal(t, []string{types.ToolClarificationCheck}, d.SelectedTools)
			assert.Contains(t, d.ToolInputs, types.ToolClarificationCheck)
		})
	}
}

func TestRoute_ClarificationCarriesRecentHistory(t *testing.T) {
	r := New()
	history := []types.Message{
		userMsg("first"),
		userMsg("second"),
		userMsg("third"),
		userMsg("fourth"),
		userMsg("fifth"),
	}

	d := r.Route(userMsg("Kubernetes"), history)

	require.Equal(t, IntentClarificationNeeded, d.Intent)
	input := d.ToolInputs[types.ToolClarificationCheck]
	require.NotNil(t, input)

	carried, ok := input.Parameters["history"].([]string)
	require.True(t, ok, "history parameter should be a string slice")
	require.Len(t, carried, historyContextSize)
	assert.Contains(t, carried[0], "third")
	assert.Contains(t, carried[2], "fifth")
}

func TestRoute_Conversation(t *testing.T) {
	tests := []string{
		"Hello!",
		"Thanks, that was helpful",
		"Good morning",
		"I had a great weekend hiking with friends",
	}

	for _, message := range tests {
		t.Run(message, func(t *testing.T) {
			r := New()
			d := r.Route(userMsg(message), nil)

			assert.Equal(t, IntentConversation, d.Intent)
			assert.Equal(t, 0.95, d.Confidence)
			assert.Empty(t, d.SelectedTools)
		})
	}
}

func TestRoute_Deterministic(t *testing.T) {
	r := New()
	msg := userMsg("How do I implement caching in TypeScript?")

	first := r.Route(msg, nil)
	second := r.Route(msg, nil)

	assert.Equal(t, first.Intent, second.Intent)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.SelectedTools, second.SelectedTools)
}

func TestRouter_Stats(t *testing.T) {
	r := New()

	r.Route(userMsg("Hello!"), nil)
	r.Route(userMsg("How do I implement caching?"), nil)
	r.Route(userMsg("Kubernetes"), nil)

	stats := r.GetStats()
	assert.Equal(t, int64(3), stats.TotalRequests)
	assert.Equal(t, int64(0), stats.FallbackCount)
	assert.Equal(t, int64(1), stats.IntentDistribution[IntentConversation])
	assert.Equal(t, int64(1), stats.IntentDistribution[IntentKnowledgeRetrieval])
	assert.Equal(t, int64(1), stats.IntentDistribution[IntentClarificationNeeded])
	assert.InDelta(t, (0.95+0.9+0.85)/3, stats.AverageConfidence, 1e-9)
}

func TestIntentType_IsValid(t *testing.T) {
	for _, intent := range AllIntentTypes() {
		assert.True(t, intent.IsValid(), intent.String())
	}
	assert.False(t, IntentType("end_session").IsValid())
}
