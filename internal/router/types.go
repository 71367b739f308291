// Package router classifies user messages into intents and tool-call
// plans. Classification is deterministic and pattern-based; every
// message yields exactly one intent.
package router

import (
	"time"

	"github.com/normanking/synapse/pkg/types"
)

// IntentType is the closed classification of what a message is trying
// to accomplish.
type IntentType string

const (
	// IntentKnowledgeRetrieval asks for information from the knowledge base.
	IntentKnowledgeRetrieval IntentType = "knowledge_retrieval"
	// IntentMemoryAccess refers back to earlier conversation or stored facts.
	IntentMemoryAccess IntentType = "memory_access"
	// IntentClarificationNeeded marks a message too ambiguous to act on.
	IntentClarificationNeeded IntentType = "clarification_needed"
	// IntentConversation is plain conversational chatter needing no tools.
	IntentConversation IntentType = "conversation"
	// IntentMultiTool combines memory recall with knowledge search.
	IntentMultiTool IntentType = "multi_tool"
)

// AllIntentTypes returns all valid intent types for validation.
func AllIntentTypes() []IntentType {
	return []IntentType{
		IntentKnowledgeRetrieval,
		IntentMemoryAccess,
		IntentClarificationNeeded,
		IntentConversation,
		IntentMultiTool,
	}
}

// String returns the string representation of an IntentType.
func (t IntentType) String() string {
	return string(t)
}

// IsValid checks if an IntentType is a known valid type.
func (t IntentType) IsValid() bool {
	for _, valid := range AllIntentTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// RoutingDecision contains the result of message classification.
// Invariant: every name in SelectedTools has a matching key in
// ToolInputs.
type RoutingDecision struct {
	// Intent is the classified intent category.
	Intent IntentType `json:"intent"`

	// Confidence is the classification confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// SelectedTools lists tool names to execute, in order.
	SelectedTools []string `json:"selected_tools,omitempty"`

	// ToolInputs maps each selected tool name to its structured input.
	ToolInputs map[string]*types.ToolInput `json:"tool_inputs,omitempty"`

	// Reasoning explains why this classification was made.
	Reasoning string `json:"reasoning"`

	// NeedsClarification flags messages too ambiguous to answer directly.
	NeedsClarification bool `json:"needs_clarification,omitempty"`

	// ClarificationQuestion is a suggested question to ask the user.
	ClarificationQuestion string `json:"clarification_question,omitempty"`

	// ClassifiedAt is when the classification was made.
	ClassifiedAt time.Time `json:"classified_at"`

	// ClassificationDuration is how long classification took.
	ClassificationDuration time.Duration `json:"classification_duration"`
}

// Stats tracks routing statistics for monitoring and tuning.
type Stats struct {
	// TotalRequests is the total number of routing requests.
	TotalRequests int64 `json:"total_requests"`

	// FallbackCount is the number of fallback decisions after a
	// classification failure.
	FallbackCount int64 `json:"fallback_count"`

	// AverageConfidence is the running average confidence score.
	AverageConfidence float64 `json:"average_confidence"`

	// IntentDistribution tracks how often each intent is classified.
	IntentDistribution map[IntentType]int64 `json:"intent_distribution"`
}
