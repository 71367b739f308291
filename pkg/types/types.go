// Package types defines shared types used across all Synapse modules.
package types

import (
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TOKEN ESTIMATION
// ═══════════════════════════════════════════════════════════════════════════════

// CharsPerToken is the heuristic for token estimation (~4 chars per token).
// This is a common approximation for English text with LLM tokenizers.
const CharsPerToken = 4

// EstimateTokens provides a rough token estimate for a given text.
func EstimateTokens(text string) int {
	return len(text) / CharsPerToken
}

// ═══════════════════════════════════════════════════════════════════════════════
// MESSAGES
// ═══════════════════════════════════════════════════════════════════════════════

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is a single conversation turn. Messages are immutable once
// created and are only ever appended to session history.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewMessage creates a message with a fresh ID and timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// TOOLS
// ═══════════════════════════════════════════════════════════════════════════════

// Built-in tool names. Shared between the router (which selects them)
// and the tool registry (which executes them).
const (
	ToolMemoryRecall       = "memory_recall"
	ToolKnowledgeSearch    = "knowledge_search"
	ToolClarificationCheck = "clarification_check"
)

// Timeframe restricts memory search to a recent window.
type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

// Cutoff returns the earliest timestamp included by the timeframe,
// relative to now. An empty or unknown timeframe returns the zero time
// (no cutoff).
func (t Timeframe) Cutoff(now time.Time) time.Time {
	switch t {
	case TimeframeDay:
		return now.Add(-24 * time.Hour)
	case TimeframeWeek:
		return now.Add(-7 * 24 * time.Hour)
	case TimeframeMonth:
		return now.Add(-30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

// IsValid reports whether the timeframe is one of the known windows.
func (t Timeframe) IsValid() bool {
	switch t {
	case TimeframeDay, TimeframeWeek, TimeframeMonth:
		return true
	}
	return false
}

// ToolInput carries the structured input for a tool invocation. Each
// tool interprets only the subset of fields it understands; unused
// fields are ignored, never an error.
type ToolInput struct {
	// Query is the free-text query, usually the raw user message.
	Query string `json:"query,omitempty"`

	// Timeframe restricts time-windowed tools (memory recall).
	Timeframe Timeframe `json:"timeframe,omitempty"`

	// Category narrows category-aware tools (knowledge search).
	Category string `json:"category,omitempty"`

	// Keywords are pre-extracted search keywords.
	Keywords []string `json:"keywords,omitempty"`

	// Parameters holds free-form tool-specific parameters.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// ToolResult is the outcome of a single tool execution.
//
// Invariant: Success=false implies Data=nil. Construct results with
// ToolSuccess/ToolFailure so the invariant holds everywhere.
type ToolResult struct {
	// ToolName identifies which tool produced this result.
	ToolName string `json:"tool_name"`

	// Success indicates whether the tool completed normally.
	Success bool `json:"success"`

	// Data is the tool's typed payload. Nil on failure.
	Data any `json:"data,omitempty"`

	// Error contains failure details when Success is false.
	Error string `json:"error,omitempty"`

	// ExecutionTime is recorded even on failure or timeout.
	ExecutionTime time.Duration `json:"execution_time"`

	// Metadata contains tool-specific metadata.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ToolSuccess builds a successful result carrying the tool's payload.
func ToolSuccess(name string, data any, elapsed time.Duration) *ToolResult {
	return &ToolResult{
		ToolName:      name,
		Success:       true,
		Data:          data,
		ExecutionTime: elapsed,
	}
}

// ToolFailure builds a failed result. Data is always nil on failure.
func ToolFailure(name string, errMsg string, elapsed time.Duration) *ToolResult {
	return &ToolResult{
		ToolName:      name,
		Success:       false,
		Data:          nil,
		Error:         errMsg,
		ExecutionTime: elapsed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LONG-TERM MEMORY
// ═══════════════════════════════════════════════════════════════════════════════

// MemoryEntry is a topic-tagged long-term memory record. Entries are
// never mutated after creation; RelevanceScore is set only on copies
// returned from search.
type MemoryEntry struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Topics         []string  `json:"topics,omitempty"`
	RelevanceScore float64   `json:"relevance_score,omitempty"`
}

// NewMemoryEntry creates an entry with a fresh ID and timestamp.
func NewMemoryEntry(content string, topics []string) MemoryEntry {
	return MemoryEntry{
		ID:        uuid.NewString(),
		Content:   content,
		Timestamp: time.Now(),
		Topics:    topics,
	}
}
