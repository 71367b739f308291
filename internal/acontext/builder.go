// Package acontext assembles the context frame handed to response
// generation: routing outcome, formatted tool results, recent history
// and the verbatim user message, joined into one text block.
package acontext

import (
	"fmt"
	"strings"

	"github.com/normanking/synapse/internal/router"
	"github.com/normanking/synapse/internal/tools"
	"github.com/normanking/synapse/pkg/types"
)

const (
	// DefaultHistoryLimit is how many trailing messages the history
	// section includes.
	DefaultHistoryLimit = 10

	// DefaultContentTruncate caps each history message's content.
	DefaultContentTruncate = 200

	// sectionSeparator joins frame sections.
	sectionSeparator = "\n---\n"
)

// Frame is the assembled input for response generation.
type Frame struct {
	// UserMessage is the verbatim current user message.
	UserMessage types.Message `json:"user_message"`

	// Decision is the routing outcome the frame was built from.
	Decision *router.RoutingDecision `json:"decision"`

	// ToolResults are the executed tool results, in execution order.
	ToolResults []*types.ToolResult `json:"tool_results,omitempty"`

	// Text is the formatted context block.
	Text string `json:"text"`

	// EstimatedTokens approximates the frame's token cost.
	EstimatedTokens int `json:"estimated_tokens"`
}

// Builder composes context frames. Tool payloads are rendered through
// each tool's own FormatOutput.
type Builder struct {
	registry        *tools.Registry
	historyLimit    int
	contentTruncate int
}

// BuilderOption configures the Builder.
type BuilderOption func(*Builder)

// WithHistoryLimit overrides how many history messages are included.
func WithHistoryLimit(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.historyLimit = n
		}
	}
}

// WithContentTruncate overrides the per-message content cap.
func WithContentTruncate(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.contentTruncate = n
		}
	}
}

// NewBuilder creates a Builder rendering tool payloads via the registry.
func NewBuilder(registry *tools.Registry, opts ...BuilderOption) *Builder {
	b := &Builder{
		registry:        registry,
		historyLimit:    DefaultHistoryLimit,
		contentTruncate: DefaultContentTruncate,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// historyIntents are the intents whose frames carry conversation
// history.
var historyIntents = map[router.IntentType]bool{
	router.IntentClarificationNeeded: true,
	router.IntentConversation:        true,
	router.IntentMemoryAccess:        true,
}

// Build assembles a frame from the pipeline state accumulated so far.
// History must not include the current message.
func (b *Builder) Build(userMsg types.Message, history []types.Message, decision *router.RoutingDecision, results []*types.ToolResult) *Frame {
	sections := []string{b.intentSection(decision)}

	if toolSection := b.toolSection(results); toolSection != "" {
		sections = append(sections, toolSection)
	}

	if decision != nil && historyIntents[decision.Intent] {
		if historySection := b.historySection(history); historySection != "" {
			sections = append(sections, historySection)
		}
	}

	sections = append(sections, "Current message: "+userMsg.Content)

	text := strings.Join(sections, sectionSeparator)

	return &Frame{
		UserMessage:     userMsg,
		Decision:        decision,
		ToolResults:     results,
		Text:            text,
		EstimatedTokens: types.EstimateTokens(text),
	}
}

// BuildCompact assembles a minimal frame from successful tool outputs
// only, with no history or intent preamble.
func (b *Builder) BuildCompact(userMsg types.Message, results []*types.ToolResult) *Frame {
	var parts []string
	for _, r := range results {
		if r == nil || !r.Success {
			continue
		}
		parts = append(parts, b.formatResult(r))
	}
	parts = append(parts, userMsg.Content)

	text := strings.Join(parts, "\n")

	return &Frame{
		UserMessage:     userMsg,
		ToolResults:     results,
		Text:            text,
		EstimatedTokens: types.EstimateTokens(text),
	}
}

func (b *Builder) intentSection(decision *router.RoutingDecision) string {
	if decision == nil {
		return "Intent: unknown"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Intent: %s (confidence %.2f)\n", decision.Intent, decision.Confidence)
	fmt.Fprintf(&sb, "Reasoning: %s", decision.Reasoning)
	if len(decision.SelectedTools) > 0 {
		fmt.Fprintf(&sb, "\nTools used: %s", strings.Join(decision.SelectedTools, ", "))
	}
	return sb.String()
}

func (b *Builder) toolSection(results []*types.ToolResult) string {
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Tool results:")
	for _, r := range results {
		if r == nil {
			continue
		}
		fmt.Fprintf(&sb, "\n[%s, %s]\n%s", r.ToolName, r.ExecutionTime.Round(0), b.formatResult(r))
	}
	return sb.String()
}

func (b *Builder) historySection(history []types.Message) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}

	var sb strings.Builder
	sb.WriteString("Recent conversation:")
	for _, m := range history {
		content := m.Content
		if len(content) > b.contentTruncate {
			content = content[:b.contentTruncate] + "..."
		}
		fmt.Fprintf(&sb, "\n%s: %s", m.Role, content)
	}
	return sb.String()
}

// formatResult renders one result through its tool's presenter, falling
// back to the raw error for failures against unknown tools.
func (b *Builder) formatResult(r *types.ToolResult) string {
	if tool, ok := b.registry.Get(r.ToolName); ok {
		return tool.FormatOutput(r)
	}
	if r.Error != "" {
		return fmt.Sprintf("%s failed: %s", r.ToolName, r.Error)
	}
	return fmt.Sprintf("%v", r.Data)
}
