// Package response turns an assembled context frame into the assistant's
// reply. The rule-based generator is the always-available fallback; a
// model-backed generator can replace it behind the same interface.
package response

import (
	"context"
	"fmt"
	"strings"

	"github.com/normanking/synapse/internal/acontext"
	"github.com/normanking/synapse/internal/router"
	"github.com/normanking/synapse/internal/tools"
	"github.com/normanking/synapse/pkg/types"
)

// Response is the generated reply.
type Response struct {
	Content   string         `json:"content"`
	Reasoning string         `json:"reasoning,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Generator produces a reply from a context frame. Implementations must
// always return a usable response; total failure is not an option here.
type Generator interface {
	Generate(ctx context.Context, frame *acontext.Frame) (*Response, error)
}

// RuleBased generates replies from content-prefix patterns and tool
// outputs. It never returns an error.
type RuleBased struct {
	registry *tools.Registry
}

// NewRuleBased creates the rule-based generator. The registry is used
// to render tool payloads through their own presenters.
func NewRuleBased(registry *tools.Registry) *RuleBased {
	return &RuleBased{registry: registry}
}

var (
	greetingPrefixes = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}
	thanksPrefixes   = []string{"thanks", "thank you", "appreciate"}
	farewellPrefixes = []string{"bye", "goodbye", "see you", "good night"}
)

// Generate produces a reply. Priority: small-talk prefixes, then a
// clarification question, then tool-result summaries, then a generic
// clarifying echo.
func (g *RuleBased) Generate(ctx context.Context, frame *acontext.Frame) (*Response, error) {
	if frame == nil {
		return &Response{
			Content:   "I'm sorry, I lost track of that. Could you say it again?",
			Reasoning: "no context frame supplied",
		}, nil
	}

	lower := strings.ToLower(strings.TrimSpace(frame.UserMessage.Content))

	if matchesPrefix(lower, greetingPrefixes) {
		return &Response{
			Content:   "Hello! How can I help you today?",
			Reasoning: "greeting pattern",
		}, nil
	}
	if matchesPrefix(lower, thanksPrefixes) {
		return &Response{
			Content:   "You're welcome! Anything else I can help with?",
			Reasoning: "thanks pattern",
		}, nil
	}
	if matchesPrefix(lower, farewellPrefixes) {
		return &Response{
			Content:   "Goodbye! It was nice talking with you.",
			Reasoning: "farewell pattern",
		}, nil
	}

	if frame.Decision != nil && frame.Decision.Intent == router.IntentClarificationNeeded {
		return g.clarify(frame), nil
	}

	if reply := g.summarizeTools(frame); reply != nil {
		return reply, nil
	}

	return &Response{
		Content:   fmt.Sprintf("I'm not sure I follow. Could you tell me more about what you mean by %q?", frame.UserMessage.Content),
		Reasoning: "generic clarifying echo",
	}, nil
}

// clarify asks the best available clarifying question.
func (g *RuleBased) clarify(frame *acontext.Frame) *Response {
	question := frame.Decision.ClarificationQuestion

	for _, r := range frame.ToolResults {
		if r == nil || !r.Success || r.ToolName != types.ToolClarificationCheck {
			continue
		}
		if clar, ok := r.Data.(tools.ClarificationResult); ok && len(clar.SuggestedQuestions) > 0 {
			question = clar.SuggestedQuestions[0]
			break
		}
	}

	if question == "" {
		question = "Could you give me a bit more detail about what you'd like to know?"
	}

	return &Response{
		Content:   question,
		Reasoning: "clarification requested",
		Metadata:  map[string]any{"needs_clarification": true},
	}
}

// summarizeTools composes a reply from successful tool outputs, or nil
// when there is nothing to summarize.
func (g *RuleBased) summarizeTools(frame *acontext.Frame) *Response {
	var parts []string
	for _, r := range frame.ToolResults {
		if r == nil || !r.Success {
			continue
		}
		if tool, ok := g.registry.Get(r.ToolName); ok {
			parts = append(parts, tool.FormatOutput(r))
		}
	}
	if len(parts) == 0 {
		return nil
	}

	return &Response{
		Content:   "Here's what I found:\n\n" + strings.Join(parts, "\n\n"),
		Reasoning: "summarized tool outputs",
		Metadata:  map[string]any{"tool_count": len(parts)},
	}
}

func matchesPrefix(lower string, prefixes []string) bool {
	for _, p := range prefixes {
		if lower == p || strings.HasPrefix(lower, p+" ") || strings.HasPrefix(lower, p+"!") ||
			strings.HasPrefix(lower, p+",") || strings.HasPrefix(lower, p+".") {
			return true
		}
	}
	return false
}
