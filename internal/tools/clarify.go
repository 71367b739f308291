package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/normanking/synapse/pkg/types"
)

// Ambiguity levels reported by the clarification tool.
const (
	AmbiguityLow    = "low"
	AmbiguityMedium = "medium"
	AmbiguityHigh   = "high"
)

// maxSuggestions caps both clarifying questions and candidate intents.
const maxSuggestions = 3

// ClarificationResult is the payload of a clarification_check execution.
type ClarificationResult struct {
	Level              string   `json:"level"`
	SuggestedQuestions []string `json:"suggested_questions"`
	CandidateIntents   []string `json:"candidate_intents"`
	Reasoning          string   `json:"reasoning"`
}

// ClarificationCheckTool scores how ambiguous a message is and suggests
// clarifying questions. It is pure; no stores are consulted.
type ClarificationCheckTool struct{}

// NewClarificationCheckTool creates the clarification tool.
func NewClarificationCheckTool() *ClarificationCheckTool {
	return &ClarificationCheckTool{}
}

// Name returns the registry identifier.
func (t *ClarificationCheckTool) Name() string {
	return types.ToolClarificationCheck
}

var clarifyPronouns = map[string]bool{
	"it": true, "this": true, "that": true, "they": true, "them": true,
	"he": true, "she": true, "those": true, "these": true, "one": true,
}

var yesNoReplies = map[string]bool{
	"yes": true, "no": true, "ok": true, "okay": true, "sure": true,
	"maybe": true, "yep": true, "nope": true, "yeah": true,
}

// Execute computes the ambiguity level from word count, pronoun
// density, bare replies and single-word queries.
func (t *ClarificationCheckTool) Execute(ctx context.Context, input *types.ToolInput) (*types.ToolResult, error) {
	start := time.Now()

	if input == nil {
		input = &types.ToolInput{}
	}

	query := strings.TrimSpace(input.Query)
	lower := strings.ToLower(query)
	words := strings.Fields(lower)

	historyLen := 0
	if input.Parameters != nil {
		if h, ok := input.Parameters["history"].([]string); ok {
			historyLen = len(h)
		}
	}

	pronounCount := 0
	for _, w := range words {
		if clarifyPronouns[strings.Trim(w, ".!?,")] {
			pronounCount++
		}
	}
	density := 0.0
	if len(words) > 0 {
		density = float64(pronounCount) / float64(len(words))
	}

	var (
		level     string
		reasoning string
	)
	switch {
	case len(words) == 0:
		level = AmbiguityHigh
		reasoning = "message is empty"
	case len(words) == 1 && yesNoReplies[strings.Trim(words[0], ".!?,")]:
		level = AmbiguityHigh
		reasoning = "bare yes/no reply with nothing to confirm"
	case len(words) == 1:
		level = AmbiguityHigh
		reasoning = fmt.Sprintf("single-word query %q has no stated goal", query)
	case density >= 0.5 && historyLen == 0:
		level = AmbiguityHigh
		reasoning = "pronoun-heavy message with no prior conversation to resolve references"
	case len(words) <= 3:
		level = AmbiguityHigh
		reasoning = "very short message without a clear request"
	case len(words) <= 6 || density >= 0.25:
		level = AmbiguityMedium
		reasoning = "short message, the request may need narrowing"
	default:
		level = AmbiguityLow
		reasoning = "message carries enough detail to act on"
	}

	result := ClarificationResult{
		Level:              level,
		SuggestedQuestions: suggestQuestions(query, words, level),
		CandidateIntents:   candidateIntents(pronounCount, historyLen),
		Reasoning:          reasoning,
	}

	return types.ToolSuccess(t.Name(), result, time.Since(start)), nil
}

// FormatOutput renders the ambiguity assessment as readable text.
func (t *ClarificationCheckTool) FormatOutput(result *types.ToolResult) string {
	if result == nil || !result.Success {
		return "Clarification check failed."
	}

	clar, ok := result.Data.(ClarificationResult)
	if !ok {
		return "Clarification check returned no usable data."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ambiguity: %s (%s)\n", clar.Level, clar.Reasoning)
	if len(clar.SuggestedQuestions) > 0 {
		b.WriteString("Suggested questions:\n")
		for _, q := range clar.SuggestedQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func suggestQuestions(query string, words []string, level string) []string {
	var questions []string

	switch {
	case len(words) == 0:
		questions = append(questions, "What would you like to talk about?")
	case len(words) == 1:
		questions = append(questions,
			fmt.Sprintf("What would you like to know about %q?", strings.Trim(query, ".!?,")),
			"Are you looking for an explanation or help with a task?")
	case level == AmbiguityHigh:
		questions = append(questions,
			"Could you give me a bit more detail about what you mean?",
			"What are you referring to?")
	case level == AmbiguityMedium:
		questions = append(questions,
			"Could you narrow that down a little?")
	}

	if len(questions) > maxSuggestions {
		questions = questions[:maxSuggestions]
	}
	return questions
}

func candidateIntents(pronounCount, historyLen int) []string {
	var intents []string
	if pronounCount > 0 && historyLen > 0 {
		intents = append(intents, "memory_access")
	}
	intents = append(intents, "knowledge_retrieval", "conversation")
	if len(intents) > maxSuggestions {
		intents = intents[:maxSuggestions]
	}
	return intents
}
