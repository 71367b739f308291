package router

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/normanking/synapse/pkg/types"
)

// historyContextSize is how many trailing history messages are handed
// to the clarification tool as context.
const historyContextSize = 3

// Fixed confidence scores per classification branch.
const (
	confidenceMultiTool     = 0.85
	confidenceMemory        = 0.90
	confidenceKnowledge     = 0.90
	confidenceClarification = 0.85
	confidenceConversation  = 0.95
	confidenceFallback      = 0.50
)

// Router classifies user messages with deterministic pattern rules.
// Safe for concurrent use.
type Router struct {
	mu    sync.RWMutex
	stats Stats
}

// New creates a rule-based Router.
func New() *Router {
	return &Router{
		stats: Stats{
			IntentDistribution: make(map[IntentType]int64),
		},
	}
}

// Route classifies a message against its prior conversation history and
// returns a routing decision. The current message must not be part of
// history. Route never fails; an internal panic is absorbed into a
// low-confidence conversation decision.
func (r *Router) Route(msg types.Message, history []types.Message) (decision *RoutingDecision) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("message_id", msg.ID).
				Msg("routing panicked, using fallback decision")
			decision = r.fallbackDecision(start)
			r.record(decision, true)
			return
		}
		r.record(decision, false)
	}()

	decision = r.classify(msg, history, start)

	log.Debug().
		Str("intent", decision.Intent.String()).
		Float64("confidence", decision.Confidence).
		Strs("tools", decision.SelectedTools).
		Dur("duration", decision.ClassificationDuration).
		Msg("message routed")

	return decision
}

func (r *Router) classify(msg types.Message, history []types.Message, start time.Time) *RoutingDecision {
	lower := strings.ToLower(msg.Content)
	keywords := types.ExtractKeywords(msg.Content)

	memoryHit := matchesAny(memoryPatterns, lower)
	knowledgeHit := matchesAny(knowledgePatterns, lower)

	switch {
	case memoryHit && knowledgeHit:
		return r.multiToolDecision(lower, keywords, start)
	case memoryHit:
		return r.memoryDecision(lower, keywords, start)
	case knowledgeHit:
		return r.knowledgeDecision(lower, keywords, start)
	case !isSmallTalk(lower) && isAmbiguous(lower, len(history)):
		return r.clarificationDecision(msg, history, start)
	default:
		return r.conversationDecision(start)
	}
}

func (r *Router) multiToolDecision(lower string, keywords []string, start time.Time) *RoutingDecision {
	return &RoutingDecision{
		Intent:     IntentMultiTool,
		Confidence: confidenceMultiTool,
		SelectedTools: []string{
			types.ToolMemoryRecall,
			types.ToolKnowledgeSearch,
		},
		ToolInputs: map[string]*types.ToolInput{
			types.ToolMemoryRecall: {
				Query:     lower,
				Timeframe: extractTimeframe(lower),
				Keywords:  keywords,
			},
			types.ToolKnowledgeSearch: {
				Query:    lower,
				Category: inferCategory(lower),
				Keywords: keywords,
			},
		},
		Reasoning:              "message references past conversation and asks for information",
		ClassifiedAt:           start,
		ClassificationDuration: time.Since(start),
	}
}

func (r *Router) memoryDecision(lower string, keywords []string, start time.Time) *RoutingDecision {
	timeframe := extractTimeframe(lower)

	reasoning := "message references past conversation or stored facts"
	if timeframe != "" {
		reasoning = fmt.Sprintf("%s (timeframe: %s)", reasoning, timeframe)
	}

	return &RoutingDecision{
		Intent:        IntentMemoryAccess,
		Confidence:    confidenceMemory,
		SelectedTools: []string{types.ToolMemoryRecall},
		ToolInputs: map[string]*types.ToolInput{
			types.ToolMemoryRecall: {
				Query:     lower,
				Timeframe: timeframe,
				Keywords:  keywords,
			},
		},
		Reasoning:              reasoning,
		ClassifiedAt:           start,
		ClassificationDuration: time.Since(start),
	}
}

func (r *Router) knowledgeDecision(lower string, keywords []string, start time.Time) *RoutingDecision {
	category := inferCategory(lower)

	reasoning := "message asks for information"
	if category != "" {
		reasoning = fmt.Sprintf("%s (category: %s)", reasoning, category)
	}

	return &RoutingDecision{
		Intent:        IntentKnowledgeRetrieval,
		Confidence:    confidenceKnowledge,
		SelectedTools: []string{types.ToolKnowledgeSearch},
		ToolInputs: map[string]*types.ToolInput{
			types.ToolKnowledgeSearch: {
				Query:    lower,
				Category: category,
				Keywords: keywords,
			},
		},
		Reasoning:              reasoning,
		ClassifiedAt:           start,
		ClassificationDuration: time.Since(start),
	}
}

func (r *Router) clarificationDecision(msg types.Message, history []types.Message, start time.Time) *RoutingDecision {
	recent := history
	if len(recent) > historyContextSize {
		recent = recent[len(recent)-historyContextSize:]
	}
	context := make([]string, 0, len(recent))
	for _, m := range recent {
		context = append(context, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}

	return &RoutingDecision{
		Intent:        IntentClarificationNeeded,
		Confidence:    confidenceClarification,
		SelectedTools: []string{types.ToolClarificationCheck},
		ToolInputs: map[string]*types.ToolInput{
			types.ToolClarificationCheck: {
				Query: msg.Content,
				Parameters: map[string]any{
					"history": context,
				},
			},
		},
		Reasoning:              "message is too short or ambiguous to act on",
		NeedsClarification:     true,
		ClarificationQuestion:  "Could you give me a bit more detail about what you'd like to know?",
		ClassifiedAt:           start,
		ClassificationDuration: time.Since(start),
	}
}

func (r *Router) conversationDecision(start time.Time) *RoutingDecision {
	return &RoutingDecision{
		Intent:                 IntentConversation,
		Confidence:             confidenceConversation,
		Reasoning:              "plain conversational message, no tools needed",
		ClassifiedAt:           start,
		ClassificationDuration: time.Since(start),
	}
}

func (r *Router) fallbackDecision(start time.Time) *RoutingDecision {
	return &RoutingDecision{
		Intent:                 IntentConversation,
		Confidence:             confidenceFallback,
		Reasoning:              "fallback due to routing error",
		ClassifiedAt:           start,
		ClassificationDuration: time.Since(start),
	}
}

// record updates routing statistics under the lock.
func (r *Router) record(decision *RoutingDecision, fallback bool) {
	if decision == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.TotalRequests++
	if fallback {
		r.stats.FallbackCount++
	}
	r.stats.IntentDistribution[decision.Intent]++

	// Running average over all requests.
	n := float64(r.stats.TotalRequests)
	r.stats.AverageConfidence = (r.stats.AverageConfidence*(n-1) + decision.Confidence) / n
}

// GetStats returns a copy of the current routing statistics.
func (r *Router) GetStats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dist := make(map[IntentType]int64, len(r.stats.IntentDistribution))
	for k, v := range r.stats.IntentDistribution {
		dist[k] = v
	}

	return Stats{
		TotalRequests:      r.stats.TotalRequests,
		FallbackCount:      r.stats.FallbackCount,
		AverageConfidence:  r.stats.AverageConfidence,
		IntentDistribution: dist,
	}
}
