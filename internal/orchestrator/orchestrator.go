// Package orchestrator coordinates the message pipeline: routing, tool
// execution, context assembly and response generation, plus session
// history and long-term memory promotion.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/normanking/synapse/internal/acontext"
	"github.com/normanking/synapse/internal/bus"
	"github.com/normanking/synapse/internal/memory"
	"github.com/normanking/synapse/internal/response"
	"github.com/normanking/synapse/internal/router"
	"github.com/normanking/synapse/internal/tools"
	"github.com/normanking/synapse/pkg/types"
)

// apologyResponse is the user-facing text for an unrecoverable pipeline
// failure.
const apologyResponse = "I'm sorry, something went wrong while handling that. Could you try again?"

// PipelineResult is the outcome of processing one message.
type PipelineResult struct {
	// Success is false only when the pipeline itself failed.
	Success bool `json:"success"`

	// Response is the generated assistant reply.
	Response string `json:"response"`

	// Decision is the routing outcome for the message.
	Decision *router.RoutingDecision `json:"decision,omitempty"`

	// ToolResults are the executed tool results, in selection order.
	ToolResults []*types.ToolResult `json:"tool_results,omitempty"`

	// TotalTime is the wall-clock pipeline duration.
	TotalTime time.Duration `json:"total_time"`

	// Error carries the underlying failure message when Success is false.
	Error string `json:"error,omitempty"`
}

// SessionInfo summarizes the orchestrator's session state.
type SessionInfo struct {
	SessionID     string    `json:"session_id"`
	StartedAt     time.Time `json:"started_at"`
	MessageCount  int       `json:"message_count"`
	LongTermCount int       `json:"long_term_count"`
}

// Orchestrator runs the pipeline for one session. All collaborators are
// injected; the orchestrator owns session history exclusively.
type Orchestrator struct {
	router    *router.Router
	registry  *tools.Registry
	builder   *acontext.Builder
	generator response.Generator
	store     *memory.Store
	events    *bus.Bus
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBus attaches an event bus for pipeline lifecycle events.
func WithBus(b *bus.Bus) Option {
	return func(o *Orchestrator) {
		o.events = b
	}
}

// New wires an orchestrator from its collaborators.
func New(rt *router.Router, registry *tools.Registry, builder *acontext.Builder, generator response.Generator, store *memory.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		router:    rt,
		registry:  registry,
		builder:   builder,
		generator: generator,
		store:     store,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// publish emits a lifecycle event when a bus is attached.
func (o *Orchestrator) publish(eventType bus.EventType, payload map[string]any) {
	if o.events == nil {
		return
	}
	o.events.Publish(bus.NewEvent(eventType, o.store.SessionID(), payload))
}

// promotableIntents are the intents whose exchanges are promoted into
// long-term memory.
var promotableIntents = map[router.IntentType]bool{
	router.IntentKnowledgeRetrieval: true,
	router.IntentMemoryAccess:       true,
	router.IntentMultiTool:          true,
}

// ProcessMessage runs the full pipeline for one user message. It never
// returns an error; any uncaught failure is converted into a failed
// result with an apologetic reply.
func (o *Orchestrator) ProcessMessage(ctx context.Context, userText string) (result *PipelineResult) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).
				Str("session_id", o.store.SessionID()).
				Msg("pipeline panicked")
			result = &PipelineResult{
				Success:   false,
				Response:  apologyResponse,
				TotalTime: time.Since(start),
				Error:     fmt.Sprintf("pipeline failure: %v", rec),
			}
			o.publish(bus.EventPipelineFailed, map[string]any{"error": result.Error})
		}
	}()

	userMsg := types.NewMessage(types.RoleUser, userText)
	o.publish(bus.EventMessageReceived, map[string]any{"message_id": userMsg.ID})

	// Router sees the history as it was before this message.
	history := o.store.SessionHistory()
	o.store.AddToSession(userMsg)

	decision := o.router.Route(userMsg, history)
	o.publish(bus.EventRoutingCompleted, map[string]any{
		"intent":     decision.Intent.String(),
		"confidence": decision.Confidence,
	})

	results := o.registry.ExecuteMultiple(ctx, decision.SelectedTools, decision.ToolInputs)
	for _, r := range results {
		o.publish(bus.EventToolExecuted, map[string]any{
			"tool":    r.ToolName,
			"success": r.Success,
		})
	}

	frame := o.builder.Build(userMsg, history, decision, results)

	resp, err := o.generator.Generate(ctx, frame)
	if err != nil || resp == nil {
		if err == nil {
			err = fmt.Errorf("generator returned no response")
		}
		log.Error().Err(err).Msg("response generation failed")
		o.publish(bus.EventPipelineFailed, map[string]any{"error": err.Error()})
		return &PipelineResult{
			Success:     false,
			Response:    apologyResponse,
			Decision:    decision,
			ToolResults: results,
			TotalTime:   time.Since(start),
			Error:       err.Error(),
		}
	}

	assistantMsg := types.NewMessage(types.RoleAssistant, resp.Content)
	assistantMsg.Metadata = map[string]any{
		"intent":     decision.Intent.String(),
		"confidence": decision.Confidence,
		"tools_used": decision.SelectedTools,
	}
	o.store.AddToSession(assistantMsg)

	if promotableIntents[decision.Intent] {
		o.promote(userText, resp.Content)
	}

	o.publish(bus.EventResponseReady, map[string]any{
		"intent": decision.Intent.String(),
		"tools":  len(results),
	})

	total := time.Since(start)
	log.Info().
		Str("session_id", o.store.SessionID()).
		Str("intent", decision.Intent.String()).
		Int("tools", len(results)).
		Dur("total_time", total).
		Msg("message processed")

	return &PipelineResult{
		Success:     true,
		Response:    resp.Content,
		Decision:    decision,
		ToolResults: results,
		TotalTime:   total,
	}
}

// promote writes the exchange into long-term memory with derived topic
// tags.
func (o *Orchestrator) promote(userText, responseText string) {
	content := fmt.Sprintf("User asked: %s | Response: %s", userText, responseText)
	o.store.AddToLongTerm(content, deriveTopics(userText))
}

// Reset clears the session history. Long-term memory survives a reset.
func (o *Orchestrator) Reset() {
	o.store.ClearSession()
	log.Info().Str("session_id", o.store.SessionID()).Msg("session reset")
}

// ConversationHistory returns a copy of the session history.
func (o *Orchestrator) ConversationHistory() []types.Message {
	return o.store.SessionHistory()
}

// SessionInfo returns a summary of the session state.
func (o *Orchestrator) SessionInfo() SessionInfo {
	return SessionInfo{
		SessionID:     o.store.SessionID(),
		StartedAt:     o.store.StartedAt(),
		MessageCount:  o.store.SessionLen(),
		LongTermCount: o.store.LongTermCount(),
	}
}
