package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/normanking/synapse/internal/memory"
	"github.com/normanking/synapse/pkg/types"
)

// MemoryRecallTool searches long-term memory for entries matching the
// routed query.
type MemoryRecallTool struct {
	store      *memory.Store
	maxResults int
}

// RecallOption configures the recall tool.
type RecallOption func(*MemoryRecallTool)

// WithRecallLimit caps returned memory entries.
func WithRecallLimit(n int) RecallOption {
	return func(t *MemoryRecallTool) {
		if n > 0 {
			t.maxResults = n
		}
	}
}

// NewMemoryRecallTool creates a recall tool over the given store.
func NewMemoryRecallTool(store *memory.Store, opts ...RecallOption) *MemoryRecallTool {
	t := &MemoryRecallTool{store: store}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the registry identifier.
func (t *MemoryRecallTool) Name() string {
	return types.ToolMemoryRecall
}

// Execute searches long-term memory with the input's timeframe and
// keywords.
func (t *MemoryRecallTool) Execute(ctx context.Context, input *types.ToolInput) (*types.ToolResult, error) {
	start := time.Now()

	if input == nil {
		input = &types.ToolInput{}
	}
	if err := ctx.Err(); err != nil {
		return types.ToolFailure(t.Name(), err.Error(), time.Since(start)), nil
	}

	result := t.store.Search(input.Query, memory.SearchOptions{
		Timeframe:  input.Timeframe,
		Keywords:   input.Keywords,
		MaxResults: t.maxResults,
	})

	return types.ToolSuccess(t.Name(), result, time.Since(start)), nil
}

// FormatOutput renders matched memory entries as readable text.
func (t *MemoryRecallTool) FormatOutput(result *types.ToolResult) string {
	if result == nil || !result.Success {
		return "Memory recall failed."
	}

	search, ok := result.Data.(memory.SearchResult)
	if !ok {
		return "Memory recall returned no usable data."
	}
	if len(search.Entries) == 0 {
		return "No matching memories found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant memories (of %d total matches):\n",
		len(search.Entries), search.TotalFound)
	for i, entry := range search.Entries {
		fmt.Fprintf(&b, "%d. [%s] %s (relevance %.2f)\n",
			i+1, entry.Timestamp.Format("2006-01-02 15:04"), entry.Content, entry.RelevanceScore)
		if len(entry.Topics) > 0 {
			fmt.Fprintf(&b, "   topics: %s\n", strings.Join(entry.Topics, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
