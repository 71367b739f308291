package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/normanking/synapse/internal/knowledge"
	"github.com/normanking/synapse/pkg/types"
)

// defaultKnowledgeResults caps returned knowledge entries.
const defaultKnowledgeResults = 5

// ScoredEntry is a knowledge entry annotated with its match score.
type ScoredEntry struct {
	knowledge.Entry
	Score float64 `json:"score"`
}

// KnowledgeResult is the payload of a knowledge_search execution.
type KnowledgeResult struct {
	Entries    []ScoredEntry `json:"entries"`
	TotalFound int           `json:"total_found"`
	Query      string        `json:"query"`
	Category   string        `json:"category,omitempty"`
}

// KnowledgeSearchTool looks up the categorized knowledge base.
type KnowledgeSearchTool struct {
	store      *knowledge.Store
	maxResults int
}

// KnowledgeOption configures the knowledge search tool.
type KnowledgeOption func(*KnowledgeSearchTool)

// WithKnowledgeLimit caps returned knowledge entries.
func WithKnowledgeLimit(n int) KnowledgeOption {
	return func(t *KnowledgeSearchTool) {
		if n > 0 {
			t.maxResults = n
		}
	}
}

// NewKnowledgeSearchTool creates a search tool over the given store.
func NewKnowledgeSearchTool(store *knowledge.Store, opts ...KnowledgeOption) *KnowledgeSearchTool {
	t := &KnowledgeSearchTool{store: store, maxResults: defaultKnowledgeResults}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the registry identifier.
func (t *KnowledgeSearchTool) Name() string {
	return types.ToolKnowledgeSearch
}

// Execute scores knowledge entries by how many query keywords appear in
// their text. Without a category all categories are searched and merged.
func (t *KnowledgeSearchTool) Execute(ctx context.Context, input *types.ToolInput) (*types.ToolResult, error) {
	start := time.Now()

	if input == nil {
		input = &types.ToolInput{}
	}

	var (
		entries []knowledge.Entry
		err     error
	)
	if input.Category != "" {
		entries, err = t.store.ByCategory(ctx, input.Category)
	} else {
		entries, err = t.store.All(ctx)
	}
	if err != nil {
		return types.ToolFailure(t.Name(), fmt.Sprintf("knowledge lookup failed: %v", err), time.Since(start)), nil
	}

	keywords := mergeKeywords(types.ExtractKeywords(input.Query), input.Keywords)

	seen := make(map[int64]bool, len(entries))
	var scored []ScoredEntry
	for _, e := range entries {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true

		score := scoreKnowledgeEntry(e, keywords)
		if score > 0 {
			scored = append(scored, ScoredEntry{Entry: e, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	total := len(scored)
	if len(scored) > t.maxResults {
		scored = scored[:t.maxResults]
	}

	return types.ToolSuccess(t.Name(), KnowledgeResult{
		Entries:    scored,
		TotalFound: total,
		Query:      input.Query,
		Category:   input.Category,
	}, time.Since(start)), nil
}

// FormatOutput renders matched knowledge entries as readable text.
func (t *KnowledgeSearchTool) FormatOutput(result *types.ToolResult) string {
	if result == nil || !result.Success {
		return "Knowledge search failed."
	}

	search, ok := result.Data.(KnowledgeResult)
	if !ok {
		return "Knowledge search returned no usable data."
	}
	if len(search.Entries) == 0 {
		return "No matching knowledge entries found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d knowledge entries:\n", len(search.Entries))
	for i, e := range search.Entries {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, e.Category, e.Title, e.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// scoreKnowledgeEntry counts query keywords present in the entry's
// title, content or topics.
func scoreKnowledgeEntry(e knowledge.Entry, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	text := strings.ToLower(e.Title + " " + e.Content + " " + strings.Join(e.Topics, " "))
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return float64(hits)
}

// mergeKeywords deduplicates extracted and supplied keywords, keeping
// extraction order first.
func mergeKeywords(extracted, supplied []string) []string {
	seen := make(map[string]bool, len(extracted)+len(supplied))
	out := make([]string, 0, len(extracted)+len(supplied))
	for _, kw := range append(extracted, supplied...) {
		kw = strings.ToLower(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
