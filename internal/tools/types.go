// Package tools provides the pluggable tool layer between routing and
// context assembly. Tools are registered by name and executed through
// the Registry, which isolates per-tool failures and applies a per-tool
// timeout.
package tools

import (
	"context"
	"sync"
	"time"

	"github.com/normanking/synapse/pkg/types"
)

// Tool is a single executable capability.
type Tool interface {
	// Name returns the registry identifier for this tool.
	Name() string

	// Execute runs the tool against a structured input. Implementations
	// return (result, nil) for tool-level failures; a non-nil error is
	// reserved for unexpected faults.
	Execute(ctx context.Context, input *types.ToolInput) (*types.ToolResult, error)

	// FormatOutput renders the tool's typed payload as human-readable
	// text for inclusion in a context frame.
	FormatOutput(result *types.ToolResult) string
}

// Stats tracks registry-level execution metrics.
type Stats struct {
	TotalExecutions int64         `json:"total_executions"`
	SuccessCount    int64         `json:"success_count"`
	FailureCount    int64         `json:"failure_count"`
	TimeoutCount    int64         `json:"timeout_count"`
	TotalDuration   time.Duration `json:"total_duration"`

	mu sync.Mutex
}

// AvgDuration returns the average execution duration.
func (s *Stats) AvgDuration() time.Duration {
	if s.TotalExecutions == 0 {
		return 0
	}
	return time.Duration(int64(s.TotalDuration) / s.TotalExecutions)
}
