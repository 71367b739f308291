package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/normanking/synapse/pkg/types"
)

// DefaultToolTimeout bounds a single tool execution.
const DefaultToolTimeout = 30 * time.Second

// Registry maps tool names to implementations and executes them with
// per-tool timeouts and failure isolation. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	timeout time.Duration

	stats Stats
}

// RegistryOption configures the Registry.
type RegistryOption func(*Registry)

// WithToolTimeout overrides the per-tool execution timeout.
func WithToolTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRegistry creates an empty tool registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tools:   make(map[string]Tool),
		timeout: DefaultToolTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool. Registering a duplicate name is an error.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	r.tools[name] = tool
	log.Debug().Str("tool", name).Msg("tool registered")
	return nil
}

// Get returns a registered tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExecuteSingle runs one tool by name. An unregistered name yields an
// immediate failure result, never an error.
func (r *Registry) ExecuteSingle(ctx context.Context, name string, input *types.ToolInput) *types.ToolResult {
	tool, ok := r.Get(name)
	if !ok {
		return types.ToolFailure(name, fmt.Sprintf("tool %q not found in registry", name), 0)
	}
	return r.run(ctx, tool, input)
}

// ExecuteMultiple runs the named tools concurrently and returns their
// results in the order of names. Names without a registered tool are
// silently dropped. One tool failing, panicking or timing out does not
// affect its siblings. An empty request returns an empty slice.
func (r *Registry) ExecuteMultiple(ctx context.Context, names []string, inputs map[string]*types.ToolInput) []*types.ToolResult {
	selected := make([]Tool, 0, len(names))
	for _, name := range names {
		tool, ok := r.Get(name)
		if !ok {
			log.Warn().Str("tool", name).Msg("requested tool not registered, dropping")
			continue
		}
		selected = append(selected, tool)
	}

	results := make([]*types.ToolResult, len(selected))
	if len(selected) == 0 {
		return results
	}

	var wg sync.WaitGroup
	for i, tool := range selected {
		wg.Add(1)
		go func(i int, tool Tool) {
			defer wg.Done()
			results[i] = r.run(ctx, tool, inputs[tool.Name()])
		}(i, tool)
	}
	wg.Wait()

	return results
}

// run executes one tool with the registry timeout racing the tool's own
// work. A panic inside the tool becomes a failure result.
func (r *Registry) run(ctx context.Context, tool Tool, input *types.ToolInput) *types.ToolResult {
	start := time.Now()
	name := tool.Name()

	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type outcome struct {
		result *types.ToolResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v", rec)}
			}
		}()
		res, err := tool.Execute(execCtx, input)
		done <- outcome{result: res, err: err}
	}()

	var result *types.ToolResult
	var timedOut bool

	select {
	case out := <-done:
		switch {
		case out.err != nil:
			result = types.ToolFailure(name, out.err.Error(), time.Since(start))
		case out.result == nil:
			result = types.ToolFailure(name, "tool returned no result", time.Since(start))
		default:
			result = out.result
			result.ExecutionTime = time.Since(start)
		}
	case <-execCtx.Done():
		timedOut = true
		result = types.ToolFailure(name,
			fmt.Sprintf("execution timed out after %s", r.timeout), time.Since(start))
	}

	r.record(result, timedOut)

	log.Debug().
		Str("tool", name).
		Bool("success", result.Success).
		Dur("duration", result.ExecutionTime).
		Msg("tool executed")

	return result
}

func (r *Registry) record(result *types.ToolResult, timedOut bool) {
	r.stats.mu.Lock()
	defer r.stats.mu.Unlock()

	r.stats.TotalExecutions++
	r.stats.TotalDuration += result.ExecutionTime
	if result.Success {
		r.stats.SuccessCount++
	} else {
		r.stats.FailureCount++
	}
	if timedOut {
		r.stats.TimeoutCount++
	}
}

// GetStats returns a copy of the execution statistics.
func (r *Registry) GetStats() Stats {
	r.stats.mu.Lock()
	defer r.stats.mu.Unlock()

	return Stats{
		TotalExecutions: r.stats.TotalExecutions,
		SuccessCount:    r.stats.SuccessCount,
		FailureCount:    r.stats.FailureCount,
		TimeoutCount:    r.stats.TimeoutCount,
		TotalDuration:   r.stats.TotalDuration,
	}
}
