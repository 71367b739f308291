package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/synapse/pkg/types"
)

// fakeTool is a controllable tool implementation for registry tests.
type fakeTool struct {
	name   string
	delay  time.Duration
	panics bool
	fail   bool
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Execute(ctx context.Context, input *types.ToolInput) (*types.ToolResult, error) {
	if f.panics {
		panic("boom")
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail {
		return types.ToolFailure(f.name, "deliberate failure", 0), nil
	}
	return types.ToolSuccess(f.name, f.name+" data", 0), nil
}

func (f *fakeTool) FormatOutput(r *types.ToolResult) string { return f.name + " output" }

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(&fakeTool{name: "alpha"}))
	require.NoError(t, r.Register(&fakeTool{name: "beta"}))
	assert.Error(t, r.Register(&fakeTool{name: "alpha"}), "duplicate registration should fail")

	assert.Equal(t, []string{"alpha", "beta"}, r.Names())

	_, ok := r.Get("alpha")
	assert.True(t, ok)
	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_ExecuteSingleUnknown(t *testing.T) {
	r := NewRegistry()

	result := r.ExecuteSingle(context.Background(), "ghost", &types.ToolInput{})

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Contains(t, result.Error, "not found")
}

func TestRegistry_ExecuteSingle(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "alpha"}))

	result := r.ExecuteSingle(context.Background(), "alpha", &types.ToolInput{Query: "q"})

	assert.True(t, result.Success)
	assert.Equal(t, "alpha data", result.Data)
	assert.Equal(t, "alpha", result.ToolName)
}

func TestRegistry_ExecuteMultipleEmpty(t *testing.T) {
	r := NewRegistry()

	results := r.ExecuteMultiple(context.Background(), nil, nil)
	assert.Empty(t, results)

	stats := r.GetStats()
	assert.Zero(t, stats.TotalExecutions)
}

func TestRegistry_ExecuteMultipleOrderAndDrop(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "alpha"}))
	require.NoError(t, r.Register(&fakeTool{name: "beta", fail: true}))

	results := r.ExecuteMultiple(context.Background(),
		[]string{"alpha", "ghost", "beta"},
		map[string]*types.ToolInput{
			"alpha": {Query: "a"},
			"beta":  {Query: "b"},
		})

	require.Len(t, results, 2, "unregistered names are dropped")
	assert.Equal(t, "alpha", results[0].ToolName)
	assert.True(t, results[0].Success)
	assert.Equal(t, "beta", results[1].ToolName)
	assert.False(t, results[1].Success)
	assert.Nil(t, results[1].Data)
}

func TestRegistry_FailureIsolation(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "alpha"}))
	require.NoError(t, r.Register(&fakeTool{name: "panicky", panics: true}))

	results := r.ExecuteMultiple(context.Background(),
		[]string{"panicky", "alpha"},
		map[string]*types.ToolInput{"panicky": {}, "alpha": {}})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "panicked")
	assert.True(t, results[1].Success, "sibling tool unaffected by panic")
}

func TestRegistry_Timeout(t *testing.T) {
	r := NewRegistry(WithToolTimeout(20 * time.Millisecond))
	require.NoError(t, r.Register(&fakeTool{name: "slow", delay: 500 * time.Millisecond}))

	result := r.ExecuteSingle(context.Background(), "slow", &types.ToolInput{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "timed out")

	stats := r.GetStats()
	assert.Equal(t, int64(1), stats.TimeoutCount)
}

func TestRegistry_Stats(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "alpha"}))
	require.NoError(t, r.Register(&fakeTool{name: "beta", fail: true}))

	r.ExecuteSingle(context.Background(), "alpha", &types.ToolInput{})
	r.ExecuteSingle(context.Background(), "beta", &types.ToolInput{})

	stats := r.GetStats()
	assert.Equal(t, int64(2), stats.TotalExecutions)
	assert.Equal(t, int64(1), stats.SuccessCount)
	assert.Equal(t, int64(1), stats.FailureCount)
}
