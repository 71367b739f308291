package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/normanking/synapse/internal/acontext"
	"github.com/normanking/synapse/internal/memory"
	"github.com/normanking/synapse/internal/response"
	"github.com/normanking/synapse/internal/router"
	"github.com/normanking/synapse/internal/tools"
)

func countingFactory(created *int) Factory {
	return func(sessionID string) *Orchestrator {
		*created++
		registry := tools.NewRegistry()
		return New(router.New(), registry, acontext.NewBuilder(registry),
			response.NewRuleBased(registry), memory.NewStore(sessionID))
	}
}

func TestSessionManager_LazyCreate(t *testing.T) {
	created := 0
	m := NewSessionManager(countingFactory(&created))

	first := m.Get("alice")
	second := m.Get("alice")

	assert.Same(t, first, second)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, m.Count())

	m.Get("bob")
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, m.Count())
}

func TestSessionManager_Remove(t *testing.T) {
	created := 0
	m := NewSessionManager(countingFactory(&created))

	m.Get("alice")
	m.Remove("alice")
	m.Remove("alice")
	assert.Zero(t, m.Count())

	m.Get("alice")
	assert.Equal(t, 2, created, "removed session is rebuilt on next Get")
}

func TestSessionManager_ReapIdle(t *testing.T) {
	created := 0
	m := NewSessionManager(countingFactory(&created), WithIdleTTL(10*time.Millisecond))

	m.Get("stale")
	time.Sleep(25 * time.Millisecond)
	m.Get("fresh")

	assert.Equal(t, 1, m.ReapIdle())
	assert.Equal(t, 1, m.Count())

	_, _ = m.Get("fresh"), m.Get("stale")
	assert.Equal(t, 3, created)
}
