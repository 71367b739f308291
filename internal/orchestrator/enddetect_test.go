package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndDetector_HappyPath(t *testing.T) {
	d := NewEndDetector(time.Second)
	assert.Equal(t, EndWaitingForAgent, d.State())

	d.AgentDone()
	assert.Equal(t, EndWaitingForAudio, d.State())

	d.AudioDone()
	assert.Equal(t, EndBothDone, d.State())

	select {
	case state := <-d.Done():
		assert.Equal(t, EndBothDone, state)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected terminal state on Done channel")
	}
}

func TestEndDetector_AudioBeforeAgentIgnored(t *testing.T) {
	d := NewEndDetector(time.Second)
	defer d.Stop()

	d.AudioDone()
	assert.Equal(t, EndWaitingForAgent, d.State(), "audio completion before agent is ignored")

	d.AgentDone()
	d.AgentDone()
	assert.Equal(t, EndWaitingForAudio, d.State(), "repeated agent signals do not advance")
}

func TestEndDetector_Timeout(t *testing.T) {
	d := NewEndDetector(20 * time.Millisecond)

	select {
	case state := <-d.Done():
		assert.Equal(t, EndTimedOut, state)
	case <-time.After(time.Second):
		t.Fatal("expected timeout")
	}
	assert.Equal(t, EndTimedOut, d.State())

	// Late signals cannot leave a terminal state.
	d.AgentDone()
	d.AudioDone()
	assert.Equal(t, EndTimedOut, d.State())
}

func TestEndDetector_StopCancelsTimer(t *testing.T) {
	d := NewEndDetector(20 * time.Millisecond)
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, EndWaitingForAgent, d.State())

	select {
	case <-d.Done():
		t.Fatal("stopped detector must not emit a terminal state")
	default:
	}
}

func TestEndDetector_CompletionBeatsTimer(t *testing.T) {
	d := NewEndDetector(200 * time.Millisecond)

	d.AgentDone()
	d.AudioDone()

	state := <-d.Done()
	require.Equal(t, EndBothDone, state)

	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, EndBothDone, d.State(), "cancelled timer must not overwrite completion")
}
