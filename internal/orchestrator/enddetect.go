package orchestrator

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EndState is a session-end detection state.
type EndState string

const (
	// EndWaitingForAgent means neither completion signal has arrived.
	EndWaitingForAgent EndState = "waiting-for-agent"
	// EndWaitingForAudio means the agent finished, audio playback has not.
	EndWaitingForAudio EndState = "waiting-for-audio"
	// EndBothDone means both signals arrived; the session may close.
	EndBothDone EndState = "both-done"
	// EndTimedOut means the fallback timer fired first.
	EndTimedOut EndState = "timed-out"
)

// DefaultEndTimeout is the fallback window for session-end detection.
const DefaultEndTimeout = 10 * time.Second

// EndDetector waits for the agent-done and audio-done signals before
// declaring a session over, with a single cancellable fallback timer.
// Terminal states (both-done, timed-out) are sticky.
type EndDetector struct {
	mu    sync.Mutex
	state EndState
	timer *time.Timer
	done  chan EndState
}

// NewEndDetector starts detection with the fallback timer running.
func NewEndDetector(timeout time.Duration) *EndDetector {
	if timeout <= 0 {
		timeout = DefaultEndTimeout
	}

	d := &EndDetector{
		state: EndWaitingForAgent,
		done:  make(chan EndState, 1),
	}
	d.timer = time.AfterFunc(timeout, d.timeout)
	return d
}

// AgentDone records that the agent finished its reply.
func (d *EndDetector) AgentDone() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != EndWaitingForAgent {
		return
	}
	d.state = EndWaitingForAudio
	log.Debug().Str("state", string(d.state)).Msg("session-end detector advanced")
}

// AudioDone records that audio playback finished. The session only
// completes once the agent is also done.
func (d *EndDetector) AudioDone() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != EndWaitingForAudio {
		return
	}
	d.finish(EndBothDone)
}

// State returns the current detection state.
func (d *EndDetector) State() EndState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Done yields the terminal state exactly once.
func (d *EndDetector) Done() <-chan EndState {
	return d.done
}

// Stop cancels the fallback timer without emitting a terminal state.
func (d *EndDetector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timer.Stop()
}

func (d *EndDetector) timeout() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == EndBothDone || d.state == EndTimedOut {
		return
	}
	d.finish(EndTimedOut)
}

// finish moves to a terminal state. Caller must hold d.mu.
func (d *EndDetector) finish(state EndState) {
	d.state = state
	d.timer.Stop()
	d.done <- state
	log.Debug().Str("state", string(state)).Msg("session-end detector finished")
}
