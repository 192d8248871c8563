package engine

import "github.com/myrjola/coldcase/internal/models"

// Timer is the countdown of one case attempt.
type Timer struct {
	state models.TimerState
}

// NewTimer resumes a timer from persisted state. The state is copied.
func NewTimer(state models.TimerState) *Timer {
	return &Timer{state: copyTimerState(state)}
}

func copyTimerState(state models.TimerState) models.TimerState {
	if state.Remaining != nil {
		remaining := *state.Remaining
		state.Remaining = &remaining
	}
	return state
}

// State returns a copy of the timer state for persisting.
func (t *Timer) State() models.TimerState {
	return copyTimerState(t.state)
}

// Running reports whether the timer is counting down.
func (t *Timer) Running() bool {
	return t.state.Active && t.state.Remaining != nil
}

// Expired reports whether the countdown reached zero during this attempt.
func (t *Timer) Expired() bool {
	return t.state.Expired
}

// Remaining returns the seconds left, if a countdown exists.
func (t *Timer) Remaining() (int, bool) {
	if t.state.Remaining == nil {
		return 0, false
	}
	return *t.state.Remaining, true
}

// Start begins the countdown from limit seconds. It is a no-op when running, when there is no positive limit or when
// the countdown has already expired this attempt.
func (t *Timer) Start(limit *int) bool {
	if t.state.Active || t.state.Expired || limit == nil || *limit <= 0 {
		return false
	}
	remaining := *limit
	t.state.Remaining = &remaining
	t.state.Active = true
	return true
}

// Resume continues a paused countdown without resetting it.
func (t *Timer) Resume() bool {
	if t.state.Active || t.state.Expired || t.state.Remaining == nil || *t.state.Remaining <= 0 {
		return false
	}
	t.state.Active = true
	return true
}

// Pause halts the countdown and keeps the remaining time.
func (t *Timer) Pause() bool {
	if !t.state.Active {
		return false
	}
	t.state.Active = false
	return true
}

// Stop halts the countdown and forgets the remaining time. Expiry is kept until a new attempt begins.
func (t *Timer) Stop() bool {
	if !t.state.Active && t.state.Remaining == nil {
		return false
	}
	t.state.Active = false
	t.state.Remaining = nil
	return true
}

// Tick counts down one second. It returns true exactly once, on the tick that reaches zero.
func (t *Timer) Tick() bool {
	if !t.Running() {
		return false
	}
	if *t.state.Remaining > 0 {
		*t.state.Remaining--
	}
	if *t.state.Remaining > 0 {
		return false
	}
	t.state.Active = false
	t.state.Expired = true
	return true
}
