package timer

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Notifier receives the single completion signal when the countdown reaches
// zero. Implementations are fire-and-forget: errors and panics must not reach
// timer state, so the timer swallows and logs them.
type Notifier interface {
	TimerComplete()
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func()

func (f NotifierFunc) TimerComplete() { f() }

// tickInterval is how often a running countdown wakes to recompute the
// remaining time from its deadline.
const tickInterval = 250 * time.Millisecond

// RestTimer is the single rest countdown for the active workout. Starting a
// new countdown implicitly cancels any running one. Every mutator cancels the
// in-flight scheduled tick before establishing new state; a tick from a
// superseded generation is a no-op, so a stale wake can never revive a
// stopped timer.
type RestTimer struct {
	clock  Clock
	notify Notifier
	log    *slog.Logger

	mu         sync.Mutex
	gen        uint64
	running    bool
	deadline   time.Time
	remaining  int // seconds, recomputed on each tick
	cancelTick func() bool
}

// NewRestTimer creates a stopped rest timer. notify may be nil.
func NewRestTimer(clock Clock, notify Notifier, log *slog.Logger) *RestTimer {
	return &RestTimer{clock: clock, notify: notify, log: log}
}

// Start begins a countdown of the given duration, replacing any running one.
// Non-positive durations are ignored.
func (t *RestTimer) Start(seconds int) {
	if seconds <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startLocked(seconds)
}

func (t *RestTimer) startLocked(seconds int) {
	t.cancelPendingLocked()
	t.gen++
	t.deadline = t.clock.Now().Add(time.Duration(seconds) * time.Second)
	t.remaining = seconds
	t.running = true
	t.scheduleLocked()
}

// Pause suspends ticking while preserving the remaining duration.
// A no-op when the timer is not running.
func (t *RestTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.cancelPendingLocked()
	t.gen++
	t.remaining = remainingSeconds(t.deadline, t.clock.Now())
	t.running = false
	t.deadline = time.Time{}
}

// Resume continues a paused countdown by deriving a fresh deadline from the
// preserved remaining time. A no-op when running or when nothing is paused.
func (t *RestTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.remaining <= 0 {
		return
	}
	t.cancelPendingLocked()
	t.gen++
	t.deadline = t.clock.Now().Add(time.Duration(t.remaining) * time.Second)
	t.running = true
	t.scheduleLocked()
}

// AddTime extends the deadline by the given seconds. While running this is
// plain deadline arithmetic; while paused it extends the preserved remainder;
// when stopped it is equivalent to Start(seconds).
func (t *RestTimer) AddTime(seconds int) {
	if seconds <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.running:
		t.deadline = t.deadline.Add(time.Duration(seconds) * time.Second)
		t.remaining = remainingSeconds(t.deadline, t.clock.Now())
	case t.remaining > 0:
		t.remaining += seconds
	default:
		t.startLocked(seconds)
	}
}

// Stop cancels the countdown and resets the remaining time to zero.
// Idempotent: stopping a stopped timer is a safe no-op.
func (t *RestTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelPendingLocked()
	t.gen++
	t.running = false
	t.remaining = 0
	t.deadline = time.Time{}
}

// Running reports whether a countdown is ticking.
func (t *RestTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Remaining returns the remaining whole seconds.
func (t *RestTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return remainingSeconds(t.deadline, t.clock.Now())
	}
	return t.remaining
}

// TimeString formats the remaining time as M:SS with no leading zero on the
// minutes.
func (t *RestTimer) TimeString() string {
	rem := t.Remaining()
	return fmt.Sprintf("%d:%02d", rem/60, rem%60)
}

// scheduleLocked arms the next wake for the current generation.
func (t *RestTimer) scheduleLocked() {
	gen := t.gen
	t.cancelTick = t.clock.Schedule(tickInterval, func() { t.tick(gen) })
}

// cancelPendingLocked synchronously cancels any in-flight scheduled tick.
func (t *RestTimer) cancelPendingLocked() {
	if t.cancelTick != nil {
		t.cancelTick()
		t.cancelTick = nil
	}
}

// tick recomputes the remaining time and either re-arms or completes.
func (t *RestTimer) tick(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || !t.running {
		// Superseded by a mutating call; drop the stale wake.
		t.mu.Unlock()
		return
	}
	rem := remainingSeconds(t.deadline, t.clock.Now())
	if rem > 0 {
		t.remaining = rem
		t.scheduleLocked()
		t.mu.Unlock()
		return
	}
	t.gen++
	t.running = false
	t.remaining = 0
	t.deadline = time.Time{}
	t.cancelTick = nil
	t.mu.Unlock()

	t.fireComplete()
}

// fireComplete delivers the one completion notification. Notifier failures
// are logged and swallowed; they never block the stopped transition.
func (t *RestTimer) fireComplete() {
	if t.notify == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && t.log != nil {
			t.log.Warn("rest timer notifier panicked", "panic", r)
		}
	}()
	t.notify.TimerComplete()
}

// remainingSeconds rounds the time to deadline up to whole seconds, never
// below zero.
func remainingSeconds(deadline, now time.Time) int {
	rem := int(math.Ceil(deadline.Sub(now).Seconds()))
	if rem < 0 {
		return 0
	}
	return rem
}
