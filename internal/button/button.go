package button

import (
	"sync/atomic"
	"time"
)

// DefaultDebounce is the minimum spacing between accepted trigger edges.
const DefaultDebounce = 100 * time.Millisecond

// Trigger converts raw falling edges from the door button into at most one
// pending event per debounce window. Edge runs on the gpiocdev event
// goroutine and must stay minimal: a timestamp compare and two atomic
// stores, no logging and no I/O. The control loop consumes the flag once
// per iteration.
type Trigger struct {
	pending  atomic.Bool
	lastEdge atomic.Int64 // unix nanoseconds of the last accepted edge

	window time.Duration
	now    func() time.Time
}

func NewTrigger(window time.Duration) *Trigger {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Trigger{window: window, now: time.Now}
}

// NewTriggerWithClock is for tests that simulate edge timing.
func NewTriggerWithClock(window time.Duration, now func() time.Time) *Trigger {
	t := NewTrigger(window)
	t.now = now
	return t
}

// Edge records one falling edge. An edge is accepted only when strictly
// more than the debounce window has elapsed since the last accepted one.
// Single producer: only the event goroutine calls this.
func (t *Trigger) Edge() {
	n := t.now().UnixNano()
	last := t.lastEdge.Load()
	if last != 0 && n-last <= int64(t.window) {
		return
	}
	t.lastEdge.Store(n)
	t.pending.Store(true)
}

// Consume returns true at most once per accepted edge, clearing the flag.
// Single consumer: only the control loop calls this.
func (t *Trigger) Consume() bool {
	return t.pending.Swap(false)
}

// Hold detects a long press on the provisioning button. The gpio layer
// reports press and release edges; the control loop polls HeldFor.
type Hold struct {
	pressedAt atomic.Int64 // unix nanoseconds, 0 while released
	now       func() time.Time
}

func NewHold() *Hold {
	return &Hold{now: time.Now}
}

func NewHoldWithClock(now func() time.Time) *Hold {
	return &Hold{now: now}
}

// Press marks the button down. Runs on the gpiocdev event goroutine.
func (h *Hold) Press() {
	h.pressedAt.CompareAndSwap(0, h.now().UnixNano())
}

// Release marks the button up.
func (h *Hold) Release() {
	h.pressedAt.Store(0)
}

// HeldFor reports whether the button has been held at least d.
func (h *Hold) HeldFor(d time.Duration) bool {
	at := h.pressedAt.Load()
	return at != 0 && h.now().UnixNano()-at >= int64(d)
}
