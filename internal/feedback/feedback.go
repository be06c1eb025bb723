package feedback

import (
	"time"

	"door_controller/internal/actuator"
)

// Intent is a symbolic feedback request; the sink decides how it sounds.
type Intent int

const (
	Success Intent = iota
	Error
	Confirmation
)

// Sink emits audible feedback for an intent. Fire-and-forget: failures are
// unobservable and must never block command processing.
type Sink interface {
	Emit(intent Intent)
}

// Noop discards feedback; used in tests and when no buzzer is wired.
type Noop struct{}

func (Noop) Emit(Intent) {}

// Buzzer drives a piezo line with a distinct pulse length per intent. The
// line is switched on inline and switched off from a timer, so Emit returns
// immediately.
type Buzzer struct {
	line actuator.Relay
}

func NewBuzzer(line actuator.Relay) *Buzzer {
	return &Buzzer{line: line}
}

func (b *Buzzer) Emit(intent Intent) {
	if b.line == nil {
		return
	}
	var d time.Duration
	switch intent {
	case Success:
		d = 80 * time.Millisecond
	case Confirmation:
		d = 150 * time.Millisecond
	case Error:
		d = 400 * time.Millisecond
	}
	_ = b.line.Set(true)
	time.AfterFunc(d, func() { _ = b.line.Set(false) })
}
