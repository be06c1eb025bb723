package loop

import (
	"context"
	"sync/atomic"
	"time"

	"door_controller/internal/actuator"
	"door_controller/internal/button"
	"door_controller/internal/dispatcher"
	"door_controller/internal/display"
	"door_controller/internal/logger"
	"door_controller/internal/models"
	"door_controller/internal/status"
	"door_controller/internal/transport"
)

// Mode is the operating mode state machine. ProvisioningRequested is the
// window between a recognized long press and the button release; entering
// Provisioning is terminal for the control loop, a restart is required to
// leave it.
type Mode int

const (
	ModeNormal Mode = iota
	ModeProvisioningRequested
	ModeProvisioning
)

func (m Mode) String() string {
	switch m {
	case ModeProvisioningRequested:
		return "provisioning-requested"
	case ModeProvisioning:
		return "provisioning"
	default:
		return "normal"
	}
}

const (
	// DefaultTick keeps actuator pulse drift under one iteration's worth
	// of time even between blocking calls.
	DefaultTick = 20 * time.Millisecond

	// DefaultProbeInterval spaces the connectivity checks.
	DefaultProbeInterval = 15 * time.Second

	// LongPress is the hold duration that requests provisioning mode.
	LongPress = 3 * time.Second

	// requestBuffer bounds portal-submitted events waiting for the loop.
	requestBuffer = 8
)

// Loop is the single goroutine that owns all core state: event dispatch,
// timeout sweeps, display refresh, connectivity probing and the mode
// machine all run here.
type Loop struct {
	disp *dispatcher.Dispatcher
	in   transport.Inbound
	trig *button.Trigger
	hold *button.Hold
	act  *actuator.Controller
	comp *display.Composer
	conn *status.Connectivity

	probe LinkProbe
	log   *logger.Logger

	tick       time.Duration
	probeEvery time.Duration
	longPress  time.Duration

	requests chan models.CommandEvent
	stopped  atomic.Bool
	mode     Mode
}

func New(
	disp *dispatcher.Dispatcher,
	in transport.Inbound,
	trig *button.Trigger,
	hold *button.Hold,
	act *actuator.Controller,
	comp *display.Composer,
	conn *status.Connectivity,
	probe LinkProbe,
	log *logger.Logger,
) *Loop {
	return &Loop{
		disp:       disp,
		in:         in,
		trig:       trig,
		hold:       hold,
		act:        act,
		comp:       comp,
		conn:       conn,
		probe:      probe,
		log:        log,
		tick:       DefaultTick,
		probeEvery: DefaultProbeInterval,
		longPress:  LongPress,
		requests:   make(chan models.CommandEvent, requestBuffer),
	}
}

// SetIntervals overrides the loop timings, for tests.
func (l *Loop) SetIntervals(tick, probeEvery, longPress time.Duration) {
	l.tick = tick
	l.probeEvery = probeEvery
	l.longPress = longPress
}

// Submit enqueues a portal-originated event for the next iteration. Returns
// false when the queue is full or the loop has stopped; the caller reports
// 503 rather than blocking an HTTP goroutine on the control loop. Once Run
// has returned nothing drains the queue, so accepting would silently drop
// the command.
func (l *Loop) Submit(ev models.CommandEvent) bool {
	if l.stopped.Load() {
		return false
	}
	select {
	case l.requests <- ev:
		return true
	default:
		return false
	}
}

// Run drives the loop until the context is canceled or provisioning is
// entered. The returned mode tells the caller which one happened.
func (l *Loop) Run(ctx context.Context) Mode {
	defer l.stopped.Store(true)

	l.runProbe()

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()
	lastProbe := time.Now()

	for {
		select {
		case <-ctx.Done():
			return l.mode
		case <-ticker.C:
			if done := l.iterate(ctx, &lastProbe); done {
				return l.mode
			}
		}
	}
}

// iterate is one pass over all loop duties. Dispatch may block on sends and
// settle delays; the sweep runs after every dispatch so the pulse window is
// re-evaluated immediately on return from any blocking call.
func (l *Loop) iterate(ctx context.Context, lastProbe *time.Time) (done bool) {
	for _, ev := range l.in.Poll() {
		l.disp.Dispatch(ctx, ev)
		l.act.Sweep(time.Now())
	}

	for drained := false; !drained; {
		select {
		case ev := <-l.requests:
			l.disp.Dispatch(ctx, ev)
			l.act.Sweep(time.Now())
		default:
			drained = true
		}
	}

	if l.trig.Consume() {
		l.disp.Dispatch(ctx, models.CommandEvent{Origin: models.OriginLocalButton})
		l.act.Sweep(time.Now())
	}

	l.act.Sweep(time.Now())

	if l.updateMode() {
		return true
	}

	now := time.Now()
	if now.Sub(*lastProbe) >= l.probeEvery {
		*lastProbe = now
		l.runProbe()
	}
	l.conn.SetMessaging(l.in.Connected())

	l.comp.Refresh()
	return false
}

// updateMode advances the provisioning state machine. A hold of longPress
// requests provisioning; the release commits it, so a continuing hold does
// not re-trigger.
func (l *Loop) updateMode() (entered bool) {
	switch l.mode {
	case ModeNormal:
		if l.hold.HeldFor(l.longPress) {
			l.mode = ModeProvisioningRequested
			if l.log != nil {
				l.log.Infow("provisioning_requested", "hold", l.longPress)
			}
		}
	case ModeProvisioningRequested:
		if !l.hold.HeldFor(0) { // released
			l.mode = ModeProvisioning
			if l.log != nil {
				l.log.Infow("provisioning_mode_entered")
			}
			return true
		}
	}
	return false
}

func (l *Loop) runProbe() {
	if l.probe == nil {
		return
	}
	ok, dbm := l.probe.Check()
	l.conn.SetLink(ok)
	l.conn.SetSignalDBM(dbm)
}
