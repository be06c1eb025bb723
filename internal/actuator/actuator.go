package actuator

import (
	"sync"
	"time"

	"door_controller/internal/logger"
)

// DefaultPulse is the self-reset window for both relays.
const DefaultPulse = 1000 * time.Millisecond

// Relay drives one digital output. Writes are fire-and-forget: a failure is
// unobservable on the hardware, so implementations report it for diagnostics
// only and the controller never blocks on it.
type Relay interface {
	Set(on bool) error
}

type relayState struct {
	active      bool
	activatedAt time.Time
}

// Controller owns the door and light relays and their timed pulses. State is
// mutated from the control loop; the mutex exists because the portal and the
// websocket pusher read DoorActive/LightActive from their own goroutines.
type Controller struct {
	mu sync.Mutex

	door  relayState
	light relayState

	doorRelay  Relay
	lightRelay Relay

	doorPulse  time.Duration
	lightPulse time.Duration

	log *logger.Logger
	now func() time.Time
}

func New(doorRelay, lightRelay Relay, doorPulse, lightPulse time.Duration, log *logger.Logger) *Controller {
	if doorPulse <= 0 {
		doorPulse = DefaultPulse
	}
	if lightPulse <= 0 {
		lightPulse = DefaultPulse
	}
	return &Controller{
		doorRelay:  doorRelay,
		lightRelay: lightRelay,
		doorPulse:  doorPulse,
		lightPulse: lightPulse,
		log:        log,
		now:        time.Now,
	}
}

// SetClock overrides the time source, for tests only.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// OpenDoor pulses the door strike. Re-activation while active restarts the
// countdown from now; it never stacks.
func (c *Controller) OpenDoor() {
	c.activate(&c.door, c.doorRelay, "door")
}

// LightOn pulses the staircase light relay, independent of the door.
func (c *Controller) LightOn() {
	c.activate(&c.light, c.lightRelay, "light")
}

func (c *Controller) activate(st *relayState, relay Relay, name string) {
	c.mu.Lock()
	st.active = true
	st.activatedAt = c.now()
	c.mu.Unlock()

	c.drive(relay, name, true)
	if c.log != nil {
		c.log.Infow("actuator_on", "actuator", name)
	}
}

// Sweep deactivates any actuator whose pulse has elapsed. The control loop
// calls this every iteration, including right after returning from blocking
// calls, so deactivation only skews later than the pulse width, never earlier.
func (c *Controller) Sweep(now time.Time) {
	c.sweepOne(&c.door, c.doorRelay, c.doorPulse, "door", now)
	c.sweepOne(&c.light, c.lightRelay, c.lightPulse, "light", now)
}

func (c *Controller) sweepOne(st *relayState, relay Relay, pulse time.Duration, name string, now time.Time) {
	c.mu.Lock()
	expired := st.active && now.Sub(st.activatedAt) > pulse
	if expired {
		st.active = false
		st.activatedAt = time.Time{}
	}
	c.mu.Unlock()

	if expired {
		c.drive(relay, name, false)
		if c.log != nil {
			c.log.Infow("actuator_off", "actuator", name)
		}
	}
}

// DoorActive reports whether the door strike is currently energized.
func (c *Controller) DoorActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.door.active
}

// LightActive reports whether the light relay is currently energized.
func (c *Controller) LightActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.light.active
}

func (c *Controller) drive(relay Relay, name string, on bool) {
	if relay == nil {
		return
	}
	if err := relay.Set(on); err != nil && c.log != nil {
		c.log.Warnw("relay_write_failed", "actuator", name, "on", on, "err", err)
	}
}
