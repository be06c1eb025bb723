package status

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"door_controller/internal/actuator"
	"door_controller/internal/models"
	"door_controller/internal/registry"
)

// Connectivity holds the two independent link flags plus the last measured
// signal figure. The control loop writes, the portal and websocket pusher
// read, so the fields are atomics rather than loop-private booleans.
type Connectivity struct {
	link      atomic.Bool
	messaging atomic.Bool
	signalDBM atomic.Int64
}

func (c *Connectivity) SetLink(ok bool)       { c.link.Store(ok) }
func (c *Connectivity) SetMessaging(ok bool)  { c.messaging.Store(ok) }
func (c *Connectivity) SetSignalDBM(dbm int)  { c.signalDBM.Store(int64(dbm)) }
func (c *Connectivity) LinkOK() bool          { return c.link.Load() }
func (c *Connectivity) MessagingOK() bool     { return c.messaging.Load() }
func (c *Connectivity) SignalDBM() int        { return int(c.signalDBM.Load()) }

// Reporter composes the live system status on demand. Pure reads, no side
// effects.
type Reporter struct {
	started time.Time
	conn    *Connectivity
	act     *actuator.Controller
	reg     *registry.Registry
	now     func() time.Time
}

func NewReporter(conn *Connectivity, act *actuator.Controller, reg *registry.Registry) *Reporter {
	return &Reporter{
		started: time.Now(),
		conn:    conn,
		act:     act,
		reg:     reg,
		now:     time.Now,
	}
}

// SetClock overrides the time source and resets the uptime origin. Tests only.
func (r *Reporter) SetClock(now func() time.Time) {
	r.now = now
	r.started = now()
}

// Snapshot returns the structured status for the portal API and websocket.
func (r *Reporter) Snapshot() models.StatusSnapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	now := r.now()
	return models.StatusSnapshot{
		LinkOK:          r.conn.LinkOK(),
		MessagingOK:     r.conn.MessagingOK(),
		SignalDBM:       r.conn.SignalDBM(),
		DoorOpen:        r.act.DoorActive(),
		LightOn:         r.act.LightActive(),
		Uptime:          FormatUptime(now.Sub(r.started)),
		FreeHeapBytes:   mem.HeapIdle,
		AuthorizedUsers: r.reg.Count(),
		UpdatedAt:       now.UTC(),
	}
}

// Detailed renders the Markdown status message for the chat channel:
// connectivity, devices, system, in that fixed order.
func (r *Reporter) Detailed() string {
	s := r.Snapshot()
	var b strings.Builder

	b.WriteString("📡 *Connectivity*\n")
	fmt.Fprintf(&b, "Link: %s\n", okLabel(s.LinkOK))
	fmt.Fprintf(&b, "Signal: %d dBm\n\n", s.SignalDBM)

	b.WriteString("🔌 *Devices*\n")
	fmt.Fprintf(&b, "Door: %s\n", onLabel(s.DoorOpen, "open", "closed"))
	fmt.Fprintf(&b, "Light: %s\n\n", onLabel(s.LightOn, "on", "off"))

	b.WriteString("⚙️ *System*\n")
	fmt.Fprintf(&b, "Uptime: %s\n", s.Uptime)
	fmt.Fprintf(&b, "Free heap: %d bytes\n", s.FreeHeapBytes)
	fmt.Fprintf(&b, "Authorized users: %d", s.AuthorizedUsers)

	return b.String()
}

// FormatUptime renders "Xd Xh Xm Xs", dropping leading zero-magnitude
// components but always showing seconds.
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd ", days)
	}
	if hours > 0 || b.Len() > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	if minutes > 0 || b.Len() > 0 {
		fmt.Fprintf(&b, "%dm ", minutes)
	}
	fmt.Fprintf(&b, "%ds", seconds)
	return b.String()
}

func okLabel(ok bool) string {
	if ok {
		return "OK"
	}
	return "DOWN"
}

func onLabel(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}
