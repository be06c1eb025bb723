package loop

import (
	"context"
	"testing"
	"time"

	"door_controller/internal/actuator"
	"door_controller/internal/button"
	"door_controller/internal/dispatcher"
	"door_controller/internal/display"
	"door_controller/internal/history"
	"door_controller/internal/models"
	"door_controller/internal/registry"
	"door_controller/internal/status"
)

// fakeInbound hands out one batch of events per Poll call.
type fakeInbound struct {
	batches   [][]models.CommandEvent
	connected bool
}

func (f *fakeInbound) Poll() []models.CommandEvent {
	if len(f.batches) == 0 {
		return nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b
}

func (f *fakeInbound) Connected() bool { return f.connected }

type fakeProbe struct {
	ok  bool
	dbm int
}

func (f *fakeProbe) Check() (bool, int) { return f.ok, f.dbm }

type fixture struct {
	loop *Loop
	in   *fakeInbound
	act  *actuator.Controller
	hist *history.Log
	hold *button.Hold
	trig *button.Trigger
	conn *status.Connectivity

	now *time.Time
}

func newFixture() *fixture {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	reg := registry.New()
	reg.Load("111")
	act := actuator.New(nil, nil, 0, 0, nil)
	act.SetClock(clock)
	hist := history.NewWithClock(clock)
	conn := &status.Connectivity{}
	rep := status.NewReporter(conn, act, reg)

	disp := dispatcher.New(reg, act, hist, rep, nil, nil, nil, nil)
	disp.SetSettle(0, func(time.Duration) {})

	in := &fakeInbound{connected: true}
	trig := button.NewTriggerWithClock(button.DefaultDebounce, clock)
	hold := button.NewHoldWithClock(clock)
	comp := display.NewComposer("t", hist, conn, nil)

	l := New(disp, in, trig, hold, act, comp, conn, &fakeProbe{ok: true, dbm: -60}, nil)
	l.SetIntervals(time.Millisecond, time.Hour, LongPress)

	f := &fixture{loop: l, in: in, act: act, hist: hist, hold: hold, trig: trig, conn: conn}
	f.now = &now
	return f
}

func TestIterate_DispatchesInboundEvents(t *testing.T) {
	fx := newFixture()
	fx.in.batches = [][]models.CommandEvent{{
		{Origin: models.OriginRemoteText, UserID: 111, UserName: "Alice", Payload: "/open"},
	}}

	lastProbe := time.Now()
	done := fx.loop.iterate(context.Background(), &lastProbe)

	if done {
		t.Fatalf("normal iteration must not terminate the loop")
	}
	if !fx.act.DoorActive() {
		t.Fatalf("inbound /open must actuate")
	}
	if fx.hist.Entry(0).UserName != "Alice" {
		t.Fatalf("history slot 0 = %+v", fx.hist.Entry(0))
	}
}

func TestIterate_DrainsSubmittedRequests(t *testing.T) {
	fx := newFixture()

	if !fx.loop.Submit(models.CommandEvent{
		Origin: models.OriginPortal, UserID: -1, UserName: "Admin", Payload: "/light",
	}) {
		t.Fatalf("Submit must accept while the queue has room")
	}

	lastProbe := time.Now()
	fx.loop.iterate(context.Background(), &lastProbe)

	if !fx.act.LightActive() {
		t.Fatalf("submitted portal event must actuate")
	}
}

func TestSubmit_ReportsFullQueue(t *testing.T) {
	fx := newFixture()

	for i := 0; i < requestBuffer; i++ {
		if !fx.loop.Submit(models.CommandEvent{Origin: models.OriginPortal, Payload: "/open"}) {
			t.Fatalf("submit %d must fit in the buffer", i)
		}
	}
	if fx.loop.Submit(models.CommandEvent{Origin: models.OriginPortal, Payload: "/open"}) {
		t.Fatalf("submit past the buffer must be rejected, not block")
	}
}

func TestIterate_ConsumesButtonTrigger(t *testing.T) {
	fx := newFixture()
	fx.trig.Edge()

	lastProbe := time.Now()
	fx.loop.iterate(context.Background(), &lastProbe)

	if !fx.act.DoorActive() {
		t.Fatalf("button edge must open the door")
	}
	e := fx.hist.Entry(0)
	if e.Kind != models.KindDoorButton || e.UserName != dispatcher.ButtonUserName {
		t.Fatalf("history slot 0 = %+v", e)
	}
}

func TestIterate_SweepsExpiredPulses(t *testing.T) {
	fx := newFixture()
	fx.act.OpenDoor()
	*fx.now = fx.now.Add(2 * time.Second)

	lastProbe := time.Now()
	fx.loop.iterate(context.Background(), &lastProbe)

	if fx.act.DoorActive() {
		t.Fatalf("iterate must sweep expired pulses")
	}
}

func TestIterate_TracksMessagingConnectivity(t *testing.T) {
	fx := newFixture()
	fx.in.connected = false

	lastProbe := time.Now()
	fx.loop.iterate(context.Background(), &lastProbe)

	if fx.conn.MessagingOK() {
		t.Fatalf("messaging flag must follow the transport")
	}
}

func TestIterate_PeriodicProbeUpdatesLink(t *testing.T) {
	fx := newFixture()
	fx.loop.SetIntervals(time.Millisecond, 0, LongPress)

	lastProbe := time.Now().Add(-time.Minute)
	fx.loop.iterate(context.Background(), &lastProbe)

	if !fx.conn.LinkOK() || fx.conn.SignalDBM() != -60 {
		t.Fatalf("probe result not applied: link=%v dbm=%d", fx.conn.LinkOK(), fx.conn.SignalDBM())
	}
}

func TestUpdateMode_LongPressThenReleaseEntersProvisioning(t *testing.T) {
	fx := newFixture()

	fx.hold.Press()
	*fx.now = fx.now.Add(2 * time.Second)
	if fx.loop.updateMode() {
		t.Fatalf("2s hold must not request provisioning")
	}
	if fx.loop.mode != ModeNormal {
		t.Fatalf("mode = %v, want normal", fx.loop.mode)
	}

	*fx.now = fx.now.Add(1500 * time.Millisecond)
	if fx.loop.updateMode() {
		t.Fatalf("requesting must not yet terminate")
	}
	if fx.loop.mode != ModeProvisioningRequested {
		t.Fatalf("mode = %v, want provisioning-requested", fx.loop.mode)
	}

	// Still held: no transition.
	if fx.loop.updateMode() {
		t.Fatalf("ongoing hold must not commit provisioning")
	}

	fx.hold.Release()
	if !fx.loop.updateMode() {
		t.Fatalf("release after the request must enter provisioning")
	}
	if fx.loop.mode != ModeProvisioning {
		t.Fatalf("mode = %v, want provisioning", fx.loop.mode)
	}
}

func TestRun_TerminatesOnProvisioning(t *testing.T) {
	fx := newFixture()
	fx.loop.SetIntervals(time.Millisecond, time.Hour, time.Millisecond)

	// Held long enough on the fake clock; the release arrives while Run is
	// iterating and commits the transition.
	fx.hold.Press()
	*fx.now = fx.now.Add(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(20 * time.Millisecond)
		fx.hold.Release()
	}()

	mode := fx.loop.Run(ctx)
	if mode != ModeProvisioning {
		t.Fatalf("Run returned %v, want provisioning", mode)
	}

	// The portal stays up in provisioning mode; actuation submissions must
	// now be rejected rather than parked in a queue nobody drains.
	if fx.loop.Submit(models.CommandEvent{Origin: models.OriginPortal, Payload: "/open"}) {
		t.Fatalf("Submit must be rejected once the loop has stopped")
	}
}

func TestSubmit_RejectedAfterRunReturns(t *testing.T) {
	fx := newFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fx.loop.Run(ctx)

	if fx.loop.Submit(models.CommandEvent{Origin: models.OriginPortal, Payload: "/open"}) {
		t.Fatalf("Submit after Run returned must report failure, not accept")
	}
	if fx.act.DoorActive() {
		t.Fatalf("nothing may actuate after the loop stopped")
	}
}

func TestRun_ReturnsOnContextCancel(t *testing.T) {
	fx := newFixture()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	mode := fx.loop.Run(ctx)
	if mode != ModeNormal {
		t.Fatalf("Run returned %v, want normal after cancel", mode)
	}
}

func TestModeString(t *testing.T) {
	cases := map[Mode]string{
		ModeNormal:                "normal",
		ModeProvisioningRequested: "provisioning-requested",
		ModeProvisioning:          "provisioning",
	}
	for m, want := range cases {
		if got := m.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", m, got, want)
		}
	}
}
