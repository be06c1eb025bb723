package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"door_controller/internal/actuator"
	"door_controller/internal/feedback"
	"door_controller/internal/history"
	"door_controller/internal/models"
	"door_controller/internal/registry"
	"door_controller/internal/status"
)

// fakeOutbound records every outbound call in arrival order.
type fakeOutbound struct {
	texts []string
	menus int
	acks  []string
	order []string // "text", "menu", "ack"
	err   error
}

func (f *fakeOutbound) SendText(text string, markdown bool) error {
	f.texts = append(f.texts, text)
	f.order = append(f.order, "text")
	return f.err
}

func (f *fakeOutbound) SendMenu(text string, buttons [][]models.Button) error {
	f.menus++
	f.order = append(f.order, "menu")
	return f.err
}

func (f *fakeOutbound) AckCallback(callbackID, text string) error {
	f.acks = append(f.acks, text)
	f.order = append(f.order, "ack")
	return f.err
}

type fakeFeedback struct {
	intents []feedback.Intent
}

func (f *fakeFeedback) Emit(i feedback.Intent) {
	f.intents = append(f.intents, i)
}

type fakeOperationRepo struct {
	appended []models.Operation
	err      error
}

func (f *fakeOperationRepo) Append(_ context.Context, op models.Operation) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, op)
	return nil
}

func (f *fakeOperationRepo) List(_ context.Context, _, _ time.Time, _ string) ([]models.Operation, error) {
	return nil, nil
}

type fixture struct {
	d    *Dispatcher
	act  *actuator.Controller
	hist *history.Log
	out  *fakeOutbound
	fb   *fakeFeedback
	ops  *fakeOperationRepo
}

func newFixture() *fixture {
	reg := registry.New()
	reg.Load("111,222")

	act := actuator.New(nil, nil, 0, 0, nil)
	hist := history.New()
	conn := &status.Connectivity{}
	rep := status.NewReporter(conn, act, reg)
	out := &fakeOutbound{}
	fb := &fakeFeedback{}
	ops := &fakeOperationRepo{}

	d := New(reg, act, hist, rep, ops, out, fb, nil)
	d.SetSettle(0, func(time.Duration) {})
	return &fixture{d: d, act: act, hist: hist, out: out, fb: fb, ops: ops}
}

func remoteText(id int64, name, payload string) models.CommandEvent {
	return models.CommandEvent{Origin: models.OriginRemoteText, UserID: id, UserName: name, Payload: payload}
}

func remoteCallback(id int64, name, payload, cbID string) models.CommandEvent {
	return models.CommandEvent{Origin: models.OriginRemoteCallback, UserID: id, UserName: name, Payload: payload, CallbackID: cbID}
}

func TestDispatch_UnauthorizedUserIsDenied(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), remoteText(999, "Mallory", "/open"))

	if fx.act.DoorActive() {
		t.Fatalf("denied command must not actuate the door")
	}
	if fx.hist.Count() != 0 {
		t.Fatalf("denied command must not enter the history")
	}
	if len(fx.ops.appended) != 0 {
		t.Fatalf("denied command must not be persisted")
	}
	if len(fx.out.texts) != 1 || fx.out.texts[0] != accessDeniedText {
		t.Fatalf("texts = %q, want the denial message only", fx.out.texts)
	}
	if len(fx.fb.intents) != 1 || fx.fb.intents[0] != feedback.Error {
		t.Fatalf("feedback = %v, want [Error]", fx.fb.intents)
	}
}

func TestDispatch_RemoteIdZeroIsRejected(t *testing.T) {
	fx := newFixture()

	// Id 0 is the local-button sentinel; a remote event carrying it is
	// denied even if a malformed configuration token parsed to 0.
	fx.d.Dispatch(context.Background(), remoteText(0, "ghost", "/open"))

	if fx.act.DoorActive() {
		t.Fatalf("remote id 0 must never actuate")
	}
	if len(fx.out.texts) != 1 || fx.out.texts[0] != accessDeniedText {
		t.Fatalf("texts = %q, want denial", fx.out.texts)
	}
}

func TestDispatch_AuthorizedOpenActuatesAndRecords(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), remoteText(111, "Alice", "/open"))

	if !fx.act.DoorActive() {
		t.Fatalf("door must be active after an authorized /open")
	}
	e := fx.hist.Entry(0)
	if e.Kind != models.KindDoorOpened || e.UserID != 111 || e.UserName != "Alice" {
		t.Fatalf("history slot 0 = %+v", e)
	}
	if len(fx.ops.appended) != 1 || fx.ops.appended[0].Kind != models.KindDoorOpened {
		t.Fatalf("persisted ops = %+v", fx.ops.appended)
	}
	if len(fx.out.texts) != 1 || fx.out.texts[0] != doorOpenedText {
		t.Fatalf("texts = %q", fx.out.texts)
	}
	if fx.out.menus != 1 {
		t.Fatalf("menus = %d, want 1 resent after the action", fx.out.menus)
	}
	if len(fx.fb.intents) != 1 || fx.fb.intents[0] != feedback.Confirmation {
		t.Fatalf("feedback = %v, want [Confirmation]", fx.fb.intents)
	}
}

func TestDispatch_LightCommand(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), remoteText(222, "Bob", "/light"))

	if !fx.act.LightActive() || fx.act.DoorActive() {
		t.Fatalf("light must be active and door idle")
	}
	if e := fx.hist.Entry(0); e.Kind != models.KindLightOn {
		t.Fatalf("history slot 0 kind = %v", e.Kind)
	}
}

func TestDispatch_LocalButtonBypassesGateAndChannel(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), models.CommandEvent{Origin: models.OriginLocalButton})

	if !fx.act.DoorActive() {
		t.Fatalf("button press must open the door")
	}
	e := fx.hist.Entry(0)
	if e.Kind != models.KindDoorButton || e.UserID != 0 || e.UserName != ButtonUserName {
		t.Fatalf("history slot 0 = %+v", e)
	}
	if len(fx.out.texts) != 0 || fx.out.menus != 0 || len(fx.out.acks) != 0 {
		t.Fatalf("button press must produce no remote traffic: %+v", fx.out)
	}
	if len(fx.fb.intents) != 1 || fx.fb.intents[0] != feedback.Confirmation {
		t.Fatalf("feedback = %v", fx.fb.intents)
	}
}

func TestDispatch_PortalEventsCarryAdminIdentity(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), models.CommandEvent{
		Origin:   models.OriginPortal,
		UserID:   -1,
		UserName: "Admin",
		Payload:  "/light",
	})

	if !fx.act.LightActive() {
		t.Fatalf("portal /light must actuate")
	}
	e := fx.hist.Entry(0)
	if e.UserID != -1 || e.UserName != "Admin" || e.Kind != models.KindLightOn {
		t.Fatalf("history slot 0 = %+v", e)
	}
	if len(fx.out.texts) != 0 {
		t.Fatalf("portal events must not write to the chat channel")
	}
}

func TestDispatch_EmptyLogQuery(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), remoteText(111, "Alice", "/log"))

	if len(fx.out.texts) != 1 || fx.out.texts[0] != history.NoOperationsMessage {
		t.Fatalf("texts = %q, want exactly the empty-log message", fx.out.texts)
	}
	if fx.act.DoorActive() || fx.act.LightActive() {
		t.Fatalf("/log must not actuate anything")
	}
}

func TestDispatch_UnknownTextGetsGuidanceNoMenu(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), remoteText(111, "Alice", "/frobnicate"))

	if len(fx.out.texts) != 1 || fx.out.texts[0] != unknownCommandText {
		t.Fatalf("texts = %q", fx.out.texts)
	}
	if fx.out.menus != 0 {
		t.Fatalf("unknown command must not resend the menu")
	}
}

func TestDispatch_StartSendsWelcomeThenMenu(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), remoteText(111, "Alice", "/start"))

	if len(fx.out.texts) != 1 || fx.out.texts[0] != welcomeText {
		t.Fatalf("texts = %q", fx.out.texts)
	}
	if fx.out.menus != 1 {
		t.Fatalf("menus = %d, want 1", fx.out.menus)
	}
	if len(fx.out.order) != 2 || fx.out.order[0] != "text" || fx.out.order[1] != "menu" {
		t.Fatalf("order = %v, want welcome before menu", fx.out.order)
	}
}

func TestDispatch_CallbackAckPrecedesAction(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), remoteCallback(111, "Alice", TokenOpenDoor, "cb-1"))

	if !fx.act.DoorActive() {
		t.Fatalf("callback open must actuate")
	}
	if len(fx.out.acks) != 1 || fx.out.acks[0] != ackOpenDoor {
		t.Fatalf("acks = %q", fx.out.acks)
	}
	if len(fx.out.order) < 2 || fx.out.order[0] != "ack" {
		t.Fatalf("order = %v, want the ack first", fx.out.order)
	}
}

func TestDispatch_UnrecognizedCallbackOnlyAcks(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), remoteCallback(111, "Alice", "BOGUS", "cb-2"))

	if len(fx.out.acks) != 1 || fx.out.acks[0] != ackUnrecognized {
		t.Fatalf("acks = %q", fx.out.acks)
	}
	if len(fx.out.texts) != 0 || fx.out.menus != 0 {
		t.Fatalf("unrecognized callback must only be acked: %+v", fx.out)
	}
}

func TestDispatch_DeniedCallbackIsAcked(t *testing.T) {
	fx := newFixture()

	fx.d.Dispatch(context.Background(), remoteCallback(999, "Mallory", TokenOpenDoor, "cb-3"))

	if len(fx.out.acks) != 1 || fx.out.acks[0] != ackDenied {
		t.Fatalf("acks = %q", fx.out.acks)
	}
	if len(fx.out.texts) != 1 || fx.out.texts[0] != accessDeniedText {
		t.Fatalf("texts = %q", fx.out.texts)
	}
	if fx.act.DoorActive() {
		t.Fatalf("denied callback must not actuate")
	}
}

func TestDispatch_PersistFailureDoesNotFailCommand(t *testing.T) {
	fx := newFixture()
	fx.ops.err = errors.New("disk full")

	fx.d.Dispatch(context.Background(), remoteText(111, "Alice", "/open"))

	if !fx.act.DoorActive() {
		t.Fatalf("actuation must proceed despite a persistence failure")
	}
	if fx.hist.Count() != 1 {
		t.Fatalf("ring buffer must hold the entry despite a persistence failure")
	}
	if len(fx.out.texts) != 1 || fx.out.texts[0] != doorOpenedText {
		t.Fatalf("texts = %q, the user still gets the confirmation", fx.out.texts)
	}
}

func TestDispatch_SendFailureIsSwallowed(t *testing.T) {
	fx := newFixture()
	fx.out.err = errors.New("broker down")

	fx.d.Dispatch(context.Background(), remoteText(111, "Alice", "/open"))

	if !fx.act.DoorActive() {
		t.Fatalf("actuation must proceed despite a send failure")
	}
}

func TestParseText(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{"/open", CmdOpen},
		{"/OPEN", CmdOpen},
		{"  /light  ", CmdLight},
		{"/open@door_bot", CmdOpen},
		{"/status now", CmdStatus},
		{"/log", CmdLog},
		{"/help", CmdHelp},
		{"/menu", CmdMenu},
		{"/start", CmdStart},
		{"open", CmdUnknown},
		{"", CmdUnknown},
	}
	for _, tc := range cases {
		if got := ParseText(tc.in); got != tc.want {
			t.Fatalf("ParseText(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseCallback(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{TokenOpenDoor, CmdOpen},
		{TokenLightOn, CmdLight},
		{TokenStatus, CmdStatus},
		{TokenShowLog, CmdLog},
		{TokenHelp, CmdHelp},
		{"open_door", CmdUnknown},
		{"", CmdUnknown},
	}
	for _, tc := range cases {
		if got := ParseCallback(tc.in); got != tc.want {
			t.Fatalf("ParseCallback(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
