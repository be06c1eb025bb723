package dispatcher

import (
	"context"
	"time"

	"door_controller/internal/actuator"
	"door_controller/internal/feedback"
	"door_controller/internal/history"
	"door_controller/internal/logger"
	"door_controller/internal/models"
	"door_controller/internal/registry"
	"door_controller/internal/repository"
	"door_controller/internal/status"
	"door_controller/internal/transport"
)

// DefaultSettle is the pause before re-sending the interactive menu after a
// remote action, so the confirmation is read before the menu replaces it.
const DefaultSettle = 1 * time.Second

// ButtonUserName is the operator identity recorded for local-button events.
const ButtonUserName = "Button"

// Dispatcher is the command-authorization-and-actuation state machine. Each
// inbound event is processed synchronously to completion on the control-loop
// goroutine; there is no conversation state between events.
type Dispatcher struct {
	reg  *registry.Registry
	act  *actuator.Controller
	hist *history.Log
	rep  *status.Reporter
	ops  repository.OperationRepo
	out  transport.Outbound
	fb   feedback.Sink
	log  *logger.Logger

	settle time.Duration
	sleep  func(time.Duration)
}

func New(
	reg *registry.Registry,
	act *actuator.Controller,
	hist *history.Log,
	rep *status.Reporter,
	ops repository.OperationRepo,
	out transport.Outbound,
	fb feedback.Sink,
	log *logger.Logger,
) *Dispatcher {
	if fb == nil {
		fb = feedback.Noop{}
	}
	return &Dispatcher{
		reg:    reg,
		act:    act,
		hist:   hist,
		rep:    rep,
		ops:    ops,
		out:    out,
		fb:     fb,
		log:    log,
		settle: DefaultSettle,
		sleep:  time.Sleep,
	}
}

// SetSettle overrides the menu-resend delay; tests pass 0 with a no-op sleep.
func (d *Dispatcher) SetSettle(settle time.Duration, sleep func(time.Duration)) {
	d.settle = settle
	if sleep != nil {
		d.sleep = sleep
	}
}

// Dispatch runs one event through the gate, the router and the action.
func (d *Dispatcher) Dispatch(ctx context.Context, ev models.CommandEvent) {
	switch ev.Origin {
	case models.OriginLocalButton:
		// Trusted physical access: implicitly authorized, no reply channel.
		d.perform(ctx, 0, ButtonUserName, models.KindDoorButton)
		d.fb.Emit(feedback.Confirmation)
		return

	case models.OriginPortal:
		// Admin proved identity to the portal already.
		kind := models.KindDoorOpened
		if ParseText(ev.Payload) == CmdLight {
			kind = models.KindLightOn
		}
		d.perform(ctx, ev.UserID, ev.UserName, kind)
		d.fb.Emit(feedback.Confirmation)
		return
	}

	if !d.authorized(ev.UserID) {
		d.deny(ev)
		return
	}

	switch ev.Origin {
	case models.OriginRemoteText:
		d.routeText(ctx, ev)
	case models.OriginRemoteCallback:
		d.routeCallback(ctx, ev)
	}
}

// authorized gates remote originators. Id 0 is reserved for the local
// button sentinel and is never accepted from a remote channel, even if a
// malformed configuration token parsed to 0.
func (d *Dispatcher) authorized(id int64) bool {
	return id != 0 && d.reg.IsAuthorized(id)
}

func (d *Dispatcher) deny(ev models.CommandEvent) {
	if d.log != nil {
		d.log.Warnw("access_denied", "user_id", ev.UserID, "user_name", ev.UserName, "payload", ev.Payload)
	}
	if ev.Origin == models.OriginRemoteCallback {
		d.ack(ev, ackDenied)
	}
	d.send(accessDeniedText, false)
	d.fb.Emit(feedback.Error)
}

func (d *Dispatcher) routeText(ctx context.Context, ev models.CommandEvent) {
	switch ParseText(ev.Payload) {
	case CmdStart:
		d.send(welcomeText, true)
		d.fb.Emit(feedback.Success)
		d.menuAfterSettle()
	case CmdOpen:
		d.openDoor(ctx, ev)
	case CmdLight:
		d.lightOn(ctx, ev)
	case CmdStatus:
		d.send(d.rep.Detailed(), true)
		d.menuAfterSettle()
	case CmdLog:
		d.send(d.hist.FormatDetailed(), true)
		d.menuAfterSettle()
	case CmdHelp:
		d.send(helpText, true)
		d.menuAfterSettle()
	case CmdMenu:
		d.sendMenu()
	default:
		d.send(unknownCommandText, false)
	}
}

func (d *Dispatcher) routeCallback(ctx context.Context, ev models.CommandEvent) {
	switch ParseCallback(ev.Payload) {
	case CmdOpen:
		d.ack(ev, ackOpenDoor)
		d.openDoor(ctx, ev)
	case CmdLight:
		d.ack(ev, ackLightOn)
		d.lightOn(ctx, ev)
	case CmdStatus:
		d.ack(ev, ackStatus)
		d.send(d.rep.Detailed(), true)
		d.menuAfterSettle()
	case CmdLog:
		d.ack(ev, ackShowLog)
		d.send(d.hist.FormatDetailed(), true)
		d.menuAfterSettle()
	case CmdHelp:
		d.ack(ev, ackHelp)
		d.send(helpText, true)
		d.menuAfterSettle()
	default:
		d.ack(ev, ackUnrecognized)
	}
}

func (d *Dispatcher) openDoor(ctx context.Context, ev models.CommandEvent) {
	d.perform(ctx, ev.UserID, ev.UserName, models.KindDoorOpened)
	d.send(doorOpenedText, true)
	d.fb.Emit(feedback.Confirmation)
	d.menuAfterSettle()
}

func (d *Dispatcher) lightOn(ctx context.Context, ev models.CommandEvent) {
	d.perform(ctx, ev.UserID, ev.UserName, models.KindLightOn)
	d.send(lightOnText, true)
	d.fb.Emit(feedback.Confirmation)
	d.menuAfterSettle()
}

// perform executes the actuation and records it, in memory and durably.
func (d *Dispatcher) perform(ctx context.Context, userID int64, userName string, kind models.OperationKind) {
	if kind == models.KindLightOn {
		d.act.LightOn()
	} else {
		d.act.OpenDoor()
	}
	d.hist.Append(userID, kind, userName)

	if d.ops == nil {
		return
	}
	op := models.Operation{
		Kind:     kind,
		UserID:   userID,
		UserName: userName,
	}
	if err := d.ops.Append(ctx, op); err != nil && d.log != nil {
		// The ring buffer already holds the entry; losing the durable copy
		// must not fail the command.
		d.log.Errorw("operation_persist_failed", "kind", kind, "err", err)
	}
}

func (d *Dispatcher) send(text string, markdown bool) {
	if d.out == nil {
		return
	}
	if err := d.out.SendText(text, markdown); err != nil && d.log != nil {
		d.log.Warnw("send_text_failed", "err", err)
	}
}

func (d *Dispatcher) sendMenu() {
	if d.out == nil {
		return
	}
	if err := d.out.SendMenu(menuText, menuButtons()); err != nil && d.log != nil {
		d.log.Warnw("send_menu_failed", "err", err)
	}
}

func (d *Dispatcher) ack(ev models.CommandEvent, text string) {
	if d.out == nil {
		return
	}
	if err := d.out.AckCallback(ev.CallbackID, text); err != nil && d.log != nil {
		d.log.Warnw("ack_callback_failed", "callback_id", ev.CallbackID, "err", err)
	}
}

// menuAfterSettle re-sends the menu after the settle delay. Deliberately
// blocking: the loop accepts that timeout sweeping waits for in-flight
// sends, and re-sweeps immediately afterwards.
func (d *Dispatcher) menuAfterSettle() {
	if d.settle > 0 {
		d.sleep(d.settle)
	}
	d.sendMenu()
}
