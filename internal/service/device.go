package service

import (
	"context"
	"errors"

	"door_controller/internal/models"
)

// AdminUserID is the originator id recorded for portal actions. Id 0 is the
// local-button sentinel and must stay distinct.
const AdminUserID = -1

// AdminUserName is the operator name recorded for portal actions.
const AdminUserName = "Admin"

var (
	ErrNotRunning = errors.New("controller is not running (provisioning mode)")
	ErrBusy       = errors.New("controller is busy, try again")
)

// Submitter hands an event to the control loop without blocking. The loop
// goroutine owns all core state; the portal never touches it directly.
type Submitter interface {
	Submit(ev models.CommandEvent) bool
}

type DeviceService struct {
	submit Submitter
}

func NewDeviceService(submit Submitter) *DeviceService {
	return &DeviceService{submit: submit}
}

func (s *DeviceService) OpenDoor(ctx context.Context) error {
	return s.enqueue("/open")
}

func (s *DeviceService) LightOn(ctx context.Context) error {
	return s.enqueue("/light")
}

func (s *DeviceService) enqueue(payload string) error {
	if s.submit == nil {
		return ErrNotRunning
	}
	ok := s.submit.Submit(models.CommandEvent{
		Origin:   models.OriginPortal,
		UserID:   AdminUserID,
		UserName: AdminUserName,
		Payload:  payload,
	})
	if !ok {
		return ErrBusy
	}
	return nil
}
