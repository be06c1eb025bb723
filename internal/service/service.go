package service

import (
	"context"
	"time"

	"door_controller/internal/models"
	"door_controller/internal/repository"
	"door_controller/internal/status"
)

// Device exposes the two actuations to the portal. Both go through the same
// dispatcher path as chat commands, via the control-loop request queue.
type Device interface {
	OpenDoor(ctx context.Context) error
	LightOn(ctx context.Context) error
}

// Monitoring exposes read-only system status.
type Monitoring interface {
	Snapshot() models.StatusSnapshot
	Detailed() string
}

// OperationLog exposes the durable operation trail with filtering.
type OperationLog interface {
	List(ctx context.Context, f LogFilter) ([]models.Operation, error)
}

// PortalAuth issues and validates portal access tokens against the single
// admin credential.
type PortalAuth interface {
	GenerateToken(password string) (string, error)
	ParseToken(accessToken string) error
}

// Provisioner saves a validated configuration record. A restart is required
// for it to take effect.
type Provisioner interface {
	Provision(ctx context.Context, p ProvisionParams) error
}

// LogFilter narrows the operation list by time range and kind.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Kind string    // "", "DOOR_OPENED", "LIGHT_ON", "DOOR_BUTTON"
}

// ProvisionParams mirrors the portal form fields.
type ProvisionParams struct {
	SSID      string
	WifiPass  string
	Token     string
	Users     string // comma-separated authorized ids
	AdminPass string
}

// Service aggregates the portal-facing sub-services.
type Service struct {
	Device
	Monitoring
	OperationLog
	PortalAuth
	Provisioner
}

// Deps carries everything the sub-services are wired from.
type Deps struct {
	Submitter     Submitter
	Reporter      *status.Reporter
	Operations    repository.OperationRepo
	Config        repository.ConfigRepo
	AdminPassHash string
	SigningKey    []byte
}

func NewService(d Deps) *Service {
	return &Service{
		Device:       NewDeviceService(d.Submitter),
		Monitoring:   NewMonitoringService(d.Reporter),
		OperationLog: NewOperationLogService(d.Operations),
		PortalAuth:   NewPortalAuthService(d.AdminPassHash, d.SigningKey),
		Provisioner:  NewProvisionService(d.Config),
	}
}
