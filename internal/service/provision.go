package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"door_controller/internal/models"
	"door_controller/internal/repository"
)

var (
	errMissingSSID      = errors.New("ssid is required")
	errMissingToken     = errors.New("token is required")
	errMissingAdminPass = errors.New("admin password is required")
)

// ProvisionService validates and saves the configuration collected by the
// provisioning portal. The saved record only takes effect after a restart;
// the running loop is never reconfigured in place.
type ProvisionService struct {
	config repository.ConfigRepo
}

func NewProvisionService(config repository.ConfigRepo) *ProvisionService {
	return &ProvisionService{config: config}
}

func (s *ProvisionService) Provision(ctx context.Context, p ProvisionParams) error {
	if strings.TrimSpace(p.SSID) == "" {
		return errMissingSSID
	}
	if strings.TrimSpace(p.Token) == "" {
		return errMissingToken
	}
	if strings.TrimSpace(p.AdminPass) == "" {
		return errMissingAdminPass
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.AdminPass), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	return s.config.Save(ctx, models.DeviceConfig{
		ID:             1,
		SSID:           strings.TrimSpace(p.SSID),
		WifiPass:       p.WifiPass,
		TransportToken: strings.TrimSpace(p.Token),
		AdminPassHash:  string(hash),
		AuthorizedIDs:  strings.TrimSpace(p.Users),
		Provisioned:    true,
		UpdatedAt:      time.Now().UTC(),
	})
}
