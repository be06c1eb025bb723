package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"door_controller/internal/models"
)

type ConfigSQLite struct {
	db *sql.DB
}

func NewConfigSQLite(db *sql.DB) *ConfigSQLite {
	return &ConfigSQLite{db: db}
}

var _ ConfigRepo = (*ConfigSQLite)(nil)

const (
	deviceConfigRowID = 1

	upsertConfigSQL = `
		INSERT INTO device_config (id, ssid, wifi_pass, transport_token, admin_pass_hash, authorized_ids, provisioned, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ssid=excluded.ssid,
			wifi_pass=excluded.wifi_pass,
			transport_token=excluded.transport_token,
			admin_pass_hash=excluded.admin_pass_hash,
			authorized_ids=excluded.authorized_ids,
			provisioned=excluded.provisioned,
			updated_at=excluded.updated_at
	`

	selectConfigSQL = `
		SELECT id, ssid, wifi_pass, transport_token, admin_pass_hash, authorized_ids, provisioned, updated_at
		FROM device_config WHERE id=?
	`
)

// Save upserts the device_config row (id always 1).
func (r *ConfigSQLite) Save(ctx context.Context, cfg models.DeviceConfig) error {
	tsUTC := cfg.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertConfigSQL,
		deviceConfigRowID,
		cfg.SSID,
		cfg.WifiPass,
		cfg.TransportToken,
		cfg.AdminPassHash,
		cfg.AuthorizedIDs,
		cfg.Provisioned,
		tsUTC,
	)
	return err
}

// Load fetches the single device_config row. A missing row returns a zero
// config and no error; the caller treats that as "not provisioned".
func (r *ConfigSQLite) Load(ctx context.Context) (models.DeviceConfig, error) {
	row := r.db.QueryRowContext(ctx, selectConfigSQL, deviceConfigRowID)

	var cfg models.DeviceConfig
	if err := row.Scan(
		&cfg.ID,
		&cfg.SSID,
		&cfg.WifiPass,
		&cfg.TransportToken,
		&cfg.AdminPassHash,
		&cfg.AuthorizedIDs,
		&cfg.Provisioned,
		&cfg.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeviceConfig{}, nil
		}
		return models.DeviceConfig{}, err
	}

	cfg.UpdatedAt = cfg.UpdatedAt.UTC()
	return cfg, nil
}
