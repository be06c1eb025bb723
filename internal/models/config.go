package models

import "time"

// DeviceConfig is the provisioned configuration of the controller, kept as a
// single row (id=1) in SQLite. Static daemon settings (ports, pins, broker)
// live in configs/config.yml instead; this record holds only what the
// provisioning portal collects.
type DeviceConfig struct {
	ID             int       `json:"id"`
	SSID           string    `json:"ssid"`
	WifiPass       string    `json:"-"`
	TransportToken string    `json:"-"`
	AdminPassHash  string    `json:"-"` // bcrypt hash of the portal admin password
	AuthorizedIDs  string    `json:"authorized_ids"` // raw comma-separated int64 list
	Provisioned    bool      `json:"provisioned"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Complete reports whether the record carries enough data to run normally.
// An incomplete record forces provisioning mode at boot.
func (c DeviceConfig) Complete() bool {
	return c.Provisioned && c.SSID != "" && c.TransportToken != "" && c.AdminPassHash != ""
}
