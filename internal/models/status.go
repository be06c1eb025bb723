package models

import "time"

// StatusSnapshot is the structured system status served by the portal and
// pushed over the websocket. The chat channel gets the Markdown rendering
// of the same data instead.
type StatusSnapshot struct {
	LinkOK          bool      `json:"link_ok"`
	MessagingOK     bool      `json:"messaging_ok"`
	SignalDBM       int       `json:"signal_dbm"`
	DoorOpen        bool      `json:"door_open"`
	LightOn         bool      `json:"light_on"`
	Uptime          string    `json:"uptime"` // "Xd Xh Xm Xs"
	FreeHeapBytes   uint64    `json:"free_heap_bytes"`
	AuthorizedUsers int       `json:"authorized_users"`
	UpdatedAt       time.Time `json:"updated_at"`
}
