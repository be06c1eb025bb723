package models

import "time"

// OperationKind enumerates the actuation events the controller records.
type OperationKind string

const (
	KindDoorOpened OperationKind = "DOOR_OPENED"
	KindLightOn    OperationKind = "LIGHT_ON"
	KindDoorButton OperationKind = "DOOR_BUTTON"
)

// Operation is a single persisted actuation record.
type Operation struct {
	ID         string        `json:"id"`
	OccurredAt time.Time     `json:"occurred_at"`
	Kind       OperationKind `json:"kind"`      // DOOR_OPENED | LIGHT_ON | DOOR_BUTTON
	UserID     int64         `json:"user_id"`   // 0 = local button sentinel, -1 = portal admin
	UserName   string        `json:"user_name"` // display name of the originator
}
