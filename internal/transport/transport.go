package transport

import "door_controller/internal/models"

// Inbound is what the control loop needs from the messaging channel.
type Inbound interface {
	// Poll drains the normalized events that arrived since the last call.
	// Never blocks; an empty slice is the common case.
	Poll() []models.CommandEvent
	// Connected reports whether the transport link is currently up.
	Connected() bool
}

// Outbound is what the dispatcher needs to answer on the remote channel.
// A send error downgrades connectivity on the next loop iteration; it is
// never fatal and never retried within the same dispatch.
type Outbound interface {
	SendText(text string, markdown bool) error
	SendMenu(text string, buttons [][]models.Button) error
	AckCallback(callbackID, text string) error
}

// Channel is the full remote messaging contract.
type Channel interface {
	Inbound
	Outbound
}
