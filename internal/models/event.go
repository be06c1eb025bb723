package models

// Origin identifies the input channel a command arrived on.
type Origin int

const (
	OriginRemoteText Origin = iota
	OriginRemoteCallback
	OriginLocalButton
	OriginPortal // authenticated HTTP portal, no chat channel to answer on
)

// CommandEvent is a normalized inbound command, transient per dispatch.
type CommandEvent struct {
	Origin     Origin
	UserID     int64
	UserName   string
	Payload    string // command text or callback token
	CallbackID string // set only for OriginRemoteCallback
}

// Button is one interactive menu button sent over the messaging channel.
// Data comes back verbatim as a callback token when pressed.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}
