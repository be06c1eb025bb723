package dispatcher

import "strings"

// Command is the closed tag produced by parsing at the channel boundary.
// Unknown is a real, reachable variant: every inbound payload maps to
// something, and Unknown gets a guidance response, never a silent drop.
type Command int

const (
	CmdUnknown Command = iota
	CmdStart
	CmdOpen
	CmdLight
	CmdStatus
	CmdLog
	CmdHelp
	CmdMenu
)

// Callback tokens embedded in the interactive menu buttons. They come back
// verbatim when a button is pressed.
const (
	TokenOpenDoor  = "OPEN_DOOR"
	TokenLightOn   = "LIGHT_ON"
	TokenStatus    = "STATE_SYSTEM"
	TokenShowLog   = "SHOW_LOG"
	TokenHelp      = "HELP"
)

// ParseText maps a chat message to a command tag. Only the first token
// counts; bot-suffix forms like "/open@door" are tolerated.
func ParseText(s string) Command {
	tok := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(tok, " @"); i >= 0 {
		tok = tok[:i]
	}
	switch tok {
	case "/start":
		return CmdStart
	case "/open":
		return CmdOpen
	case "/light":
		return CmdLight
	case "/status":
		return CmdStatus
	case "/log":
		return CmdLog
	case "/help":
		return CmdHelp
	case "/menu":
		return CmdMenu
	default:
		return CmdUnknown
	}
}

// ParseCallback maps a button token to a command tag.
func ParseCallback(s string) Command {
	switch strings.TrimSpace(s) {
	case TokenOpenDoor:
		return CmdOpen
	case TokenLightOn:
		return CmdLight
	case TokenStatus:
		return CmdStatus
	case TokenShowLog:
		return CmdLog
	case TokenHelp:
		return CmdHelp
	default:
		return CmdUnknown
	}
}
