package dispatcher

import "door_controller/internal/models"

// User-facing texts for the chat channel. Markdown-flavored where the
// renderer supports it.
const (
	welcomeText = "👋 *Welcome!*\nThis bot controls the building door and the staircase light.\nUse the menu below, or /help for the command list."

	accessDeniedText = "⛔ Access denied.\nYour id is not on the authorized list."

	unknownCommandText = "🤔 Unknown command.\nTry /open, /light, /status, /log, /help or /menu."

	doorOpenedText = "🚪 *Door opened!*\nThe strike releases again in about a second."

	lightOnText = "💡 *Light on!*\nIt switches off by itself."

	helpText = "*Commands*\n" +
		"/open — open the door\n" +
		"/light — switch the staircase light on\n" +
		"/status — system status\n" +
		"/log — recent operations\n" +
		"/menu — show the button menu\n" +
		"/help — this message"

	menuText = "Choose an action:"
)

// Short per-action callback acknowledgments, sent before the main response.
const (
	ackOpenDoor     = "Opening the door…"
	ackLightOn      = "Switching the light on…"
	ackStatus       = "System status"
	ackShowLog      = "Recent operations"
	ackHelp         = "Help"
	ackUnrecognized = "Unrecognized action"
	ackDenied       = "Access denied"
)

// menuButtons is the interactive menu layout.
func menuButtons() [][]models.Button {
	return [][]models.Button{
		{
			{Label: "🚪 Open Door", Data: TokenOpenDoor},
			{Label: "💡 Light On", Data: TokenLightOn},
		},
		{
			{Label: "📊 Status", Data: TokenStatus},
			{Label: "📋 Log", Data: TokenShowLog},
		},
		{
			{Label: "❓ Help", Data: TokenHelp},
		},
	}
}
