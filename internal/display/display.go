package display

import (
	"fmt"
	"strings"

	"door_controller/internal/history"
	"door_controller/internal/logger"
	"door_controller/internal/status"
)

// Lines is the fixed geometry of the local panel.
const Lines = 6

// Sink renders the composed status lines. The hardware panel driver sits
// behind this interface; tests and headless installs use LogSink.
type Sink interface {
	Render(lines [Lines]string)
}

// Composer derives the compact six-line status view: title, history slots
// 0-3 (slot 4 is only visible in the detailed remote log), and the
// connectivity summary. It pushes to the sink only when the joined content
// actually changed, so a steady state costs nothing on the display bus.
type Composer struct {
	title string
	hist  *history.Log
	conn  *status.Connectivity
	sink  Sink
	last  string
}

func NewComposer(title string, hist *history.Log, conn *status.Connectivity, sink Sink) *Composer {
	return &Composer{title: title, hist: hist, conn: conn, sink: sink}
}

// Refresh recomputes the view and renders it if it differs from the last
// pushed content. Called once per control-loop iteration.
func (c *Composer) Refresh() {
	var lines [Lines]string
	lines[0] = c.title
	for i := 0; i < 4; i++ {
		lines[i+1] = c.hist.FormatShort(i)
	}
	lines[5] = fmt.Sprintf("Link:%s Msg:%s", flag(c.conn.LinkOK()), flag(c.conn.MessagingOK()))

	joined := strings.Join(lines[:], "\n")
	if joined == c.last {
		return
	}
	c.last = joined
	if c.sink != nil {
		c.sink.Render(lines)
	}
}

func flag(ok bool) string {
	if ok {
		return "OK"
	}
	return "--"
}

// LogSink writes the panel content to the diagnostic stream at debug level.
type LogSink struct {
	Log *logger.Logger
}

func (s LogSink) Render(lines [Lines]string) {
	if s.Log != nil {
		s.Log.Debugw("display_render", "content", strings.Join(lines[:], " | "))
	}
}
