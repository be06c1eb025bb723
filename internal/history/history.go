package history

import (
	"fmt"
	"strings"
	"time"

	"door_controller/internal/models"
)

// Capacity is the fixed number of recent operations kept in memory. Older
// entries age out; the durable trail lives in SQLite.
const Capacity = 5

// NoOperationsMessage is the detailed rendering of an empty history.
const NoOperationsMessage = "📭 No operations recorded yet."

// Entry is one slot of the recent-operations buffer. A zero At marks an
// empty slot, which only exists before five real operations have occurred.
type Entry struct {
	At       time.Time
	UserID   int64
	Kind     models.OperationKind
	UserName string
}

// Log is a most-recent-first fixed buffer of actuation events. It is owned
// by the control loop goroutine; no internal locking.
type Log struct {
	entries [Capacity]Entry
	dirty   bool
	now     func() time.Time
}

func New() *Log {
	return &Log{now: time.Now}
}

// NewWithClock is for tests that need deterministic elapsed-time rendering.
func NewWithClock(now func() time.Time) *Log {
	return &Log{now: now}
}

// Append shifts every entry down one slot, discarding the oldest when the
// buffer is full, and inserts the new operation at slot 0 with the current
// time. It also marks the display composer dirty.
func (l *Log) Append(userID int64, kind models.OperationKind, userName string) {
	copy(l.entries[1:], l.entries[:Capacity-1])
	l.entries[0] = Entry{
		At:       l.now(),
		UserID:   userID,
		Kind:     kind,
		UserName: userName,
	}
	l.dirty = true
}

// Entry returns slot i. Callers must check At.IsZero() for empty slots.
func (l *Log) Entry(i int) Entry {
	return l.entries[i]
}

// Count returns the number of valid entries. Shifting never leaves gaps, so
// the first empty slot bounds the valid prefix.
func (l *Log) Count() int {
	for i, e := range l.entries {
		if e.At.IsZero() {
			return i
		}
	}
	return Capacity
}

// ConsumeDirty reports whether an append happened since the last call and
// clears the flag. The display composer polls this once per loop iteration.
func (l *Log) ConsumeDirty() bool {
	d := l.dirty
	l.dirty = false
	return d
}

// FormatShort renders slot i for the compact display:
// "<user> <Door|Light> <elapsed><unit> ", or "" for an empty slot.
func (l *Log) FormatShort(i int) string {
	e := l.entries[i]
	if e.At.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %s %s ", e.UserName, shortLabel(e.Kind), shortElapsed(l.now().Sub(e.At)))
}

// FormatDetailed renders the valid entries as emoji-tagged blocks for the
// remote log query, or NoOperationsMessage when the history is empty.
func (l *Log) FormatDetailed() string {
	n := l.Count()
	if n == 0 {
		return NoOperationsMessage
	}
	var b strings.Builder
	b.WriteString("📋 *Recent operations*\n\n")
	for i := 0; i < n; i++ {
		e := l.entries[i]
		emoji, label := detailedLabel(e.Kind)
		fmt.Fprintf(&b, "%s *%s*\n👤 %s\n🕐 %s\n\n", emoji, label, e.UserName, longElapsed(l.now().Sub(e.At)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortLabel(k models.OperationKind) string {
	if k == models.KindLightOn {
		return "Light"
	}
	return "Door"
}

func detailedLabel(k models.OperationKind) (emoji, label string) {
	if k == models.KindLightOn {
		return "💡", "LIGHT ON"
	}
	return "🚪", "DOOR OPENED"
}

// shortElapsed uses the compact unit table: Ns, Nm, Nh, Nd.
func shortElapsed(d time.Duration) string {
	s := int64(d.Seconds())
	switch {
	case s < 60:
		return fmt.Sprintf("%ds", s)
	case s < 60*60:
		return fmt.Sprintf("%dm", s/60)
	case s < 24*60*60:
		return fmt.Sprintf("%dh", s/3600)
	default:
		return fmt.Sprintf("%dd", s/86400)
	}
}

// longElapsed is the verbose relative-time phrase for the detailed log.
func longElapsed(d time.Duration) string {
	s := int64(d.Seconds())
	switch {
	case s < 60:
		return fmt.Sprintf("%d seconds ago", s)
	case s < 60*60:
		return fmt.Sprintf("%d minutes ago", s/60)
	case s < 24*60*60:
		return fmt.Sprintf("%d hours ago", s/3600)
	default:
		return fmt.Sprintf("%d days ago", s/86400)
	}
}
