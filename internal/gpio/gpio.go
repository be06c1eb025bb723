package gpio

import (
	"fmt"

	gpiod "github.com/warthog618/go-gpiocdev"

	"door_controller/internal/button"
	"door_controller/internal/logger"
)

// Pins maps the controller's fixed wiring. Values come from
// configs/config.yml; -1 disables a line.
type Pins struct {
	Chip      string
	Door      int
	Light     int
	Buzzer    int
	Trigger   int // door button, active low with pull-up
	Provision int // long-press provisioning button, active low with pull-up
}

// Manager owns the GPIO chip and every requested line.
type Manager struct {
	chip  *gpiod.Chip
	lines []*gpiod.Line
	log   *logger.Logger
}

func Open(chipName string, log *logger.Logger) (*Manager, error) {
	chip, err := gpiod.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %q: %w", chipName, err)
	}
	return &Manager{chip: chip, log: log}, nil
}

// Close releases all requested lines and the chip.
func (m *Manager) Close() {
	for _, l := range m.lines {
		_ = l.Close()
	}
	m.lines = nil
	if m.chip != nil {
		_ = m.chip.Close()
	}
}

// Output requests pin as an output, initially off, and returns it as a
// relay. Returns (nil, nil) for a disabled pin.
func (m *Manager) Output(pin int) (*LineRelay, error) {
	if pin < 0 {
		return nil, nil
	}
	line, err := m.chip.RequestLine(pin, gpiod.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output %d: %w", pin, err)
	}
	m.lines = append(m.lines, line)
	return &LineRelay{line: line}, nil
}

// WireTrigger routes falling edges on pin into the debounced trigger. The
// handler runs on the gpiocdev event goroutine and only calls Trigger.Edge,
// which is a timestamp compare and a flag set.
func (m *Manager) WireTrigger(pin int, trig *button.Trigger) error {
	if pin < 0 {
		return nil
	}
	line, err := m.chip.RequestLine(pin,
		gpiod.AsInput,
		gpiod.WithPullUp,
		gpiod.WithFallingEdge,
		gpiod.WithEventHandler(func(gpiod.LineEvent) {
			trig.Edge()
		}),
	)
	if err != nil {
		return fmt.Errorf("request trigger input %d: %w", pin, err)
	}
	m.lines = append(m.lines, line)
	return nil
}

// WireHold routes both edges on pin into the long-press detector: falling
// edge is press (active low), rising edge is release.
func (m *Manager) WireHold(pin int, hold *button.Hold) error {
	if pin < 0 {
		return nil
	}
	line, err := m.chip.RequestLine(pin,
		gpiod.AsInput,
		gpiod.WithPullUp,
		gpiod.WithBothEdges,
		gpiod.WithEventHandler(func(evt gpiod.LineEvent) {
			if evt.Type == gpiod.LineEventFallingEdge {
				hold.Press()
			} else {
				hold.Release()
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("request provision input %d: %w", pin, err)
	}
	m.lines = append(m.lines, line)
	return nil
}

// LineRelay adapts a requested output line to the actuator.Relay contract.
type LineRelay struct {
	line *gpiod.Line
}

func (r *LineRelay) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return r.line.SetValue(v)
}
