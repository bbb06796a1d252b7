// Package input holds the platform-neutral event model and per-frame input state.
// The window package translates SDL events into these types.
package input

// EventType identifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Key is a physical key the viewer reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyF12
)

// Button is a mouse button, numbered like SDL.
type Button uint8

const (
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
	MouseX int
	MouseY int
	DeltaX int // relative motion for EventMouseMove
	DeltaY int
	Button Button
	Held   uint8   // buttons held during EventMouseMove, one bit per Button
	Wheel  float32 // positive scrolls away from the user
}

// Holding reports whether b was held when the event happened.
func (e Event) Holding(b Button) bool {
	return b < 8 && e.Held&(1<<b) != 0
}

// Input collects the events of one frame and tracks held mouse buttons.
type Input struct {
	events []Event
	held   uint8
	quit   bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Begin starts a new frame, dropping the previous frame's events.
func (i *Input) Begin() {
	i.events = i.events[:0]
}

// Push records an event and updates held button state.
func (i *Input) Push(e Event) {
	switch e.Type {
	case EventQuit:
		i.quit = true
	case EventMouseDown:
		if e.Button < 8 {
			i.held |= 1 << e.Button
		}
	case EventMouseUp:
		if e.Button < 8 {
			i.held &^= 1 << e.Button
		}
	case EventMouseMove:
		e.Held = i.held
	}
	i.events = append(i.events, e)
}

// Events returns the events pushed since the last Begin.
func (i *Input) Events() []Event {
	return i.events
}

// QuitRequested reports whether a quit event has been seen.
func (i *Input) QuitRequested() bool {
	return i.quit
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(key Key) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}

// LastResize returns the final window size reported this frame, if any.
func (i *Input) LastResize() (width, height int, ok bool) {
	for _, e := range i.events {
		if e.Type == EventWindowResize {
			width, height, ok = e.Width, e.Height, true
		}
	}
	return width, height, ok
}
