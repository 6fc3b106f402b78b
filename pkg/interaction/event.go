package interaction

import "github.com/aretw0/flowcanvas/pkg/domain"

// EventKind is the shape of a pointer event.
type EventKind int

const (
	Press EventKind = iota
	Move
	Release
	Wheel
)

func (k EventKind) String() string {
	switch k {
	case Press:
		return "press"
	case Move:
		return "move"
	case Release:
		return "release"
	case Wheel:
		return "wheel"
	default:
		return "unknown"
	}
}

// Button identifies the pointer button of a press or release.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers are the keys held during an event. Space is tracked like a modifier
// because space+drag pans the canvas.
type Modifiers struct {
	Alt   bool
	Shift bool
	Ctrl  bool
	Space bool
}

// Event is a pointer event in screen coordinates.
type Event struct {
	Kind   EventKind
	Screen domain.Point
	Button Button
	Mods   Modifiers

	// DeltaY is the wheel delta for Wheel events.
	DeltaY float64
}
