package ui

// Match is a located template region in screen coordinates.
type Match struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Center returns the centroid of the matched region.
func (m Match) Center() (x, y int) {
	return m.Left + m.Width/2, m.Top + m.Height/2
}

// Screen abstracts the pixel channel: template location, pointer control
// and keyboard input. The production implementation is RobotScreen; tests
// substitute a fake.
//
// The screen and pointer are exclusively owned by the sweep for its whole
// lifetime. Nothing else is expected to move the pointer; the actuator
// detects violations of that assumption as interference.
type Screen interface {
	// Locate searches the current screen for the template image at or
	// above the given confidence. found is false when no region matches;
	// err reports capture or decode failures.
	Locate(templatePath string, confidence float64) (match Match, found bool, err error)

	// PointerPosition returns the current pointer coordinates.
	PointerPosition() (x, y int)

	// MovePointer moves the pointer to the given coordinates.
	MovePointer(x, y int)

	// Click presses and releases the primary button at the current
	// pointer position.
	Click()

	// TypeText types a literal string at the current focus.
	TypeText(text string)

	// Press taps a single named key ("tab", "enter", "delete").
	Press(key string)

	// Hotkey taps a key with modifiers held ("a", "ctrl" for select-all).
	Hotkey(key string, modifiers ...string)
}

// Windower locates and foregrounds an application window by exact title.
type Windower interface {
	ActivateWindow(title string) error
}
