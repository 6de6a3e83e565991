package ui

import (
	"fmt"
	"image"
	"sync"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

// RobotScreen is the production Screen implementation. Pointer, keyboard
// and window control go through robotgo; captures come from the primary
// display via kbinani/screenshot; location uses the in-package matcher.
//
// Decoded templates are cached per path for the lifetime of the process.
type RobotScreen struct {
	mu    sync.Mutex
	cache map[string]*image.RGBA
}

// NewRobotScreen creates a screen adapter for the primary display.
func NewRobotScreen() *RobotScreen {
	return &RobotScreen{cache: make(map[string]*image.RGBA)}
}

// Locate captures the primary display and searches it for the template.
//
// Parameters:
//   - templatePath: path to a PNG screenshot of the target control
//   - confidence: minimum match confidence in [0, 1]
//
// Returns:
//   - Match: screen-space bounds of the first match, valid when found
//   - bool: whether the template was found
//   - error: template load or capture failure
func (s *RobotScreen) Locate(templatePath string, confidence float64) (Match, bool, error) {
	tpl, err := s.template(templatePath)
	if err != nil {
		return Match{}, false, err
	}

	img, err := screenshot.CaptureDisplay(0)
	if err != nil {
		return Match{}, false, fmt.Errorf("capturing display: %w", err)
	}

	m, found := findTemplate(img, tpl, confidence)
	return m, found, nil
}

func (s *RobotScreen) template(path string) (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tpl, ok := s.cache[path]; ok {
		return tpl, nil
	}
	tpl, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	s.cache[path] = tpl
	return tpl, nil
}

// PointerPosition returns the current pointer location in screen space.
func (s *RobotScreen) PointerPosition() (int, int) {
	x, y := robotgo.GetMousePos()
	return x, y
}

// MovePointer glides the pointer to the given screen coordinates. The
// smooth move mimics a human trajectory, which some widget toolkits
// require before they register hover state.
func (s *RobotScreen) MovePointer(x, y int) {
	robotgo.MoveSmooth(x, y)
}

// Click presses and releases the left button at the current position.
func (s *RobotScreen) Click() {
	robotgo.Click("left", false)
}

// TypeText types literal text at the current focus.
func (s *RobotScreen) TypeText(text string) {
	robotgo.TypeStr(text)
}

// Press taps a single named key, e.g. "enter".
func (s *RobotScreen) Press(key string) {
	robotgo.KeyTap(key)
}

// Hotkey taps a key with modifiers held, e.g. Hotkey("a", "ctrl").
func (s *RobotScreen) Hotkey(key string, modifiers ...string) {
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	robotgo.KeyTap(key, args...)
}

// ActivateWindow raises and focuses the window with the given title.
func (s *RobotScreen) ActivateWindow(title string) error {
	if err := robotgo.ActiveName(title); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrWindowNotFound, title, err)
	}
	return nil
}
