package pointer

import (
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// RecordingSink keeps every command it receives and emulates a cursor that
// lands exactly where moves ask. It is safe for concurrent use.
type RecordingSink struct {
	mu      sync.Mutex
	screen  gesture.Size
	pos     gesture.Point
	pressed bool
	actions []gesture.Action
}

// NewRecordingSink creates a sink for a screen with the cursor at start.
func NewRecordingSink(screen gesture.Size, start gesture.Point) *RecordingSink {
	return &RecordingSink{screen: screen, pos: start}
}

func (s *RecordingSink) MoveTo(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = gesture.Point{X: x, Y: y}
	s.actions = append(s.actions, gesture.MoveTo(x, y))
}

func (s *RecordingSink) Press() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressed = true
	s.actions = append(s.actions, gesture.Action{Kind: gesture.ActionPress})
}

func (s *RecordingSink) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressed = false
	s.actions = append(s.actions, gesture.Action{Kind: gesture.ActionRelease})
}

func (s *RecordingSink) Click() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, gesture.Action{Kind: gesture.ActionClick})
}

func (s *RecordingSink) ScrollBy(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, gesture.ScrollBy(amount))
}

func (s *RecordingSink) Position() gesture.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *RecordingSink) ScreenSize() gesture.Size {
	return s.screen
}

// Pressed reports whether the button is held down.
func (s *RecordingSink) Pressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pressed
}

// Actions returns a copy of everything received so far.
func (s *RecordingSink) Actions() []gesture.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gesture.Action(nil), s.actions...)
}

// Count returns how many commands of the given kind were received.
func (s *RecordingSink) Count(kind gesture.ActionKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}
