// Package pointer delivers gesture actions to a mouse.
package pointer

import "github.com/ayusman/mudra/internal/gesture"

// Sink receives pointer commands. Commands are fire-and-forget: a sink
// logs its own failures and never reports them back to the caller.
type Sink interface {
	MoveTo(x, y float64)
	Press()
	Release()
	Click()
	// ScrollBy scrolls by whole ticks; positive scrolls up.
	ScrollBy(amount int)

	// Position returns the real cursor position in screen pixels.
	Position() gesture.Point
	// ScreenSize returns the screen size in pixels.
	ScreenSize() gesture.Size
}

// Dispatch sends actions to the sink in order.
func Dispatch(s Sink, actions []gesture.Action) {
	for _, a := range actions {
		switch a.Kind {
		case gesture.ActionMove:
			s.MoveTo(a.X, a.Y)
		case gesture.ActionPress:
			s.Press()
		case gesture.ActionRelease:
			s.Release()
		case gesture.ActionClick:
			s.Click()
		case gesture.ActionScroll:
			s.ScrollBy(a.Amount)
		}
	}
}
