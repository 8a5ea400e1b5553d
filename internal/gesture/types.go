// Package gesture turns per-frame hand landmarks into pointer actions.
//
// The package is pure: it holds no reference to a camera, a detector or the
// operating system. Callers feed one LandmarkFrame (or nil when no hand was
// detected) per tick into Engine.Step together with the real cursor position,
// and dispatch the returned actions to a pointer sink.
package gesture

import "time"

// Hand landmark indices following the MediaPipe convention.
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point is a 2D coordinate. Landmarks use normalized camera space,
// cursor positions use screen pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LandmarkFrame is one detector snapshot of a single hand.
type LandmarkFrame struct {
	Points    [NumLandmarks]Point `json:"points"`
	Timestamp time.Time           `json:"timestamp"`
	// Frame is the camera frame size the landmarks were normalized against.
	Frame Size `json:"frame"`
}

// PoseFeatures are derived from a single LandmarkFrame and never persist.
type PoseFeatures struct {
	IndexUp         bool
	MiddleUp        bool
	PinchDistancePx float64
	PinchActive     bool
	Fingertip       Point // index fingertip, normalized
}

// ScrollPose reports whether index and middle fingers are both extended.
func (f PoseFeatures) ScrollPose() bool {
	return f.IndexUp && f.MiddleUp
}

// MovePose reports whether only the pointing pose holds.
func (f PoseFeatures) MovePose() bool {
	return f.IndexUp && !f.ScrollPose()
}

// ActionKind identifies a pointer command.
type ActionKind int

const (
	ActionMove ActionKind = iota
	ActionPress
	ActionRelease
	ActionClick
	ActionScroll
)

var actionKindNames = [...]string{"move", "press", "release", "click", "scroll"}

func (k ActionKind) String() string {
	if int(k) < 0 || int(k) >= len(actionKindNames) {
		return "unknown"
	}
	return actionKindNames[k]
}

// Action is a pointer command emitted by a tick. X/Y are set for moves,
// Amount for scrolls (positive scrolls up).
type Action struct {
	Kind   ActionKind
	X, Y   float64
	Amount int
}

// MoveTo builds a move action.
func MoveTo(x, y float64) Action { return Action{Kind: ActionMove, X: x, Y: y} }

// ScrollBy builds a scroll action.
func ScrollBy(amount int) Action { return Action{Kind: ActionScroll, Amount: amount} }

// Result is everything a single tick produced.
type Result struct {
	Intent     Intent
	Confidence float64
	Scores     Scores
	// Features is nil when no hand was detected.
	Features *PoseFeatures
	Gain     float64
	Actions  []Action
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
