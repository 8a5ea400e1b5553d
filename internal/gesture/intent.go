package gesture

// Intent is the interaction mode reported for a tick.
// The declaration order of the scored intents is the tie-break order.
type Intent int

const (
	IntentMove Intent = iota
	IntentScroll
	IntentPinch
	IntentDrag
	IntentClick
	IntentIdle

	// IntentPaused is reported while the session is paused. It is never scored.
	IntentPaused
)

// numScored is the number of intents that carry a score.
const numScored = int(IntentPaused)

var intentNames = [...]string{"MOVE", "SCROLL", "PINCH", "DRAG", "CLICK", "IDLE", "PAUSED"}

func (i Intent) String() string {
	if int(i) < 0 || int(i) >= len(intentNames) {
		return "UNKNOWN"
	}
	return intentNames[i]
}

// Fixed confidences assigned by the scorer.
const (
	moveConfidence   = 0.9
	scrollConfidence = 1.0
	pinchConfidence  = 1.0
	dragConfidence   = 1.0
	clickConfidence  = 1.0
	idleConfidence   = 0.35
)

// Scores holds one confidence in [0,1] per scored intent.
type Scores [numScored]float64

// Get returns the score of an intent, 0 for unscored ones.
func (s Scores) Get(i Intent) float64 {
	if int(i) < 0 || int(i) >= numScored {
		return 0
	}
	return s[i]
}

// Dominant returns the highest scoring intent. Ties go to the intent
// declared first.
func (s Scores) Dominant() (Intent, float64) {
	best := Intent(0)
	for i := 1; i < numScored; i++ {
		if s[i] > s[best] {
			best = Intent(i)
		}
	}
	return best, s[best]
}

// ScoreIntents scores the predictive intents of a frame. CLICK is left at zero;
// it is only set once a click has actually fired.
func ScoreIntents(f PoseFeatures, dragging bool) Scores {
	var s Scores
	if f.MovePose() {
		s[IntentMove] = moveConfidence
	}
	if f.ScrollPose() {
		s[IntentScroll] = scrollConfidence
	}
	if f.PinchActive {
		s[IntentPinch] = pinchConfidence
	}
	if dragging {
		s[IntentDrag] = dragConfidence
	}
	if !(f.MovePose() || f.ScrollPose() || f.PinchActive || dragging) {
		s[IntentIdle] = idleConfidence
	}
	return s
}
