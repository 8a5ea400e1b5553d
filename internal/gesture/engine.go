package gesture

// Engine runs the per-frame interpretation pipeline. It owns all state that
// persists across ticks and is not safe for concurrent use: one goroutine
// calls Step once per frame.
type Engine struct {
	cfg Config

	velocity *VelocityEstimator
	pinch    *PinchMachine
	scroll   *ScrollAccumulator
	cursor   *CursorSmoother
	session  Session
}

// NewEngine creates an engine for a screen of the given size.
func NewEngine(cfg Config, screen Size) *Engine {
	return &Engine{
		cfg:      cfg,
		velocity: NewVelocityEstimator(cfg, screen),
		pinch:    NewPinchMachine(cfg),
		scroll:   NewScrollAccumulator(cfg),
		cursor:   NewCursorSmoother(cfg, screen),
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Paused reports whether the session is paused.
func (e *Engine) Paused() bool {
	return e.session.Paused()
}

// Dragging reports whether a drag holds the button down.
func (e *Engine) Dragging() bool {
	return e.pinch.Dragging()
}

// VirtualCursor returns the smoothed cursor position.
func (e *Engine) VirtualCursor() Point {
	return e.cursor.Position()
}

// SetPaused pauses or resumes pointer output. Entering pause releases an
// in-progress drag, ends the current pinch and clears scroll state; the
// returned actions must be dispatched. Setting the current state again is a no-op.
func (e *Engine) SetPaused(paused bool) []Action {
	if !e.session.set(paused) {
		return nil
	}
	if !paused {
		return nil
	}
	e.scroll.Reset()
	return e.pinch.Pause()
}

// TogglePause flips the paused flag.
func (e *Engine) TogglePause() []Action {
	return e.SetPaused(!e.session.Paused())
}

// Shutdown releases an in-progress drag so no button stays pressed after
// the loop stops.
func (e *Engine) Shutdown() []Action {
	return e.pinch.ForceRelease()
}

// Step processes one tick. frame is nil when no hand was detected; in that
// case no state advances. cursor is the real OS cursor position.
func (e *Engine) Step(frame *LandmarkFrame, cursor Point) Result {
	features := ExtractFeatures(frame, e.cfg.PinchThresholdPx)
	if features == nil {
		res := Result{Intent: IntentIdle}
		if e.session.Paused() {
			res.Intent, res.Confidence = IntentPaused, 1
		}
		return res
	}

	e.velocity.Update(features.Fingertip, frame.Timestamp)
	gain := e.velocity.Gain(cursor)
	scores := ScoreIntents(*features, e.pinch.Dragging())

	res := Result{Features: features, Gain: gain}

	if e.session.Paused() {
		e.pinch.Hold(features.PinchActive)
		e.scroll.Reset()
	} else {
		if e.session.takeResync() && e.cfg.ResyncOnResume {
			e.cursor.Sync(cursor)
		}
		res.Actions = e.dispatch(frame, features, &scores, gain, cursor)
	}

	res.Scores = scores
	if e.session.Paused() {
		res.Intent, res.Confidence = IntentPaused, 1
	} else {
		res.Intent, res.Confidence = scores.Dominant()
	}
	return res
}

// dispatch runs the click/drag, scroll and cursor stages of a running tick.
func (e *Engine) dispatch(frame *LandmarkFrame, f *PoseFeatures, scores *Scores, gain float64, cursor Point) []Action {
	actions, clicked := e.pinch.Update(f.PinchActive, frame.Timestamp)
	if clicked {
		scores[IntentClick] = clickConfidence
	}

	if f.ScrollPose() && scores[IntentScroll] >= e.cfg.ActionConfThresh {
		if amount := e.scroll.Update(palmY(frame)); amount != 0 {
			actions = append(actions, ScrollBy(amount))
		}
	} else {
		e.scroll.Reset()
	}

	move := f.MovePose() && scores[IntentMove] >= e.cfg.ActionConfThresh
	if move || e.pinch.Dragging() {
		if a, ok := e.cursor.Step(f.Fingertip, gain, cursor); ok {
			actions = append(actions, a)
		}
	}

	return actions
}
