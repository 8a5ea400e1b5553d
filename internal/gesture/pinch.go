package gesture

import "time"

// PinchMachine turns pinch contact timing into clicks and drags.
//
// A pinch released before DragHoldTime is a click (subject to ClickCooldown).
// A pinch held for DragHoldTime presses the button and drags until release.
type PinchMachine struct {
	holdTime time.Duration
	cooldown time.Duration

	wasPinching      bool
	pinchStart       time.Time
	hasPinchStart    bool
	dragging         bool
	didDragThisPinch bool
	lastClick        time.Time
}

// NewPinchMachine creates a machine with the configured timings.
func NewPinchMachine(cfg Config) *PinchMachine {
	return &PinchMachine{
		holdTime: cfg.DragHoldTime,
		cooldown: cfg.ClickCooldown,
	}
}

// Dragging reports whether the button is currently held down.
func (m *PinchMachine) Dragging() bool {
	return m.dragging
}

// DidDragThisPinch reports whether the current pinch already became a drag.
func (m *PinchMachine) DidDragThisPinch() bool {
	return m.didDragThisPinch
}

// LastClick returns the time of the last emitted click.
func (m *PinchMachine) LastClick() time.Time {
	return m.lastClick
}

// Update advances the machine by one running tick. clicked is true when a
// click fired on this tick.
func (m *PinchMachine) Update(pinch bool, now time.Time) (actions []Action, clicked bool) {
	rising := pinch && !m.wasPinching
	falling := !pinch && m.wasPinching

	if rising {
		m.pinchStart = now
		m.hasPinchStart = true
		m.didDragThisPinch = false
	}

	if pinch && !m.dragging && m.hasPinchStart && now.Sub(m.pinchStart) >= m.holdTime {
		actions = append(actions, Action{Kind: ActionPress})
		m.dragging = true
		m.didDragThisPinch = true
	}

	if falling {
		if m.dragging {
			actions = append(actions, Action{Kind: ActionRelease})
			m.dragging = false
		} else if m.hasPinchStart && now.Sub(m.pinchStart) < m.holdTime && now.Sub(m.lastClick) > m.cooldown {
			actions = append(actions, Action{Kind: ActionClick})
			m.lastClick = now
			clicked = true
		}
		m.hasPinchStart = false
		m.didDragThisPinch = false
	}

	m.wasPinching = pinch
	return actions, clicked
}

// Hold tracks the pinch flag during a paused tick without acting on it.
// A pinch that started while paused never counts as a click or drag.
func (m *PinchMachine) Hold(pinch bool) {
	m.wasPinching = pinch
	m.hasPinchStart = false
	m.didDragThisPinch = false
}

// ForceRelease lifts the button if a drag is in progress. It returns at most
// one release action.
func (m *PinchMachine) ForceRelease() []Action {
	if !m.dragging {
		return nil
	}
	m.dragging = false
	return []Action{{Kind: ActionRelease}}
}

// Pause lifts a drag in progress and forgets the current pinch, keeping the
// contact flag so a pinch held through the pause has no rising edge later.
func (m *PinchMachine) Pause() []Action {
	actions := m.ForceRelease()
	m.Hold(m.wasPinching)
	return actions
}
