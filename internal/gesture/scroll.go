package gesture

import "math"

// ScrollAccumulator integrates vertical palm motion into whole scroll ticks.
// The fractional remainder carries over between frames so slow motion is
// not lost to truncation.
type ScrollAccumulator struct {
	sensitivity float64
	deadzone    float64
	maxTicks    int

	prevPalmY float64
	hasPrev   bool
	accum     float64
}

// NewScrollAccumulator creates an accumulator from the scroll settings.
func NewScrollAccumulator(cfg Config) *ScrollAccumulator {
	return &ScrollAccumulator{
		sensitivity: cfg.ScrollSensitivity,
		deadzone:    cfg.ScrollDeadzone,
		maxTicks:    cfg.ScrollClamp,
	}
}

// Update consumes the palm position of an active scroll frame and returns the
// ticks to scroll, 0 for none. Upward hand motion scrolls up (positive).
func (s *ScrollAccumulator) Update(palmY float64) int {
	if !s.hasPrev {
		s.prevPalmY = palmY
		s.hasPrev = true
	}
	dy := palmY - s.prevPalmY
	s.prevPalmY = palmY

	if math.Abs(dy) > s.deadzone {
		s.accum += -dy * s.sensitivity
	}

	amount := int(s.accum) // truncates toward zero
	if amount == 0 {
		return 0
	}
	if amount > s.maxTicks {
		amount = s.maxTicks
	} else if amount < -s.maxTicks {
		amount = -s.maxTicks
	}
	s.accum -= float64(amount)
	return amount
}

// Reset drops the palm reference and any pending remainder.
func (s *ScrollAccumulator) Reset() {
	s.hasPrev = false
	s.prevPalmY = 0
	s.accum = 0
}

// Pending returns the unemitted remainder.
func (s *ScrollAccumulator) Pending() float64 {
	return s.accum
}
