package gesture

import "math"

// maxControlMargin is the largest usable margin; beyond it the remap
// degenerates and plain clamping is used instead.
const maxControlMargin = 0.45

// ApplyControlMargin insets the camera frame by margin on each side and
// stretches the interior to cover [0,1]. Results are clamped to [0,1].
func ApplyControlMargin(x, y, margin float64) (float64, float64) {
	if margin >= maxControlMargin {
		return clamp01(x), clamp01(y)
	}
	margin = math.Max(margin, 0)
	denom := 1 - 2*margin
	return clamp01((x - margin) / denom), clamp01((y - margin) / denom)
}

// CursorSmoother moves a virtual cursor toward the fingertip target with a
// leaky integrator, bounded by a per-tick step from the real cursor.
type CursorSmoother struct {
	cfg    Config
	screen Size

	smoothed Point
}

// NewCursorSmoother creates a smoother with the virtual cursor at screen centre.
func NewCursorSmoother(cfg Config, screen Size) *CursorSmoother {
	return &CursorSmoother{
		cfg:    cfg,
		screen: screen,
		smoothed: Point{
			X: float64(screen.Width) / 2,
			Y: float64(screen.Height) / 2,
		},
	}
}

// Position returns the virtual cursor.
func (c *CursorSmoother) Position() Point {
	return c.smoothed
}

// Sync moves the virtual cursor onto the real one.
func (c *CursorSmoother) Sync(cursor Point) {
	c.smoothed = cursor
}

// Target maps a normalized fingertip to screen pixels.
func (c *CursorSmoother) Target(fingertip Point) Point {
	nx, ny := ApplyControlMargin(fingertip.X, fingertip.Y, c.cfg.ControlMargin)
	return Point{
		X: nx * float64(c.screen.Width),
		Y: ny * float64(c.screen.Height),
	}
}

// Step advances the virtual cursor toward the fingertip target. It returns
// a move action unless the result is within the deadzone of the real cursor.
func (c *CursorSmoother) Step(fingertip Point, gain float64, cursor Point) (Action, bool) {
	target := c.Target(fingertip)
	follow := (1 - c.cfg.Smoothing) * gain

	c.smoothed.X += follow * (target.X - c.smoothed.X)
	c.smoothed.Y += follow * (target.Y - c.smoothed.Y)

	step := math.Max(math.Abs(c.smoothed.X-cursor.X), math.Abs(c.smoothed.Y-cursor.Y))
	if step > c.cfg.MaxStepPx {
		s := c.cfg.MaxStepPx / step
		c.smoothed.X = cursor.X + (c.smoothed.X-cursor.X)*s
		c.smoothed.Y = cursor.Y + (c.smoothed.Y-cursor.Y)*s
	}

	if math.Abs(c.smoothed.X-cursor.X) > c.cfg.DeadzonePx || math.Abs(c.smoothed.Y-cursor.Y) > c.cfg.DeadzonePx {
		return MoveTo(c.smoothed.X, c.smoothed.Y), true
	}
	return Action{}, false
}
