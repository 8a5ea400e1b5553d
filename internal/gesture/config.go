package gesture

import "time"

// Config holds every tunable threshold of the interpreter.
// All values are fixed at startup.
type Config struct {
	// Cursor smoothing
	ControlMargin float64 `mapstructure:"controlMargin"` // Fraction of the camera frame ignored on each side
	Smoothing     float64 `mapstructure:"smoothing"`     // Leaky integrator retention (0-1, higher = smoother)
	DeadzonePx    float64 `mapstructure:"deadzonePx"`    // Suppress moves smaller than this on both axes
	MaxStepPx     float64 `mapstructure:"maxStepPx"`     // Max distance from the real cursor per tick

	// Pinch / click / drag
	PinchThresholdPx float64       `mapstructure:"pinchThresholdPx"`
	DragHoldTime     time.Duration `mapstructure:"dragHoldTime"`
	ClickCooldown    time.Duration `mapstructure:"clickCooldown"`

	// Scroll
	ScrollSensitivity float64 `mapstructure:"scrollSensitivity"` // Ticks per normalized unit of palm travel
	ScrollDeadzone    float64 `mapstructure:"scrollDeadzone"`    // Ignore palm deltas at or below this
	ScrollClamp       int     `mapstructure:"scrollClamp"`       // Max ticks emitted per frame

	// Adaptive gain
	GainMin       float64 `mapstructure:"gainMin"`
	GainMax       float64 `mapstructure:"gainMax"`
	VelLow        float64 `mapstructure:"velLow"`
	VelHigh       float64 `mapstructure:"velHigh"`
	GainFloor     float64 `mapstructure:"gainFloor"`
	GainCeil      float64 `mapstructure:"gainCeil"`
	VelocityDecay float64 `mapstructure:"velocityDecay"` // EMA weight kept from the previous velocity

	// Dampers
	EdgeSlowZonePx  float64 `mapstructure:"edgeSlowZonePx"`
	EdgeSlowGain    float64 `mapstructure:"edgeSlowGain"`
	SteadyVelThresh float64 `mapstructure:"steadyVelThresh"`
	SteadyGain      float64 `mapstructure:"steadyGain"`

	// Intent
	ActionConfThresh float64 `mapstructure:"actionConfThresh"` // Gates MOVE / SCROLL / DRAG execution

	// ResyncOnResume snaps the virtual cursor to the real one on the first
	// tick after a pause ends.
	ResyncOnResume bool `mapstructure:"resyncOnResume"`
}

// DefaultConfig returns the tuned defaults for a 1280x720 camera.
func DefaultConfig() Config {
	return Config{
		ControlMargin: 0.12,
		Smoothing:     0.90,
		DeadzonePx:    4,
		MaxStepPx:     70,

		PinchThresholdPx: 55,
		DragHoldTime:     250 * time.Millisecond,
		ClickCooldown:    150 * time.Millisecond,

		ScrollSensitivity: 2600,
		ScrollDeadzone:    0.003,
		ScrollClamp:       180,

		GainMin:       0.45,
		GainMax:       1.85,
		VelLow:        0.0025,
		VelHigh:       0.0300,
		GainFloor:     0.25,
		GainCeil:      2.5,
		VelocityDecay: 0.85,

		EdgeSlowZonePx:  140,
		EdgeSlowGain:    0.55,
		SteadyVelThresh: 0.0020,
		SteadyGain:      0.55,

		ActionConfThresh: 0.50,

		ResyncOnResume: true,
	}
}
