package gesture

import (
	"math"
	"time"
)

// minVelocityDt keeps the instantaneous speed finite on duplicate timestamps.
const minVelocityDt = time.Microsecond

// VelocityEstimator tracks a smoothed fingertip speed and maps it to a
// cursor gain.
type VelocityEstimator struct {
	cfg    Config
	screen Size

	prevPos  Point
	prevTime time.Time
	hasPrev  bool
	smoothed float64 // normalized units per second
}

// NewVelocityEstimator creates an estimator for the given screen.
func NewVelocityEstimator(cfg Config, screen Size) *VelocityEstimator {
	return &VelocityEstimator{cfg: cfg, screen: screen}
}

// Update folds a new fingertip sample into the smoothed speed.
// The first sample only seeds the reference position.
func (v *VelocityEstimator) Update(pos Point, ts time.Time) float64 {
	if !v.hasPrev {
		v.prevPos = pos
		v.prevTime = ts
		v.hasPrev = true
	}

	dt := ts.Sub(v.prevTime)
	if dt < minVelocityDt {
		dt = minVelocityDt
	}
	secs := dt.Seconds()
	speed := math.Hypot((pos.X-v.prevPos.X)/secs, (pos.Y-v.prevPos.Y)/secs)

	decay := v.cfg.VelocityDecay
	v.smoothed = decay*v.smoothed + (1-decay)*speed

	v.prevPos = pos
	v.prevTime = ts
	return v.smoothed
}

// Smoothed returns the current smoothed speed.
func (v *VelocityEstimator) Smoothed() float64 {
	return v.smoothed
}

// Gain maps the smoothed speed to a gain multiplier, damped when the hand is
// steady or the real cursor sits near a screen edge.
func (v *VelocityEstimator) Gain(cursor Point) float64 {
	gain := VelocityToGain(v.smoothed, v.cfg)

	if v.smoothed < v.cfg.SteadyVelThresh {
		gain *= v.cfg.SteadyGain
	}
	if v.nearEdge(cursor) {
		gain *= v.cfg.EdgeSlowGain
	}

	return clamp(gain, v.cfg.GainFloor, v.cfg.GainCeil)
}

func (v *VelocityEstimator) nearEdge(cursor Point) bool {
	zone := v.cfg.EdgeSlowZonePx
	w := float64(v.screen.Width)
	h := float64(v.screen.Height)

	nearX := cursor.X < zone || cursor.X > w-zone
	nearY := cursor.Y < zone || cursor.Y > h-zone
	return nearX || nearY
}

// VelocityToGain interpolates between GainMin and GainMax with a smoothstep
// over the [VelLow, VelHigh] band. Dampers are not applied.
func VelocityToGain(vel float64, cfg Config) float64 {
	if vel <= cfg.VelLow {
		return cfg.GainMin
	}
	if vel >= cfg.VelHigh {
		return cfg.GainMax
	}
	t := (vel - cfg.VelLow) / (cfg.VelHigh - cfg.VelLow)
	t = t * t * (3 - 2*t)
	return cfg.GainMin + t*(cfg.GainMax-cfg.GainMin)
}
