package pointer

import (
	"math"

	"github.com/go-vgo/robotgo"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/gesture"
)

const button = "left"

// RobotSink drives the OS cursor through robotgo.
type RobotSink struct {
	log zerolog.Logger
}

// NewRobotSink creates a sink for the primary display.
func NewRobotSink(log zerolog.Logger) *RobotSink {
	return &RobotSink{log: log.With().Str("component", "pointer").Logger()}
}

func (s *RobotSink) MoveTo(x, y float64) {
	robotgo.Move(int(math.Round(x)), int(math.Round(y)))
}

func (s *RobotSink) Press() {
	if err := robotgo.Toggle(button); err != nil {
		s.log.Debug().Err(err).Msg("press failed")
	}
}

func (s *RobotSink) Release() {
	if err := robotgo.Toggle(button, "up"); err != nil {
		s.log.Debug().Err(err).Msg("release failed")
	}
}

func (s *RobotSink) Click() {
	robotgo.Click(button)
}

func (s *RobotSink) ScrollBy(amount int) {
	switch {
	case amount > 0:
		robotgo.ScrollDir(amount, "up")
	case amount < 0:
		robotgo.ScrollDir(-amount, "down")
	}
}

func (s *RobotSink) Position() gesture.Point {
	x, y := robotgo.Location()
	return gesture.Point{X: float64(x), Y: float64(y)}
}

func (s *RobotSink) ScreenSize() gesture.Size {
	w, h := robotgo.GetScreenSize()
	return gesture.Size{Width: w, Height: h}
}
