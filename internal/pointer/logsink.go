package pointer

import (
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/gesture"
)

// LogSink writes commands to a logger instead of the OS. Moves update a
// virtual cursor so the engine sees its own output, as with a real mouse.
type LogSink struct {
	log    zerolog.Logger
	screen gesture.Size
	pos    gesture.Point
}

// NewLogSink creates a log-only sink with the cursor at screen centre.
func NewLogSink(log zerolog.Logger, screen gesture.Size) *LogSink {
	return &LogSink{
		log:    log.With().Str("component", "pointer").Logger(),
		screen: screen,
		pos:    gesture.Point{X: float64(screen.Width) / 2, Y: float64(screen.Height) / 2},
	}
}

func (s *LogSink) MoveTo(x, y float64) {
	s.pos = gesture.Point{X: x, Y: y}
	s.log.Debug().Float64("x", x).Float64("y", y).Msg("move")
}

func (s *LogSink) Press() {
	s.log.Info().Msg("press")
}

func (s *LogSink) Release() {
	s.log.Info().Msg("release")
}

func (s *LogSink) Click() {
	s.log.Info().Float64("x", s.pos.X).Float64("y", s.pos.Y).Msg("click")
}

func (s *LogSink) ScrollBy(amount int) {
	s.log.Info().Int("amount", amount).Msg("scroll")
}

func (s *LogSink) Position() gesture.Point {
	return s.pos
}

func (s *LogSink) ScreenSize() gesture.Size {
	return s.screen
}
