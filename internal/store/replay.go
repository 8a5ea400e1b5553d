package store

import (
	"context"
	"io"

	"github.com/ayusman/mudra/internal/gesture"
)

// ReplaySource plays a recorded session back as a landmark source.
type ReplaySource struct {
	session *Session
	frames  []TracedFrame
	next    int
	current TracedFrame
}

// OpenReplay loads a session for playback.
func (s *Store) OpenReplay(sessionID string) (*ReplaySource, error) {
	sess, err := s.Sessions().GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	frames, err := s.Frames(sessionID)
	if err != nil {
		return nil, err
	}

	return &ReplaySource{session: sess, frames: frames}, nil
}

// Session returns the session being replayed.
func (r *ReplaySource) Session() *Session {
	return r.session
}

// Len returns the number of recorded ticks.
func (r *ReplaySource) Len() int {
	return len(r.frames)
}

// Next returns the next recorded frame, nil for a tick without a hand, and
// io.EOF after the last tick.
func (r *ReplaySource) Next(ctx context.Context) (*gesture.LandmarkFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.next >= len(r.frames) {
		return nil, io.EOF
	}

	r.current = r.frames[r.next]
	r.next++
	return r.current.Frame, nil
}

// PauseState reports whether the tick last returned by Next ran paused and
// whether it ended paused.
func (r *ReplaySource) PauseState() (during, after bool) {
	return r.current.Paused, r.current.PausedAfter
}

// Close is a no-op; the frames are already in memory.
func (r *ReplaySource) Close() error {
	return nil
}
