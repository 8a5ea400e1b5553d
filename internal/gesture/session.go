package gesture

// Session holds the paused/running flag.
type Session struct {
	paused        bool
	resyncPending bool
}

// Paused reports whether pointer output is suspended.
func (s *Session) Paused() bool {
	return s.paused
}

// set updates the flag and reports whether it changed.
func (s *Session) set(paused bool) bool {
	if s.paused == paused {
		return false
	}
	s.paused = paused
	if !paused {
		s.resyncPending = true
	}
	return true
}

// takeResync reports, once, that the first running tick after a pause is due.
func (s *Session) takeResync() bool {
	pending := s.resyncPending
	s.resyncPending = false
	return pending
}
