package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
)

// ErrSessionNotFound is returned when a requested session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// Session describes one recorded run.
type Session struct {
	ID        string
	StartedAt time.Time
	Screen    gesture.Size
	Frames    int
}

// SessionRepository provides access to recorded sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create starts a new session with a fresh ID.
func (r *SessionRepository) Create(screen gesture.Size, startedAt time.Time) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		StartedAt: startedAt,
		Screen:    screen,
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, screen_w, screen_h) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.StartedAt, screen.Width, screen.Height,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return sess, nil
}

// GetByID retrieves a session with its frame count.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}

	err := r.db.QueryRow(
		`SELECT s.id, s.started_at, s.screen_w, s.screen_h,
		        (SELECT COUNT(*) FROM frames f WHERE f.session_id = s.id)
		 FROM sessions s WHERE s.id = ?`,
		id,
	).Scan(&sess.ID, &sess.StartedAt, &sess.Screen.Width, &sess.Screen.Height, &sess.Frames)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return sess, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT s.id, s.started_at, s.screen_w, s.screen_h,
		        (SELECT COUNT(*) FROM frames f WHERE f.session_id = s.id)
		 FROM sessions s ORDER BY s.started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		if err := rows.Scan(&sess.ID, &sess.StartedAt, &sess.Screen.Width, &sess.Screen.Height, &sess.Frames); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// Latest returns the most recently started session.
func (r *SessionRepository) Latest() (*Session, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM sessions ORDER BY started_at DESC LIMIT 1`).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return r.GetByID(id)
}

// Delete removes a session and its frames and actions.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}

	return nil
}
