package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// TracedFrame is one recorded tick input. Frame is nil when no hand was seen.
// Paused is the session state while the engine stepped and PausedAfter the
// state once the tick's pause changes were applied.
type TracedFrame struct {
	Tick        int64
	At          time.Time
	Frame       *gesture.LandmarkFrame
	Paused      bool
	PausedAfter bool
}

// TracedAction is one recorded pointer command.
type TracedAction struct {
	Tick   int64
	Action gesture.Action
}

// Recorder appends ticks to a session. It is not safe for concurrent use.
type Recorder struct {
	db      *sql.DB
	session *Session
}

// NewRecorder starts a new session and returns a recorder for it.
func (s *Store) NewRecorder(screen gesture.Size, startedAt time.Time) (*Recorder, error) {
	sess, err := s.Sessions().Create(screen, startedAt)
	if err != nil {
		return nil, err
	}
	return &Recorder{db: s.db, session: sess}, nil
}

// SessionID returns the ID of the session being recorded.
func (r *Recorder) SessionID() string {
	return r.session.ID
}

// TickRecord is one tick as the loop saw it.
type TickRecord struct {
	Tick int64
	// At is the tick time used when no frame is present.
	At          time.Time
	Frame       *gesture.LandmarkFrame
	Paused      bool
	PausedAfter bool
	// Actions holds every command dispatched during the tick, including
	// releases forced by a pause.
	Actions []gesture.Action
}

// Record stores one tick: its input frame, pause state and the actions it
// dispatched.
func (r *Recorder) Record(rec TickRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		present int
		points  sql.NullString
		size    gesture.Size
	)
	at := rec.At
	if rec.Frame != nil {
		data, err := json.Marshal(rec.Frame.Points)
		if err != nil {
			return fmt.Errorf("encode points: %w", err)
		}
		present = 1
		points = sql.NullString{String: string(data), Valid: true}
		size = rec.Frame.Frame
		at = rec.Frame.Timestamp
	}

	_, err = tx.Exec(
		`INSERT INTO frames (session_id, tick, ts_ns, present, frame_w, frame_h, points, paused, paused_after)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.session.ID, rec.Tick, at.UnixNano(), present, size.Width, size.Height, points,
		boolToInt(rec.Paused), boolToInt(rec.PausedAfter),
	)
	if err != nil {
		return fmt.Errorf("insert frame %d: %w", rec.Tick, err)
	}

	if err := insertActions(tx, r.session.ID, rec.Tick, rec.Actions); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordActions appends actions to an already recorded tick, such as the
// release sent when the loop stops.
func (r *Recorder) RecordActions(tick int64, actions []gesture.Action) error {
	if len(actions) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM frames WHERE session_id = ? AND tick = ?`, r.session.ID, tick,
	).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("tick %d not recorded", tick)
	}

	if err := insertActions(tx, r.session.ID, tick, actions); err != nil {
		return err
	}
	return tx.Commit()
}

func insertActions(tx *sql.Tx, sessionID string, tick int64, actions []gesture.Action) error {
	if len(actions) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(
		`INSERT INTO actions (session_id, tick, kind, x, y, amount) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range actions {
		if _, err := stmt.Exec(sessionID, tick, a.Kind.String(), a.X, a.Y, a.Amount); err != nil {
			return fmt.Errorf("insert action: %w", err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Frames returns a session's recorded frames in tick order.
func (s *Store) Frames(sessionID string) ([]TracedFrame, error) {
	rows, err := s.db.Query(
		`SELECT tick, ts_ns, present, frame_w, frame_h, points, paused, paused_after
		 FROM frames WHERE session_id = ? ORDER BY tick`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []TracedFrame
	for rows.Next() {
		var (
			tf      TracedFrame
			tsNs    int64
			present int
			size    gesture.Size
			points  sql.NullString
		)
		if err := rows.Scan(&tf.Tick, &tsNs, &present, &size.Width, &size.Height, &points, &tf.Paused, &tf.PausedAfter); err != nil {
			return nil, err
		}
		tf.At = time.Unix(0, tsNs)

		if present == 1 {
			lf := &gesture.LandmarkFrame{Timestamp: tf.At, Frame: size}
			if err := json.Unmarshal([]byte(points.String), &lf.Points); err != nil {
				return nil, fmt.Errorf("decode points at tick %d: %w", tf.Tick, err)
			}
			tf.Frame = lf
		}
		frames = append(frames, tf)
	}

	return frames, rows.Err()
}

// Actions returns a session's recorded actions in emission order.
func (s *Store) Actions(sessionID string) ([]TracedAction, error) {
	rows, err := s.db.Query(
		`SELECT tick, kind, x, y, amount FROM actions WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []TracedAction
	for rows.Next() {
		var (
			ta   TracedAction
			kind string
		)
		if err := rows.Scan(&ta.Tick, &kind, &ta.Action.X, &ta.Action.Y, &ta.Action.Amount); err != nil {
			return nil, err
		}
		k, err := parseActionKind(kind)
		if err != nil {
			return nil, err
		}
		ta.Action.Kind = k
		actions = append(actions, ta)
	}

	return actions, rows.Err()
}

func parseActionKind(name string) (gesture.ActionKind, error) {
	for _, k := range []gesture.ActionKind{
		gesture.ActionMove,
		gesture.ActionPress,
		gesture.ActionRelease,
		gesture.ActionClick,
		gesture.ActionScroll,
	} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action kind %q", name)
}
