package store

import "fmt"

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per run of the tick loop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			screen_w INTEGER NOT NULL,
			screen_h INTEGER NOT NULL
		)`,

		// Frames table - the landmark input of each tick; points is NULL when no hand was seen
		`CREATE TABLE IF NOT EXISTS frames (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			tick INTEGER NOT NULL,
			ts_ns INTEGER NOT NULL,
			present INTEGER NOT NULL CHECK(present IN (0, 1)),
			frame_w INTEGER NOT NULL DEFAULT 0,
			frame_h INTEGER NOT NULL DEFAULT 0,
			points TEXT,
			paused INTEGER NOT NULL DEFAULT 0 CHECK(paused IN (0, 1)),
			paused_after INTEGER NOT NULL DEFAULT 0 CHECK(paused_after IN (0, 1)),
			PRIMARY KEY (session_id, tick)
		)`,

		// Actions table - pointer commands emitted by each tick, in order
		`CREATE TABLE IF NOT EXISTS actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			tick INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('move', 'press', 'release', 'click', 'scroll')),
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			amount INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_actions_session_tick ON actions(session_id, tick)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	// Traces written before pause state was recorded lack these columns.
	for _, col := range []string{"paused", "paused_after"} {
		if err := s.addColumnIfMissing("frames", col, "INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) addColumnIfMissing(table, column, decl string) error {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	if n > 0 {
		return nil
	}
	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	return err
}
