package store

func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per recognition cycle that produced a label. ids are ULIDs,
		// so ordering by id is ordering by time.
		`CREATE TABLE IF NOT EXISTS recognitions (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			step TEXT NOT NULL,
			requests INTEGER NOT NULL,
			handedness TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT 'camera',
			pressed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recognitions_label ON recognitions(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
