package store

import "database/sql"

// Migrate brings the schema up to the current version. Versioning rides
// on PRAGMA user_version so re-running is cheap and safe.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS applications (
  id TEXT PRIMARY KEY,
  company TEXT NOT NULL,
  role TEXT NOT NULL,
  date_applied TEXT NOT NULL,
  status TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  source_id TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_applications_date_applied
ON applications(date_applied);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_source_id
ON applications(source_id)
WHERE source_id != '';
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}
