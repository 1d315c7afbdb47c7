package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"apptrack-engine/internal/domain"
)

// ErrNotFound is returned when an id does not exist.
var ErrNotFound = errors.New("application not found")

type ListOpts struct {
	Sort string // date | company | status
}

// List returns the full current snapshot.
// Rows whose status fell outside the known set (hand-edited DB, old
// schema) are dropped here rather than poisoning the aggregator.
func List(ctx context.Context, db *sql.DB, opts ListOpts) ([]domain.Application, error) {
	// whitelist sort columns (prevents SQL injection)
	sortCol, order := "date_applied", "DESC"
	switch opts.Sort {
	case "", "date":
	case "company":
		sortCol, order = "company", "ASC"
	case "status":
		sortCol, order = "status", "ASC"
	}

	query := fmt.Sprintf(`
SELECT id, company, role, date_applied, status, notes, source_id, updated_at
FROM applications
ORDER BY %s %s, id ASC;
`, sortCol, order)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Application{}
	for rows.Next() {
		var a domain.Application
		var status, updatedAt string
		if err := rows.Scan(&a.ID, &a.Company, &a.Role, &a.DateApplied, &status, &a.Notes, &a.SourceID, &updatedAt); err != nil {
			return nil, err
		}
		st, err := domain.ParseStatus(status)
		if err != nil {
			log.Printf("[store] dropping row id=%s: %v", a.ID, err)
			continue
		}
		a.Status = st
		a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Insert assigns the id and updated_at and writes the record.
func Insert(ctx context.Context, db *sql.DB, a domain.Application) (domain.Application, error) {
	if err := a.ValidateNew(); err != nil {
		return domain.Application{}, err
	}

	a.ID = uuid.NewString()
	a.UpdatedAt = time.Now().UTC()

	_, err := db.ExecContext(ctx, `
INSERT INTO applications(id, company, role, date_applied, status, notes, source_id, updated_at)
VALUES(?,?,?,?,?,?,?,?);`,
		a.ID, a.Company, a.Role, a.DateApplied, string(a.Status), a.Notes, a.SourceID, a.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return domain.Application{}, fmt.Errorf("insert application: %w", err)
	}
	return a, nil
}

// InsertIgnore inserts unless a row with the same source_id already
// exists. Used by the email poller so re-reading a mailbox is idempotent.
func InsertIgnore(ctx context.Context, db *sql.DB, a domain.Application) (added bool, err error) {
	if a.SourceID == "" {
		_, err := Insert(ctx, db, a)
		return err == nil, err
	}
	if err := a.ValidateNew(); err != nil {
		return false, err
	}

	a.ID = uuid.NewString()
	a.UpdatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO applications(id, company, role, date_applied, status, notes, source_id, updated_at)
VALUES(?,?,?,?,?,?,?,?);`,
		a.ID, a.Company, a.Role, a.DateApplied, string(a.Status), a.Notes, a.SourceID, a.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("insert application: %w", err)
	}

	// RowsAffected comes from this statement's result, so it holds even
	// if the pool ever grows past one connection.
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateStatus moves a record to a new stage and bumps updated_at.
func UpdateStatus(ctx context.Context, db *sql.DB, id string, status domain.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	res, err := db.ExecContext(ctx, `
UPDATE applications SET status = ?, updated_at = ? WHERE id = ?;`,
		string(status), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record by id.
func Delete(ctx context.Context, db *sql.DB, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
