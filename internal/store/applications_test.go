package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apptrack-engine/internal/domain"
)

func TestInsertAndList(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "apptrack.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	ctx := context.Background()

	a, err := Insert(ctx, db, domain.Application{
		Company:     "Acme",
		Role:        "Backend Engineer",
		DateApplied: "2025-02-10",
		Status:      domain.StatusApplied,
		Notes:       "referred by Sam",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.UpdatedAt.IsZero())

	b, err := Insert(ctx, db, domain.Application{
		Company:     "Beta Labs",
		Role:        "SRE",
		DateApplied: "2025-03-01",
		Status:      domain.StatusInterview,
	})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	got, err := List(ctx, db, ListOpts{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// default sort: date_applied desc
	assert.Equal(t, "Beta Labs", got[0].Company)
	assert.Equal(t, "Acme", got[1].Company)
	assert.Equal(t, "referred by Sam", got[1].Notes)

	byCompany, err := List(ctx, db, ListOpts{Sort: "company"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", byCompany[0].Company)
}

func TestInsertRejectsInvalid(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "apptrack.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	_, err = Insert(context.Background(), db, domain.Application{
		Role:        "Engineer",
		DateApplied: "2025-02-10",
		Status:      domain.StatusApplied,
	})
	assert.Error(t, err)
}

func TestUpdateStatus(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "apptrack.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	ctx := context.Background()
	a, err := Insert(ctx, db, domain.Application{
		Company: "Acme", Role: "Eng", DateApplied: "2025-01-01", Status: domain.StatusApplied,
	})
	require.NoError(t, err)

	require.NoError(t, UpdateStatus(ctx, db, a.ID, domain.StatusOffer))

	got, err := List(ctx, db, ListOpts{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusOffer, got[0].Status)
	assert.True(t, got[0].UpdatedAt.After(a.UpdatedAt) || got[0].UpdatedAt.Equal(a.UpdatedAt))

	assert.ErrorIs(t, UpdateStatus(ctx, db, "no-such-id", domain.StatusOffer), ErrNotFound)
	assert.Error(t, UpdateStatus(ctx, db, a.ID, "Ghosted"))
}

func TestDelete(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "apptrack.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	ctx := context.Background()
	a, err := Insert(ctx, db, domain.Application{
		Company: "Acme", Role: "Eng", DateApplied: "2025-01-01", Status: domain.StatusApplied,
	})
	require.NoError(t, err)

	require.NoError(t, Delete(ctx, db, a.ID))
	assert.ErrorIs(t, Delete(ctx, db, a.ID), ErrNotFound)

	got, err := List(ctx, db, ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsertIgnoreDedupesBySourceID(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "apptrack.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	ctx := context.Background()
	rec := domain.Application{
		Company: "Acme", Role: "Eng", DateApplied: "2025-01-01",
		Status: domain.StatusApplied, SourceID: "imap:123",
	}

	added, err := InsertIgnore(ctx, db, rec)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = InsertIgnore(ctx, db, rec)
	require.NoError(t, err)
	assert.False(t, added)

	got, err := List(ctx, db, ListOpts{})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// the added/ignored answer must not depend on the pool staying at
	// one connection
	db.SetMaxOpenConns(4)

	added, err = InsertIgnore(ctx, db, rec)
	require.NoError(t, err)
	assert.False(t, added)

	rec.SourceID = "imap:456"
	added, err = InsertIgnore(ctx, db, rec)
	require.NoError(t, err)
	assert.True(t, added)
}

func TestListDropsUnknownStatusRows(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "apptrack.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	ctx := context.Background()
	_, err = Insert(ctx, db, domain.Application{
		Company: "Acme", Role: "Eng", DateApplied: "2025-01-01", Status: domain.StatusApplied,
	})
	require.NoError(t, err)

	// simulate a hand-edited row
	_, err = db.Exec(`
INSERT INTO applications(id, company, role, date_applied, status, notes, source_id, updated_at)
VALUES('bad-row','X','Y','2025-01-02','Ghosted','','','2025-01-02T00:00:00Z');`)
	require.NoError(t, err)

	got, err := List(ctx, db, ListOpts{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].Company)
}
