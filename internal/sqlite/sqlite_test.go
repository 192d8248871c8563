package sqlite_test

import (
	"io"
	"testing"

	"github.com/myrjola/coldcase/internal/sqlite"
	"github.com/myrjola/coldcase/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := testhelpers.NewLogger(io.Discard)

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	var tables []string
	err = db.ReadOnly.SelectContext(ctx, &tables,
		"SELECT name FROM sqlite_schema WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)
	require.Equal(t, []string{"case_timers", "cases", "lab_jobs", "progress", "sessions"}, tables)

	// Fixtures create the single progress row.
	var progressRows int
	require.NoError(t, db.ReadOnly.GetContext(ctx, &progressRows, "SELECT COUNT(*) FROM progress"))
	require.Equal(t, 1, progressRows)

	// The read-only pool refuses writes.
	_, err = db.ReadOnly.ExecContext(ctx, "UPDATE progress SET news_unread = 1")
	require.Error(t, err)
}

func TestNewDatabase_migrateTwice(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := testhelpers.NewLogger(io.Discard)
	path := t.TempDir() + "/coldcase.sqlite3"

	db, err := sqlite.NewDatabase(ctx, path, logger)
	require.NoError(t, err)
	_, err = db.ReadWrite.ExecContext(ctx,
		`INSERT INTO cases (id, position, title, document) VALUES ('case-1', 0, 'Case', '{}')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening an up-to-date database keeps the data.
	db, err = sqlite.NewDatabase(ctx, path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	var count int
	require.NoError(t, db.ReadOnly.GetContext(ctx, &count, "SELECT COUNT(*) FROM cases"))
	require.Equal(t, 1, count)
}
