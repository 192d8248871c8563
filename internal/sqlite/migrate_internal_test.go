package sqlite

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/myrjola/coldcase/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestDatabase_migrateTo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name              string
		schemaDefinitions []string
		testQueries       []string
		wantErr           bool
	}{
		{
			name:              "empty schema",
			schemaDefinitions: []string{""},
			testQueries:       []string{"SELECT * FROM sqlite_schema"},
			wantErr:           false,
		},
		{
			name: "keep data when adding a column",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
			},
			testQueries: []string{"INSERT INTO test (id) VALUES (1)"},
			wantErr:     false,
		},
		{
			name:              "create table",
			schemaDefinitions: []string{"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)"},
			testQueries: []string{
				"INSERT INTO test (name) VALUES ('test')",
				"SELECT * FROM test",
			},
			wantErr: false,
		},
		{
			name: "drop table",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
				"", // drop table
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     true,
		},
		{
			name: "add column",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     false,
		},
		{
			name: "remove column",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY)",
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     true,
		},
		{
			name: "create index",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT); CREATE INDEX test_name ON test (name)",
			},
			testQueries: []string{"DROP INDEX test_name"},
			wantErr:     false,
		},
		{
			name: "drop index",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT); CREATE INDEX test_name ON test (name)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
			},
			testQueries: []string{"DROP INDEX test_name"},
			wantErr:     true,
		},
		{
			name: "update index",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT); CREATE INDEX test_name ON test (name)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT); CREATE INDEX test_name ON test (id, name)",
			},
			testQueries: []string{"DROP INDEX test_name"},
			wantErr:     false,
		},
		{
			name: "create trigger",
			schemaDefinitions: []string{
				`CREATE TABLE test ( id   INTEGER PRIMARY KEY, name TEXT );
                 CREATE TRIGGER test_trigger AFTER INSERT ON test BEGIN SELECT RAISE ( FAIL, 'fail' ); END;`,
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     true,
		},
		{
			name: "delete trigger",
			schemaDefinitions: []string{
				`CREATE TABLE test ( id   INTEGER PRIMARY KEY, name TEXT );
                 CREATE TRIGGER test_trigger AFTER INSERT ON test BEGIN SELECT RAISE ( FAIL, 'fail' ); END;`,
				"CREATE TABLE test ( id   INTEGER PRIMARY KEY, name TEXT )",
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     false,
		},
		{
			name: "update trigger",
			schemaDefinitions: []string{
				`CREATE TABLE test ( id   INTEGER PRIMARY KEY, name TEXT );
                 CREATE TRIGGER test_trigger AFTER INSERT ON test BEGIN SELECT RAISE ( FAIL, 'fail' ); END;`,
				`CREATE TABLE test ( id   INTEGER PRIMARY KEY, name TEXT );
                 CREATE TRIGGER test_trigger AFTER INSERT ON test BEGIN SELECT 1; END;`,
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := t.Context()
			logger := testhelpers.NewLogger(io.Discard)
			db, err := connect(":memory:", logger)
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			for _, schemaDefinition := range tt.schemaDefinitions {
				logger.LogAttrs(ctx, slog.LevelInfo, "migrating", slog.String("schema", schemaDefinition))
				err = db.migrateTo(ctx, schemaDefinition)
				require.NoError(t, err)
			}
			for _, query := range tt.testQueries {
				logger.LogAttrs(ctx, slog.LevelInfo, "executing", slog.String("query", query))
				_, err = db.ReadWrite.ExecContext(ctx, query)
				if tt.wantErr {
					require.Error(t, err)
				} else {
					require.NoError(t, err)
				}
			}
		})
	}
}

func TestDatabase_migrateKeepsCaseState(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	db, err := connect(":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.migrateTo(ctx, schemaDefinition))

	for _, query := range []string{
		`INSERT INTO cases (id, position, title, document) VALUES ('case-1', 1, 'One', '{}')`,
		`INSERT INTO lab_jobs (case_id, evidence_id, position, time_to_process, remaining)
		 VALUES ('case-1', 'lens', 0, 20, 15), ('case-1', 'print', 1, 15, NULL)`,
		`INSERT INTO case_timers (case_id, remaining, active, expired) VALUES ('case-1', 1795, 1, 0)`,
	} {
		_, err = db.ReadWrite.ExecContext(ctx, query)
		require.NoError(t, err)
	}

	// A new column on case_timers rebuilds the table.
	extended := strings.Replace(schemaDefinition,
		"    expired   INTEGER NOT NULL DEFAULT 0 CHECK (expired IN (0, 1))",
		"    expired   INTEGER NOT NULL DEFAULT 0 CHECK (expired IN (0, 1)),\n    attempts  INTEGER NOT NULL DEFAULT 0",
		1)
	require.NotEqual(t, schemaDefinition, extended)
	require.NoError(t, db.migrateTo(ctx, extended))

	var remaining int
	require.NoError(t, db.ReadOnly.GetContext(ctx, &remaining,
		"SELECT remaining FROM case_timers WHERE case_id = 'case-1'"))
	require.Equal(t, 1795, remaining)
	var jobs int
	require.NoError(t, db.ReadOnly.GetContext(ctx, &jobs, "SELECT COUNT(*) FROM lab_jobs WHERE case_id = 'case-1'"))
	require.Equal(t, 2, jobs)

	_, err = db.ReadWrite.ExecContext(ctx,
		"INSERT INTO lab_jobs (case_id, evidence_id, position, time_to_process) VALUES ('case-1', 'rope', 1, 10)")
	require.Error(t, err, "queue positions are unique within a case")
	_, err = db.ReadWrite.ExecContext(ctx,
		"INSERT INTO case_timers (case_id, remaining) VALUES ('missing', 10)")
	require.Error(t, err, "timers belong to a case")

	_, err = db.ReadWrite.ExecContext(ctx, "DELETE FROM cases WHERE id = 'case-1'")
	require.NoError(t, err)
	require.NoError(t, db.ReadOnly.GetContext(ctx, &jobs, "SELECT COUNT(*) FROM lab_jobs"))
	require.Equal(t, 0, jobs)
	var timers int
	require.NoError(t, db.ReadOnly.GetContext(ctx, &timers, "SELECT COUNT(*) FROM case_timers"))
	require.Equal(t, 0, timers)
}
