package repositories_test

import (
	"io"
	"testing"

	"github.com/myrjola/coldcase/internal/models"
	"github.com/myrjola/coldcase/internal/sqlite"
	"github.com/myrjola/coldcase/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func ptr[T any](v T) *T {
	return &v
}

func testCase(id, title string) models.Case {
	return models.Case{
		ID:        id,
		Title:     title,
		Type:      "murder",
		TimeLimit: ptr(600),
		Victim:    "Edgar Finch",
		Briefing:  "A quiet evening went wrong.",
		Evidence: []models.Evidence{
			{ID: "glass", Name: "Broken glass", Location: "study", TimeToProcess: 10},
			{ID: "note", Name: "Torn note", Location: "study", TimeToProcess: 5},
		},
		People: []models.Person{
			{ID: "maid", Name: "Mary", Type: models.PersonTypeSuspect, Available: true},
		},
		Solution: models.Solution{Culprit: "maid", Motive: "Greed", Method: "Poison"},
	}
}
