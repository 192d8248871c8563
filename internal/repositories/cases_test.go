package repositories_test

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/coldcase/internal/models"
	"github.com/myrjola/coldcase/internal/repositories"
	"github.com/myrjola/coldcase/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestCaseRepository(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	repo := repositories.NewCaseRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	first := testCase("case-1", "The Study")
	second := testCase("case-2", "The Garden")
	require.NoError(t, repo.Append(ctx, &first))
	require.NoError(t, repo.Append(ctx, &second))

	cases, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	require.Equal(t, "case-1", cases[0].ID)
	require.Equal(t, "case-2", cases[1].ID)

	got, err := repo.Get(ctx, "case-2")
	require.NoError(t, err)
	if diff := cmp.Diff(second, *got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	_, err = repo.Get(ctx, "case-404")
	require.ErrorIs(t, err, repositories.ErrCaseNotFound)

	// Appending an existing id fails and leaves the roster unchanged.
	require.Error(t, repo.Append(ctx, &first))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestCaseRepository_Seed(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	repo := repositories.NewCaseRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	existing := testCase("case-1", "The Study")
	require.NoError(t, repo.Append(ctx, &existing))

	seeded, err := repo.Seed(ctx, []models.Case{
		testCase("case-1", "Renamed"),
		testCase("case-3", "The Attic"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, seeded)

	cases, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	require.Equal(t, "The Study", cases[0].Title, "seeding must not overwrite progress")
	require.Equal(t, "case-3", cases[1].ID)

	seeded, err = repo.Seed(ctx, []models.Case{testCase("case-3", "The Attic")})
	require.NoError(t, err)
	require.Zero(t, seeded)
}
