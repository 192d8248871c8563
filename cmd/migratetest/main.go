package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/repositories"
	"github.com/myrjola/coldcase/internal/sqlite"
	"github.com/myrjola/coldcase/internal/testhelpers"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("COLDCASE_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "COLDCASE_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	// Count the case roster and check that the progress still loads as a simple smoke test.
	var count int
	if count, err = repositories.NewCaseRepository(db, logger).Count(ctx); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching case count", errors.SlogError(err))
		os.Exit(1)
	}
	if count == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no cases found, something is likely wrong")
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "case count", slog.Int("count", count))

	if _, err = repositories.NewProgressRepository(db, logger).Load(ctx); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error loading progress", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
