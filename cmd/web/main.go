package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/coldcase/internal/casefile"
	"github.com/myrjola/coldcase/internal/debugserver"
	"github.com/myrjola/coldcase/internal/envstruct"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/game"
	"github.com/myrjola/coldcase/internal/logging"
	"github.com/myrjola/coldcase/internal/repositories"
	"github.com/myrjola/coldcase/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	game           *game.Game
	// stopClock ends the clock driver, which also closes the event streams.
	stopClock context.CancelFunc
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"COLDCASE_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"COLDCASE_SQLITE_URL" envDefault:"./coldcase.sqlite3"`
	// TickInterval is how often the evidence lab and the case timer advance by one second.
	TickInterval time.Duration `env:"COLDCASE_TICK_INTERVAL" envDefault:"1s"`
	// DebugAddr is the loopback address of the pprof and metrics server. Empty disables it.
	DebugAddr       string        `env:"COLDCASE_DEBUG_ADDR" envDefault:""`
	SessionLifetime time.Duration `env:"COLDCASE_SESSION_LIFETIME" envDefault:"12h"`
	// SeedSamples adds the built-in cases to the roster on start-up.
	SeedSamples bool `env:"COLDCASE_SEED_SAMPLES" envDefault:"true"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	if cfg.TickInterval <= 0 {
		return errors.New("tick interval must be positive", slog.Duration("tick_interval", cfg.TickInterval))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelError, "failed to close database",
				errors.SlogError(closeErr))
		}
	}()

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour) //nolint:mnd // once a day
	defer sessionStore.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = sessionStore
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.Secure = true

	cases := repositories.NewCaseRepository(db, logger)
	if cfg.SeedSamples {
		if err = seedSamples(ctx, logger, cases); err != nil {
			return err
		}
	}

	g, err := game.New(ctx, logger, cases, repositories.NewProgressRepository(db, logger))
	if err != nil {
		return errors.Wrap(err, "resume game")
	}

	if cfg.DebugAddr != "" {
		if _, err = debugserver.Launch(ctx, cfg.DebugAddr, logger); err != nil {
			return errors.Wrap(err, "launch debug server")
		}
	}

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		game:           g,
		stopClock:      cancel,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		// The clock stops with the server.
		defer cancel()
		return app.configureAndStartServer(groupCtx, cfg.Addr)
	})
	group.Go(func() error {
		return g.Run(groupCtx, cfg.TickInterval)
	})
	if err = group.Wait(); err != nil {
		return errors.Wrap(err, "serve")
	}
	return nil
}

func seedSamples(ctx context.Context, logger *slog.Logger, cases *repositories.CaseRepository) error {
	samples, err := casefile.Samples()
	if err != nil {
		return errors.Wrap(err, "load sample cases")
	}
	seeded, err := cases.Seed(ctx, samples)
	if err != nil {
		return errors.Wrap(err, "seed sample cases")
	}
	if seeded > 0 {
		logger.LogAttrs(ctx, slog.LevelInfo, "seeded sample cases", slog.Int("count", seeded))
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	// A .env file is optional, the environment takes precedence over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env file", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
