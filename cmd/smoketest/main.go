package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/myrjola/coldcase/internal/e2etest"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/game"
	"github.com/myrjola/coldcase/internal/logging"
)

// TestRoster checks that a deployed instance is healthy and serves a non-empty case roster. It only reads.
func TestRoster(ctx context.Context, logger *slog.Logger, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for ready")
	}

	var cases []game.CaseSummary
	status, err := client.GetJSON(ctx, "/api/cases", &cases)
	if err != nil {
		return errors.Wrap(err, "list cases")
	}
	if status != http.StatusOK {
		return errors.New("unexpected status code", slog.Int("status", status))
	}
	if len(cases) == 0 {
		return errors.New("case roster is empty")
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "case roster", slog.Int("count", len(cases)))
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestRoster(ctx, logger, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing case roster", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
