// Package casecmd holds the case file commands of the CLI.
package casecmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/myrjola/coldcase/internal/casefile"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
	"github.com/myrjola/coldcase/internal/repositories"
	"github.com/myrjola/coldcase/internal/sqlite"
	"github.com/myrjola/coldcase/internal/testhelpers"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "case",
	Title: "Case files",
}

const defaultSqliteURL = "./coldcase.sqlite3"

func init() {
	for _, cmd := range []*cobra.Command{Import, List} {
		cmd.Flags().String("sqlite-url", sqliteURLFromEnv(), "SQLite URL of the game database")
	}
	for _, cmd := range []*cobra.Command{Validate, Import} {
		cmd.Flags().String("format", "", "case file format, json or yaml (default: from the file extension)")
	}
}

func sqliteURLFromEnv() string {
	if url, ok := os.LookupEnv("COLDCASE_SQLITE_URL"); ok {
		return url
	}
	return defaultSqliteURL
}

var Validate = &cobra.Command{
	Use:     "validate [file...]",
	GroupID: "case",
	Short:   "Validate case files",
	Long:    `Checks that case files are well-formed and self-consistent without importing them.`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			c, err := readCase(cmd, path)
			if err != nil {
				failed++
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				continue
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%q, %d evidence, %d people)\n",
				path, c.Title, len(c.Evidence), len(c.People))
		}
		if failed > 0 {
			return errors.New("invalid case files", slog.Int("count", failed))
		}
		return nil
	},
}

var Import = &cobra.Command{
	Use:     "import [file...]",
	GroupID: "case",
	Short:   "Import case files into the roster",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cases := make([]*models.Case, 0, len(args))
		for _, path := range args {
			c, err := readCase(cmd, path)
			if err != nil {
				return errors.Wrap(err, "read case file", slog.String("path", path))
			}
			cases = append(cases, c)
		}
		return withCases(cmd, func(ctx context.Context, repo *repositories.CaseRepository) error {
			for _, c := range cases {
				if err := repo.Append(ctx, c); err != nil {
					return errors.Wrap(err, "append case", slog.String("title", c.Title))
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %q as %s\n", c.Title, c.ID)
			}
			return nil
		})
	},
}

var List = &cobra.Command{
	Use:     "list",
	GroupID: "case",
	Short:   "List the case roster",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCases(cmd, func(ctx context.Context, repo *repositories.CaseRepository) error {
			cases, err := repo.List(ctx)
			if err != nil {
				return errors.Wrap(err, "list cases")
			}
			return printCases(cmd.OutOrStdout(), cases)
		})
	},
}

// readCase imports a case file. The format flag overrides the file extension.
func readCase(cmd *cobra.Command, path string) (*models.Case, error) {
	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, errors.Wrap(err, "format flag")
	}
	format := casefile.FormatFromPath(path)
	if formatFlag != "" {
		if format, err = casefile.ParseFormat(formatFlag); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	return casefile.Import(data, format)
}

// withCases opens the game database for the duration of fn.
func withCases(cmd *cobra.Command, fn func(context.Context, *repositories.CaseRepository) error) error {
	sqliteURL, err := cmd.Flags().GetString("sqlite-url")
	if err != nil {
		return errors.Wrap(err, "sqlite-url flag")
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	logger := testhelpers.NewLogger(io.Discard)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger = testhelpers.NewLogger(cmd.ErrOrStderr())
	}
	db, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", sqliteURL))
	}
	defer func() {
		_ = db.Close()
	}()
	return fn(ctx, repositories.NewCaseRepository(db, logger))
}

func printCases(w io.Writer, cases []models.Case) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // two spaces between columns
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tTIME LIMIT\tSOLVED")
	for _, c := range cases {
		limit := "-"
		if c.TimeLimit != nil {
			limit = fmt.Sprintf("%ds", *c.TimeLimit)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", c.ID, c.Title, c.Type, limit, c.Solved)
	}
	return errors.Wrap(tw.Flush(), "flush table")
}
