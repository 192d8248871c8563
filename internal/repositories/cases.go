package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
	"github.com/myrjola/coldcase/internal/sqlite"
)

var ErrCaseNotFound = errors.NewSentinel("case not found")

type CaseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewCaseRepository(db *sqlite.Database, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		db:     db,
		logger: logger.With("source", "CaseRepository"),
	}
}

type caseRow struct {
	ID       string `db:"id"`
	Position int    `db:"position"`
	Title    string `db:"title"`
	Document string `db:"document"`
}

func (r caseRow) decode() (models.Case, error) {
	var c models.Case
	if err := json.Unmarshal([]byte(r.Document), &c); err != nil {
		return models.Case{}, errors.Wrap(err, "unmarshal case document", slog.String("case_id", r.ID))
	}
	c.ID = r.ID
	return c, nil
}

func encodeCase(c *models.Case) (string, error) {
	document, err := json.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "marshal case document", slog.String("case_id", c.ID))
	}
	return string(document), nil
}

// List returns the roster in insertion order.
func (r *CaseRepository) List(ctx context.Context) ([]models.Case, error) {
	var rows []caseRow
	stmt := `SELECT id, position, title, document FROM cases ORDER BY position`
	if err := r.db.ReadOnly.SelectContext(ctx, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "select cases")
	}
	cases := make([]models.Case, 0, len(rows))
	for _, row := range rows {
		c, err := row.decode()
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// Get returns the case with the given id or ErrCaseNotFound.
func (r *CaseRepository) Get(ctx context.Context, id string) (*models.Case, error) {
	var row caseRow
	stmt := `SELECT id, position, title, document FROM cases WHERE id = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrCaseNotFound, "get case", slog.String("case_id", id))
		}
		return nil, errors.Wrap(err, "select case", slog.String("case_id", id))
	}
	c, err := row.decode()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Count returns the size of the roster.
func (r *CaseRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.ReadOnly.GetContext(ctx, &count, `SELECT COUNT(*) FROM cases`); err != nil {
		return 0, errors.Wrap(err, "count cases")
	}
	return count, nil
}

const insertCase = `INSERT %s INTO cases (id, position, title, document)
VALUES (:id, (SELECT COALESCE(MAX(position), -1) + 1 FROM cases), :title, :document)`

// Append adds c to the end of the roster.
func (r *CaseRepository) Append(ctx context.Context, c *models.Case) error {
	document, err := encodeCase(c)
	if err != nil {
		return err
	}
	row := caseRow{ID: c.ID, Title: c.Title, Document: document}
	if _, err = r.db.ReadWrite.NamedExecContext(ctx, fmt.Sprintf(insertCase, ""), row); err != nil {
		return errors.Wrap(err, "insert case", slog.String("case_id", c.ID))
	}
	return nil
}

// Seed appends the cases whose id is not yet in the roster and returns how many were added.
func (r *CaseRepository) Seed(ctx context.Context, cases []models.Case) (int, error) {
	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback", errors.SlogError(rollbackErr))
		}
	}()

	seeded := 0
	for i := range cases {
		document, encodeErr := encodeCase(&cases[i])
		if encodeErr != nil {
			return 0, encodeErr
		}
		row := caseRow{ID: cases[i].ID, Title: cases[i].Title, Document: document}
		res, execErr := tx.NamedExecContext(ctx, fmt.Sprintf(insertCase, "OR IGNORE"), row)
		if execErr != nil {
			return 0, errors.Wrap(execErr, "seed case", slog.String("case_id", cases[i].ID))
		}
		affected, affectedErr := res.RowsAffected()
		if affectedErr != nil {
			return 0, errors.Wrap(affectedErr, "rows affected")
		}
		seeded += int(affected)
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit seed")
	}
	return seeded, nil
}
