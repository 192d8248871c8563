package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
	"github.com/myrjola/coldcase/internal/sqlite"
)

// ProgressRepository persists the active case reference, the lab pipeline, the case timer and the unread news flag.
type ProgressRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewProgressRepository(db *sqlite.Database, logger *slog.Logger) *ProgressRepository {
	return &ProgressRepository{
		db:     db,
		logger: logger.With("source", "ProgressRepository"),
	}
}

type progressRow struct {
	ActiveCaseID sql.NullString `db:"active_case_id"`
	NewsUnread   bool           `db:"news_unread"`
}

type labJobRow struct {
	CaseID        string        `db:"case_id"`
	EvidenceID    string        `db:"evidence_id"`
	Position      int           `db:"position"`
	TimeToProcess int           `db:"time_to_process"`
	Remaining     sql.NullInt64 `db:"remaining"`
}

type timerRow struct {
	CaseID    string        `db:"case_id"`
	Remaining sql.NullInt64 `db:"remaining"`
	Active    bool          `db:"active"`
	Expired   bool          `db:"expired"`
}

// Load reads the persisted progress. The lab and timer belong to the active case.
func (r *ProgressRepository) Load(ctx context.Context) (models.Progress, error) {
	var (
		progress models.Progress
		row      progressRow
		err      error
	)
	stmt := `SELECT active_case_id, news_unread FROM progress WHERE id = 1`
	if err = r.db.ReadOnly.GetContext(ctx, &row, stmt); err != nil {
		return progress, errors.Wrap(err, "select progress")
	}
	progress.NewsUnread = row.NewsUnread
	if !row.ActiveCaseID.Valid {
		return progress, nil
	}
	progress.ActiveCaseID = row.ActiveCaseID.String
	if progress.Lab, progress.Timer, err = r.LoadCaseState(ctx, progress.ActiveCaseID); err != nil {
		return progress, err
	}
	return progress, nil
}

// LoadCaseState reads the lab pipeline and the timer of a case. Both are kept while another case is active so that
// they continue where they left off when the case is selected again. A case without stored state gets an idle lab
// and a fresh timer.
func (r *ProgressRepository) LoadCaseState(ctx context.Context, caseID string) (
	models.LabState, models.TimerState, error,
) {
	caseAttr := slog.String("case_id", caseID)
	var jobs []labJobRow
	stmt := `SELECT case_id, evidence_id, position, time_to_process, remaining
FROM lab_jobs
WHERE case_id = ?
ORDER BY position`
	if err := r.db.ReadOnly.SelectContext(ctx, &jobs, stmt, caseID); err != nil {
		return models.LabState{}, models.TimerState{}, errors.Wrap(err, "select lab jobs", caseAttr)
	}
	lab := labStateFromRows(caseID, jobs)

	var row timerRow
	stmt = `SELECT case_id, remaining, active, expired FROM case_timers WHERE case_id = ?`
	err := r.db.ReadOnly.GetContext(ctx, &row, stmt, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return lab, models.TimerState{CaseID: caseID}, nil
	}
	if err != nil {
		return models.LabState{}, models.TimerState{}, errors.Wrap(err, "select case timer", caseAttr)
	}
	timer := models.TimerState{
		CaseID:  row.CaseID,
		Active:  row.Active,
		Expired: row.Expired,
	}
	if row.Remaining.Valid {
		remaining := int(row.Remaining.Int64)
		timer.Remaining = &remaining
	}
	return lab, timer, nil
}

func labStateFromRows(caseID string, jobs []labJobRow) models.LabState {
	state := models.LabState{CaseID: caseID}
	for _, job := range jobs {
		labJob := models.LabJob{EvidenceID: job.EvidenceID, TimeToProcess: job.TimeToProcess}
		if job.Remaining.Valid && state.Current == nil {
			state.Current = &labJob
			state.Remaining = int(job.Remaining.Int64)
			continue
		}
		state.Queue = append(state.Queue, labJob)
	}
	if state.Current == nil && len(jobs) > 0 {
		// Commit always marks the head as current; promote it here too if the row was edited by hand.
		head := state.Queue[0]
		state.Current = &head
		state.Remaining = head.TimeToProcess
		state.Queue = state.Queue[1:]
	}
	if len(state.Queue) == 0 {
		state.Queue = nil
	}
	return state
}

// Snapshot is the state written after every command and tick.
type Snapshot struct {
	// Case is the active case document, nil when no case is active.
	Case     *models.Case
	Progress models.Progress
}

// Commit writes the snapshot in a single transaction so that a reload observes either the previous or the new
// state. Only the active case's lab pipeline and timer are written, the state of other cases is left as it is.
func (r *ProgressRepository) Commit(ctx context.Context, snapshot Snapshot) error {
	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback", errors.SlogError(rollbackErr))
		}
	}()

	progress := snapshot.Progress
	if snapshot.Case != nil {
		if err = updateCase(ctx, tx, snapshot.Case); err != nil {
			return err
		}
	}

	activeCaseID := sql.NullString{String: progress.ActiveCaseID, Valid: progress.ActiveCaseID != ""}
	stmt := `INSERT INTO progress (id, active_case_id, news_unread) VALUES (1, ?, ?)
ON CONFLICT (id) DO UPDATE SET active_case_id = excluded.active_case_id, news_unread = excluded.news_unread`
	if _, err = tx.ExecContext(ctx, stmt, activeCaseID, progress.NewsUnread); err != nil {
		return errors.Wrap(err, "upsert progress")
	}

	if progress.ActiveCaseID != "" {
		if err = replaceLabJobs(ctx, tx, progress); err != nil {
			return err
		}
		if err = writeTimer(ctx, tx, progress); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit progress")
	}
	return nil
}

func updateCase(ctx context.Context, tx *sqlx.Tx, c *models.Case) error {
	document, err := encodeCase(c)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE cases SET title = ?, document = ? WHERE id = ?`, c.Title, document, c.ID)
	if err != nil {
		return errors.Wrap(err, "update case", slog.String("case_id", c.ID))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(ErrCaseNotFound, "update case", slog.String("case_id", c.ID))
	}
	return nil
}

func replaceLabJobs(ctx context.Context, tx *sqlx.Tx, progress models.Progress) error {
	caseID := progress.ActiveCaseID
	if _, err := tx.ExecContext(ctx, `DELETE FROM lab_jobs WHERE case_id = ?`, caseID); err != nil {
		return errors.Wrap(err, "clear lab jobs", slog.String("case_id", caseID))
	}
	lab := progress.Lab
	if lab.Current == nil {
		return nil
	}
	jobs := make([]labJobRow, 0, 1+len(lab.Queue))
	jobs = append(jobs, labJobRow{
		CaseID:        caseID,
		EvidenceID:    lab.Current.EvidenceID,
		Position:      0,
		TimeToProcess: lab.Current.TimeToProcess,
		Remaining:     sql.NullInt64{Int64: int64(lab.Remaining), Valid: true},
	})
	for i, job := range lab.Queue {
		jobs = append(jobs, labJobRow{
			CaseID:        caseID,
			EvidenceID:    job.EvidenceID,
			Position:      i + 1,
			TimeToProcess: job.TimeToProcess,
		})
	}
	stmt := `INSERT INTO lab_jobs (case_id, evidence_id, position, time_to_process, remaining)
VALUES (:case_id, :evidence_id, :position, :time_to_process, :remaining)`
	if _, err := tx.NamedExecContext(ctx, stmt, jobs); err != nil {
		return errors.Wrap(err, "insert lab jobs", slog.String("case_id", caseID))
	}
	return nil
}

func writeTimer(ctx context.Context, tx *sqlx.Tx, progress models.Progress) error {
	timer := progress.Timer
	row := timerRow{CaseID: progress.ActiveCaseID, Active: timer.Active, Expired: timer.Expired}
	if timer.Remaining != nil {
		row.Remaining = sql.NullInt64{Int64: int64(*timer.Remaining), Valid: true}
	}
	stmt := `INSERT INTO case_timers (case_id, remaining, active, expired)
VALUES (:case_id, :remaining, :active, :expired)
ON CONFLICT (case_id) DO UPDATE SET remaining = excluded.remaining,
                                    active    = excluded.active,
                                    expired   = excluded.expired`
	if _, err := tx.NamedExecContext(ctx, stmt, row); err != nil {
		return errors.Wrap(err, "upsert case timer", slog.String("case_id", row.CaseID))
	}
	return nil
}
