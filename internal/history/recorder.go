package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/persistence/postgres"
	"github.com/google/uuid"
)

// Recorder persists finished bootstrap runs so operators can see what the
// last deployments did. It dials per call: the database this launcher
// starts is not reachable before the sequence has run, so a long-lived
// pool opened at startup would fail exactly when the tool is needed most.
// Recording is best-effort; the caller treats an error as advisory.
type Recorder struct {
	databaseURL string
	logger      *slog.Logger
}

func NewRecorder(databaseURL string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		databaseURL: databaseURL,
		logger:      logger,
	}
}

func (r *Recorder) RecordRun(ctx context.Context, report *domain.RunReport) error {
	pool, err := postgres.NewPool(ctx, r.databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool, r.logger); err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		r.logger.Error("begin tx failed", "run_id", report.ID, "error", err)
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO bootstrap_runs (id, status, started_at, finished_at)
		 VALUES ($1, $2, $3, $4)`,
		report.ID, report.Status, report.StartedAt, report.FinishedAt,
	)
	if err != nil {
		r.logger.Error("insert run failed", "run_id", report.ID, "error", err)
		return err
	}

	for i, step := range report.Steps {
		if _, err := tx.Exec(ctx,
			`INSERT INTO bootstrap_steps
			   (id, run_id, position, name, status, severity, exit_code, error, started_at, duration_ms)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New(),
			report.ID,
			i,
			step.Name,
			step.Status,
			step.Severity,
			step.ExitCode,
			step.Error,
			nullableTime(step.StartedAt),
			step.DurationMs,
		); err != nil {
			r.logger.Error("insert step failed",
				"run_id", report.ID,
				"step", step.Name,
				"error", err,
			)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("commit failed", "run_id", report.ID, "error", err)
		return err
	}

	r.logger.Info("run recorded", "run_id", report.ID, "status", report.Status)
	return nil
}

// ListRecentRuns returns the newest recorded runs, most recent first.
func (r *Recorder) ListRecentRuns(ctx context.Context, limit int) ([]domain.RunReport, error) {
	if limit <= 0 {
		limit = 20
	}

	pool, err := postgres.NewPool(ctx, r.databaseURL)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	if err := postgres.SchemaReady(ctx, pool); err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx,
		`SELECT id, status, started_at, finished_at
		 FROM bootstrap_runs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]domain.RunReport, 0, limit)
	for rows.Next() {
		var run domain.RunReport
		if err := rows.Scan(&run.ID, &run.Status, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Skipped steps never started; store NULL instead of the zero time.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
