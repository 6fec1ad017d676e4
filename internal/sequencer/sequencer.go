package sequencer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/metrics"
	"github.com/google/uuid"
)

type Deps struct {
	Steps    []Step
	Logger   *slog.Logger
	Recorder Recorder
	Notifier Notifier
}

// Recorder persists a finished run report. Implemented by history.Recorder.
type Recorder interface {
	RecordRun(ctx context.Context, report *domain.RunReport) error
}

// Notifier announces a finished run. Implemented by notify.Webhook.
type Notifier interface {
	NotifyRunFinished(ctx context.Context, report *domain.RunReport)
}

// Sequencer executes the bootstrap steps strictly in declaration order,
// exactly once each per run. One run may be active at a time.
type Sequencer struct {
	steps    []Step
	logger   *slog.Logger
	recorder Recorder
	notifier Notifier

	inProgress atomic.Bool
	mu         sync.RWMutex
	lastReport *domain.RunReport
}

func New(deps Deps) *Sequencer {
	l := deps.Logger
	if l == nil {
		l = slog.Default()
	}

	return &Sequencer{
		steps:    deps.Steps,
		logger:   l,
		recorder: deps.Recorder,
		notifier: deps.Notifier,
	}
}

// Execute runs the whole sequence and returns its report. A fatal step
// failure aborts the run and marks the remaining steps skipped; advisory
// and unchecked failures are recorded and the sequence continues.
// Returns domain.ErrRunInProgress if a run is already active.
func (s *Sequencer) Execute(ctx context.Context) (*domain.RunReport, error) {
	if !s.inProgress.CompareAndSwap(false, true) {
		return nil, domain.ErrRunInProgress
	}
	defer s.inProgress.Store(false)

	report := &domain.RunReport{
		ID:        uuid.New(),
		Status:    domain.RunRunning,
		StartedAt: time.Now(),
		Steps:     make([]domain.StepResult, len(s.steps)),
	}

	for i, step := range s.steps {
		report.Steps[i] = domain.StepResult{
			Name:     step.Name(),
			Status:   domain.StepPending,
			Severity: step.Severity(),
		}
	}

	s.logger.Info("bootstrap started", "run_id", report.ID, "steps", len(s.steps))

	env := NewProcEnv()
	aborted := false
	degraded := false

	for i, step := range s.steps {
		res := &report.Steps[i]

		if aborted || ctx.Err() != nil {
			res.Status = domain.StepSkipped
			metrics.IncStepStatus(string(domain.StepSkipped))
			continue
		}

		res.Status = domain.StepRunning
		res.StartedAt = time.Now()

		s.logger.Info("step started",
			"run_id", report.ID,
			"step", step.Name(),
		)

		code, err := step.Run(ctx, env)
		duration := time.Since(res.StartedAt)

		res.ExitCode = code
		res.DurationMs = duration.Milliseconds()
		metrics.ObserveStepDuration(string(step.Name()), duration)

		if err != nil {
			res.Status = domain.StepFailed
			res.Error = err.Error()
			metrics.IncStepStatus(string(domain.StepFailed))

			switch step.Severity() {
			case domain.SeverityFatal:
				s.logger.Error("step failed - aborting",
					"run_id", report.ID,
					"step", step.Name(),
					"exit_code", code,
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)
				aborted = true
			case domain.SeverityAdvisory:
				s.logger.Warn("step failed - continuing",
					"run_id", report.ID,
					"step", step.Name(),
					"exit_code", code,
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)
				degraded = true
			default:
				s.logger.Warn("unchecked step failed",
					"run_id", report.ID,
					"step", step.Name(),
					"exit_code", code,
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)
				degraded = true
			}
			continue
		}

		res.Status = domain.StepSucceeded
		metrics.IncStepStatus(string(domain.StepSucceeded))

		s.logger.Info("step completed",
			"run_id", report.ID,
			"step", step.Name(),
			"duration_ms", duration.Milliseconds(),
		)
	}

	report.FinishedAt = time.Now()
	switch {
	case aborted || ctx.Err() != nil:
		report.Status = domain.RunAborted
	case degraded:
		report.Status = domain.RunDegraded
	default:
		report.Status = domain.RunSucceeded
	}
	metrics.IncRunStatus(string(report.Status))

	s.logger.Info("bootstrap finished",
		"run_id", report.ID,
		"status", report.Status,
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	)

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	if s.recorder != nil {
		if err := s.recorder.RecordRun(ctx, report); err != nil {
			s.logger.Warn("record run failed", "run_id", report.ID, "error", err)
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyRunFinished(ctx, report)
	}

	return report, nil
}

// InProgress reports whether a run is currently executing.
func (s *Sequencer) InProgress() bool {
	return s.inProgress.Load()
}

// LastReport returns the most recent finished run report.
func (s *Sequencer) LastReport() (*domain.RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastReport == nil {
		return nil, false
	}
	return s.lastReport, true
}

// Ready reports whether the last run completed without aborting.
func (s *Sequencer) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport != nil && s.lastReport.Status != domain.RunAborted
}
