// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/distopia/bootstrap/internal/config"
	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/history"
	"github.com/distopia/bootstrap/internal/logging"
	"github.com/distopia/bootstrap/internal/notify"
	"github.com/distopia/bootstrap/internal/probe"
	"github.com/distopia/bootstrap/internal/sequencer"
	"github.com/distopia/bootstrap/internal/sequencer/steps"
	httptransport "github.com/distopia/bootstrap/internal/transport/http"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the bootstrap sequence",
	RunE:  runSequence,
}

func runSequence(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seq := buildSequencer(cfg, logger)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.StatusServer {
		var historyLister httptransport.HistoryLister
		if cfg.RecordHistory {
			historyLister = history.NewRecorder(cfg.DatabaseURL, logger)
		}

		handler := httptransport.NewRouter(httptransport.Deps{
			Status:     seq,
			Trigger:    seq,
			History:    historyLister,
			Logger:     logger,
			RunCtx:     ctx,
			AdminToken: cfg.AdminToken,
			Version:    Version,
			Commit:     Commit,
			BuildDate:  BuildDate,
		})

		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("status server listening",
				"addr", cfg.HTTPAddr,
				"version", Version,
				"commit", Commit,
				"build_date", BuildDate,
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("status server shutdown error", "error", err)
			}
			return nil
		})
	}

	report, err := seq.Execute(ctx)

	// The sequence is over; take the status server down with us.
	stop()
	if waitErr := g.Wait(); waitErr != nil {
		logger.Error("status server failed", "error", waitErr)
	}

	if err != nil {
		return err
	}
	if report.Status == domain.RunAborted {
		return fmt.Errorf("bootstrap aborted (run %s)", report.ID)
	}
	return nil
}

func buildSequencer(cfg config.Config, logger *slog.Logger) *sequencer.Sequencer {
	runner := sequencer.ExecRunner{}

	var prober steps.DatabaseProber
	if cfg.DBProbe {
		prober = probe.NewPostgres(cfg.DatabaseURL, logger)
	}

	seqSteps := []sequencer.Step{
		&steps.DBService{
			ServiceName: cfg.DBServiceName,
			Runner:      runner,
			Prober:      prober,
		},
		&steps.Workdir{Dir: cfg.AppRoot},
		&steps.VenvActivate{
			VenvPath: cfg.VenvPath,
			Runner:   runner,
		},
		&steps.PythonPath{Path: cfg.AppRoot},
		&steps.APIServer{
			VenvPath:    cfg.VenvPath,
			AppModule:   cfg.AppModule,
			Host:        cfg.ServerHost,
			Port:        cfg.ServerPort,
			SSLKeyFile:  cfg.SSLKeyFile,
			SSLCertFile: cfg.SSLCertFile,
			Runner:      runner,
		},
	}
	if cfg.OperatorWait {
		seqSteps = append(seqSteps, &steps.OperatorWait{In: os.Stdin})
	}

	var recorder sequencer.Recorder
	if cfg.RecordHistory {
		recorder = history.NewRecorder(cfg.DatabaseURL, logger)
	}

	var notifier sequencer.Notifier
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.WebhookURL, cfg.WebhookSecret, logger)
	}

	return sequencer.New(sequencer.Deps{
		Steps:    seqSteps,
		Logger:   logger,
		Recorder: recorder,
		Notifier: notifier,
	})
}
