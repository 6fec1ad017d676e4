// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/distopia/bootstrap/internal/metrics"
	"github.com/jackc/pgx/v5"
)

const (
	defaultWindow   = 30 * time.Second
	defaultInterval = time.Second
)

// Postgres waits for the database behind the freshly started service to
// accept connections. The original launcher continued blindly after the
// service command; the probe turns "service start returned" into
// "database is actually up".
type Postgres struct {
	databaseURL string
	window      time.Duration
	interval    time.Duration
	logger      *slog.Logger

	// connect is swappable for tests.
	connect func(ctx context.Context, url string) error
}

func NewPostgres(databaseURL string, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}

	return &Postgres{
		databaseURL: databaseURL,
		window:      defaultWindow,
		interval:    defaultInterval,
		logger:      logger,
		connect:     pingOnce,
	}
}

// WaitReady pings the database until it answers or the window closes.
func (p *Postgres) WaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.window)
	defer cancel()

	attempt := 0
	var lastErr error

	for {
		attempt++
		started := time.Now()
		err := p.connect(ctx, p.databaseURL)
		metrics.ObserveDBProbeLatency(time.Since(started))

		if err == nil {
			p.logger.Info("database ready", "attempts", attempt)
			return nil
		}
		lastErr = err

		p.logger.Debug("database not ready yet", "attempt", attempt, "error", err)

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return fmt.Errorf("database not ready after %d attempts: %w", attempt, lastErr)
		case <-timer.C:
		}
	}
}

func pingOnce(ctx context.Context, url string) error {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	return conn.Ping(ctx)
}
