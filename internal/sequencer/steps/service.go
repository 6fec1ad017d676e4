// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"
	"runtime"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/sequencer"
)

// DatabaseProber waits until the database behind the started service
// accepts connections. Implemented by probe.Postgres.
type DatabaseProber interface {
	WaitReady(ctx context.Context) error
}

// DBService starts the named OS database service. A non-zero exit usually
// means the service is already running, so the failure is advisory. When a
// prober is configured its verdict replaces the service command's: a
// reachable database makes the step succeed even if the start command
// complained.
type DBService struct {
	ServiceName string
	Runner      sequencer.CommandRunner
	Prober      DatabaseProber
	GOOS        string
}

func (s *DBService) Name() domain.StepName     { return domain.StepDBService }
func (s *DBService) Severity() domain.Severity { return domain.SeverityAdvisory }

func (s *DBService) Run(ctx context.Context, _ *sequencer.ProcEnv) (int, error) {
	name, args := serviceStartCommand(s.goos(), s.ServiceName)

	code, err := s.Runner.Run(ctx, sequencer.CommandSpec{
		Name: name,
		Args: args,
	})

	if s.Prober != nil {
		if probeErr := s.Prober.WaitReady(ctx); probeErr != nil {
			return code, probeErr
		}
		return code, nil
	}

	return code, err
}

func (s *DBService) goos() string {
	if s.GOOS != "" {
		return s.GOOS
	}
	return runtime.GOOS
}

func serviceStartCommand(goos, service string) (string, []string) {
	if goos == "windows" {
		return "net", []string{"start", service}
	}
	return "systemctl", []string{"start", service}
}
