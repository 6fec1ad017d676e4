// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"
	"fmt"
	"os"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/sequencer"
)

// Workdir changes the sequencer's working directory to the application
// root. The original launcher never checked this; the failure is surfaced
// in the report as unchecked so a later revision can decide whether to
// promote it.
type Workdir struct {
	Dir string
}

func (s *Workdir) Name() domain.StepName     { return domain.StepWorkdir }
func (s *Workdir) Severity() domain.Severity { return domain.SeverityUnchecked }

func (s *Workdir) Run(_ context.Context, _ *sequencer.ProcEnv) (int, error) {
	if err := os.Chdir(s.Dir); err != nil {
		return 0, fmt.Errorf("chdir %s: %w", s.Dir, err)
	}
	return 0, nil
}
