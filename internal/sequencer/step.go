// SPDX-License-Identifier: Apache-2.0

package sequencer

import (
	"context"

	"github.com/distopia/bootstrap/internal/domain"
)

// Step is one action in the bootstrap sequence. Run returns the exit code
// of the underlying command (0 for steps that do not spawn one) and an
// error when the step did not succeed; the sequencer decides what a
// failure means from the step's severity.
type Step interface {
	Name() domain.StepName
	Severity() domain.Severity
	Run(ctx context.Context, env *ProcEnv) (int, error)
}
