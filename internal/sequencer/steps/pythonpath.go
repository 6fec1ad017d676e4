// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/sequencer"
)

// PythonPath injects PYTHONPATH into the environment handed to the server
// process so uvicorn can resolve the application package. The override
// lives in the run's ProcEnv only; the sequencer's own environment is
// never mutated.
type PythonPath struct {
	Path string
}

func (s *PythonPath) Name() domain.StepName     { return domain.StepPythonPath }
func (s *PythonPath) Severity() domain.Severity { return domain.SeverityUnchecked }

func (s *PythonPath) Run(_ context.Context, env *sequencer.ProcEnv) (int, error) {
	env.Set("PYTHONPATH", s.Path)
	return 0, nil
}
