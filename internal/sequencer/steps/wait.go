// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"bufio"
	"context"
	"io"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/sequencer"
)

// OperatorWait blocks until the operator sends a newline, keeping the
// console open after the server process has exited. Reading happens in a
// goroutine so an interrupt still tears the run down.
type OperatorWait struct {
	In io.Reader
}

func (s *OperatorWait) Name() domain.StepName     { return domain.StepOperatorWait }
func (s *OperatorWait) Severity() domain.Severity { return domain.SeverityUnchecked }

func (s *OperatorWait) Run(ctx context.Context, _ *sequencer.ProcEnv) (int, error) {
	done := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(s.In)
		_, err := reader.ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case err := <-done:
		return 0, err
	}
}
