// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/sequencer"
)

// VenvActivate sources the virtualenv activation script through the shell.
// This is the only fatal step: a broken virtualenv means the API server
// cannot start, so the sequence aborts here.
type VenvActivate struct {
	VenvPath string
	Runner   sequencer.CommandRunner
	GOOS     string
}

func (s *VenvActivate) Name() domain.StepName     { return domain.StepVenvActivate }
func (s *VenvActivate) Severity() domain.Severity { return domain.SeverityFatal }

func (s *VenvActivate) Run(ctx context.Context, _ *sequencer.ProcEnv) (int, error) {
	name, args := activateCommand(s.goos(), s.VenvPath)

	code, err := s.Runner.Run(ctx, sequencer.CommandSpec{
		Name: name,
		Args: args,
	})
	if err != nil {
		return code, fmt.Errorf("activate virtualenv %s: %w", s.VenvPath, err)
	}
	return code, nil
}

func (s *VenvActivate) goos() string {
	if s.GOOS != "" {
		return s.GOOS
	}
	return runtime.GOOS
}

// ActivateScript returns the platform path of the activation script inside
// the virtualenv.
func ActivateScript(goos, venvPath string) string {
	if goos == "windows" {
		return filepath.Join(venvPath, "Scripts", "activate.bat")
	}
	return filepath.Join(venvPath, "bin", "activate")
}

func activateCommand(goos, venvPath string) (string, []string) {
	script := ActivateScript(goos, venvPath)
	if goos == "windows" {
		return "cmd", []string{"/C", "call", script}
	}
	return "/bin/sh", []string{"-c", ". " + script}
}
