// SPDX-License-Identifier: Apache-2.0

package sequencer

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// CommandSpec describes one external command invocation.
// A nil Env means the child inherits the sequencer's environment.
type CommandSpec struct {
	Name   string
	Args   []string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// CommandRunner abstracts process execution so the per-step failure policy
// can be exercised in tests without touching the host.
type CommandRunner interface {
	Run(ctx context.Context, spec CommandSpec) (int, error)
}

// ExecRunner runs commands through os/exec in the foreground, blocking
// until the child exits.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, spec CommandSpec) (int, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Env = spec.Env

	cmd.Stdout = spec.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = spec.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), err
		}
		return -1, err
	}
	return 0, nil
}

// ProcEnv is the explicit environment handed to spawned processes. The
// original launcher mutated the ambient process environment; keeping the
// overrides in an object instead means repeated runs inside one supervisor
// process do not leak state into each other.
type ProcEnv struct {
	overrides map[string]string
}

func NewProcEnv() *ProcEnv {
	return &ProcEnv{overrides: make(map[string]string)}
}

func (e *ProcEnv) Set(key, value string) {
	e.overrides[key] = value
}

func (e *ProcEnv) Get(key string) (string, bool) {
	v, ok := e.overrides[key]
	return v, ok
}

// Environ returns the parent environment with the overrides applied, in a
// form suitable for exec.Cmd.Env.
func (e *ProcEnv) Environ() []string {
	base := os.Environ()
	out := make([]string, 0, len(base)+len(e.overrides))

	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, overridden := e.overrides[key]; overridden {
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(e.overrides))
	for key := range e.overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out = append(out, key+"="+e.overrides[key])
	}

	return out
}
