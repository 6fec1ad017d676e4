// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/sequencer"
)

// APIServer spawns uvicorn in the foreground with TLS material from disk
// and blocks until the process exits, for whatever reason. The exit is
// recorded but never fatal to the sequence: the launcher always falls
// through to the operator wait so the console stays readable.
type APIServer struct {
	VenvPath    string
	AppModule   string
	Host        string
	Port        int
	SSLKeyFile  string
	SSLCertFile string
	Runner      sequencer.CommandRunner
	GOOS        string
}

func (s *APIServer) Name() domain.StepName     { return domain.StepAPIServer }
func (s *APIServer) Severity() domain.Severity { return domain.SeverityUnchecked }

func (s *APIServer) Run(ctx context.Context, env *sequencer.ProcEnv) (int, error) {
	return s.Runner.Run(ctx, sequencer.CommandSpec{
		Name: UvicornBin(s.goos(), s.VenvPath),
		Args: s.Args(),
		Env:  env.Environ(),
	})
}

// Args returns the uvicorn argument vector: the application target followed
// by host, port, TLS key file and TLS certificate file.
func (s *APIServer) Args() []string {
	return []string{
		s.AppModule,
		"--host", s.Host,
		"--port", strconv.Itoa(s.Port),
		"--ssl-keyfile", s.SSLKeyFile,
		"--ssl-certfile", s.SSLCertFile,
	}
}

func (s *APIServer) goos() string {
	if s.GOOS != "" {
		return s.GOOS
	}
	return runtime.GOOS
}

// UvicornBin returns the platform path of the uvicorn executable inside
// the virtualenv.
func UvicornBin(goos, venvPath string) string {
	if goos == "windows" {
		return filepath.Join(venvPath, "Scripts", "uvicorn.exe")
	}
	return filepath.Join(venvPath, "bin", "uvicorn")
}
