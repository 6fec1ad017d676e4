// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/distopia/bootstrap/internal/config"
	"github.com/distopia/bootstrap/internal/logging"
	"github.com/distopia/bootstrap/internal/sequencer/steps"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the launch prerequisites without starting anything",
	Long: `check inspects the filesystem dependencies the run command needs:
the application root, the virtualenv activation script, the uvicorn
binary, and the TLS key and certificate files. It starts no process.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.Env)
	started := time.Now()

	checks := []struct {
		name string
		path string
		dir  bool
	}{
		{name: "application root", path: cfg.AppRoot, dir: true},
		{name: "virtualenv activation script", path: steps.ActivateScript(runtime.GOOS, cfg.VenvPath)},
		{name: "uvicorn binary", path: steps.UvicornBin(runtime.GOOS, cfg.VenvPath)},
		{name: "TLS key file", path: cfg.SSLKeyFile},
		{name: "TLS certificate file", path: cfg.SSLCertFile},
	}

	var missing []string
	for _, c := range checks {
		info, err := os.Stat(c.path)
		switch {
		case err != nil:
			logger.Error("check failed", "check", c.name, "path", c.path, "error", err)
			missing = append(missing, c.name)
		case c.dir && !info.IsDir():
			logger.Error("check failed", "check", c.name, "path", c.path, "error", "not a directory")
			missing = append(missing, c.name)
		case !c.dir && info.IsDir():
			logger.Error("check failed", "check", c.name, "path", c.path, "error", "is a directory")
			missing = append(missing, c.name)
		default:
			logger.Info("check passed", "check", c.name, "path", c.path)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%d launch prerequisites missing: %s", len(missing), strings.Join(missing, ", "))
	}

	logger.Info("all launch prerequisites present", "duration_ms", time.Since(started).Milliseconds())
	return nil
}
