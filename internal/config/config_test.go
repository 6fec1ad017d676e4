// SPDX-License-Identifier: Apache-2.0

package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "HTTP_ADDR", "DB_SERVICE_NAME", "DATABASE_URL",
		"APP_ROOT", "VENV_PATH", "APP_MODULE", "SERVER_HOST", "SERVER_PORT",
		"SSL_KEY_FILE", "SSL_CERT_FILE", "ADMIN_TOKEN",
		"WEBHOOK_URL", "WEBHOOK_SECRET",
		"DB_PROBE", "RECORD_HISTORY", "OPERATOR_WAIT", "STATUS_SERVER",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("expected default Env=dev, got %s", cfg.Env)
	}
	if cfg.HTTPAddr != ":8090" {
		t.Fatalf("expected default HTTPAddr=:8090, got %s", cfg.HTTPAddr)
	}
	if cfg.DBServiceName != "postgresql" {
		t.Fatalf("expected default DBServiceName=postgresql, got %s", cfg.DBServiceName)
	}
	if cfg.ServerHost != "127.0.0.1" {
		t.Fatalf("expected default ServerHost=127.0.0.1, got %s", cfg.ServerHost)
	}
	if cfg.ServerPort != 8001 {
		t.Fatalf("expected default ServerPort=8001, got %d", cfg.ServerPort)
	}
	if cfg.SSLKeyFile != "/opt/distopia/certs/key.pem" {
		t.Fatalf("unexpected default SSLKeyFile: %s", cfg.SSLKeyFile)
	}
	if cfg.SSLCertFile != "/opt/distopia/certs/cert.pem" {
		t.Fatalf("unexpected default SSLCertFile: %s", cfg.SSLCertFile)
	}
	if !cfg.DBProbe {
		t.Fatal("expected default DBProbe=true")
	}
	if cfg.RecordHistory {
		t.Fatal("expected default RecordHistory=false")
	}
	if !cfg.OperatorWait {
		t.Fatal("expected default OperatorWait=true")
	}
	if !cfg.StatusServer {
		t.Fatal("expected default StatusServer=true")
	}
}

func TestLoadRespectsEnv(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("DB_SERVICE_NAME", "postgresql-16")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9443")
	t.Setenv("OPERATOR_WAIT", "false")
	t.Setenv("ADMIN_TOKEN", "master-token")

	cfg := Load()

	if cfg.Env != "prod" {
		t.Fatalf("expected ENV override, got %s", cfg.Env)
	}
	if cfg.DBServiceName != "postgresql-16" {
		t.Fatalf("expected DB_SERVICE_NAME override, got %s", cfg.DBServiceName)
	}
	if cfg.ServerHost != "0.0.0.0" {
		t.Fatalf("expected SERVER_HOST override, got %s", cfg.ServerHost)
	}
	if cfg.ServerPort != 9443 {
		t.Fatalf("expected SERVER_PORT override, got %d", cfg.ServerPort)
	}
	if cfg.OperatorWait {
		t.Fatal("expected OPERATOR_WAIT override to false")
	}
	if cfg.AdminToken != "master-token" {
		t.Fatalf("expected ADMIN_TOKEN override, got %s", cfg.AdminToken)
	}
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("INT_KEY", "42")
	if got := getenvInt("INT_KEY", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	t.Setenv("INT_KEY", "not-a-number")
	if got := getenvInt("INT_KEY", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}

	t.Setenv("INT_KEY", "")
	if got := getenvInt("INT_KEY", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
}

func TestGetenvBool(t *testing.T) {
	t.Setenv("BOOL_KEY", "true")
	if got := getenvBool("BOOL_KEY", false); !got {
		t.Fatal("expected true value")
	}

	t.Setenv("BOOL_KEY", "0")
	if got := getenvBool("BOOL_KEY", true); got {
		t.Fatal("expected false value")
	}

	t.Setenv("BOOL_KEY", "")
	if got := getenvBool("BOOL_KEY", true); !got {
		t.Fatal("expected fallback true value")
	}
}
