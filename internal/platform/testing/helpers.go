package testing

import (
	"testing"

	"transcribe-server-go/internal/platform/config"
	"transcribe-server-go/internal/platform/logging"
)

func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.IP = "127.0.0.1"
	cfg.Server.Port = 9000
	cfg.Server.TLS.Port = 9443
	cfg.Log = config.LogConfig{
		Level: "debug",
		Dir:   t.TempDir(),
		File:  "test.log",
	}
	cfg.Web.Enabled = false

	return cfg
}

func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	cfg := SetupTestConfig(t)
	logger, err := logging.New(logging.Config{
		Level: cfg.Log.Level,
		Dir:   cfg.Log.Dir,
		File:  cfg.Log.File,
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	return logger
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}
