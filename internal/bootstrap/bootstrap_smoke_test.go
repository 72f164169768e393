package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"log:",
		"  log_level: info",
		"  log_dir: " + filepath.Join(dir, "logs"),
		"  log_file: boot.log",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestInitGraphOrder(t *testing.T) {
	steps := InitGraph()
	want := []string{
		"config:load",
		"logging:init-provider",
		"observability:setup-hooks",
		"providers:init",
	}
	if len(steps) != len(want) {
		t.Fatalf("unexpected step count: got %d want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.ID != want[i] {
			t.Fatalf("step %d mismatch: got %s want %s", i, step.ID, want[i])
		}
	}
}

func TestExecuteInitGraph(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeTestConfig(t))

	state := &appState{}
	if err := executeInitSteps(context.Background(), InitGraph(), state); err != nil {
		t.Fatalf("executeInitSteps failed: %v", err)
	}
	if state.config == nil {
		t.Fatal("config is nil after init")
	}
	if state.logger == nil {
		t.Fatal("logger is nil after init")
	}
	if state.asr == nil {
		t.Fatal("recognition backend is nil after init")
	}
	if state.translator == nil {
		t.Fatal("translation backend is nil after init")
	}
	if state.speech == nil {
		t.Fatal("speech service is nil after init")
	}
	if state.observabilityShutdown == nil {
		t.Fatal("observability shutdown hook not set")
	}
	defer state.logger.Close()
	defer state.observabilityShutdown(context.Background())
}

func TestExecuteInitSteps_MissingDependency(t *testing.T) {
	steps := []initStep{
		{
			ID:        "b",
			Title:     "needs a",
			DependsOn: []string{"a"},
			Execute:   func(context.Context, *appState) error { return nil },
		},
	}
	if err := executeInitSteps(context.Background(), steps, &appState{}); err == nil {
		t.Fatal("expected dependency error")
	}
}

func TestTLSListenerEnabled(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeTestConfig(t))

	state := &appState{}
	if err := executeInitSteps(context.Background(), InitGraph()[:2], state); err != nil {
		t.Fatalf("executeInitSteps failed: %v", err)
	}
	defer state.logger.Close()

	dir := t.TempDir()
	cert := filepath.Join(dir, "server.crt")
	key := filepath.Join(dir, "server.key")

	tls := state.config.Server.TLS
	tls.CertFile = cert
	tls.KeyFile = key

	if tlsListenerEnabled(tls, state.logger) {
		t.Fatal("listener should be skipped while the cert pair is missing")
	}

	for _, path := range []string{cert, key} {
		if err := os.WriteFile(path, []byte("pem"), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	if !tlsListenerEnabled(tls, state.logger) {
		t.Fatal("listener should start once the cert pair exists")
	}

	tls.Port = 0
	if tlsListenerEnabled(tls, state.logger) {
		t.Fatal("port 0 must disable the listener")
	}
}

func TestLogBootstrapGraphOutput(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeTestConfig(t))

	state := &appState{}
	steps := InitGraph()[:2]
	if err := executeInitSteps(context.Background(), steps, state); err != nil {
		t.Fatalf("executeInitSteps failed: %v", err)
	}
	logBootstrapGraph(InitGraph(), state.logger)
	state.logger.Close()

	data, err := os.ReadFile(filepath.Join(state.config.Log.Dir, state.config.Log.File))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	for _, title := range []string{
		"Load configuration",
		"Initialise logging provider",
		"Setup observability hooks",
		"Initialise speech backends",
	} {
		if !strings.Contains(content, title) {
			t.Fatalf("expected graph output to contain %q, got: %s", title, content)
		}
	}
}
