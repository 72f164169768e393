package observability

import (
	"context"
	"log/slog"
	"sync"
)

// Config captures observability toggles. Exporter endpoints can be added here
// once an OTel backend is in the deployment picture.
type Config struct {
	Enabled bool
}

// ShutdownFunc allows callers to tear down any observability exporters.
type ShutdownFunc func(context.Context) error

var (
	loggerMu             sync.RWMutex
	instrumentationLog   *slog.Logger
	instrumentationState Config
)

func currentLogger() (*slog.Logger, Config) {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return instrumentationLog, instrumentationState
}

// Setup installs the slog-backed instrumentation hooks.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (ShutdownFunc, error) {
	loggerMu.Lock()
	instrumentationLog = logger
	instrumentationState = cfg
	loggerMu.Unlock()

	if logger != nil {
		if cfg.Enabled {
			logger.InfoContext(ctx, "[OBSERVABILITY][SETUP] enabled")
		} else {
			logger.InfoContext(ctx, "[OBSERVABILITY][SETUP] disabled")
		}
	}
	return func(context.Context) error { return nil }, nil
}
