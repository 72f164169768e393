package transcription

import (
	"context"
	"fmt"

	"transcribe-server-go/internal/platform/config"
	"transcribe-server-go/internal/platform/logging"
)

// Provider is a speech-recognition backend.
type Provider interface {
	Initialize() error
	Transcribe(ctx context.Context, req *Request) (*Result, error)
	Cleanup() error
}

// Factory builds a provider from its config block.
type Factory func(cfg config.ASRConfig, logger *logging.Logger) (Provider, error)

var factories = map[string]Factory{}

// RegisterFactory registers a provider factory under its type name.
// Called from provider package init functions.
func RegisterFactory(typ string, factory Factory) {
	factories[typ] = factory
}

// NewProvider creates the provider for the named config entry.
func NewProvider(name string, cfg config.ASRConfig, logger *logging.Logger) (Provider, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown ASR provider type %q for %s", cfg.Type, name)
	}
	provider, err := factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create ASR provider %s: %w", name, err)
	}
	return provider, nil
}
