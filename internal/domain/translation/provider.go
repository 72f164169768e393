package translation

import (
	"context"
	"fmt"

	"transcribe-server-go/internal/platform/config"
	"transcribe-server-go/internal/platform/logging"
)

// Provider turns text in one language into text in another.
type Provider interface {
	Initialize() error
	// Translate returns the translation of text. from may be "auto".
	Translate(ctx context.Context, text, from, to string) (string, error)
	Cleanup() error
}

// Factory builds a provider from its config block.
type Factory func(cfg config.TranslateConfig, logger *logging.Logger) (Provider, error)

var factories = map[string]Factory{}

// RegisterFactory registers a provider factory under its type name.
func RegisterFactory(typ string, factory Factory) {
	factories[typ] = factory
}

// NewProvider creates the provider for the named config entry.
func NewProvider(name string, cfg config.TranslateConfig, logger *logging.Logger) (Provider, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown translation provider type %q for %s", cfg.Type, name)
	}
	provider, err := factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create translation provider %s: %w", name, err)
	}
	return provider, nil
}
