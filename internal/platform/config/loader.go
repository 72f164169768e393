package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is checked when no CONFIG_PATH override is set.
const DefaultPath = "config.yaml"

// Loader reads configuration from an optional .env file, a yaml file and
// environment overrides, in that order.
type Loader struct {
	path      string
	useDotEnv bool
}

func NewLoader() *Loader {
	return &Loader{
		path:      os.Getenv("CONFIG_PATH"),
		useDotEnv: true,
	}
}

// WithPath overrides the config file location (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load starts from DefaultConfig and layers the yaml file and environment
// overrides on top. A missing config file is not an error.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using system environment")
		}
	}

	path := l.path
	if path == "" {
		path = DefaultPath
	}

	cfg := DefaultConfig()
	origin := "defaults"

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		origin = path
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: origin}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TLS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.TLS.Port = port
		}
	}
	if v := os.Getenv("TLS_CERT_FILE"); v != "" {
		cfg.Server.TLS.CertFile = v
	}
	if v := os.Getenv("TLS_KEY_FILE"); v != "" {
		cfg.Server.TLS.KeyFile = v
	}
	if v := os.Getenv("ASR_API_KEY"); v != "" {
		if selected, ok := cfg.ASR[cfg.Selected.ASR]; ok {
			selected.APIKey = v
			cfg.ASR[cfg.Selected.ASR] = selected
		}
	}
	if v := os.Getenv("TRANSLATE_API_KEY"); v != "" {
		if selected, ok := cfg.Translate[cfg.Selected.Translate]; ok {
			selected.APIKey = v
			cfg.Translate[cfg.Selected.Translate] = selected
		}
	}
}

// Validate rejects configurations the server cannot start with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if cfg.Server.TLS.Port != 0 {
		if cfg.Server.TLS.Port <= 0 || cfg.Server.TLS.Port > 65535 {
			return fmt.Errorf("invalid tls port %d", cfg.Server.TLS.Port)
		}
		if cfg.Server.TLS.Port == cfg.Server.Port {
			return fmt.Errorf("tls port %d collides with server port", cfg.Server.TLS.Port)
		}
	}
	if cfg.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload max_file_size must be positive")
	}
	if cfg.Selected.ASR == "" {
		return fmt.Errorf("selected_module.ASR is required")
	}
	if _, ok := cfg.ASR[cfg.Selected.ASR]; !ok {
		return fmt.Errorf("selected ASR provider %q is not configured", cfg.Selected.ASR)
	}
	if cfg.Selected.Translate != "" {
		if _, ok := cfg.Translate[cfg.Selected.Translate]; !ok {
			return fmt.Errorf("selected Translate provider %q is not configured", cfg.Selected.Translate)
		}
	}
	return nil
}
