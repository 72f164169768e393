package config

// DefaultConfig returns the configuration used when no config file is found.
// The two listener ports mirror the defaults the desktop clients expect.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 9000,
			TLS: TLSConfig{
				Port:     9443,
				CertFile: "server.crt",
				KeyFile:  "server.key",
			},
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			StaticDir: "./web",
		},
		Upload: UploadConfig{
			MaxFileSize:    50 * 1024 * 1024,
			AllowedFormats: []string{"mp3", "wav", "ogg", "flac", "m4a", "webm"},
		},
		Selected: SelectedConfig{
			ASR:       "FasterWhisper",
			Translate: "GoogleTranslate",
		},
		ASR: map[string]ASRConfig{
			"FasterWhisper": {
				Type:        "openai",
				BaseURL:     "http://127.0.0.1:8000/v1",
				APIKey:      "not-needed",
				Model:       "large-v3-turbo",
				Device:      "cuda",
				Temperature: 0,
			},
			"OpenAIWhisper": {
				Type:    "openai",
				BaseURL: "https://api.openai.com/v1",
				APIKey:  "your_api_key",
				Model:   "whisper-1",
			},
		},
		Translate: map[string]TranslateConfig{
			"GoogleTranslate": {
				Type:    "google",
				BaseURL: "https://translate.googleapis.com",
			},
			"OpenAITranslate": {
				Type:    "openai",
				BaseURL: "https://api.openai.com/v1",
				APIKey:  "your_api_key",
				Model:   "gpt-4o-mini",
			},
		},
	}
}
