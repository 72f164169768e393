package config

type Config struct {
	Server    ServerConfig               `yaml:"server" mapstructure:"server"`
	Log       LogConfig                  `yaml:"log" mapstructure:"log"`
	Web       WebConfig                  `yaml:"web" mapstructure:"web"`
	Upload    UploadConfig               `yaml:"upload" mapstructure:"upload"`
	Selected  SelectedConfig             `yaml:"selected_module" mapstructure:"selected_module"`
	ASR       map[string]ASRConfig       `yaml:"ASR" mapstructure:"ASR"`
	Translate map[string]TranslateConfig `yaml:"Translate" mapstructure:"Translate"`
}

type ServerConfig struct {
	IP   string    `yaml:"ip" mapstructure:"ip"`
	Port int       `yaml:"port" mapstructure:"port"`
	TLS  TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// TLSConfig describes the optional second listener. The listener is only
// started when both files exist on disk.
type TLSConfig struct {
	Port     int    `yaml:"port" mapstructure:"port"`
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`
}

type LogConfig struct {
	Level string `yaml:"log_level" mapstructure:"log_level"`
	Dir   string `yaml:"log_dir" mapstructure:"log_dir"`
	File  string `yaml:"log_file" mapstructure:"log_file"`
}

type WebConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	StaticDir string `yaml:"static_dir" mapstructure:"static_dir"`
}

// UploadConfig bounds the multipart uploads accepted by the transcribe
// endpoint before anything is forwarded to a backend.
type UploadConfig struct {
	MaxFileSize    int64    `yaml:"max_file_size" mapstructure:"max_file_size"`
	AllowedFormats []string `yaml:"allowed_formats" mapstructure:"allowed_formats"`
}

type ASRConfig struct {
	Type        string  `yaml:"type" mapstructure:"type"`
	BaseURL     string  `yaml:"url" mapstructure:"url"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	Device      string  `yaml:"device" mapstructure:"device"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

type TranslateConfig struct {
	Type    string `yaml:"type" mapstructure:"type"`
	BaseURL string `yaml:"url" mapstructure:"url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	Model   string `yaml:"model" mapstructure:"model"`
}

type SelectedConfig struct {
	ASR       string `yaml:"ASR" mapstructure:"ASR"`
	Translate string `yaml:"Translate" mapstructure:"Translate"`
}
