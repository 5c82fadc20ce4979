package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultServerURL = "http://localhost:8000"
	DefaultTimeout   = 30 * time.Second
	DefaultBackend   = "file"
	DefaultRateLimit = 5.0
	DefaultBurst     = 5
	DefaultOutput    = "table"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

const (
	defaultDirName     = ".fitplan"
	defaultConfigName  = "cli.yaml"
	defaultCredentials = "credentials"
	defaultHistoryName = "history"
)

// CLIConfig is the configuration for fitplan-cli.
type CLIConfig struct {
	Server      ServerConfig      `koanf:"server" yaml:"server"`
	Credentials CredentialsConfig `koanf:"credentials" yaml:"credentials"`
	Gateway     GatewayConfig     `koanf:"gateway" yaml:"gateway"`
	Output      string            `koanf:"output" yaml:"output"` // table, json, yaml
	Log         LogConfig         `koanf:"log" yaml:"log"`
	Shell       ShellConfig       `koanf:"shell" yaml:"shell"`
}

// ServerConfig locates the fitness-plan service.
type ServerConfig struct {
	URL     string        `koanf:"url" yaml:"url"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty"`
}

// CredentialsConfig selects where the access token is persisted.
type CredentialsConfig struct {
	Backend string `koanf:"backend" yaml:"backend"` // file, badger, memory
	Path    string `koanf:"path" yaml:"path"`
	// EncryptionKey is hex encoded; when set the token is sealed at rest.
	EncryptionKey string `koanf:"encryption_key" yaml:"encryption_key,omitempty"`
	Cipher        string `koanf:"cipher" yaml:"cipher,omitempty"`
}

// GatewayConfig throttles outgoing calls. A zero RateLimit disables it.
type GatewayConfig struct {
	RateLimit float64 `koanf:"rate_limit" yaml:"rate_limit"`
	Burst     int     `koanf:"burst" yaml:"burst"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// ShellConfig configures the interactive shell.
type ShellConfig struct {
	HistoryFile string `koanf:"history_file" yaml:"history_file"`
	MetricsAddr string `koanf:"metrics_addr" yaml:"metrics_addr,omitempty"`
}

// DefaultDir returns ~/.fitplan.
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, defaultDirName)
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	dir := DefaultDir()
	return &CLIConfig{
		Server: ServerConfig{
			URL:     DefaultServerURL,
			Timeout: DefaultTimeout,
		},
		Credentials: CredentialsConfig{
			Backend: DefaultBackend,
			Path:    filepath.Join(dir, defaultCredentials),
		},
		Gateway: GatewayConfig{
			RateLimit: DefaultRateLimit,
			Burst:     DefaultBurst,
		},
		Output: DefaultOutput,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Shell: ShellConfig{
			HistoryFile: filepath.Join(dir, defaultHistoryName),
		},
	}
}
