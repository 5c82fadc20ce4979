package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/fitplan-go/internal/infra/confloader"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), defaultConfigName)
}

// Load resolves the configuration from defaults, the file at path, FITPLAN_*
// environment variables and flags, in increasing priority. A missing file
// is not an error. Flag keys are dotted config keys such as "server.url".
func Load(path string, flags map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	filePath := path
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		filePath = ""
	}

	cfg := Default()
	loader := confloader.NewLoader(confloader.WithConfigFile(filePath))
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := Merge(cfg, flags); err != nil {
		return nil, err
	}

	cfg.Server.CAFile = ExpandHome(cfg.Server.CAFile)
	cfg.Credentials.Path = ExpandHome(cfg.Credentials.Path)
	cfg.Shell.HistoryFile = ExpandHome(cfg.Shell.HistoryFile)

	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overrides cfg with flag values. Empty strings are treated as unset.
func Merge(cfg *CLIConfig, flags map[string]any) error {
	set := make(map[string]any, len(flags))
	for k, v := range flags {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return nil
	}

	loader := confloader.NewLoader()
	if err := loader.LoadMap(set); err != nil {
		return err
	}
	if err := loader.Unmarshal(cfg); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}
	return nil
}

// Save writes cfg as YAML with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
