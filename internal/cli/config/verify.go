package config

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Verify validates the configuration.
func Verify(cfg *CLIConfig) error {
	if cfg.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if cfg.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", cfg.Server.Timeout)
	}
	if err := verifyCredentials(&cfg.Credentials); err != nil {
		return err
	}
	if cfg.Gateway.RateLimit < 0 {
		return fmt.Errorf("gateway.rate_limit must not be negative")
	}
	if cfg.Gateway.RateLimit > 0 && cfg.Gateway.Burst < 1 {
		return fmt.Errorf("gateway.burst must be at least 1")
	}
	if !oneOf(cfg.Output, "table", "json", "yaml") {
		return fmt.Errorf("output must be table, json or yaml, got %q", cfg.Output)
	}
	if !oneOf(cfg.Log.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", cfg.Log.Level)
	}
	if !oneOf(cfg.Log.Format, "text", "json") {
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}
	return nil
}

func verifyCredentials(cfg *CredentialsConfig) error {
	if !oneOf(cfg.Backend, "file", "badger", "memory") {
		return fmt.Errorf("credentials.backend must be file, badger or memory, got %q", cfg.Backend)
	}
	if cfg.Backend != "memory" && cfg.Path == "" {
		return fmt.Errorf("credentials.path is required for the %s backend", cfg.Backend)
	}
	if cfg.EncryptionKey != "" {
		key, err := hex.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return fmt.Errorf("credentials.encryption_key must be hex: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("credentials.encryption_key must be 32 bytes, got %d", len(key))
		}
	}
	if cfg.Cipher != "" && !oneOf(cfg.Cipher, "aes-gcm", "chacha20-poly1305") {
		return fmt.Errorf("credentials.cipher must be aes-gcm or chacha20-poly1305, got %q", cfg.Cipher)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of the config with sensitive fields masked, for
// display.
func Sanitize(cfg *CLIConfig) *CLIConfig {
	sanitized := *cfg
	if sanitized.Credentials.EncryptionKey != "" {
		sanitized.Credentials.EncryptionKey = maskSecret(sanitized.Credentials.EncryptionKey)
	}
	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
