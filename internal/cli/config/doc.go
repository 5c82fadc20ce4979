// Package config provides the fitplan-cli configuration.
//
//   - spec.go: CLIConfig and its defaults (~/.fitplan/cli.yaml)
//   - loader.go: loading, layering of env and flags, saving
//   - verify.go: validation and masking for display
//
// Values are resolved flag > env (FITPLAN_*) > file > default.
package config
