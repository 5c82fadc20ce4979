// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (FITPLAN_SECTION_KEY)
//  3. The YAML configuration file
//  4. Defaults from the target struct
//
// Watcher reports edits to the configuration file so long-running commands
// can pick up changes.
package confloader
