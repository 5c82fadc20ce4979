// Package main provides the entry point for fitplan-cli.
//
// fitplan-cli is a terminal client for the fitness plan service. It keeps
// the login session between runs and offers:
//
//   - Account commands (register, login, logout, whoami, status)
//   - Plan commands (plan get, plan generate)
//   - Profile commands (profile get, profile set)
//   - Local configuration management
//
// Usage:
//
//	fitplan-cli [global flags] command [flags]
//	fitplan-cli login alice
//	fitplan-cli plan get --section workout -o json
//	fitplan-cli shell
//
// Commands work one at a time or inside the interactive shell.
package main
