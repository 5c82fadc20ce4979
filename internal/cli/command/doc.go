// Package command provides the fitplan-cli commands.
//
// It uses urfave/cli/v2 for parsing. Every invocation builds one Runtime
// (configuration, logger, metrics, credential store, gateways and the
// session) that commands share; the interactive shell keeps the same
// Runtime across lines.
//
// Commands that read or change account data sit behind the authorization
// gate: the session is restored from the credential store, and when nobody
// is logged in the command fails with a hint to run "fitplan-cli login".
package command
