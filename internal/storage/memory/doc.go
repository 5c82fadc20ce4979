// Package memory provides an in-memory credential slot.
//
// Nothing survives the process. It backs `--credentials-backend memory`
// and is handy in tests.
package memory
