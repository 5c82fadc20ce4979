// Package storage persists the session token between CLI invocations.
//
// Every backend holds a single slot:
//
//   - FileStore: one 0600 file, replaced atomically (default)
//   - BadgerStore: one key in an embedded Badger database
//   - memory.Store: process memory only
//
// SealedStore wraps any backend and encrypts the token at rest with
// AES-GCM or ChaCha20-Poly1305.
package storage
