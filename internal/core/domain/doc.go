// Package domain defines the core domain models for fitplan.
//
// Domain models are plain values without IO dependencies:
//
//   - Token, UserIdentity, State, Snapshot: the client session
//   - Plan, Profile: data fetched from the fitplan service
//   - DomainError: classified errors with stable codes
package domain
