// Package service provides the client-side domain services for fitplan.
//
// Services orchestrate domain models and define interfaces for their IO
// dependencies, so the gateway and the credential store can be swapped or
// faked in tests.
//
// This package contains:
//
//   - SessionService: session lifecycle, rehydration and observation
//   - Gate: the authorization decision for protected commands
//   - PlanService, ProfileService: authenticated data access
//
// There is exactly one SessionService per process. It is built by the entry
// point and passed to everything that needs it.
package service
