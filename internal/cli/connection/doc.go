// Package connection talks to the fitplan HTTP service.
//
//   - http.go: HTTPClient with rate limiting, request IDs and metrics
//   - auth.go: the authentication gateway (register, login, current user)
//   - plan.go, profile.go: plan and profile gateways
//
// Every gateway maps HTTP outcomes to domain errors, so callers never see
// status codes.
package connection
