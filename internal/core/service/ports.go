package service

import (
	"context"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// AuthGateway is the remote authentication service.
//
// Implementations map every failure to a domain error: transport problems to
// ErrTransportFailure, rejected logins to ErrCredentialsRejected, rejected
// tokens to ErrTokenInvalid.
type AuthGateway interface {
	// Register creates an account and returns a token for it.
	Register(ctx context.Context, username, password string) (domain.TokenGrant, error)

	// Login exchanges credentials for a token.
	Login(ctx context.Context, username, password string) (domain.TokenGrant, error)

	// CurrentUser returns the identity the token belongs to.
	CurrentUser(ctx context.Context, token domain.Token) (*domain.UserIdentity, error)
}

// PlanGateway fetches and generates fitness plans.
type PlanGateway interface {
	GetPlan(ctx context.Context, token domain.Token) (*domain.Plan, error)
	GeneratePlan(ctx context.Context, token domain.Token) (*domain.Plan, error)
}

// ProfileGateway reads and writes the user's fitness profile.
type ProfileGateway interface {
	GetProfile(ctx context.Context, token domain.Token) (*domain.Profile, error)
	SaveProfile(ctx context.Context, token domain.Token, profile *domain.Profile) (*domain.Profile, error)
}

// CredentialStore persists the session token between process runs.
//
// It holds a single slot. An empty slot reads as ("", false, nil) and
// clearing an empty slot is not an error. Implementations must be safe for
// concurrent use.
type CredentialStore interface {
	Read(ctx context.Context) (domain.Token, bool, error)
	Write(ctx context.Context, token domain.Token) error
	Clear(ctx context.Context) error
}
