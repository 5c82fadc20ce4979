package service

import (
	"context"
	"errors"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// ProfileService reads and writes the user's profile through the session.
type ProfileService struct {
	session *SessionService
	gateway ProfileGateway
}

// NewProfileService creates a ProfileService.
func NewProfileService(session *SessionService, gateway ProfileGateway) *ProfileService {
	return &ProfileService{session: session, gateway: gateway}
}

// Get returns the saved profile, or ErrProfileNotFound.
func (p *ProfileService) Get(ctx context.Context) (*domain.Profile, error) {
	var profile *domain.Profile
	err := p.session.WithToken(ctx, func(ctx context.Context, token domain.Token) error {
		var err error
		profile, err = p.gateway.GetProfile(ctx, token)
		return err
	})
	return profile, err
}

// Save replaces the saved profile with profile.
func (p *ProfileService) Save(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	var saved *domain.Profile
	err := p.session.WithToken(ctx, func(ctx context.Context, token domain.Token) error {
		var err error
		saved, err = p.gateway.SaveProfile(ctx, token, profile)
		return err
	})
	return saved, err
}

// Update applies edit to the saved profile, or to an empty one if none
// exists yet, and saves the result. The service replaces profiles as a
// whole, so unchanged fields must be sent back.
func (p *ProfileService) Update(ctx context.Context, edit func(*domain.Profile)) (*domain.Profile, error) {
	current, err := p.Get(ctx)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		current = &domain.Profile{}
	case err != nil:
		return nil, err
	}
	edit(current)
	return p.Save(ctx, current)
}
