package connection

import (
	"context"
	"net/http"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// ProfileGateway implements service.ProfileGateway over HTTP.
type ProfileGateway struct {
	c *HTTPClient
}

// NewProfileGateway creates a ProfileGateway.
func NewProfileGateway(c *HTTPClient) *ProfileGateway {
	return &ProfileGateway{c: c}
}

// GetProfile fetches the saved profile, or ErrProfileNotFound.
func (g *ProfileGateway) GetProfile(ctx context.Context, token domain.Token) (*domain.Profile, error) {
	resp, err := g.c.Do(ctx, Request{
		Op:     "get_profile",
		Method: http.MethodGet,
		Path:   "/profile/",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return decodeProfile(resp, domain.ErrProfileNotFound)
}

// SaveProfile creates or replaces the profile.
func (g *ProfileGateway) SaveProfile(ctx context.Context, token domain.Token, profile *domain.Profile) (*domain.Profile, error) {
	body := *profile
	// Identity fields are assigned by the service.
	body.ID, body.UserID = "", ""

	resp, err := g.c.Do(ctx, Request{
		Op:     "save_profile",
		Method: http.MethodPost,
		Path:   "/profile/",
		Token:  token,
		JSON:   body,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, domain.ErrInvalidProfile.WithDetails(resp.Detail())
	}
	return decodeProfile(resp, nil)
}

func decodeProfile(resp *Response, notFound *domain.DomainError) (*domain.Profile, error) {
	if err := statusError(resp, notFound); err != nil {
		return nil, err
	}
	var p domain.Profile
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
