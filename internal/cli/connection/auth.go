package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// AuthGateway implements service.AuthGateway over HTTP.
type AuthGateway struct {
	c *HTTPClient
}

// NewAuthGateway creates an AuthGateway.
func NewAuthGateway(c *HTTPClient) *AuthGateway {
	return &AuthGateway{c: c}
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account.
//
//	409 -> ErrUsernameTaken
//	400 -> ErrInvalidRegistration
//	other non-2xx -> ErrRegistrationFailed
//
// The service's detail message, if any, is attached to the error.
func (g *AuthGateway) Register(ctx context.Context, username, password string) (domain.TokenGrant, error) {
	resp, err := g.c.Do(ctx, Request{
		Op:     "register",
		Method: http.MethodPost,
		Path:   "/auth/register",
		JSON:   credentialsBody{Username: username, Password: password},
	})
	if err != nil {
		return domain.TokenGrant{}, err
	}

	if !resp.OK() {
		var base *domain.DomainError
		switch resp.StatusCode {
		case http.StatusConflict:
			base = domain.ErrUsernameTaken
		case http.StatusBadRequest:
			base = domain.ErrInvalidRegistration
		default:
			base = domain.ErrRegistrationFailed
		}
		if detail := resp.Detail(); detail != "" {
			return domain.TokenGrant{}, base.WithDetails(detail)
		}
		return domain.TokenGrant{}, base
	}
	return decodeGrant(resp)
}

// Login exchanges credentials for a token. Any non-2xx answer is a
// rejection; the service does not say which credential was wrong.
func (g *AuthGateway) Login(ctx context.Context, username, password string) (domain.TokenGrant, error) {
	resp, err := g.c.Do(ctx, Request{
		Op:     "login",
		Method: http.MethodPost,
		Path:   "/auth/token",
		Form: url.Values{
			"username": {username},
			"password": {password},
		},
	})
	if err != nil {
		return domain.TokenGrant{}, err
	}
	if !resp.OK() {
		return domain.TokenGrant{}, domain.ErrCredentialsRejected
	}
	return decodeGrant(resp)
}

// CurrentUser resolves the identity behind token. Any non-2xx answer means
// the token is no longer accepted.
func (g *AuthGateway) CurrentUser(ctx context.Context, token domain.Token) (*domain.UserIdentity, error) {
	resp, err := g.c.Do(ctx, Request{
		Op:     "me",
		Method: http.MethodGet,
		Path:   "/auth/me",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, domain.ErrTokenInvalid.WithDetails(fmt.Sprintf("status %d", resp.StatusCode))
	}

	var body struct {
		ID       json.RawMessage `json:"id"`
		Username string          `json:"username"`
		Created  string          `json:"created"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	if body.Username == "" {
		return nil, domain.ErrMalformedResponse.WithDetails("missing username")
	}

	return &domain.UserIdentity{
		ID:       rawID(body.ID),
		Username: body.Username,
		Created:  parseTimestamp(body.Created),
	}, nil
}

func decodeGrant(resp *Response) (domain.TokenGrant, error) {
	var grant domain.TokenGrant
	if err := resp.Decode(&grant); err != nil {
		return domain.TokenGrant{}, err
	}
	if grant.AccessToken.IsZero() {
		return domain.TokenGrant{}, domain.ErrMalformedResponse.WithDetails("missing access_token")
	}
	return grant, nil
}

// rawID accepts both string and numeric identifiers.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Timestamps come without a zone; they are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
