package domain

import (
	"time"
)

// Token is an opaque bearer credential issued by the gateway.
//
// The client never inspects it. Whether it is still valid is decided by the
// gateway alone. The empty Token means "no token".
type Token string

// IsZero reports whether the token is absent.
func (t Token) IsZero() bool {
	return t == ""
}

// String masks the token so it can be printed or logged safely.
func (t Token) String() string {
	switch {
	case t == "":
		return ""
	case len(t) <= 12:
		return "***"
	default:
		return string(t[:6]) + "..." + string(t[len(t)-3:])
	}
}

// Reveal returns the raw credential for use on the wire or in storage.
func (t Token) Reveal() string {
	return string(t)
}

// TokenGrant is the gateway response to a successful login or registration.
type TokenGrant struct {
	AccessToken Token  `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// UserIdentity identifies the logged-in user.
//
// After login or registration only Username is known. ID and Created are
// filled in when the identity is rehydrated from the gateway.
type UserIdentity struct {
	ID       string    `json:"id,omitempty"`
	Username string    `json:"username"`
	Created  time.Time `json:"created,omitempty"`
}

// State is the lifecycle state of a session.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateAuthenticated
	StateAnonymous
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is an immutable view of the session at one point in time.
type Snapshot struct {
	State     State         `json:"state"`
	User      *UserIdentity `json:"user,omitempty"`
	Token     Token         `json:"-"`
	IsLoading bool          `json:"is_loading"`
	ChangedAt time.Time     `json:"changed_at"`
}

// IsAuthenticated reports whether a user is present.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil
}

// Consistent reports whether the snapshot satisfies the settled-state
// invariant: once nothing is loading, a token is held if and only if a user is.
func (s Snapshot) Consistent() bool {
	if s.IsLoading {
		return true
	}
	return s.Token.IsZero() == (s.User == nil)
}
