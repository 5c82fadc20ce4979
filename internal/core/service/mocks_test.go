package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yndnr/fitplan-go/internal/core/domain"
	"github.com/yndnr/fitplan-go/internal/telemetry/logger"
)

// --- Mock implementations ---

type mockAuthGateway struct {
	registerFn    func(ctx context.Context, username, password string) (domain.TokenGrant, error)
	loginFn       func(ctx context.Context, username, password string) (domain.TokenGrant, error)
	currentUserFn func(ctx context.Context, token domain.Token) (*domain.UserIdentity, error)

	registerCalls    atomic.Int32
	loginCalls       atomic.Int32
	currentUserCalls atomic.Int32
}

func (m *mockAuthGateway) Register(ctx context.Context, username, password string) (domain.TokenGrant, error) {
	m.registerCalls.Add(1)
	if m.registerFn != nil {
		return m.registerFn(ctx, username, password)
	}
	return domain.TokenGrant{}, fmt.Errorf("not implemented")
}

func (m *mockAuthGateway) Login(ctx context.Context, username, password string) (domain.TokenGrant, error) {
	m.loginCalls.Add(1)
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return domain.TokenGrant{}, fmt.Errorf("not implemented")
}

func (m *mockAuthGateway) CurrentUser(ctx context.Context, token domain.Token) (*domain.UserIdentity, error) {
	m.currentUserCalls.Add(1)
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, token)
	}
	return nil, domain.ErrTokenInvalid
}

type mockPlanGateway struct {
	getPlanFn      func(ctx context.Context, token domain.Token) (*domain.Plan, error)
	generatePlanFn func(ctx context.Context, token domain.Token) (*domain.Plan, error)
}

func (m *mockPlanGateway) GetPlan(ctx context.Context, token domain.Token) (*domain.Plan, error) {
	if m.getPlanFn != nil {
		return m.getPlanFn(ctx, token)
	}
	return nil, domain.ErrPlanNotFound
}

func (m *mockPlanGateway) GeneratePlan(ctx context.Context, token domain.Token) (*domain.Plan, error) {
	if m.generatePlanFn != nil {
		return m.generatePlanFn(ctx, token)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockProfileGateway struct {
	getProfileFn  func(ctx context.Context, token domain.Token) (*domain.Profile, error)
	saveProfileFn func(ctx context.Context, token domain.Token, profile *domain.Profile) (*domain.Profile, error)

	saveCalls atomic.Int32
}

func (m *mockProfileGateway) GetProfile(ctx context.Context, token domain.Token) (*domain.Profile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, token)
	}
	return nil, domain.ErrProfileNotFound
}

func (m *mockProfileGateway) SaveProfile(ctx context.Context, token domain.Token, profile *domain.Profile) (*domain.Profile, error) {
	m.saveCalls.Add(1)
	if m.saveProfileFn != nil {
		return m.saveProfileFn(ctx, token, profile)
	}
	return profile, nil
}

// fakeStore is an in-memory credential slot that records how it was used.
type fakeStore struct {
	mu       sync.Mutex
	token    domain.Token
	readErr  error
	writeErr error
	clearErr error
	writes   int
	clears   int
}

func (f *fakeStore) Read(_ context.Context) (domain.Token, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", false, f.readErr
	}
	return f.token, !f.token.IsZero(), nil
}

func (f *fakeStore) Write(_ context.Context, token domain.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	f.token = token
	return nil
}

func (f *fakeStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.clears++
	f.token = ""
	return nil
}

func (f *fakeStore) stored() domain.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// --- Helpers ---

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, store CredentialStore, gw AuthGateway, opts ...SessionOption) *SessionService {
	t.Helper()
	base := []SessionOption{
		WithClock(clockwork.NewFakeClockAt(testEpoch)),
		WithLogger(logger.Nop()),
	}
	return NewSessionService(store, gw, append(base, opts...)...)
}

// passwordGateway accepts any username with password "pw" and hands out a
// token derived from the username.
func passwordGateway() *mockAuthGateway {
	grant := func(_ context.Context, username, password string) (domain.TokenGrant, error) {
		if password != "pw" {
			return domain.TokenGrant{}, domain.ErrCredentialsRejected
		}
		return domain.TokenGrant{AccessToken: domain.Token("tok-" + username), TokenType: "bearer"}, nil
	}
	return &mockAuthGateway{
		loginFn:    grant,
		registerFn: grant,
		currentUserFn: func(_ context.Context, token domain.Token) (*domain.UserIdentity, error) {
			if len(token) < 5 || token[:4] != "tok-" {
				return nil, domain.ErrTokenInvalid
			}
			return &domain.UserIdentity{ID: "id-" + string(token[4:]), Username: string(token[4:])}, nil
		},
	}
}

// blockingCall returns a hook that signals entered and then waits for release.
func blockingCall() (entered chan struct{}, release chan struct{}) {
	return make(chan struct{}), make(chan struct{})
}
