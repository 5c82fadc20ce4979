package service

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yndnr/fitplan-go/internal/core/domain"
	"github.com/yndnr/fitplan-go/internal/telemetry/logger"
	"github.com/yndnr/fitplan-go/internal/telemetry/metric"
)

// SessionService owns the authentication state of the process.
//
// Initialize, Login and Register are serialized: a call made while another
// one is in flight waits for it. Logout never waits. It invalidates whatever
// is in flight, and a late result is discarded instead of resurrecting the
// session.
type SessionService struct {
	store   CredentialStore
	gateway AuthGateway
	clock   clockwork.Clock
	log     logger.Logger
	metrics *metric.Registry

	// opMu serializes the operations that talk to the gateway.
	opMu sync.Mutex

	mu        sync.RWMutex
	state     domain.State
	user      *domain.UserIdentity
	token     domain.Token
	changedAt time.Time
	pending   int
	idle      chan struct{} // closed when pending drops to zero
	epoch     uint64        // bumped by Logout

	subs    map[uint64]chan domain.Snapshot
	nextSub uint64
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithClock sets the clock used for snapshot timestamps.
func WithClock(c clockwork.Clock) SessionOption {
	return func(s *SessionService) { s.clock = c }
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) SessionOption {
	return func(s *SessionService) { s.log = l }
}

// WithMetrics records state transitions in reg.
func WithMetrics(reg *metric.Registry) SessionOption {
	return func(s *SessionService) { s.metrics = reg }
}

// NewSessionService creates an uninitialized session.
func NewSessionService(store CredentialStore, gateway AuthGateway, opts ...SessionOption) *SessionService {
	s := &SessionService{
		store:   store,
		gateway: gateway,
		clock:   clockwork.NewRealClock(),
		log:     logger.Nop(),
		state:   domain.StateUninitialized,
		subs:    make(map[uint64]chan domain.Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "session")
	s.changedAt = s.clock.Now()
	return s
}

// Initialize restores the session from the credential store.
//
// Only the first call does anything. A persisted token is validated against
// the gateway; if that fails for any reason the token is discarded and the
// session continues anonymously. Failures are logged, never returned.
func (s *SessionService) Initialize(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.state != domain.StateUninitialized {
		s.mu.Unlock()
		return
	}
	epoch := s.epoch
	s.beginLocked()
	s.commitLocked(domain.StateInitializing)
	s.mu.Unlock()
	defer s.end()

	token, ok, err := s.store.Read(ctx)
	if err != nil {
		s.log.Warn("reading persisted credentials failed, continuing anonymously", "error", err)
		s.settleAnonymous(ctx, epoch, true)
		return
	}
	if !ok || token.IsZero() {
		s.log.Debug("no persisted credentials")
		s.settleAnonymous(ctx, epoch, false)
		return
	}

	s.mu.Lock()
	if s.epoch == epoch {
		s.token = token
	}
	s.mu.Unlock()

	user, err := s.gateway.CurrentUser(ctx, token)
	if err != nil {
		s.log.Info("persisted token not accepted, continuing anonymously",
			"kind", domain.KindOf(err).String(), "code", domain.GetErrorCode(err), "error", err)
		s.settleAnonymous(ctx, epoch, true)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.log.Debug("discarding rehydrated identity after logout")
		return
	}
	u := *user
	s.user = &u
	s.commitLocked(domain.StateAuthenticated)
	s.log.Info("session restored", "username", u.Username)
}

// settleAnonymous ends initialization without a user. The persisted slot is
// cleared when clearStore is set.
func (s *SessionService) settleAnonymous(ctx context.Context, epoch uint64, clearStore bool) {
	s.mu.Lock()
	if s.epoch != epoch {
		// Logout already settled the session and cleared the store.
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil
	s.commitLocked(domain.StateAnonymous)
	s.mu.Unlock()

	if clearStore {
		if err := s.store.Clear(ctx); err != nil {
			s.log.Warn("clearing persisted credentials failed", "error", err)
		}
	}
}

// Login authenticates with username and password.
//
// On failure the session is left as it was and the classified gateway
// error is returned. Nothing is persisted unless the whole login succeeds.
func (s *SessionService) Login(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, "login", username, password, s.gateway.Login)
}

// Register creates an account and logs into it.
func (s *SessionService) Register(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, "register", username, password, s.gateway.Register)
}

type credentialExchange func(ctx context.Context, username, password string) (domain.TokenGrant, error)

func (s *SessionService) authenticate(ctx context.Context, op, username, password string, exchange credentialExchange) error {
	if username == "" || password == "" {
		return domain.ErrMissingCredentials
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	epoch := s.epoch
	s.beginLocked()
	s.mu.Unlock()
	defer s.end()

	log := s.log.With("op", op, "username", username)

	grant, err := exchange(ctx, username, password)
	if err != nil {
		log.Warn("authentication failed",
			"kind", domain.KindOf(err).String(), "code", domain.GetErrorCode(err), "error", err)
		return err
	}
	if grant.AccessToken.IsZero() {
		return domain.ErrMalformedResponse.WithDetails("missing access_token")
	}

	if s.superseded(epoch) {
		log.Info("discarding token, session was logged out")
		return domain.ErrSessionSuperseded
	}

	if err := s.store.Write(ctx, grant.AccessToken); err != nil {
		log.Error("persisting credentials failed", "error", err)
		return domain.ErrCredentialPersist.Wrap(err)
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		// Logout ran between the write and now; its clear may have come
		// before our write.
		if err := s.store.Clear(ctx); err != nil {
			log.Warn("clearing persisted credentials failed", "error", err)
		}
		log.Info("discarding token, session was logged out")
		return domain.ErrSessionSuperseded
	}
	s.token = grant.AccessToken
	s.user = &domain.UserIdentity{Username: username}
	s.commitLocked(domain.StateAuthenticated)
	s.mu.Unlock()

	log.Info("authenticated")
	return nil
}

// Logout ends the session.
//
// It is valid in every state and idempotent. Memory is cleared first, so the
// session is anonymous even if clearing the persisted slot fails; that
// failure is returned so the caller can report it.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	err := s.logoutLocked(ctx)
	s.mu.Unlock()
	return s.logoutResult(err)
}

// Invalidate logs out if token is the one currently held. It reports whether
// the session was ended. A stale token from an earlier session is ignored.
// The comparison and the logout happen under one lock, so a login that
// lands in between is never ended by the old token.
func (s *SessionService) Invalidate(ctx context.Context, token domain.Token) bool {
	if token.IsZero() {
		return false
	}
	s.mu.Lock()
	if token != s.token {
		s.mu.Unlock()
		return false
	}
	err := s.logoutLocked(ctx)
	s.mu.Unlock()

	s.log.Info("token rejected by gateway, session ended")
	_ = s.logoutResult(err)
	return true
}

func (s *SessionService) logoutLocked(ctx context.Context) error {
	s.epoch++
	if s.state != domain.StateAnonymous || s.user != nil || !s.token.IsZero() {
		s.token = ""
		s.user = nil
		s.commitLocked(domain.StateAnonymous)
	}
	// The slot is cleared under the lock so that no operation started after
	// this logout can persist a token that the clear then wipes.
	return s.store.Clear(ctx)
}

func (s *SessionService) logoutResult(err error) error {
	if err != nil {
		s.log.Error("clearing persisted credentials failed", "error", err)
		return domain.ErrCredentialPersist.Wrap(err)
	}
	s.log.Info("logged out")
	return nil
}

// WithToken runs fn with the current token. It fails with
// ErrNotAuthenticated when there is none, and ends the session when fn
// reports that the gateway rejected the token.
func (s *SessionService) WithToken(ctx context.Context, fn func(ctx context.Context, token domain.Token) error) error {
	token := s.Token()
	if token.IsZero() {
		return domain.ErrNotAuthenticated
	}
	err := fn(ctx, token)
	if domain.KindOf(err) == domain.KindTokenInvalid {
		s.Invalidate(ctx, token)
	}
	return err
}

// Snapshot returns the current session state.
func (s *SessionService) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// IsAuthenticated reports whether a user is logged in.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsLoading reports whether an operation is in flight.
func (s *SessionService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// User returns a copy of the logged-in identity, or nil.
func (s *SessionService) User() *domain.UserIdentity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the held token, or the zero Token.
func (s *SessionService) Token() domain.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe returns a channel that receives a snapshot after every change,
// starting with the current one. A slow reader only sees the latest
// snapshot. cancel closes the channel.
func (s *SessionService) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// WaitIdle blocks until no operation is in flight or ctx is done.
func (s *SessionService) WaitIdle(ctx context.Context) error {
	s.mu.RLock()
	if s.pending == 0 {
		s.mu.RUnlock()
		return nil
	}
	idle := s.idle
	s.mu.RUnlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SessionService) superseded(epoch uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch != epoch
}

func (s *SessionService) beginLocked() {
	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.pending++
	s.publishLocked()
}

func (s *SessionService) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if s.pending == 0 {
		close(s.idle)
	}
	s.publishLocked()
}

// commitLocked records a transition to state and notifies subscribers.
func (s *SessionService) commitLocked(state domain.State) {
	from := s.state
	s.state = state
	s.changedAt = s.clock.Now()
	s.metrics.ObserveTransition(from.String(), state.String(), s.user != nil)
	if from != state {
		s.log.Debug("session state changed", "from", from.String(), "to", state.String())
	}
	s.publishLocked()
}

func (s *SessionService) publishLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *SessionService) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		State:     s.state,
		Token:     s.token,
		IsLoading: s.pending > 0,
		ChangedAt: s.changedAt,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}
