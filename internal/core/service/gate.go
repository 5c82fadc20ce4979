package service

import (
	"context"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// LoginPath is where unauthenticated users are sent.
const LoginPath = "/login"

// Decision is the outcome kind of an authorization check.
type Decision int

const (
	// DecisionLoading means the session is not settled yet. Neither protected
	// content nor a redirect may be shown.
	DecisionLoading Decision = iota
	// DecisionRedirectToLogin sends the user to the login entry point.
	DecisionRedirectToLogin
	// DecisionRenderProtected allows the protected content.
	DecisionRenderProtected
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirectToLogin:
		return "redirect-to-login"
	case DecisionRenderProtected:
		return "render-protected"
	default:
		return "unknown"
	}
}

// Outcome is the result of an authorization check.
type Outcome struct {
	Decision Decision
	// RedirectTo and Replace are set for DecisionRedirectToLogin. Replace
	// means the protected location must not stay in navigation history.
	RedirectTo string
	Replace    bool
}

// Decide maps a snapshot to an outcome. It has no side effects.
func Decide(snap domain.Snapshot) Outcome {
	switch {
	case snap.IsLoading:
		return Outcome{Decision: DecisionLoading}
	case !snap.IsAuthenticated():
		return Outcome{Decision: DecisionRedirectToLogin, RedirectTo: LoginPath, Replace: true}
	default:
		return Outcome{Decision: DecisionRenderProtected}
	}
}

// SnapshotSource is the read side of a session.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
	WaitIdle(ctx context.Context) error
}

// Gate guards protected operations.
type Gate struct {
	src SnapshotSource
}

// NewGate creates a gate over src.
func NewGate(src SnapshotSource) *Gate {
	return &Gate{src: src}
}

// Decide evaluates the current snapshot.
func (g *Gate) Decide() Outcome {
	return Decide(g.src.Snapshot())
}

// Await waits for the session to settle and returns the final outcome. It
// never returns DecisionLoading unless ctx ends first.
func (g *Gate) Await(ctx context.Context) (Outcome, error) {
	for {
		out := g.Decide()
		if out.Decision != DecisionLoading {
			return out, nil
		}
		if err := g.src.WaitIdle(ctx); err != nil {
			return out, err
		}
	}
}

// Require returns nil when protected content may be shown and
// ErrNotAuthenticated otherwise.
func (g *Gate) Require(ctx context.Context) error {
	out, err := g.Await(ctx)
	if err != nil {
		return err
	}
	if out.Decision != DecisionRenderProtected {
		return domain.ErrNotAuthenticated
	}
	return nil
}
