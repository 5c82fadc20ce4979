package service

import (
	"context"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// PlanService reads and generates the user's plan through the session.
type PlanService struct {
	session *SessionService
	gateway PlanGateway
}

// NewPlanService creates a PlanService.
func NewPlanService(session *SessionService, gateway PlanGateway) *PlanService {
	return &PlanService{session: session, gateway: gateway}
}

// Current returns the stored plan, or ErrPlanNotFound if none was generated.
func (p *PlanService) Current(ctx context.Context) (*domain.Plan, error) {
	var plan *domain.Plan
	err := p.session.WithToken(ctx, func(ctx context.Context, token domain.Token) error {
		var err error
		plan, err = p.gateway.GetPlan(ctx, token)
		return err
	})
	return plan, err
}

// Generate asks the service for a new plan based on the saved profile.
// It fails with ErrProfileRequired when no profile exists.
func (p *PlanService) Generate(ctx context.Context) (*domain.Plan, error) {
	var plan *domain.Plan
	err := p.session.WithToken(ctx, func(ctx context.Context, token domain.Token) error {
		var err error
		plan, err = p.gateway.GeneratePlan(ctx, token)
		return err
	})
	return plan, err
}
