package connection

import (
	"context"
	"net/http"
	"time"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// GenerateTimeout bounds plan generation, which runs a model on the
// service side and routinely takes minutes.
const GenerateTimeout = 5 * time.Minute

// PlanGateway implements service.PlanGateway over HTTP.
type PlanGateway struct {
	c *HTTPClient
}

// NewPlanGateway creates a PlanGateway.
func NewPlanGateway(c *HTTPClient) *PlanGateway {
	return &PlanGateway{c: c}
}

// GetPlan fetches the stored plan. "No plan yet" is a 404 and maps to
// ErrPlanNotFound; the body is not inspected for sentinels.
func (g *PlanGateway) GetPlan(ctx context.Context, token domain.Token) (*domain.Plan, error) {
	resp, err := g.c.Do(ctx, Request{
		Op:     "get_plan",
		Method: http.MethodGet,
		Path:   "/agent/get-plan",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return decodePlan(resp, domain.ErrPlanNotFound)
}

// GeneratePlan creates a new plan from the saved profile. A 404 means the
// profile is missing.
func (g *PlanGateway) GeneratePlan(ctx context.Context, token domain.Token) (*domain.Plan, error) {
	resp, err := g.c.Do(ctx, Request{
		Op:      "generate_plan",
		Method:  http.MethodGet,
		Path:    "/agent/generate-plan",
		Token:   token,
		Timeout: GenerateTimeout,
	})
	if err != nil {
		return nil, err
	}
	return decodePlan(resp, domain.ErrProfileRequired)
}

func decodePlan(resp *Response, notFound *domain.DomainError) (*domain.Plan, error) {
	if err := statusError(resp, notFound); err != nil {
		return nil, err
	}
	var plan domain.Plan
	if err := resp.Decode(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// statusError maps a non-2xx response of an authenticated call.
func statusError(resp *Response, notFound *domain.DomainError) error {
	switch {
	case resp.OK():
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.ErrTokenInvalid
	case resp.StatusCode == http.StatusNotFound && notFound != nil:
		return notFound
	}
	err := domain.ErrServiceFailure
	if detail := resp.Detail(); detail != "" {
		return err.WithDetails(detail)
	}
	return err.WithDetails(http.StatusText(resp.StatusCode))
}
