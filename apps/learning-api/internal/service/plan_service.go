package service

import (
	"context"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/repository"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/logger"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PlanService switches users between plans
type PlanService interface {
	// ChangePlan moves userID to plan. The new ceiling applies at once,
	// tokens left are set to it and the refill window is not restarted.
	ChangePlan(ctx context.Context, userID, plan string, source domain.PlanChangeSource) (*domain.QuotaState, error)
}

type planService struct {
	store     repository.QuotaStore
	publisher EventPublisher
}

// NewPlanService creates a new PlanService
func NewPlanService(store repository.QuotaStore, publisher EventPublisher) PlanService {
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &planService{store: store, publisher: publisher}
}

// ChangePlan validates the plan name and applies it
func (s *planService) ChangePlan(ctx context.Context, userID, plan string, source domain.PlanChangeSource) (*domain.QuotaState, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.plan.change_plan")
	defer span.End()

	p, err := domain.ParsePlan(plan)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("plan", string(p)),
		attribute.String("source", string(source)),
	)

	state, err := s.store.SetPlan(ctx, userID, p)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	// The plan is already stored; a lost event must not fail the request
	if err := s.publisher.PublishPlanChanged(ctx, userID, state, source); err != nil {
		logger.Get().WarnContext(ctx, "failed to publish plan change",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	return state, nil
}
