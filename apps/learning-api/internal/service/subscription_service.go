package service

import (
	"context"
	"errors"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/gateway"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/logger"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var (
	ErrPlanNotPurchasable = domain.NewError(domain.KindInvalidInput, "Plan cannot be purchased")
	ErrInvalidWebhook     = domain.NewError(domain.KindInvalidInput, "Invalid webhook payload")
)

const paymentProviderFailed = "Payment provider request failed"

// SubscriptionServiceConfig holds configuration for SubscriptionService
type SubscriptionServiceConfig struct {
	// PriceIDs maps each paid plan to its provider price
	PriceIDs map[domain.Plan]string
}

// SubscriptionService sells paid plans through the payment gateway
type SubscriptionService interface {
	// Subscribe creates a provider subscription for a paid plan and, on
	// success, switches the user to it
	Subscribe(ctx context.Context, user *domain.User, plan, idempotencyKey string) (*dto.SubscribeResponse, error)
	// HandleWebhook applies a verified provider notification
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type subscriptionService struct {
	gateway gateway.PaymentGateway
	plans   PlanService
	config  *SubscriptionServiceConfig
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(gw gateway.PaymentGateway, plans PlanService, config *SubscriptionServiceConfig) SubscriptionService {
	if config == nil {
		config = &SubscriptionServiceConfig{}
	}
	return &subscriptionService{gateway: gw, plans: plans, config: config}
}

// Subscribe leaves the plan untouched when the provider call fails
func (s *subscriptionService) Subscribe(ctx context.Context, user *domain.User, plan, idempotencyKey string) (*dto.SubscribeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.subscription.subscribe")
	defer span.End()

	p, err := domain.ParsePlan(plan)
	if err != nil {
		return nil, err
	}
	if !p.IsPaid() {
		return nil, ErrPlanNotPurchasable
	}
	priceID := s.config.PriceIDs[p]
	if priceID == "" {
		return nil, ErrPlanNotPurchasable
	}

	span.SetAttributes(
		attribute.String("plan", string(p)),
		attribute.String("gateway", s.gateway.Name()),
	)

	sub, err := s.gateway.CreateSubscription(ctx, &gateway.SubscriptionRequest{
		UserID:         user.ID,
		CustomerEmail:  user.Email,
		PriceID:        priceID,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, domain.WrapError(domain.KindUpstream, paymentProviderFailed, err)
	}

	if _, err := s.plans.ChangePlan(ctx, user.ID, string(p), domain.PlanSourceSubscription); err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	return &dto.SubscribeResponse{
		SubscriptionID: sub.ID,
		ClientSecret:   sub.ClientSecret,
		Plan:           string(p),
	}, nil
}

// HandleWebhook activates the plan of an active subscription and
// downgrades to free when the subscription is deleted. Other events and
// events naming unknown users or prices are acknowledged and ignored.
func (s *subscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.subscription.handle_webhook")
	defer span.End()

	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		telemetry.SetSpanError(span, err)
		if errors.Is(err, gateway.ErrInvalidSignature) {
			return domain.WrapError(domain.KindInvalidInput, "Invalid webhook signature", err)
		}
		return domain.WrapError(domain.KindInvalidInput, ErrInvalidWebhook.Message, err)
	}

	span.SetAttributes(attribute.String("event.type", event.Type))
	log := logger.Get().With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("user_id", event.UserID),
	)

	var plan domain.Plan
	switch event.Type {
	case gateway.EventSubscriptionUpdated:
		if event.Status != gateway.SubscriptionStatusActive {
			return nil
		}
		var ok bool
		if plan, ok = s.planForPrice(event.PriceID); !ok {
			log.WarnContext(ctx, "webhook names an unknown price", zap.String("price_id", event.PriceID))
			return nil
		}
	case gateway.EventSubscriptionDeleted:
		plan = domain.PlanFree
	default:
		return nil
	}

	if event.UserID == "" {
		log.WarnContext(ctx, "webhook subscription has no user metadata")
		return nil
	}

	_, err = s.plans.ChangePlan(ctx, event.UserID, string(plan), domain.PlanSourceWebhook)
	if errors.Is(err, domain.ErrUserNotFound) {
		log.WarnContext(ctx, "webhook names an unknown user")
		return nil
	}
	return err
}

func (s *subscriptionService) planForPrice(priceID string) (domain.Plan, bool) {
	if priceID == "" {
		return "", false
	}
	for plan, id := range s.config.PriceIDs {
		if id == priceID {
			return plan, true
		}
	}
	return "", false
}
