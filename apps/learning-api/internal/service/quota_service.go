package service

import (
	"context"
	"fmt"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/repository"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// QuotaServiceConfig holds configuration for QuotaService
type QuotaServiceConfig struct {
	// Window is the refill period
	Window time.Duration
	// StoreTimeout bounds all store calls of one check
	StoreTimeout time.Duration
}

// QuotaService gates quota-limited actions
type QuotaService interface {
	// CheckAndConsume decides whether userID may perform one quota-gated
	// action and, for bounded plans, consumes one token. A denied check
	// returns the decision together with domain.ErrDailyLimitReached.
	CheckAndConsume(ctx context.Context, userID string) (*domain.Decision, error)
}

type quotaService struct {
	store  repository.QuotaStore
	config *QuotaServiceConfig
	now    func() time.Time
}

// NewQuotaService creates a new QuotaService
func NewQuotaService(store repository.QuotaStore, config *QuotaServiceConfig) QuotaService {
	if config == nil {
		config = &QuotaServiceConfig{}
	}
	if config.Window == 0 {
		config.Window = domain.DefaultQuotaWindow
	}
	if config.StoreTimeout == 0 {
		config.StoreTimeout = 2 * time.Second
	}
	return &quotaService{store: store, config: config, now: time.Now}
}

// CheckAndConsume applies a due refill first and persists it whatever
// the outcome, then permits unbounded plans without a decrement and
// bounded plans only through the conditional decrement. Any store
// failure denies with ErrQuotaStoreUnavailable.
func (s *quotaService) CheckAndConsume(ctx context.Context, userID string) (*domain.Decision, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.quota.check_and_consume")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	now := s.now()

	state, err := s.store.GetQuota(ctx, userID)
	if err != nil {
		return nil, s.storeFailure(span, err)
	}

	if state.RefillDue(now, s.config.Window) {
		refilled, applied, err := s.store.RefillQuota(ctx, userID, state.Plan, now, s.config.Window)
		if err != nil {
			return nil, s.storeFailure(span, err)
		}
		if applied {
			state = refilled
		} else {
			// Someone else refilled or changed the plan first
			if state, err = s.store.GetQuota(ctx, userID); err != nil {
				return nil, s.storeFailure(span, err)
			}
		}
	}

	span.SetAttributes(attribute.String("quota.plan", string(state.Plan)))

	if unbounded(state) {
		return s.permit(state, state.TokensLeft), nil
	}
	if state.TokensLeft.Exhausted() {
		return s.deny(span, state)
	}

	left, ok, err := s.store.ConsumeToken(ctx, userID)
	if err != nil {
		return nil, s.storeFailure(span, err)
	}
	if ok {
		return s.permit(state, domain.Bounded(left)), nil
	}

	// Lost the race for the last token, or the plan changed underneath
	if state, err = s.store.GetQuota(ctx, userID); err != nil {
		return nil, s.storeFailure(span, err)
	}
	if unbounded(state) {
		return s.permit(state, state.TokensLeft), nil
	}
	return s.deny(span, state)
}

func unbounded(state *domain.QuotaState) bool {
	return state.Plan == domain.PlanPremium || state.TokensLeft.IsUnbounded()
}

func (s *quotaService) permit(state *domain.QuotaState, left domain.Allowance) *domain.Decision {
	if state.Plan == domain.PlanPremium {
		left = domain.Unbounded()
	}
	return &domain.Decision{
		Permitted:    true,
		Plan:         state.Plan,
		TokensLeft:   left,
		NextRefillAt: state.NextRefillAt(s.config.Window),
	}
}

func (s *quotaService) deny(span trace.Span, state *domain.QuotaState) (*domain.Decision, error) {
	span.SetStatus(codes.Error, "quota exceeded")
	return &domain.Decision{
		Permitted:    false,
		Plan:         state.Plan,
		TokensLeft:   domain.Bounded(0),
		NextRefillAt: state.NextRefillAt(s.config.Window),
	}, domain.ErrDailyLimitReached
}

func (s *quotaService) storeFailure(span trace.Span, err error) error {
	telemetry.SetSpanError(span, err)
	return fmt.Errorf("%w: %w", domain.ErrQuotaStoreUnavailable, err)
}
