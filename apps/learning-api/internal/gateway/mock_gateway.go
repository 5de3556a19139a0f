package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockGateway implements PaymentGateway for local development and tests
type MockGateway struct {
	config        *MockGatewayConfig
	mu            sync.Mutex
	subscriptions []*SubscriptionRequest
}

// MockGatewayConfig holds configuration for the mock gateway
type MockGatewayConfig struct {
	// FailWith makes every CreateSubscription call fail with this error
	FailWith error

	// WebhookSecret, when set, must equal the signature of every webhook
	WebhookSecret string
}

// DefaultMockGatewayConfig returns default configuration
func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{}
}

// NewMockGateway creates a new mock gateway
func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	if config == nil {
		config = DefaultMockGatewayConfig()
	}
	return &MockGateway{config: config}
}

// CreateSubscription records the request and returns a fake subscription
func (g *MockGateway) CreateSubscription(ctx context.Context, req *SubscriptionRequest) (*Subscription, error) {
	if req == nil || req.PriceID == "" {
		return nil, fmt.Errorf("price ID is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.config.FailWith != nil {
		return nil, g.config.FailWith
	}

	g.mu.Lock()
	g.subscriptions = append(g.subscriptions, req)
	g.mu.Unlock()

	id := uuid.New().String()
	return &Subscription{
		ID:           "sub_mock_" + id,
		CustomerID:   "cus_mock_" + req.UserID,
		Status:       "incomplete",
		ClientSecret: "pi_mock_" + id + "_secret",
	}, nil
}

// ParseWebhook decodes a JSON encoded WebhookEvent
func (g *MockGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.config.WebhookSecret != "" && signature != g.config.WebhookSecret {
		return nil, ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook: %w", err)
	}
	if event.Type == "" {
		return nil, errors.New("webhook event type is required")
	}
	return &event, nil
}

// Subscriptions returns the recorded subscription requests
func (g *MockGateway) Subscriptions() []*SubscriptionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*SubscriptionRequest, len(g.subscriptions))
	copy(out, g.subscriptions)
	return out
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}
