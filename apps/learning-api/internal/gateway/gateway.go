package gateway

import (
	"context"
	"errors"
)

// ErrInvalidSignature is returned when a webhook payload fails verification
var ErrInvalidSignature = errors.New("invalid webhook signature")

// PaymentGateway defines the interface for subscription billing
type PaymentGateway interface {
	// CreateSubscription creates a customer for the email and an incomplete
	// subscription to the price
	CreateSubscription(ctx context.Context, req *SubscriptionRequest) (*Subscription, error)

	// ParseWebhook verifies and decodes a webhook payload
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)

	// Name returns the gateway name
	Name() string
}

// SubscriptionRequest represents a subscription request
type SubscriptionRequest struct {
	UserID         string
	CustomerEmail  string
	PriceID        string
	IdempotencyKey string
}

// Subscription is a created subscription. ClientSecret lets the client
// confirm the first payment.
type Subscription struct {
	ID           string
	CustomerID   string
	Status       string
	ClientSecret string
}

// Webhook event types handled by the service
const (
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// SubscriptionStatusActive is the status of a paid-up subscription
const SubscriptionStatusActive = "active"

// WebhookEvent is a decoded provider notification
type WebhookEvent struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	SubscriptionID string `json:"subscription_id"`
	Status         string `json:"status"`
	PriceID        string `json:"price_id"`
	UserID         string `json:"user_id"`
}

// GatewayConfig holds common gateway configuration
type GatewayConfig struct {
	SecretKey     string
	WebhookSecret string
}
