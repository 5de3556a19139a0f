package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements PaymentGateway using Stripe
type StripeGateway struct {
	config *StripeGatewayConfig
}

// StripeGatewayConfig holds configuration for Stripe gateway
type StripeGatewayConfig struct {
	SecretKey     string
	WebhookSecret string
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(config *StripeGatewayConfig) (*StripeGateway, error) {
	if config == nil {
		return nil, fmt.Errorf("stripe config is required")
	}
	if config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	// Set Stripe API key globally
	stripe.Key = config.SecretKey

	return &StripeGateway{
		config: config,
	}, nil
}

// CreateSubscription creates a customer and a subscription awaiting its
// first payment
func (g *StripeGateway) CreateSubscription(ctx context.Context, req *SubscriptionRequest) (*Subscription, error) {
	if req == nil || req.PriceID == "" {
		return nil, fmt.Errorf("price ID is required")
	}

	customerParams := &stripe.CustomerParams{
		Email: stripe.String(req.CustomerEmail),
	}
	customerParams.Context = ctx
	customerParams.AddMetadata("user_id", req.UserID)
	if req.IdempotencyKey != "" {
		customerParams.SetIdempotencyKey(req.IdempotencyKey + ":customer")
	}

	cus, err := customer.New(customerParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	subParams := &stripe.SubscriptionParams{
		Customer: stripe.String(cus.ID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(req.PriceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	subParams.Context = ctx
	subParams.AddMetadata("user_id", req.UserID)
	subParams.AddExpand("latest_invoice.payment_intent")
	if req.IdempotencyKey != "" {
		subParams.SetIdempotencyKey(req.IdempotencyKey + ":subscription")
	}

	sub, err := subscription.New(subParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	result := &Subscription{
		ID:         sub.ID,
		CustomerID: cus.ID,
		Status:     string(sub.Status),
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		result.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}

	return result, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes
// subscription events. Other event types are returned with only ID and Type.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch result.Type {
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to decode subscription: %w", err)
		}
		result.SubscriptionID = sub.ID
		result.Status = string(sub.Status)
		result.UserID = sub.Metadata["user_id"]
		if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			result.PriceID = sub.Items.Data[0].Price.ID
		}
	}

	return result, nil
}

// Name returns the gateway name
func (g *StripeGateway) Name() string {
	return "stripe"
}
