package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

func TestNewPaymentGateway(t *testing.T) {
	gw, err := NewPaymentGateway("", nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", gw.Name())

	gw, err = NewPaymentGateway("STRIPE", &GatewayConfig{SecretKey: "sk_test_123"})
	require.NoError(t, err)
	assert.Equal(t, "stripe", gw.Name())

	_, err = NewPaymentGateway("stripe", &GatewayConfig{})
	assert.Error(t, err)

	_, err = NewPaymentGateway("paypal", nil)
	assert.Error(t, err)
}

func TestMockGateway_CreateSubscription(t *testing.T) {
	gw := NewMockGateway(nil)

	sub, err := gw.CreateSubscription(context.Background(), &SubscriptionRequest{
		UserID:        "u1",
		CustomerEmail: "u1@example.com",
		PriceID:       "price_student",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.NotEmpty(t, sub.ClientSecret)
	assert.Len(t, gw.Subscriptions(), 1)

	_, err = gw.CreateSubscription(context.Background(), &SubscriptionRequest{UserID: "u1"})
	assert.Error(t, err)
}

func TestMockGateway_Failure(t *testing.T) {
	gw := NewMockGateway(&MockGatewayConfig{FailWith: errors.New("card_declined")})

	_, err := gw.CreateSubscription(context.Background(), &SubscriptionRequest{PriceID: "price_student"})
	assert.EqualError(t, err, "card_declined")
	assert.Empty(t, gw.Subscriptions())
}

func TestMockGateway_ParseWebhook(t *testing.T) {
	gw := NewMockGateway(&MockGatewayConfig{WebhookSecret: "whsec"})
	payload, _ := json.Marshal(WebhookEvent{Type: EventSubscriptionDeleted, UserID: "u1"})

	_, err := gw.ParseWebhook(payload, "wrong")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	event, err := gw.ParseWebhook(payload, "whsec")
	require.NoError(t, err)
	assert.Equal(t, EventSubscriptionDeleted, event.Type)
	assert.Equal(t, "u1", event.UserID)
}

func TestStripeGateway_ParseWebhook(t *testing.T) {
	const secret = "whsec_test"
	gw, err := NewStripeGateway(&StripeGatewayConfig{SecretKey: "sk_test_123", WebhookSecret: secret})
	require.NoError(t, err)

	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"id": "sub_1",
			"object": "subscription",
			"status": "active",
			"metadata": {"user_id": "u1"},
			"items": {"object": "list", "data": [{"id": "si_1", "object": "subscription_item", "price": {"id": "price_premium", "object": "price"}}]}
		}}
	}`)

	now := time.Now()
	signature := "t=" + strconv.FormatInt(now.Unix(), 10) + ",v1=" +
		fmt.Sprintf("%x", webhook.ComputeSignature(now, payload, secret))

	event, err := gw.ParseWebhook(payload, signature)
	require.NoError(t, err)
	assert.Equal(t, EventSubscriptionUpdated, event.Type)
	assert.Equal(t, "sub_1", event.SubscriptionID)
	assert.Equal(t, SubscriptionStatusActive, event.Status)
	assert.Equal(t, "price_premium", event.PriceID)
	assert.Equal(t, "u1", event.UserID)

	_, err = gw.ParseWebhook(payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
