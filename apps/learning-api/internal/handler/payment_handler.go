package handler

import (
	"io"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/service"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/middleware"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBytes       = 64 << 10
)

// PaymentHandler handles plan purchases and provider webhooks
type PaymentHandler struct {
	subscriptionService service.SubscriptionService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(subscriptionService service.SubscriptionService) *PaymentHandler {
	return &PaymentHandler{subscriptionService: subscriptionService}
}

// Subscribe buys a paid plan for the current user
// POST /api/payment/subscribe
func (h *PaymentHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if !bindJSON(c, &req) {
		return
	}

	user := currentUser(c)
	result, err := h.subscriptionService.Subscribe(
		c.Request.Context(),
		user,
		req.Plan,
		middleware.ScopedIdempotencyKey(user.ID, c.GetHeader(middleware.IdempotencyKeyHeader)),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// Webhook applies a signed provider notification
// POST /api/payment/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		invalid(c, "Invalid request body")
		return
	}

	if err := h.subscriptionService.HandleWebhook(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader)); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{"received": true})
}
