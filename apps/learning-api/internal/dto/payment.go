package dto

// SubscribeRequest represents a subscription request
type SubscribeRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// SubscribeResponse is returned after a subscription is created
type SubscribeResponse struct {
	SubscriptionID string `json:"subscriptionId"`
	ClientSecret   string `json:"clientSecret"`
	Plan           string `json:"plan"`
}
