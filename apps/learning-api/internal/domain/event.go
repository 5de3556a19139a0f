package domain

import "time"

// EventType identifies an account event published to Kafka
type EventType string

const (
	EventPlanChanged EventType = "plan.changed"
	EventAIUsage     EventType = "ai.usage"
)

// PlanChangeSource records what triggered a plan change
type PlanChangeSource string

const (
	PlanSourceUser         PlanChangeSource = "user"
	PlanSourceSubscription PlanChangeSource = "subscription"
	PlanSourceWebhook      PlanChangeSource = "webhook"
)

// AccountEvent is the envelope of every published account event
type AccountEvent struct {
	EventID    string      `json:"event_id"`
	EventType  EventType   `json:"event_type"`
	UserID     string      `json:"user_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Key returns the partition key, so events of one user stay ordered
func (e *AccountEvent) Key() string {
	return e.UserID
}

// PlanChangedData is the payload of a plan.changed event
type PlanChangedData struct {
	Plan       Plan             `json:"plan"`
	TokensLeft Allowance        `json:"tokens_left"`
	Source     PlanChangeSource `json:"source"`
}

// AIUsageData is the payload of an ai.usage event
type AIUsageData struct {
	Plan       Plan      `json:"plan"`
	TokensLeft Allowance `json:"tokens_left"`
}
