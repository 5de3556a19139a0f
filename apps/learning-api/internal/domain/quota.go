package domain

import "time"

// DefaultQuotaWindow is the rolling refill period
const DefaultQuotaWindow = 24 * time.Hour

// QuotaState is the per-user AI usage allowance. For non-premium plans
// 0 <= TokensLeft <= DailyLimit holds.
type QuotaState struct {
	Plan       Plan      `json:"plan"`
	DailyLimit Allowance `json:"dailyTokenLimit"`
	TokensLeft Allowance `json:"tokensLeft"`
	LastReset  time.Time `json:"lastReset"`
}

// NewQuotaState returns a full allowance for plan anchored at now
func NewQuotaState(plan Plan, now time.Time) QuotaState {
	limit := plan.Limit()
	return QuotaState{
		Plan:       plan,
		DailyLimit: limit,
		TokensLeft: limit,
		LastReset:  now,
	}
}

// RefillDue reports whether the window anchored at LastReset has elapsed
func (q QuotaState) RefillDue(now time.Time, window time.Duration) bool {
	return now.Sub(q.LastReset) >= window
}

// Refilled returns the state after a window refill at now
func (q QuotaState) Refilled(now time.Time) QuotaState {
	return NewQuotaState(q.Plan, now)
}

// WithPlan returns the state after a plan change: the new ceiling applies
// immediately and the window anchor is kept.
func (q QuotaState) WithPlan(plan Plan) QuotaState {
	return NewQuotaState(plan, q.LastReset)
}

// NextRefillAt returns when the next refill becomes due
func (q QuotaState) NextRefillAt(window time.Duration) time.Time {
	return q.LastReset.Add(window)
}

// Decision is the outcome of a quota check
type Decision struct {
	Permitted    bool      `json:"permitted"`
	Plan         Plan      `json:"plan"`
	TokensLeft   Allowance `json:"tokensLeft"`
	NextRefillAt time.Time `json:"nextRefillAt"`
}
