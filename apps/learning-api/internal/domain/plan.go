package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Plan is a subscription tier
type Plan string

const (
	PlanFree    Plan = "free"
	PlanStudent Plan = "student"
	PlanPremium Plan = "premium"
)

const (
	FreeDailyTokens    = 5
	StudentDailyTokens = 100
)

// ParsePlan validates a plan name
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanFree, PlanStudent, PlanPremium:
		return p, nil
	}
	return "", ErrInvalidPlan
}

// IsPaid reports whether the plan is billed through the payment provider
func (p Plan) IsPaid() bool {
	return p == PlanStudent || p == PlanPremium
}

// Limit returns the daily token ceiling of the plan. Unknown plans get the
// free ceiling.
func (p Plan) Limit() Allowance {
	switch p {
	case PlanPremium:
		return Unbounded()
	case PlanStudent:
		return Bounded(StudentDailyTokens)
	default:
		return Bounded(FreeDailyTokens)
	}
}

// unlimitedLabel is the JSON form of an unbounded allowance
const unlimitedLabel = "unlimited"

// Allowance is a token count that is either a bounded non-negative integer
// or unbounded. The zero value is Bounded(0).
type Allowance struct {
	n         int
	unbounded bool
}

// Bounded returns a finite allowance. Negative values clamp to zero.
func Bounded(n int) Allowance {
	if n < 0 {
		n = 0
	}
	return Allowance{n: n}
}

// Unbounded returns an allowance that never runs out
func Unbounded() Allowance {
	return Allowance{unbounded: true}
}

// IsUnbounded reports whether a is unbounded
func (a Allowance) IsUnbounded() bool {
	return a.unbounded
}

// Count returns the finite value; ok is false for unbounded allowances
func (a Allowance) Count() (n int, ok bool) {
	if a.unbounded {
		return 0, false
	}
	return a.n, true
}

// Exhausted reports whether no token is left
func (a Allowance) Exhausted() bool {
	return !a.unbounded && a.n <= 0
}

func (a Allowance) String() string {
	if a.unbounded {
		return unlimitedLabel
	}
	return strconv.Itoa(a.n)
}

// Ptr returns the finite value as *int, nil when unbounded. Used for
// nullable storage columns.
func (a Allowance) Ptr() *int {
	if a.unbounded {
		return nil
	}
	n := a.n
	return &n
}

// AllowanceFromPtr is the inverse of Ptr
func AllowanceFromPtr(n *int) Allowance {
	if n == nil {
		return Unbounded()
	}
	return Bounded(*n)
}

func (a Allowance) MarshalJSON() ([]byte, error) {
	if a.unbounded {
		return json.Marshal(unlimitedLabel)
	}
	return json.Marshal(a.n)
}

func (a *Allowance) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		if label != unlimitedLabel {
			return fmt.Errorf("invalid allowance %q", label)
		}
		*a = Unbounded()
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid allowance: %w", err)
	}
	*a = Bounded(n)
	return nil
}
