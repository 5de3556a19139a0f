package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlan(t *testing.T) {
	tests := []struct {
		in      string
		want    Plan
		wantErr bool
	}{
		{"free", PlanFree, false},
		{"student", PlanStudent, false},
		{"premium", PlanPremium, false},
		{"gold", "", true},
		{"", "", true},
		{"Premium", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlan(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPlan)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanLimit(t *testing.T) {
	n, ok := PlanFree.Limit().Count()
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	n, ok = PlanStudent.Limit().Count()
	assert.True(t, ok)
	assert.Equal(t, 100, n)

	assert.True(t, PlanPremium.Limit().IsUnbounded())
	assert.Equal(t, Bounded(5), Plan("unknown").Limit())
}

func TestAllowance(t *testing.T) {
	assert.Equal(t, Bounded(0), Bounded(-3))
	assert.True(t, Bounded(0).Exhausted())
	assert.False(t, Bounded(1).Exhausted())
	assert.False(t, Unbounded().Exhausted())
	assert.Equal(t, "unlimited", Unbounded().String())
	assert.Equal(t, "7", Bounded(7).String())

	assert.Nil(t, Unbounded().Ptr())
	assert.Equal(t, 4, *Bounded(4).Ptr())
	assert.Equal(t, Unbounded(), AllowanceFromPtr(nil))
	four := 4
	assert.Equal(t, Bounded(4), AllowanceFromPtr(&four))
}

func TestAllowanceJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Allowance `json:"a"`
		B Allowance `json:"b"`
	}{Bounded(3), Unbounded()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":"unlimited"}`, string(data))

	var got struct {
		A Allowance `json:"a"`
		B Allowance `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, Bounded(3), got.A)
	assert.Equal(t, Unbounded(), got.B)

	var bad Allowance
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestQuotaStateRefill(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	q := QuotaState{
		Plan:       PlanFree,
		DailyLimit: Bounded(5),
		TokensLeft: Bounded(0),
		LastReset:  now.Add(-25 * time.Hour),
	}

	require.True(t, q.RefillDue(now, DefaultQuotaWindow))
	refilled := q.Refilled(now)
	assert.Equal(t, Bounded(5), refilled.TokensLeft)
	assert.Equal(t, now, refilled.LastReset)
	assert.Equal(t, now.Add(24*time.Hour), refilled.NextRefillAt(DefaultQuotaWindow))

	fresh := q
	fresh.LastReset = now.Add(-time.Hour)
	assert.False(t, fresh.RefillDue(now, DefaultQuotaWindow))

	exact := q
	exact.LastReset = now.Add(-DefaultQuotaWindow)
	assert.True(t, exact.RefillDue(now, DefaultQuotaWindow))
}

func TestQuotaStateWithPlanKeepsWindow(t *testing.T) {
	anchor := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	q := QuotaState{
		Plan:       PlanFree,
		DailyLimit: Bounded(5),
		TokensLeft: Bounded(2),
		LastReset:  anchor,
	}

	student := q.WithPlan(PlanStudent)
	assert.Equal(t, PlanStudent, student.Plan)
	assert.Equal(t, Bounded(100), student.DailyLimit)
	assert.Equal(t, Bounded(100), student.TokensLeft)
	assert.Equal(t, anchor, student.LastReset)

	premium := q.WithPlan(PlanPremium)
	assert.True(t, premium.DailyLimit.IsUnbounded())
	assert.True(t, premium.TokensLeft.IsUnbounded())
	assert.Equal(t, anchor, premium.LastReset)
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", ErrInvalidCredentials)
	assert.ErrorIs(t, wrapped, ErrUnauthorized)
	assert.ErrorIs(t, wrapped, ErrInvalidCredentials)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, KindUnauthorized, KindOf(wrapped))

	cause := errors.New("connection reset")
	up := WrapError(KindUpstream, "Storage unavailable", cause)
	assert.ErrorIs(t, up, ErrUpstream)
	assert.ErrorIs(t, up, cause)
	assert.Equal(t, "Storage unavailable: connection reset", up.Error())

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestIdentityStripCredentials(t *testing.T) {
	now := time.Now()
	u := NewUser("alice", "alice@example.com", ProviderLocal, now)
	u.ID = "u-1"
	u.PasswordHash = "hash"

	id := UserIdentity(u).StripCredentials()
	assert.Equal(t, KindUser, id.Kind)
	assert.Equal(t, "u-1", id.ID())
	assert.Empty(t, id.User.PasswordHash)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, PlanFree, id.User.Quota.Plan)
	assert.Equal(t, Bounded(5), id.User.Quota.TokensLeft)

	tutor := &Tutor{ID: "t-1", Email: "t@example.com", PasswordHash: "hash"}
	tid := TutorIdentity(tutor).StripCredentials()
	assert.Equal(t, "t-1", tid.ID())
	assert.Equal(t, "t@example.com", tid.Email())
	assert.Empty(t, tid.Tutor.PasswordHash)
}

func TestParseDataType(t *testing.T) {
	got, err := ParseDataType("ai_package")
	require.NoError(t, err)
	assert.Equal(t, DataAIPackage, got)

	_, err = ParseDataType("video")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
