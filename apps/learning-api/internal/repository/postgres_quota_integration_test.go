//go:build integration

package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/migrations"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNoPostgres(t *testing.T) *database.PostgresDB {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test - set INTEGRATION_TEST=true to run")
	}

	cfg := database.DefaultPostgresConfig()
	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		cfg.Host = host
	}
	cfg.Password = os.Getenv("TEST_DB_PASSWORD")
	if name := os.Getenv("TEST_DB_NAME"); name != "" {
		cfg.Database = name
	}
	cfg.MaxRetries = 0

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg)
	if err != nil {
		t.Skipf("Skipping integration test - Postgres not available: %v", err)
	}
	require.NoError(t, db.Migrate(ctx, migrations.FS, migrations.Dir))
	return db
}

func insertTestUser(t *testing.T, repo *PostgresUserRepository, plan domain.Plan, left int, lastReset time.Time) *domain.User {
	t.Helper()
	id := uuid.New().String()
	u := domain.NewUser("it-"+id[:8], id[:8]+"@example.com", domain.ProviderLocal, lastReset)
	u.ID = id
	u.PasswordHash = "x"
	u.Quota = domain.NewQuotaState(plan, lastReset)
	if !u.Quota.TokensLeft.IsUnbounded() {
		u.Quota.TokensLeft = domain.Bounded(left)
	}
	require.NoError(t, repo.Insert(context.Background(), u))
	return u
}

func TestPostgresQuotaStore_ConcurrentConsume(t *testing.T) {
	db := skipIfNoPostgres(t)
	defer db.Close()

	repo := NewPostgresUserRepository(db)
	u := insertTestUser(t, repo, domain.PlanStudent, 3, time.Now())

	const callers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.ConsumeToken(context.Background(), u.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, granted)
	q, err := repo.GetQuota(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Bounded(0), q.TokensLeft)
}

func TestPostgresQuotaStore_RefillOnlyOnce(t *testing.T) {
	db := skipIfNoPostgres(t)
	defer db.Close()

	repo := NewPostgresUserRepository(db)
	stale := time.Now().Add(-25 * time.Hour).UTC().Truncate(time.Microsecond)
	u := insertTestUser(t, repo, domain.PlanFree, 0, stale)

	now := time.Now().UTC().Truncate(time.Microsecond)
	q, applied, err := repo.RefillQuota(context.Background(), u.ID, domain.PlanFree, now, 24*time.Hour)
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, domain.Bounded(5), q.TokensLeft)

	_, applied, err = repo.RefillQuota(context.Background(), u.ID, domain.PlanFree, now, 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestPostgresQuotaStore_SetPlanKeepsLastReset(t *testing.T) {
	db := skipIfNoPostgres(t)
	defer db.Close()

	repo := NewPostgresUserRepository(db)
	anchor := time.Now().Add(-3 * time.Hour).UTC().Truncate(time.Microsecond)
	u := insertTestUser(t, repo, domain.PlanFree, 2, anchor)

	q, err := repo.SetPlan(context.Background(), u.ID, domain.PlanPremium)
	require.NoError(t, err)
	assert.True(t, q.TokensLeft.IsUnbounded())
	assert.True(t, q.DailyLimit.IsUnbounded())
	assert.True(t, anchor.Equal(q.LastReset))

	_, ok, err := repo.ConsumeToken(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
