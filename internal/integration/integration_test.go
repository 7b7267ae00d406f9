package integration

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodshare/backend/internal/database"
	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
)

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
}

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postpass",
				"POSTGRES_DB":       "foodshare",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
					return fmt.Sprintf("postgres://postgres:postpass@%s:%s/foodshare?sslmode=disable", host, port.Port())
				}),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=postgres password=postpass dbname=foodshare sslmode=disable", host, port.Port())
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to postgres")

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

// loggingEmail captures outgoing codes instead of sending them.
type loggingEmail struct{}

func (loggingEmail) SendLoginCode(to, fullName, code string) error { return nil }
func (loggingEmail) Configured() bool                              { return false }

func TestOTPLoginFlow(t *testing.T) {
	requireDocker(t)
	db := setupPostgres(t)
	redisClient := setupRedis(t)
	ctx := context.Background()

	auth := service.NewAuthService(db, redisClient, loggingEmail{}, "integration-secret")

	code, err := auth.IssueCode(ctx, "newcomer@example.com", "New Cook")
	require.NoError(t, err)
	require.Len(t, code, 6, "unconfigured delivery should surface the code")

	// Wrong code burns an attempt, fails closed.
	_, _, err = auth.VerifyCode(ctx, "newcomer@example.com", "000000")
	assert.ErrorIs(t, err, service.ErrInvalidCode)

	user, token, err := auth.VerifyCode(ctx, "newcomer@example.com", code)
	require.NoError(t, err)
	assert.Equal(t, "newcomer@example.com", user.Email)
	assert.Equal(t, "New Cook", user.FullName)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// The code is single-use.
	_, _, err = auth.VerifyCode(ctx, "newcomer@example.com", code)
	assert.ErrorIs(t, err, service.ErrInvalidCode)
}

func TestOTPIssueRateLimit(t *testing.T) {
	requireDocker(t)
	db := setupPostgres(t)
	redisClient := setupRedis(t)
	ctx := context.Background()

	auth := service.NewAuthService(db, redisClient, loggingEmail{}, "integration-secret")

	for i := 0; i < 3; i++ {
		_, err := auth.IssueCode(ctx, "eager@example.com", "")
		require.NoError(t, err, "issue %d should pass", i+1)
	}
	_, err := auth.IssueCode(ctx, "eager@example.com", "")
	assert.ErrorIs(t, err, service.ErrRateLimited)
}

// Concurrent approvals race for the last portions; the row lock must let
// exactly one of them claim.
func TestConcurrentApprovalClaimsOnce(t *testing.T) {
	requireDocker(t)
	db := setupPostgres(t)
	ctx := context.Background()

	requests := service.NewRequestService(db)

	cook := &models.User{Email: "cook@example.com", FullName: "Maria"}
	require.NoError(t, db.Create(cook).Error)
	meal := &models.Meal{
		CreatedBy: cook.ID, CookEmail: cook.Email, CookName: cook.FullName,
		Title: "Last Portions", Date: "2026-09-06", Time: "18:00",
		PortionsAvailable: 2, Status: models.MealStatusOpen,
	}
	require.NoError(t, db.Create(meal).Error)

	var pending []*models.MealRequest
	for i := 0; i < 3; i++ {
		guest := &models.User{Email: fmt.Sprintf("guest%d@example.com", i), FullName: "Guest"}
		require.NoError(t, db.Create(guest).Error)
		req, err := requests.Create(ctx, guest, meal.ID, 2, "")
		require.NoError(t, err)
		pending = append(pending, req)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(pending))
	for i := range pending {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = requests.UpdateStatus(ctx, cook, pending[i].ID, models.RequestStatusApproved)
		}(i)
	}
	wg.Wait()

	approved := 0
	for _, err := range errs {
		if err == nil {
			approved++
		} else {
			assert.ErrorIs(t, err, service.ErrNotEnoughPortions)
		}
	}
	assert.Equal(t, 1, approved, "exactly one approval should win the portions")

	var reloaded models.Meal
	require.NoError(t, db.First(&reloaded, "id = ?", meal.ID).Error)
	assert.Equal(t, 2, reloaded.PortionsClaimed)
	assert.Equal(t, models.MealStatusFull, reloaded.Status)
}
