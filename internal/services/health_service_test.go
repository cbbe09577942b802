package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (p pingerFunc) Ping(ctx context.Context) error { return p(ctx) }

func TestHealthService_StoreGatesReadiness(t *testing.T) {
	f := newFixture(t)
	health := NewHealthService("1.0.0", "test")
	health.RegisterChecker(NewStoreHealthChecker(f.db, "memory", time.Second))

	ready := health.Readiness(context.Background())
	assert.Equal(t, HealthStatusHealthy, ready.Status)
	require.Len(t, ready.Checks, 1)
	assert.Equal(t, StoreCheckerName, ready.Checks[0].Name)
	assert.Equal(t, "memory", ready.Checks[0].Details["backend"])

	require.NoError(t, f.db.Close())

	ready = health.Readiness(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, ready.Status)
	assert.NotEmpty(t, ready.Checks[0].Error)
}

func TestHealthService_NonCriticalFailureDegrades(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	health := NewHealthService("1.0.0", "test")
	health.RegisterChecker(NewStoreHealthChecker(pingerFunc(func(context.Context) error { return nil }), "memory", 0))
	health.RegisterChecker(NewRedisHealthChecker(rdb, time.Second))

	mock.ExpectPing().SetErr(errors.New("connection refused"))

	overall := health.Check(context.Background())
	assert.Equal(t, HealthStatusDegraded, overall.Status)
	require.Len(t, overall.Checks, 2)
	assert.Equal(t, HealthStatusUnhealthy, overall.Checks[1].Status)
	assert.NotEmpty(t, overall.System["go_version"])

	ready := health.Readiness(context.Background())
	assert.Equal(t, HealthStatusHealthy, ready.Status, "redis does not gate readiness by default")
	assert.Len(t, ready.Checks, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthService_MarkCritical(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	health := NewHealthService("1.0.0", "test")
	health.RegisterChecker(NewRedisHealthChecker(rdb, time.Second))
	health.MarkCritical(RedisCheckerName)

	mock.ExpectPing().SetVal("PONG")
	mock.ExpectPing().SetErr(errors.New("connection refused"))

	assert.Equal(t, HealthStatusHealthy, health.Readiness(context.Background()).Status)
	assert.Equal(t, HealthStatusUnhealthy, health.Check(context.Background()).Status)
}

func TestHealthService_StoreCheckTimesOut(t *testing.T) {
	health := NewHealthService("1.0.0", "test")
	health.RegisterChecker(NewStoreHealthChecker(pingerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}), "pocketbase", 10*time.Millisecond))

	overall := health.Check(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, overall.Status)
	assert.Contains(t, overall.Checks[0].Error, "deadline exceeded")
}

func TestHealthService_Liveness(t *testing.T) {
	health := NewHealthService("1.0.0", "test")
	live := health.Liveness()
	assert.Equal(t, HealthStatusHealthy, live.Status)
	assert.Equal(t, "1.0.0", live.Version)
	assert.Equal(t, "alive", live.System["status"])
}
