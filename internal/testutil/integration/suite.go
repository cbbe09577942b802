//go:build integration
// +build integration

// Package integration runs the full service stack against a temporary PocketBase store.
package integration

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/config"
	"github.com/ericfisherdev/simple-easy-issues/internal/container"
	"github.com/ericfisherdev/simple-easy-issues/internal/services"
	"github.com/ericfisherdev/simple-easy-issues/internal/store/pocketbase"

	// Register the document container migrations
	_ "github.com/ericfisherdev/simple-easy-issues/migrations"
)

// DatabaseTestSuite wires the application over a PocketBase data directory that is
// removed when the test ends.
type DatabaseTestSuite struct {
	App      *container.Application
	Services *ServiceSet
	Factory  *TestDataFactory
	ctx      context.Context
}

// ServiceSet holds the resolved services
type ServiceSet struct {
	Auth    services.AuthService
	User    services.UserService
	Project services.ProjectService
	Issue   services.IssueService
	Comment services.CommentService
}

// SetupDatabaseTest creates an isolated database test environment
func SetupDatabaseTest(t *testing.T) *DatabaseTestSuite {
	t.Helper()

	t.Setenv("STORE_BACKEND", "pocketbase")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	cfg, err := config.Load("")
	require.NoError(t, err)

	provider, err := pocketbase.Open(pocketbase.Config{
		DataDir:      t.TempDir(),
		QueryTimeout: 5 * time.Second,
	})
	require.NoError(t, err, "open pocketbase")

	ctx := context.Background()
	app, err := container.New(ctx, cfg, container.Options{
		Version:   "integration",
		LogOutput: io.Discard,
		Provider:  provider,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	set := &ServiceSet{
		Auth:    mustResolve[services.AuthService](t, app, container.AuthService),
		User:    mustResolve[services.UserService](t, app, container.UserService),
		Project: mustResolve[services.ProjectService](t, app, container.ProjectService),
		Issue:   mustResolve[services.IssueService](t, app, container.IssueService),
		Comment: mustResolve[services.CommentService](t, app, container.CommentService),
	}

	return &DatabaseTestSuite{
		App:      app,
		Services: set,
		Factory:  NewTestDataFactory(t, set),
		ctx:      ctx,
	}
}

// Context returns the suite context
func (s *DatabaseTestSuite) Context() context.Context {
	return s.ctx
}

func mustResolve[T any](t *testing.T, app *container.Application, name string) T {
	t.Helper()
	value, err := container.Resolve[T](context.Background(), app.Container(), name)
	require.NoError(t, err, "resolve %s", name)
	return value
}
