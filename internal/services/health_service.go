// Package services holds the business logic of the issue tracker: accounts and tokens,
// projects, issues, comments and health reporting.
package services

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	// HealthStatusHealthy indicates the component is fully operational.
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusUnhealthy indicates the component is not operational.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	// HealthStatusDegraded indicates the component has issues but is still functional.
	HealthStatusDegraded HealthStatus = "degraded"
)

const (
	// StoreCheckerName names the document store check. It gates readiness.
	StoreCheckerName = "store"
	// RedisCheckerName names the Redis check.
	RedisCheckerName = "redis"
)

// HealthCheck represents a single health check.
type HealthCheck struct {
	LastChecked time.Time              `json:"last_checked"`
	Details     map[string]interface{} `json:"details,omitempty"`
	Name        string                 `json:"name"`
	Message     string                 `json:"message,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Status      HealthStatus           `json:"status"`
	Duration    time.Duration          `json:"duration"`
}

// HealthResponse represents the overall health response.
type HealthResponse struct {
	Timestamp   time.Time              `json:"timestamp"`
	System      map[string]interface{} `json:"system,omitempty"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Status      HealthStatus           `json:"status"`
	Checks      []HealthCheck          `json:"checks"`
	Uptime      time.Duration          `json:"uptime"`
}

// HealthChecker defines the interface for health checkers.
type HealthChecker interface {
	Check(ctx context.Context) HealthCheck
	Name() string
}

// HealthService manages health checks for the application.
type HealthService struct {
	startTime time.Time
	version   string
	env       string
	checkers  []HealthChecker
	critical  map[string]bool
}

// NewHealthService creates a new health service.
func NewHealthService(version, env string) *HealthService {
	return &HealthService{
		checkers:  make([]HealthChecker, 0),
		startTime: time.Now(),
		version:   version,
		env:       env,
		critical:  map[string]bool{StoreCheckerName: true},
	}
}

// RegisterChecker registers a health checker.
func (h *HealthService) RegisterChecker(checker HealthChecker) {
	h.checkers = append(h.checkers, checker)
}

// MarkCritical makes a checker's result gate readiness.
func (h *HealthService) MarkCritical(name string) {
	h.critical[name] = true
}

// Check performs all health checks and returns the overall health status.
func (h *HealthService) Check(ctx context.Context) HealthResponse {
	checks := h.run(ctx, h.checkers)
	overallStatus := HealthStatusHealthy

	for _, check := range checks {
		if check.Status == HealthStatusUnhealthy {
			if h.critical[check.Name] {
				overallStatus = HealthStatusUnhealthy
			} else if overallStatus == HealthStatusHealthy {
				overallStatus = HealthStatusDegraded
			}
		} else if check.Status == HealthStatusDegraded && overallStatus == HealthStatusHealthy {
			overallStatus = HealthStatusDegraded
		}
	}

	return HealthResponse{
		Status:      overallStatus,
		Timestamp:   time.Now(),
		Version:     h.version,
		Uptime:      time.Since(h.startTime),
		Checks:      checks,
		System:      h.getSystemInfo(),
		Environment: h.env,
	}
}

// Liveness reports that the application is running.
func (h *HealthService) Liveness() HealthResponse {
	return HealthResponse{
		Status:      HealthStatusHealthy,
		Timestamp:   time.Now(),
		Version:     h.version,
		Uptime:      time.Since(h.startTime),
		Environment: h.env,
		Checks:      []HealthCheck{},
		System: map[string]interface{}{
			"status": "alive",
		},
	}
}

// Readiness reports whether the application can serve traffic.
func (h *HealthService) Readiness(ctx context.Context) HealthResponse {
	criticalCheckers := make([]HealthChecker, 0)
	for _, checker := range h.checkers {
		if h.critical[checker.Name()] {
			criticalCheckers = append(criticalCheckers, checker)
		}
	}

	checks := h.run(ctx, criticalCheckers)
	overallStatus := HealthStatusHealthy
	for _, check := range checks {
		if check.Status != HealthStatusHealthy {
			overallStatus = HealthStatusUnhealthy
		}
	}

	return HealthResponse{
		Status:      overallStatus,
		Timestamp:   time.Now(),
		Version:     h.version,
		Uptime:      time.Since(h.startTime),
		Checks:      checks,
		Environment: h.env,
	}
}

func (h *HealthService) run(ctx context.Context, checkers []HealthChecker) []HealthCheck {
	checks := make([]HealthCheck, 0, len(checkers))
	for _, checker := range checkers {
		start := time.Now()
		check := checker.Check(ctx)
		check.Duration = time.Since(start)
		check.LastChecked = time.Now()
		checks = append(checks, check)
	}
	return checks
}

// getSystemInfo returns system information.
func (h *HealthService) getSystemInfo() map[string]interface{} {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return map[string]interface{}{
		"go_version": runtime.Version(),
		"go_os":      runtime.GOOS,
		"go_arch":    runtime.GOARCH,
		"cpu_count":  runtime.NumCPU(),
		"goroutines": runtime.NumGoroutine(),
		"memory": map[string]interface{}{
			"alloc_bytes": memStats.Alloc,
			"sys_bytes":   memStats.Sys,
			"heap_alloc":  memStats.HeapAlloc,
			"gc_cycles":   memStats.NumGC,
		},
	}
}

// Pinger is anything that can report reachability, such as *store.Database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreHealthChecker pings the document store.
type StoreHealthChecker struct {
	store   Pinger
	backend string
	timeout time.Duration
}

// NewStoreHealthChecker creates a new store health checker.
func NewStoreHealthChecker(store Pinger, backend string, timeout time.Duration) *StoreHealthChecker {
	return &StoreHealthChecker{store: store, backend: backend, timeout: timeout}
}

// Name returns the checker name.
func (c *StoreHealthChecker) Name() string {
	return StoreCheckerName
}

// Check pings the store within the checker's timeout.
func (c *StoreHealthChecker) Check(ctx context.Context) HealthCheck {
	return pingCheck(ctx, c.Name(), c.timeout, map[string]interface{}{"backend": c.backend}, c.store.Ping)
}

// RedisHealthChecker pings Redis.
type RedisHealthChecker struct {
	client  redis.Cmdable
	timeout time.Duration
}

// NewRedisHealthChecker creates a new Redis health checker.
func NewRedisHealthChecker(client redis.Cmdable, timeout time.Duration) *RedisHealthChecker {
	return &RedisHealthChecker{client: client, timeout: timeout}
}

// Name returns the checker name.
func (c *RedisHealthChecker) Name() string {
	return RedisCheckerName
}

// Check sends PING to Redis.
func (c *RedisHealthChecker) Check(ctx context.Context) HealthCheck {
	return pingCheck(ctx, c.Name(), c.timeout, nil, func(ctx context.Context) error {
		return c.client.Ping(ctx).Err()
	})
}

func pingCheck(
	ctx context.Context,
	name string,
	timeout time.Duration,
	details map[string]interface{},
	ping func(context.Context) error,
) HealthCheck {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := ping(ctx); err != nil {
		return HealthCheck{
			Name:    name,
			Status:  HealthStatusUnhealthy,
			Details: details,
			Error:   fmt.Sprintf("ping failed: %v", err),
		}
	}

	return HealthCheck{
		Name:    name,
		Status:  HealthStatusHealthy,
		Details: details,
		Message: "reachable",
	}
}
