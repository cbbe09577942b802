package middleware

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a token bucket refilled one token per refill interval.
type RateLimiter struct {
	lastRefill time.Time
	lastUsed   time.Time
	mu         sync.Mutex
	refill     time.Duration
	tokens     int
	capacity   int
	now        func() time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(capacity int, refillRate time.Duration) *RateLimiter {
	return newRateLimiter(capacity, refillRate, time.Now)
}

func newRateLimiter(capacity int, refillRate time.Duration, now func() time.Time) *RateLimiter {
	t := now()
	return &RateLimiter{
		lastRefill: t,
		lastUsed:   t,
		refill:     refillRate,
		tokens:     capacity,
		capacity:   capacity,
		now:        now,
	}
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.lastUsed = now

	if elapsed := now.Sub(rl.lastRefill); elapsed >= rl.refill {
		steps := elapsed / rl.refill
		rl.tokens = min(rl.capacity, rl.tokens+int(steps))
		rl.lastRefill = rl.lastRefill.Add(steps * rl.refill)
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) idleSince() time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.lastUsed
}

// LRUCache bounds the number of in-memory limiters, evicting the least recently used.
type LRUCache struct {
	items    map[string]*list.Element
	list     *list.List
	mu       sync.Mutex
	capacity int
}

type lruItem struct {
	limiter *RateLimiter
	key     string
}

// NewLRUCache creates a new LRU cache with the specified capacity.
func NewLRUCache(capacity int) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		list:     list.New(),
	}
}

// Get returns the limiter for key, creating it with factory on a miss.
func (c *LRUCache) Get(key string, factory func() *RateLimiter) *RateLimiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.list.MoveToFront(elem)
		return elem.Value.(*lruItem).limiter
	}

	limiter := factory()
	c.items[key] = c.list.PushFront(&lruItem{key: key, limiter: limiter})

	if c.list.Len() > c.capacity {
		c.removeElement(c.list.Back())
	}
	return limiter
}

func (c *LRUCache) removeElement(elem *list.Element) {
	c.list.Remove(elem)
	delete(c.items, elem.Value.(*lruItem).key)
}

// Len returns the current number of items in the cache.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Len()
}

// evictIdle drops limiters unused since cutoff, walking from the least recently used.
func (c *LRUCache) evictIdle(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for elem := c.list.Back(); elem != nil; {
		prev := elem.Prev()
		if !elem.Value.(*lruItem).limiter.idleSince().Before(cutoff) {
			break
		}
		c.removeElement(elem)
		evicted++
		elem = prev
	}
	return evicted
}

// RedisRateLimiter implements a sliding window per key in a Redis sorted set, so every
// server instance shares the same budget.
type RedisRateLimiter struct {
	client            redis.Cmdable
	keyPrefix         string
	requestsPerMinute int
	windowSize        time.Duration
	now               func() time.Time
}

// NewRedisRateLimiter creates a new Redis-based rate limiter.
func NewRedisRateLimiter(client redis.Cmdable, keyPrefix string, requestsPerMinute int) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:            client,
		keyPrefix:         keyPrefix,
		requestsPerMinute: requestsPerMinute,
		windowSize:        time.Minute,
		now:               time.Now,
	}
}

// Allow records the request and reports whether the window still had room for it.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := rl.keyPrefix + ":" + key
	now := rl.now()
	windowStart := now.Add(-rl.windowSize)

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixMilli(), 10))
	count := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, redisKey, rl.windowSize+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis rate limiting error: %w", err)
	}

	return count.Val() < int64(rl.requestsPerMinute), nil
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// KeyGenerator derives the bucket key; defaults to the user ID or client IP.
	KeyGenerator func(c *gin.Context) string
	// Redis switches to the shared sliding window when set.
	Redis  redis.Cmdable
	Logger *slog.Logger
	// CleanupInterval is how often idle in-memory limiters are evicted (default: 5 minutes).
	CleanupInterval time.Duration
	// MaxAge is how long a limiter may sit unused before eviction (default: 10 minutes).
	MaxAge            time.Duration
	RequestsPerMinute int
	// CacheCapacity bounds the in-memory limiters (default: 10000).
	CacheCapacity int
}

// RateLimitManager owns the limiters and the idle-eviction goroutine.
type RateLimitManager struct {
	cache       *LRUCache
	redis       *RedisRateLimiter
	logger      *slog.Logger
	cleanupDone chan struct{}
	cancel      context.CancelFunc
	config      RateLimitConfig
	now         func() time.Time
}

// NewRateLimitManager creates a manager and starts its cleanup loop. Call Shutdown to stop it.
func NewRateLimitManager(ctx context.Context, config RateLimitConfig) *RateLimitManager {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.MaxAge == 0 {
		config.MaxAge = 10 * time.Minute
	}
	if config.CacheCapacity == 0 {
		config.CacheCapacity = 10000
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 60
	}
	if config.KeyGenerator == nil {
		config.KeyGenerator = UserOrIPKey
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	managerCtx, cancel := context.WithCancel(ctx)
	manager := &RateLimitManager{
		cache:       NewLRUCache(config.CacheCapacity),
		logger:      logger,
		config:      config,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
		now:         time.Now,
	}
	if config.Redis != nil {
		manager.redis = NewRedisRateLimiter(config.Redis, "rate_limit", config.RequestsPerMinute)
	}

	go manager.cleanup(managerCtx)
	return manager
}

// Allow checks if a request should be allowed for the given key.
func (rm *RateLimitManager) Allow(ctx context.Context, key string) (bool, error) {
	if rm.redis != nil {
		return rm.redis.Allow(ctx, key)
	}
	return rm.GetLimiter(key).Allow(), nil
}

// GetLimiter gets or creates the in-memory limiter for key.
func (rm *RateLimitManager) GetLimiter(key string) *RateLimiter {
	return rm.cache.Get(key, func() *RateLimiter {
		perMinute := rm.config.RequestsPerMinute
		return newRateLimiter(perMinute, time.Minute/time.Duration(perMinute), rm.now)
	})
}

func (rm *RateLimitManager) cleanup(ctx context.Context) {
	defer close(rm.cleanupDone)

	ticker := time.NewTicker(rm.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.cache.evictIdle(rm.now().Add(-rm.config.MaxAge))
		}
	}
}

// Shutdown stops the cleanup goroutine and waits for it.
func (rm *RateLimitManager) Shutdown() {
	rm.cancel()
	<-rm.cleanupDone
}

// Stats returns statistics about the rate limiter cache.
func (rm *RateLimitManager) Stats() RateLimitStats {
	cacheLen := rm.cache.Len()
	backend := "memory"
	if rm.redis != nil {
		backend = "redis"
	}
	return RateLimitStats{
		Backend:       backend,
		CacheSize:     cacheLen,
		CacheCapacity: rm.config.CacheCapacity,
		CacheUsage:    float64(cacheLen) / float64(rm.config.CacheCapacity),
	}
}

// RateLimitStats holds statistics about rate limiting.
type RateLimitStats struct {
	Backend       string  `json:"backend"`
	CacheSize     int     `json:"cache_size"`
	CacheCapacity int     `json:"cache_capacity"`
	CacheUsage    float64 `json:"cache_usage"`
}

// Middleware enforces the limit. A Redis failure lets the request through.
func (rm *RateLimitManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rm.config.KeyGenerator(c)

		allowed, err := rm.Allow(c.Request.Context(), key)
		if err != nil {
			rm.logger.WarnContext(c.Request.Context(), "rate limiter unavailable, allowing request",
				"key", key, "error", err)
			c.Header("X-RateLimit-Error", "true")
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"type":    "RATE_LIMIT_ERROR",
					"code":    "TOO_MANY_REQUESTS",
					"message": "Rate limit exceeded. Please try again later.",
				},
			})
			return
		}

		c.Next()
	}
}

// RateLimitMiddleware builds a manager and returns its middleware.
// The returned manager must be shut down to stop its goroutine.
func RateLimitMiddleware(ctx context.Context, config RateLimitConfig) (gin.HandlerFunc, *RateLimitManager) {
	manager := NewRateLimitManager(ctx, config)
	return manager.Middleware(), manager
}

// UserOrIPKey keys authenticated requests by user and the rest by client IP.
func UserOrIPKey(c *gin.Context) string {
	if user, ok := GetUserFromContext(c); ok {
		return "user:" + user.UserID
	}
	return "ip:" + c.ClientIP()
}
