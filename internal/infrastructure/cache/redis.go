package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/events"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/pkg/config"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/pkg/logger"
)

var log = logger.NewLogger("info")

// Custom error types
var (
	ErrRedisConnection = errors.New("redis: connection error")
	ErrInvalidConfig   = errors.New("redis: invalid configuration")
)

// Config holds the configuration for Redis client
type Config struct {
	Addr             string
	Password         string
	DB               int
	PoolSize         int
	MinIdleConns     int
	MaxRetries       int
	ConnTimeout      time.Duration
	OperationTimeout time.Duration
	KeyPrefix        string        // Prefix for all keys
	RetryInterval    time.Duration // Interval between retry attempts
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PoolSize:         100,
		MinIdleConns:     10,
		MaxRetries:       3,
		ConnTimeout:      5 * time.Second,
		OperationTimeout: 2 * time.Second,
		KeyPrefix:        "soteria:",
		RetryInterval:    100 * time.Millisecond,
	}
}

// NewConfigFromEnv creates a Redis config from project configuration
func NewConfigFromEnv(cfg *config.Config) *Config {
	operationTimeout := cfg.Server.Timeout
	if operationTimeout <= 0 {
		operationTimeout = 2 * time.Second
	}

	return &Config{
		Addr:             fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:         cfg.Redis.Password,
		DB:               cfg.Redis.DB,
		PoolSize:         100,
		MinIdleConns:     10,
		MaxRetries:       3,
		ConnTimeout:      5 * time.Second,
		OperationTimeout: operationTimeout,
		KeyPrefix:        "soteria:",
		RetryInterval:    100 * time.Millisecond,
	}
}

// PublishMetrics tracks event publish statistics with atomic operations
type PublishMetrics struct {
	published atomic.Int64
	failures  atomic.Int64
	byType    sync.Map // map[string]*TypeMetrics
}

// TypeMetrics tracks metrics for a specific event type with atomic operations
type TypeMetrics struct {
	published atomic.Int64
	failures  atomic.Int64
}

// RedisClient wraps the Redis client with additional functionality
type RedisClient struct {
	client    *redis.Client
	metrics   *PublishMetrics
	config    *Config
	closeOnce sync.Once
	health    int32 // 0 = healthy, 1 = unhealthy, using atomic operations
}

// ProgressEventChannel is the Redis channel for progress events
const ProgressEventChannel = "progress:events"

// NewRedisClient creates a new Redis client with the provided configuration
func NewRedisClient(cfg *Config) (*RedisClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r := &RedisClient{
		client:  client,
		config:  cfg,
		metrics: &PublishMetrics{},
	}

	// Start health check goroutine
	go r.healthCheckLoop()

	return r, nil
}

// healthCheckLoop periodically checks Redis health
func (r *RedisClient) healthCheckLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.OperationTimeout)
		if err := r.HealthCheck(ctx); err != nil {
			atomic.StoreInt32(&r.health, 1)
			log.Error("Redis health check failed", zap.Error(err))
		} else {
			atomic.StoreInt32(&r.health, 0)
		}
		cancel()
	}
}

// IsHealthy returns whether Redis is currently healthy
func (r *RedisClient) IsHealthy() bool {
	return atomic.LoadInt32(&r.health) == 0
}

// withContext wraps the context with a timeout if none is set
func (r *RedisClient) withContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, r.config.OperationTimeout)
	}
	return ctx, func() {}
}

// Close properly closes the Redis client and stops background tasks
func (r *RedisClient) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.client.Close()
	})
	return err
}

// trackPublish records the outcome of one publish attempt
func (r *RedisClient) trackPublish(ok bool, eventType string) {
	if ok {
		r.metrics.published.Add(1)
	} else {
		r.metrics.failures.Add(1)
	}

	value, _ := r.metrics.byType.LoadOrStore(eventType, &TypeMetrics{})
	typeMetrics := value.(*TypeMetrics)

	if ok {
		typeMetrics.published.Add(1)
	} else {
		typeMetrics.failures.Add(1)
	}
}

// GetMetrics returns current publish metrics with additional information
func (r *RedisClient) GetMetrics() map[string]interface{} {
	metrics := make(map[string]interface{})
	typeMetrics := make(map[string]interface{})

	r.metrics.byType.Range(func(key, value interface{}) bool {
		tm := value.(*TypeMetrics)
		typeMetrics[key.(string)] = map[string]interface{}{
			"published": tm.published.Load(),
			"failures":  tm.failures.Load(),
		}
		return true
	})

	stats := r.client.PoolStats()
	metrics["published"] = r.metrics.published.Load()
	metrics["failures"] = r.metrics.failures.Load()
	metrics["by_type"] = typeMetrics
	metrics["health"] = r.IsHealthy()
	metrics["pool_stats"] = map[string]interface{}{
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
	metrics["config"] = map[string]interface{}{
		"prefix":      r.config.KeyPrefix,
		"max_retries": r.config.MaxRetries,
	}

	return metrics
}

// HealthCheck checks if Redis is responding
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// GetClient returns the underlying Redis client
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// prefixChannel namespaces a channel for shared Redis deployments
func (r *RedisClient) prefixChannel(channel string) string {
	return r.config.KeyPrefix + channel
}

// PublishEvent publishes a JSON-encoded event to the specified Redis channel
func (r *RedisClient) PublishEvent(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	return r.client.Publish(ctx, r.prefixChannel(channel), data).Err()
}

// PublishProgressEvent publishes a progress event to Redis
func (r *RedisClient) PublishProgressEvent(ctx context.Context, event *events.ProgressEvent) error {
	err := r.PublishEvent(ctx, ProgressEventChannel, event)
	r.trackPublish(err == nil, event.EventType)
	return err
}

// SubscribeToProgressEvents subscribes to progress events and invokes
// the callback for each one until the context is cancelled
func (r *RedisClient) SubscribeToProgressEvents(ctx context.Context, callback func(*events.ProgressEvent) error) error {
	pubsub := r.client.Subscribe(ctx, r.prefixChannel(ProgressEventChannel))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg := <-ch:
			var event events.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				return err
			}
			if err := callback(&event); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
