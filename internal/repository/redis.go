package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lockwise/internal/config"
	"lockwise/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisAvailabilityCache stores computed slot grids in Redis with a short TTL.
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

// NewRedisClient builds a redis client from config and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *RedisAvailabilityCache {
	if ttl <= 0 {
		ttl = time.Duration(models.AvailabilityCacheTTL) * time.Second
	}
	return &RedisAvailabilityCache{client: client, ttl: ttl, logger: logger}
}

func slotsKey(serviceID int64, date time.Time) string {
	return fmt.Sprintf("availability:%d:%s", serviceID, date.Format("2006-01-02"))
}

func (c *RedisAvailabilityCache) GetSlots(ctx context.Context, serviceID int64, date time.Time) ([]models.SlotAvailability, error) {
	raw, err := c.client.Get(ctx, slotsKey(serviceID, date)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get slots: %w", err)
	}

	var slots []models.SlotAvailability
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("decode cached slots: %w", err)
	}
	return slots, nil
}

func (c *RedisAvailabilityCache) SetSlots(ctx context.Context, serviceID int64, date time.Time, slots []models.SlotAvailability) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode slots: %w", err)
	}
	if err := c.client.Set(ctx, slotsKey(serviceID, date), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set slots: %w", err)
	}
	return nil
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, serviceID int64, date time.Time) error {
	if err := c.client.Del(ctx, slotsKey(serviceID, date)).Err(); err != nil {
		return fmt.Errorf("redis del slots: %w", err)
	}
	return nil
}
