package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"fire-alert-service/internal/infrastructure/config"
)

// ErrCacheMiss is returned when a key is absent
var ErrCacheMiss = errors.New("cache miss")

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	CacheAddress(ctx context.Context, lat, lon float64, address string, expiration time.Duration) error
	GetAddress(ctx context.Context, lat, lon float64) (string, error)
	Ping(ctx context.Context) error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return NewRedisServiceWithClient(client)
}

// NewRedisServiceWithClient wraps an existing client
func NewRedisServiceWithClient(client *redis.Client) InterfaceRedisService {
	return &RedisService{Client: client}
}

// 1 Set stores value as JSON with expiration
func (s *RedisService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(ctx, key, jsonValue, expiration).Err()
}

// 2 Get decodes the JSON stored at key into dest
func (s *RedisService) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := s.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// 3 Delete deletes a key
func (s *RedisService) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

// 4 CacheAddress stores a reverse-geocoded address for a coordinate pair
func (s *RedisService) CacheAddress(ctx context.Context, lat, lon float64, address string, expiration time.Duration) error {
	return s.Client.Set(ctx, addressKey(lat, lon), address, expiration).Err()
}

// 5 GetAddress returns ErrCacheMiss when the coordinate pair was never cached
func (s *RedisService) GetAddress(ctx context.Context, lat, lon float64) (string, error) {
	val, err := s.Client.Get(ctx, addressKey(lat, lon)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

// 6 Ping checks the connection
func (s *RedisService) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

// coordinates are rounded to about one metre
func addressKey(lat, lon float64) string {
	return fmt.Sprintf("geocode:%.5f:%.5f", lat, lon)
}
