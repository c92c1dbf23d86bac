// Package cache keeps recent ticket search results keyed by the
// normalized search state.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/blockseats/internal/models"
)

const KeyPrefix = "blockseats:tickets:"

type TicketCache interface {
	Get(ctx context.Context, state models.SearchState) (models.TicketResults, bool)
	Set(ctx context.Context, state models.SearchState, results models.TicketResults) error
	Close() error
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host: "localhost",
		Port: "6379",
		TTL:  5 * time.Minute,
	}
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects and pings the server; it fails if Redis is unreachable.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Host+":"+cfg.Port, err)
	}

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

func (c *RedisCache) Get(ctx context.Context, state models.SearchState) (models.TicketResults, bool) {
	data, err := c.client.Get(ctx, Key(state)).Bytes()
	if err != nil {
		return models.TicketResults{}, false
	}

	var results models.TicketResults
	if err := json.Unmarshal(data, &results); err != nil {
		return models.TicketResults{}, false
	}
	return results, true
}

func (c *RedisCache) Set(ctx context.Context, state models.SearchState, results models.TicketResults) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encoding ticket results: %w", err)
	}
	if err := c.client.Set(ctx, Key(state), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (NoOpCache) Get(context.Context, models.SearchState) (models.TicketResults, bool) {
	return models.TicketResults{}, false
}

func (NoOpCache) Set(context.Context, models.SearchState, models.TicketResults) error {
	return nil
}

func (NoOpCache) Close() error {
	return nil
}

// Key hashes the parts of state that change what the backend returns.
// Display-only location fields and the return date of a one-way search
// do not affect the key.
func Key(state models.SearchState) string {
	keyData := struct {
		Itinerary   string
		From        string
		To          string
		FlightDate  string
		ReturnDate  string
		TravelClass string
		Passengers  models.Passengers
	}{
		Itinerary:   string(state.Itinerary),
		From:        strings.ToUpper(state.Departure.AirportCode),
		To:          strings.ToUpper(state.Arrival.AirportCode),
		TravelClass: string(state.TravelClass),
		Passengers:  state.Passengers,
	}
	if state.FlightDate != nil {
		keyData.FlightDate = *state.FlightDate
	}
	if state.IsRoundTrip() && state.ReturnDate != nil {
		keyData.ReturnDate = *state.ReturnDate
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return KeyPrefix + hex.EncodeToString(hash[:])
}
