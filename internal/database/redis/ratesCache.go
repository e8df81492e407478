package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const ratesKey = "fx:rates"

// RatesCache хранит таблицу курсов валют в Redis с TTL
type RatesCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRatesCache(client *redis.Client, ttl time.Duration) *RatesCache {
	return &RatesCache{
		client: client,
		ttl:    ttl,
	}
}

// Get возвращает кэшированную таблицу курсов или nil при промахе
func (c *RatesCache) Get(ctx context.Context) (map[string]float64, error) {
	data, err := c.client.Get(ctx, ratesKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rates from cache: %v", err)
	}

	var rates map[string]float64
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached rates: %v", err)
	}

	return rates, nil
}

func (c *RatesCache) Set(ctx context.Context, rates map[string]float64) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("failed to marshal rates: %v", err)
	}

	if err := c.client.Set(ctx, ratesKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rates: %v", err)
	}

	return nil
}
