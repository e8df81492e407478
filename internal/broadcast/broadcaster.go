// Package broadcast раздает изменения занятости слотов через Redis pub/sub
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// SlotUpdate is the payload published on every occupancy change
type SlotUpdate struct {
	SlotID    string `json:"slot_id"`
	Remaining int    `json:"remaining"`
	IsFull    bool   `json:"is_full"`
}

// ChannelFor returns the pub/sub channel name for an event
func ChannelFor(eventID string) string {
	return "event:" + eventID
}

type Broadcaster struct {
	client *redis.Client
}

func NewBroadcaster(client *redis.Client) *Broadcaster {
	return &Broadcaster{client: client}
}

// Publish sends the update to every subscriber of the event channel
func (b *Broadcaster) Publish(ctx context.Context, eventID string, update SlotUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal slot update: %v", err)
	}

	if err := b.client.Publish(ctx, ChannelFor(eventID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish slot update: %v", err)
	}

	return nil
}

// Subscribe opens a subscription for the event channel; the caller owns the
// returned PubSub and must Close it
func (b *Broadcaster) Subscribe(ctx context.Context, eventID string) *redis.PubSub {
	return b.client.Subscribe(ctx, ChannelFor(eventID))
}
