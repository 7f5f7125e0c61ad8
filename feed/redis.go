// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis pub/sub channel carrying candidate changes.
const DefaultChannel = "tally:changes"

// NewRedisClient connects to Redis from a redis:// URL and pings it.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisBroker carries notifications over Redis pub/sub so every server
// process sees writes made by any other.
type RedisBroker struct {
	client  *redis.Client
	channel string
}

// RedisOption configures a RedisBroker.
type RedisOption func(*RedisBroker)

// WithChannel overrides the pub/sub channel name.
func WithChannel(name string) RedisOption {
	return func(b *RedisBroker) {
		if name != "" {
			b.channel = name
		}
	}
}

// NewRedisBroker wraps an open client. The broker owns the client and
// closes it on Close.
func NewRedisBroker(client *redis.Client, opts ...RedisOption) *RedisBroker {
	b := &RedisBroker{client: client, channel: DefaultChannel}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Publish encodes c as JSON and publishes it.
func (b *RedisBroker) Publish(ctx context.Context, c Change) error {
	if c.At.IsZero() {
		c.At = time.Now()
	}
	payload, err := encodeChange(c)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe opens a dedicated pub/sub connection for this subscriber and
// forwards matching changes until Close.
func (b *RedisBroker) Subscribe(ctx context.Context, f Filter) (*Subscription, error) {
	ps := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so no publish is missed
	// between Subscribe returning and the first receive.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan Change, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			c, err := decodeChange(msg.Payload)
			if err != nil {
				slog.Warn("ignoring malformed change notification", "error", err)
				continue
			}
			if !f.Match(c) {
				continue
			}
			select {
			case out <- c:
			default:
				slog.Warn("dropping change notification, subscriber backlog full",
					"type", c.Type, "row_id", c.RowID())
			}
		}
	}()

	return &Subscription{
		C:      out,
		filter: f,
		stop: func() {
			if err := ps.Close(); err != nil {
				slog.Warn("failed to close redis subscription", "error", err)
			}
		},
	}, nil
}

// Close closes the underlying client.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}

func encodeChange(c Change) ([]byte, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode change: %w", err)
	}
	return payload, nil
}

func decodeChange(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	if c.Type == "" {
		return Change{}, fmt.Errorf("decode change: missing type")
	}
	return c, nil
}
