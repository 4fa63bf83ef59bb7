package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pixelforge/storefront/internal/core/domain"
)

const defaultDedupTTL = 24 * time.Hour

// NotificationDedup suppresses repeated deliveries of the same event.
// Key format: dedup:notify:<kind>:<subject>
type NotificationDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewNotificationDedup wraps client. ttl <= 0 selects a 24h window.
func NewNotificationDedup(client *redis.Client, ttl time.Duration) *NotificationDedup {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &NotificationDedup{client: client, ttl: ttl}
}

// Claim marks the event as delivered and reports whether this call was the
// first to do so within the window. Marking happens before delivery, so a
// failed publish is not retried.
func (d *NotificationDedup) Claim(ctx context.Context, e domain.Event) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(e), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

func (d *NotificationDedup) key(e domain.Event) string {
	return fmt.Sprintf("dedup:notify:%s:%s", e.Kind, e.Subject)
}
