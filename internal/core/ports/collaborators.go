package ports

import (
	"context"
	"time"

	"github.com/pixelforge/storefront/internal/core/domain"
)

// Clock is the single time source of the core.
type Clock interface {
	Now() time.Time
}

// Notifier accepts events for asynchronous delivery. Notify must not block on
// delivery and never reports delivery failures to the caller.
type Notifier interface {
	Notify(event domain.Event)
}

// EventSink delivers one event to the notification channel.
type EventSink interface {
	Publish(ctx context.Context, event domain.Event) error
}

// ImageStore keeps product images and hands back a stable reference per
// accepted upload.
type ImageStore interface {
	Put(ctx context.Context, filename, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}
