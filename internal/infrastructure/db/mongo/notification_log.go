package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pixelforge/storefront/internal/core/domain"
)

// NotificationLog is an EventSink that appends events to the notifications
// audit collection. Used when no message broker is configured.
type NotificationLog struct {
	col *mongo.Collection
	now func() time.Time
}

func NewNotificationLog(db *mongo.Database) *NotificationLog {
	return &NotificationLog{col: db.Collection(collectionNotifications), now: time.Now}
}

type notificationDoc struct {
	Kind        string            `bson:"kind"`
	Subject     string            `bson:"subject"`
	Recipient   string            `bson:"recipient,omitempty"`
	Attributes  map[string]string `bson:"attributes,omitempty"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	ProcessedAt time.Time         `bson:"processed_at"`
}

func (l *NotificationLog) Publish(ctx context.Context, e domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := l.col.InsertOne(ctx, notificationDoc{
		Kind:        string(e.Kind),
		Subject:     e.Subject,
		Recipient:   e.Recipient,
		Attributes:  e.Attributes,
		OccurredAt:  e.OccurredAt.UTC(),
		ProcessedAt: l.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
