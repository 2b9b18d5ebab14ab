package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/casaloop/casaloop-backend/internal/notifications/domain"
)

const notificationsCollection = "notifications"

// NotificationRepository handles Firestore operations for notifications.
type NotificationRepository struct {
	client *firestore.Client
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(client *firestore.Client) *NotificationRepository {
	return &NotificationRepository{client: client}
}

// Create writes a notification and returns its id.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (string, error) {
	id := uuid.NewString()
	if _, err := r.client.Collection(notificationsCollection).Doc(id).Create(ctx, n); err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}
	return id, nil
}

// ListByUser returns the user's notifications, newest first, capped at
// limit (0 means 50).
func (r *NotificationRepository) ListByUser(ctx context.Context, uid string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	iter := r.client.Collection(notificationsCollection).
		Where("userId", "==", uid).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var items []*domain.Notification
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list notifications: %w", err)
		}

		var n domain.Notification
		if err := snap.DataTo(&n); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		n.ID = snap.Ref.ID
		items = append(items, &n)
	}
	return items, nil
}

// MarkRead flags one notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.client.Collection(notificationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead flags every unread notification of the user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, uid string) error {
	iter := r.client.Collection(notificationsCollection).
		Where("userId", "==", uid).
		Where("read", "==", false).
		Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list unread notifications: %w", err)
		}
		if _, err := bw.Update(snap.Ref, []firestore.Update{{Path: "read", Value: true}}); err != nil {
			return fmt.Errorf("failed to queue read update: %w", err)
		}
	}
	bw.End()
	return nil
}
