package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/casaloop/casaloop-backend/internal/metrics"
	"github.com/casaloop/casaloop-backend/internal/notifications/domain"
)

// NotificationStore is the repository surface the service needs.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) (string, error)
	ListByUser(ctx context.Context, uid string, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, uid string) error
}

// NotificationService writes and serves the in-app notification feed.
// The Notify helpers are fire-and-forget: a feed write never fails the
// operation that triggered it.
type NotificationService struct {
	store NotificationStore
	now   func() int64
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{
		store: store,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// WithClock overrides the time source, for tests.
func (s *NotificationService) WithClock(now func() int64) *NotificationService {
	s.now = now
	return s
}

// List returns the user's feed, newest first.
func (s *NotificationService) List(ctx context.Context, uid string, limit int) ([]*domain.Notification, error) {
	return s.store.ListByUser(ctx, uid, limit)
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkRead(ctx, id)
}

// MarkAllRead flags the whole feed as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, uid string) error {
	return s.store.MarkAllRead(ctx, uid)
}

func (s *NotificationService) emit(ctx context.Context, n *domain.Notification) {
	n.CreatedAt = s.now()
	if _, err := s.store.Create(ctx, n); err != nil {
		log.Printf("[notifications] write failed user_id=%s type=%s: %v", n.UserID, n.Type, err)
		return
	}
	metrics.CountNotification(n.Type)
}

// NotifyNewMessage announces an incoming chat message.
func (s *NotificationService) NotifyNewMessage(ctx context.Context, userID, senderName, preview, conversationID string) {
	s.emit(ctx, &domain.Notification{
		UserID:    userID,
		Type:      domain.TypeMessage,
		Title:     "New message",
		Message:   fmt.Sprintf("%s: %s", senderName, preview),
		ActionURL: "/messages/" + conversationID,
		Metadata:  map[string]string{"conversationId": conversationID},
	})
}

// NotifyPaymentReceived announces a completed payment.
func (s *NotificationService) NotifyPaymentReceived(ctx context.Context, userID string, amount float64, reference string) {
	s.emit(ctx, &domain.Notification{
		UserID:   userID,
		Type:     domain.TypePayment,
		Title:    "Payment confirmed",
		Message:  fmt.Sprintf("Your payment of %.2f Pi was verified and completed.", amount),
		Metadata: map[string]string{"reference": reference},
	})
}

// NotifyPropertyView announces a listing view milestone to its owner.
func (s *NotificationService) NotifyPropertyView(ctx context.Context, ownerID, propertyID, propertyTitle string, views int64) {
	s.emit(ctx, &domain.Notification{
		UserID:    ownerID,
		Type:      domain.TypeView,
		Title:     "Your listing is getting attention",
		Message:   fmt.Sprintf("%q has reached %d views.", propertyTitle, views),
		ActionURL: "/listings/" + propertyID,
		Metadata:  map[string]string{"propertyId": propertyID},
	})
}

// NotifyNewReview announces a review on the user's listing or service.
func (s *NotificationService) NotifyNewReview(ctx context.Context, ownerID, reviewerName string, rating int, targetID string) {
	s.emit(ctx, &domain.Notification{
		UserID:   ownerID,
		Type:     domain.TypeReview,
		Title:    "New review",
		Message:  fmt.Sprintf("%s left you a %d-star review.", reviewerName, rating),
		Metadata: map[string]string{"targetId": targetID},
	})
}

// NotifySystem delivers a system announcement to one user.
func (s *NotificationService) NotifySystem(ctx context.Context, userID, title, message string) {
	s.emit(ctx, &domain.Notification{
		UserID:  userID,
		Type:    domain.TypeSystem,
		Title:   title,
		Message: message,
	})
}
