package domain

import "errors"

// ErrNotificationNotFound means the notification id does not exist.
var ErrNotificationNotFound = errors.New("notification not found")

// Notification types.
const (
	TypeMessage  = "message"
	TypePayment  = "payment"
	TypeView     = "view"
	TypeReview   = "review"
	TypeSystem   = "system"
)

// Notification is one entry in a user's notification feed.
type Notification struct {
	ID        string            `firestore:"-" json:"id"`
	UserID    string            `firestore:"userId" json:"userId"`
	Type      string            `firestore:"type" json:"type"`
	Title     string            `firestore:"title" json:"title"`
	Message   string            `firestore:"message" json:"message"`
	Read      bool              `firestore:"read" json:"read"`
	CreatedAt int64             `firestore:"createdAt" json:"createdAt"`
	ActionURL string            `firestore:"actionUrl,omitempty" json:"actionUrl,omitempty"`
	Metadata  map[string]string `firestore:"metadata,omitempty" json:"metadata,omitempty"`
}
