package domain

import "errors"

var (
	// ErrReservationNotFound means the reservation id does not exist.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrNotOwner means the caller did not make the reservation.
	ErrNotOwner = errors.New("not the reservation owner")
)

// Reservation statuses.
const (
	StatusReserved  = "reserved"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Reservation is a hold on a property pending payment.
type Reservation struct {
	ID            string  `firestore:"-" json:"id"`
	PropertyID    string  `firestore:"propertyId" json:"propertyId"`
	PropertyTitle string  `firestore:"propertyTitle,omitempty" json:"propertyTitle,omitempty"`
	UserID        string  `firestore:"userId" json:"userId"`
	OwnerID       string  `firestore:"ownerId" json:"ownerId"`
	Amount        float64 `firestore:"amount" json:"amount"`
	Status        string  `firestore:"status" json:"status"`
	PaymentID     string  `firestore:"paymentId,omitempty" json:"paymentId,omitempty"`
	PaidAt        int64   `firestore:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt     int64   `firestore:"createdAt" json:"createdAt"`
}
