package domain

import "errors"

var (
	// ErrServiceNotFound means the provider id does not exist.
	ErrServiceNotFound = errors.New("service not found")

	// ErrBookingNotFound means the booking id does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotOwner means the caller does not own the record.
	ErrNotOwner = errors.New("not the owner")

	// ErrInvalidHours rejects non-positive booking durations.
	ErrInvalidHours = errors.New("hours must be positive")
)

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// ServiceProvider is a home-services listing (plumber, cleaner, ...).
type ServiceProvider struct {
	ID           string   `firestore:"-" json:"id"`
	OwnerID      string   `firestore:"ownerId" json:"ownerId"`
	OwnerName    string   `firestore:"ownerName,omitempty" json:"ownerName,omitempty"`
	Name         string   `firestore:"name" json:"name"`
	Category     string   `firestore:"category" json:"category"`
	Description  string   `firestore:"description" json:"description"`
	PricePerHour float64  `firestore:"pricePerHour" json:"pricePerHour"`
	Skills       []string `firestore:"skills,omitempty" json:"skills,omitempty"`
	Experience   string   `firestore:"experience,omitempty" json:"experience,omitempty"`
	Availability string   `firestore:"availability,omitempty" json:"availability,omitempty"`
	Location     string   `firestore:"location,omitempty" json:"location,omitempty"`
	Images       []string `firestore:"images,omitempty" json:"images,omitempty"`
	Rating       float64  `firestore:"rating" json:"rating"`
	ReviewCount  int64    `firestore:"reviewCount" json:"reviewCount"`
	Active       bool     `firestore:"active" json:"active"`
	CreatedAt    int64    `firestore:"createdAt" json:"createdAt"`
}

// ServiceBooking is a booked time block against a provider.
// TotalPrice is always Hours times the provider's rate at booking time.
type ServiceBooking struct {
	ID          string  `firestore:"-" json:"id"`
	ServiceID   string  `firestore:"serviceId" json:"serviceId"`
	ServiceName string  `firestore:"serviceName,omitempty" json:"serviceName,omitempty"`
	ProviderID  string  `firestore:"providerId" json:"providerId"`
	CustomerID  string  `firestore:"customerId" json:"customerId"`
	Date        string  `firestore:"date" json:"date"`
	Time        string  `firestore:"time" json:"time"`
	Hours       float64 `firestore:"hours" json:"hours"`
	TotalPrice  float64 `firestore:"totalPrice" json:"totalPrice"`
	Notes       string  `firestore:"notes,omitempty" json:"notes,omitempty"`
	Status      string  `firestore:"status" json:"status"`
	PaymentID   string  `firestore:"paymentId,omitempty" json:"paymentId,omitempty"`
	PaidAt      int64   `firestore:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt   int64   `firestore:"createdAt" json:"createdAt"`
}
