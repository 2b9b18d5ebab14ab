package service

import (
	"context"
	"log"

	"github.com/casaloop/casaloop-backend/internal/reservations/domain"

	listingsdomain "github.com/casaloop/casaloop-backend/internal/listings/domain"
)

// ReservationStore is the repository surface the service needs.
type ReservationStore interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	ListByUser(ctx context.Context, uid string) ([]*domain.Reservation, error)
	SetStatus(ctx context.Context, id, status string) error
	ConfirmPayment(ctx context.Context, id, paymentID string, paidAt int64) error
}

// PropertyStore resolves the listing being reserved.
type PropertyStore interface {
	Get(ctx context.Context, id string) (*listingsdomain.Property, error)
}

// Notifier announces reservations to property owners.
type Notifier interface {
	NotifySystem(ctx context.Context, userID, title, message string)
}

// ReservationService implements property reservations.
type ReservationService struct {
	store      ReservationStore
	properties PropertyStore
	notifier   Notifier
}

// NewReservationService creates a ReservationService.
func NewReservationService(store ReservationStore, properties PropertyStore, notifier Notifier) *ReservationService {
	return &ReservationService{store: store, properties: properties, notifier: notifier}
}

// Reserve places a hold on a property. The deposit amount is derived
// server-side from the listing, never taken from the client.
func (s *ReservationService) Reserve(ctx context.Context, propertyID, uid string) (*domain.Reservation, error) {
	prop, err := s.properties.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		PropertyID:    propertyID,
		PropertyTitle: prop.Title,
		UserID:        uid,
		OwnerID:       prop.UserID,
		Amount:        prop.Price,
	}
	res, err = s.store.Create(ctx, res)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifySystem(ctx, prop.UserID, "Property reserved",
		prop.Title+" was reserved pending payment.")

	log.Printf("[reservations] created reservation_id=%s property_id=%s amount=%.2f",
		res.ID, propertyID, res.Amount)
	return res, nil
}

// Mine lists the caller's reservations.
func (s *ReservationService) Mine(ctx context.Context, uid string) ([]*domain.Reservation, error) {
	return s.store.ListByUser(ctx, uid)
}

// Get returns one reservation after an ownership check. The reserver
// and the property owner may both read it.
func (s *ReservationService) Get(ctx context.Context, id, uid string) (*domain.Reservation, error) {
	res, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != uid && res.OwnerID != uid {
		return nil, domain.ErrNotOwner
	}
	return res, nil
}

// Cancel releases an unpaid reservation.
func (s *ReservationService) Cancel(ctx context.Context, id, uid string) error {
	res, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if res.UserID != uid {
		return domain.ErrNotOwner
	}
	return s.store.SetStatus(ctx, id, domain.StatusCancelled)
}

// ConfirmReservation satisfies the payment flow's confirmer interface.
func (s *ReservationService) ConfirmReservation(ctx context.Context, reservationID, paymentID string, paidAt int64) error {
	return s.store.ConfirmPayment(ctx, reservationID, paymentID, paidAt)
}
