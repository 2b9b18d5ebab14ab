package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/casaloop/casaloop-backend/internal/reservations/domain"
)

const reservationsCollection = "reservations"

// ReservationRepository handles Firestore operations for reservations.
type ReservationRepository struct {
	client *firestore.Client
}

// NewReservationRepository creates a new ReservationRepository.
func NewReservationRepository(client *firestore.Client) *ReservationRepository {
	return &ReservationRepository{client: client}
}

func (r *ReservationRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(reservationsCollection).Doc(id)
}

// Create writes a new reservation in the reserved state.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	id := uuid.NewString()
	res.Status = domain.StatusReserved
	res.CreatedAt = time.Now().UnixMilli()
	if _, err := r.doc(id).Create(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	res.ID = id
	return res, nil
}

// Get retrieves a reservation by id.
func (r *ReservationRepository) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	snap, err := r.doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	var res domain.Reservation
	if err := snap.DataTo(&res); err != nil {
		return nil, fmt.Errorf("failed to decode reservation: %w", err)
	}
	res.ID = snap.Ref.ID
	return &res, nil
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepository) ListByUser(ctx context.Context, uid string) ([]*domain.Reservation, error) {
	iter := r.client.Collection(reservationsCollection).
		Where("userId", "==", uid).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var items []*domain.Reservation
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list reservations: %w", err)
		}

		var res domain.Reservation
		if err := snap.DataTo(&res); err != nil {
			return nil, fmt.Errorf("failed to decode reservation: %w", err)
		}
		res.ID = snap.Ref.ID
		items = append(items, &res)
	}
	return items, nil
}

// SetStatus moves a reservation to the given status.
func (r *ReservationRepository) SetStatus(ctx context.Context, id, resStatus string) error {
	_, err := r.doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: resStatus},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrReservationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	return nil
}

// ConfirmPayment marks the reservation paid and confirmed.
func (r *ReservationRepository) ConfirmPayment(ctx context.Context, id, paymentID string, paidAt int64) error {
	_, err := r.doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: domain.StatusConfirmed},
		{Path: "paymentId", Value: paymentID},
		{Path: "paidAt", Value: paidAt},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrReservationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to confirm reservation payment: %w", err)
	}
	return nil
}
