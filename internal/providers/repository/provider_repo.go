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

	"github.com/casaloop/casaloop-backend/internal/providers/domain"
)

const (
	servicesCollection = "services"
	bookingsCollection = "bookings"
)

// ProviderRepository handles Firestore operations for service providers
// and their bookings.
type ProviderRepository struct {
	client *firestore.Client
}

// NewProviderRepository creates a new ProviderRepository.
func NewProviderRepository(client *firestore.Client) *ProviderRepository {
	return &ProviderRepository{client: client}
}

// CreateService writes a new provider listing.
func (r *ProviderRepository) CreateService(ctx context.Context, sp *domain.ServiceProvider) (*domain.ServiceProvider, error) {
	id := uuid.NewString()
	sp.Active = true
	sp.CreatedAt = time.Now().UnixMilli()
	if _, err := r.client.Collection(servicesCollection).Doc(id).Create(ctx, sp); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	sp.ID = id
	return sp, nil
}

// GetService retrieves a provider by id.
func (r *ProviderRepository) GetService(ctx context.Context, id string) (*domain.ServiceProvider, error) {
	snap, err := r.client.Collection(servicesCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	var sp domain.ServiceProvider
	if err := snap.DataTo(&sp); err != nil {
		return nil, fmt.Errorf("failed to decode service: %w", err)
	}
	sp.ID = snap.Ref.ID
	return &sp, nil
}

// ListServices returns active providers, optionally filtered by category.
func (r *ProviderRepository) ListServices(ctx context.Context, category string) ([]*domain.ServiceProvider, error) {
	q := r.client.Collection(servicesCollection).Where("active", "==", true)
	if category != "" {
		q = q.Where("category", "==", category)
	}
	iter := q.OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var items []*domain.ServiceProvider
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list services: %w", err)
		}

		var sp domain.ServiceProvider
		if err := snap.DataTo(&sp); err != nil {
			return nil, fmt.Errorf("failed to decode service: %w", err)
		}
		sp.ID = snap.Ref.ID
		items = append(items, &sp)
	}
	return items, nil
}

// UpdateService applies field updates to a provider document.
func (r *ProviderRepository) UpdateService(ctx context.Context, id string, updates []firestore.Update) error {
	_, err := r.client.Collection(servicesCollection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return domain.ErrServiceNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return nil
}

// DeactivateService soft-deletes a provider listing.
func (r *ProviderRepository) DeactivateService(ctx context.Context, id string) error {
	return r.UpdateService(ctx, id, []firestore.Update{{Path: "active", Value: false}})
}

// ApplyReview folds a new rating into the provider's running average
// inside a transaction.
func (r *ProviderRepository) ApplyReview(ctx context.Context, id string, rating int) error {
	ref := r.client.Collection(servicesCollection).Doc(id)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return domain.ErrServiceNotFound
		}
		if err != nil {
			return err
		}

		var sp domain.ServiceProvider
		if err := snap.DataTo(&sp); err != nil {
			return fmt.Errorf("failed to decode service: %w", err)
		}

		count := sp.ReviewCount + 1
		avg := (sp.Rating*float64(sp.ReviewCount) + float64(rating)) / float64(count)

		return tx.Update(ref, []firestore.Update{
			{Path: "rating", Value: avg},
			{Path: "reviewCount", Value: count},
		})
	})
}

// CreateBooking writes a new booking.
func (r *ProviderRepository) CreateBooking(ctx context.Context, b *domain.ServiceBooking) (*domain.ServiceBooking, error) {
	id := uuid.NewString()
	b.Status = domain.BookingPending
	b.CreatedAt = time.Now().UnixMilli()
	if _, err := r.client.Collection(bookingsCollection).Doc(id).Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	b.ID = id
	return b, nil
}

// GetBooking retrieves a booking by id.
func (r *ProviderRepository) GetBooking(ctx context.Context, id string) (*domain.ServiceBooking, error) {
	snap, err := r.client.Collection(bookingsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	var b domain.ServiceBooking
	if err := snap.DataTo(&b); err != nil {
		return nil, fmt.Errorf("failed to decode booking: %w", err)
	}
	b.ID = snap.Ref.ID
	return &b, nil
}

// ListBookingsByCustomer returns a customer's bookings, newest first.
func (r *ProviderRepository) ListBookingsByCustomer(ctx context.Context, uid string) ([]*domain.ServiceBooking, error) {
	return r.listBookings(ctx, "customerId", uid)
}

// ListBookingsByProvider returns a provider's incoming bookings.
func (r *ProviderRepository) ListBookingsByProvider(ctx context.Context, uid string) ([]*domain.ServiceBooking, error) {
	return r.listBookings(ctx, "providerId", uid)
}

func (r *ProviderRepository) listBookings(ctx context.Context, field, uid string) ([]*domain.ServiceBooking, error) {
	iter := r.client.Collection(bookingsCollection).
		Where(field, "==", uid).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var items []*domain.ServiceBooking
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list bookings: %w", err)
		}

		var b domain.ServiceBooking
		if err := snap.DataTo(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		b.ID = snap.Ref.ID
		items = append(items, &b)
	}
	return items, nil
}

// SetBookingStatus moves a booking to the given status.
func (r *ProviderRepository) SetBookingStatus(ctx context.Context, id, bookingStatus string) error {
	_, err := r.client.Collection(bookingsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: bookingStatus},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// ConfirmBookingPayment marks a booking paid and confirmed.
func (r *ProviderRepository) ConfirmBookingPayment(ctx context.Context, id, paymentID string, paidAt int64) error {
	_, err := r.client.Collection(bookingsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: domain.BookingConfirmed},
		{Path: "paymentId", Value: paymentID},
		{Path: "paidAt", Value: paidAt},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to confirm booking payment: %w", err)
	}
	return nil
}
