package service

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"

	"github.com/casaloop/casaloop-backend/internal/providers/domain"
)

// ProviderStore is the repository surface the service needs.
type ProviderStore interface {
	CreateService(ctx context.Context, sp *domain.ServiceProvider) (*domain.ServiceProvider, error)
	GetService(ctx context.Context, id string) (*domain.ServiceProvider, error)
	ListServices(ctx context.Context, category string) ([]*domain.ServiceProvider, error)
	UpdateService(ctx context.Context, id string, updates []firestore.Update) error
	DeactivateService(ctx context.Context, id string) error
	CreateBooking(ctx context.Context, b *domain.ServiceBooking) (*domain.ServiceBooking, error)
	GetBooking(ctx context.Context, id string) (*domain.ServiceBooking, error)
	ListBookingsByCustomer(ctx context.Context, uid string) ([]*domain.ServiceBooking, error)
	ListBookingsByProvider(ctx context.Context, uid string) ([]*domain.ServiceBooking, error)
	SetBookingStatus(ctx context.Context, id, status string) error
}

// QuestTracker records quest progress for browsing services.
type QuestTracker interface {
	Track(ctx context.Context, uid, counter string)
}

// Notifier announces booking events to providers.
type Notifier interface {
	NotifySystem(ctx context.Context, userID, title, message string)
}

// ProviderService implements home-service listings and bookings.
type ProviderService struct {
	store    ProviderStore
	quests   QuestTracker
	notifier Notifier
}

// NewProviderService creates a ProviderService.
func NewProviderService(store ProviderStore, quests QuestTracker, notifier Notifier) *ProviderService {
	return &ProviderService{store: store, quests: quests, notifier: notifier}
}

// Create publishes a new provider listing.
func (s *ProviderService) Create(ctx context.Context, sp *domain.ServiceProvider) (*domain.ServiceProvider, error) {
	return s.store.CreateService(ctx, sp)
}

// Browse lists active providers and counts the view for quests.
func (s *ProviderService) Browse(ctx context.Context, uid, category string) ([]*domain.ServiceProvider, error) {
	items, err := s.store.ListServices(ctx, category)
	if err != nil {
		return nil, err
	}
	if uid != "" {
		s.quests.Track(ctx, uid, "servicesViewed")
	}
	return items, nil
}

// Get returns one provider listing.
func (s *ProviderService) Get(ctx context.Context, id string) (*domain.ServiceProvider, error) {
	return s.store.GetService(ctx, id)
}

// Update applies field updates after an ownership check.
func (s *ProviderService) Update(ctx context.Context, id, uid string, updates []firestore.Update) error {
	sp, err := s.store.GetService(ctx, id)
	if err != nil {
		return err
	}
	if sp.OwnerID != uid {
		return domain.ErrNotOwner
	}
	return s.store.UpdateService(ctx, id, updates)
}

// Deactivate soft-deletes a provider listing after an ownership check.
func (s *ProviderService) Deactivate(ctx context.Context, id, uid string) error {
	sp, err := s.store.GetService(ctx, id)
	if err != nil {
		return err
	}
	if sp.OwnerID != uid {
		return domain.ErrNotOwner
	}
	return s.store.DeactivateService(ctx, id)
}

// Book creates a pending booking. The price is always derived from the
// provider's current rate, never taken from the client.
func (s *ProviderService) Book(ctx context.Context, serviceID, customerID, date, timeSlot, notes string, hours float64) (*domain.ServiceBooking, error) {
	if hours <= 0 {
		return nil, domain.ErrInvalidHours
	}

	sp, err := s.store.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	booking := &domain.ServiceBooking{
		ServiceID:   serviceID,
		ServiceName: sp.Name,
		ProviderID:  sp.OwnerID,
		CustomerID:  customerID,
		Date:        date,
		Time:        timeSlot,
		Hours:       hours,
		TotalPrice:  hours * sp.PricePerHour,
		Notes:       notes,
	}
	booking, err = s.store.CreateBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifySystem(ctx, sp.OwnerID, "New booking request",
		sp.Name+" was booked for "+date+" "+timeSlot+".")

	log.Printf("[providers] booking created booking_id=%s service_id=%s total=%.2f",
		booking.ID, serviceID, booking.TotalPrice)
	return booking, nil
}

// MyBookings lists the caller's bookings as customer.
func (s *ProviderService) MyBookings(ctx context.Context, uid string) ([]*domain.ServiceBooking, error) {
	return s.store.ListBookingsByCustomer(ctx, uid)
}

// IncomingBookings lists bookings against the caller's services.
func (s *ProviderService) IncomingBookings(ctx context.Context, uid string) ([]*domain.ServiceBooking, error) {
	return s.store.ListBookingsByProvider(ctx, uid)
}

// Cancel moves a booking to cancelled. Either party may cancel.
func (s *ProviderService) Cancel(ctx context.Context, bookingID, uid string) error {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.CustomerID != uid && b.ProviderID != uid {
		return domain.ErrNotOwner
	}
	return s.store.SetBookingStatus(ctx, bookingID, domain.BookingCancelled)
}

// Complete moves a booking to completed. Only the provider may complete.
func (s *ProviderService) Complete(ctx context.Context, bookingID, uid string) error {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.ProviderID != uid {
		return domain.ErrNotOwner
	}
	return s.store.SetBookingStatus(ctx, bookingID, domain.BookingCompleted)
}
