package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	listingsdomain "github.com/casaloop/casaloop-backend/internal/listings/domain"
	"github.com/casaloop/casaloop-backend/internal/reservations/domain"
)

type fakeReservationStore struct {
	created  []*domain.Reservation
	statuses map[string]string
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{statuses: map[string]string{}}
}

func (s *fakeReservationStore) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	res.ID = "res_1"
	res.Status = domain.StatusReserved
	s.created = append(s.created, res)
	return res, nil
}

func (s *fakeReservationStore) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	for _, r := range s.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrReservationNotFound
}

func (s *fakeReservationStore) ListByUser(ctx context.Context, uid string) ([]*domain.Reservation, error) {
	return s.created, nil
}

func (s *fakeReservationStore) SetStatus(ctx context.Context, id, status string) error {
	s.statuses[id] = status
	return nil
}

func (s *fakeReservationStore) ConfirmPayment(ctx context.Context, id, paymentID string, paidAt int64) error {
	s.statuses[id] = domain.StatusConfirmed
	return nil
}

type fakePropertyStore struct {
	prop *listingsdomain.Property
}

func (s *fakePropertyStore) Get(ctx context.Context, id string) (*listingsdomain.Property, error) {
	if s.prop == nil || s.prop.ID != id {
		return nil, listingsdomain.ErrPropertyNotFound
	}
	return s.prop, nil
}

type recordingNotifier struct{ recipients []string }

func (n *recordingNotifier) NotifySystem(ctx context.Context, userID, title, message string) {
	n.recipients = append(n.recipients, userID)
}

func TestReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("deposit comes from the listing price", func(t *testing.T) {
		store := newFakeReservationStore()
		notifier := &recordingNotifier{}
		props := &fakePropertyStore{prop: &listingsdomain.Property{
			ID: "prop_1", Title: "Beach villa", Price: 500, UserID: "owner",
		}}
		svc := NewReservationService(store, props, notifier)

		res, err := svc.Reserve(ctx, "prop_1", "buyer")
		require.NoError(t, err)
		assert.InDelta(t, 500.0, res.Amount, 1e-9)
		assert.Equal(t, "owner", res.OwnerID)
		assert.Equal(t, domain.StatusReserved, res.Status)
		assert.Equal(t, []string{"owner"}, notifier.recipients)
	})

	t.Run("unknown listing", func(t *testing.T) {
		svc := NewReservationService(newFakeReservationStore(), &fakePropertyStore{}, &recordingNotifier{})

		_, err := svc.Reserve(ctx, "prop_missing", "buyer")
		assert.ErrorIs(t, err, listingsdomain.ErrPropertyNotFound)
	})
}

func TestReservationAccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeReservationStore()
	props := &fakePropertyStore{prop: &listingsdomain.Property{
		ID: "prop_1", Title: "Beach villa", Price: 500, UserID: "owner",
	}}
	svc := NewReservationService(store, props, &recordingNotifier{})

	_, err := svc.Reserve(ctx, "prop_1", "buyer")
	require.NoError(t, err)

	t.Run("reserver and owner can read", func(t *testing.T) {
		for _, uid := range []string{"buyer", "owner"} {
			_, err := svc.Get(ctx, "res_1", uid)
			assert.NoError(t, err, uid)
		}

		_, err := svc.Get(ctx, "res_1", "stranger")
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("only the reserver can cancel", func(t *testing.T) {
		assert.ErrorIs(t, svc.Cancel(ctx, "res_1", "owner"), domain.ErrNotOwner)

		require.NoError(t, svc.Cancel(ctx, "res_1", "buyer"))
		assert.Equal(t, domain.StatusCancelled, store.statuses["res_1"])
	})
}
