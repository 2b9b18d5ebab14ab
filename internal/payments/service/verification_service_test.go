package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casaloop/casaloop-backend/internal/payments/domain"
	"github.com/casaloop/casaloop-backend/internal/pi"
	usersdomain "github.com/casaloop/casaloop-backend/internal/users/domain"
)

type fakeGateway struct {
	payment     *pi.Payment
	getErr      error
	approveErr  error
	completeErr error
	approved    []string
	completed   []string
	completedTx []string
}

func (g *fakeGateway) GetPayment(ctx context.Context, paymentID string) (*pi.Payment, error) {
	if g.getErr != nil {
		return nil, g.getErr
	}
	return g.payment, nil
}

func (g *fakeGateway) ApprovePayment(ctx context.Context, paymentID string) error {
	g.approved = append(g.approved, paymentID)
	return g.approveErr
}

func (g *fakeGateway) CompletePayment(ctx context.Context, paymentID, txid string) error {
	if g.completeErr != nil {
		return g.completeErr
	}
	g.completed = append(g.completed, paymentID)
	g.completedTx = append(g.completedTx, txid)
	return nil
}

type fakeLogStore struct {
	logs   map[string]*domain.PaymentLog
	failed []*domain.FailedPayment
}

func newFakeLogStore() *fakeLogStore {
	return &fakeLogStore{logs: map[string]*domain.PaymentLog{}}
}

func (s *fakeLogStore) Create(ctx context.Context, log *domain.PaymentLog) error {
	if _, ok := s.logs[log.PaymentID]; ok {
		return domain.ErrDuplicatePayment
	}
	s.logs[log.PaymentID] = log
	return nil
}

func (s *fakeLogStore) Exists(ctx context.Context, paymentID string) (bool, error) {
	_, ok := s.logs[paymentID]
	return ok, nil
}

func (s *fakeLogStore) Get(ctx context.Context, paymentID string) (*domain.PaymentLog, error) {
	log, ok := s.logs[paymentID]
	if !ok {
		return nil, domain.ErrPaymentLogNotFound
	}
	return log, nil
}

func (s *fakeLogStore) AppendFailed(ctx context.Context, fp *domain.FailedPayment) error {
	s.failed = append(s.failed, fp)
	return nil
}

type fakeUsers struct {
	users    map[string]*usersdomain.User
	payments map[string][]usersdomain.PaymentRecord
	failures map[string]int
}

func newFakeUsers(users ...*usersdomain.User) *fakeUsers {
	f := &fakeUsers{
		users:    map[string]*usersdomain.User{},
		payments: map[string][]usersdomain.PaymentRecord{},
		failures: map[string]int{},
	}
	for _, u := range users {
		f.users[u.UID] = u
	}
	return f
}

func (f *fakeUsers) Get(ctx context.Context, uid string) (*usersdomain.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, usersdomain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) AppendPayment(ctx context.Context, uid string, rec usersdomain.PaymentRecord) error {
	f.payments[uid] = append(f.payments[uid], rec)
	return nil
}

func (f *fakeUsers) IncrementFailedPayments(ctx context.Context, uid string) error {
	f.failures[uid]++
	return nil
}

type fakeConfirmer struct {
	reservations map[string]string
	bookings     map[string]string
}

func newFakeConfirmer() *fakeConfirmer {
	return &fakeConfirmer{reservations: map[string]string{}, bookings: map[string]string{}}
}

func (f *fakeConfirmer) ConfirmReservation(ctx context.Context, reservationID, paymentID string, paidAt int64) error {
	f.reservations[reservationID] = paymentID
	return nil
}

func (f *fakeConfirmer) ConfirmBooking(ctx context.Context, bookingID, paymentID string, paidAt int64) error {
	f.bookings[bookingID] = paymentID
	return nil
}

type fakePayNotifier struct{ received int }

func (f *fakePayNotifier) NotifyPaymentReceived(ctx context.Context, userID string, amount float64, reference string) {
	f.received++
}

type fakeTracker struct{ counters []string }

func (f *fakeTracker) Track(ctx context.Context, uid, counter string) {
	f.counters = append(f.counters, counter)
}

type fakeTrust struct{ completed int }

func (f *fakeTrust) RecordCompletedTransaction(ctx context.Context, userID string) error {
	f.completed++
	return nil
}

type fixture struct {
	svc      *VerificationService
	gateway  *fakeGateway
	logs     *fakeLogStore
	users    *fakeUsers
	purposes *fakeConfirmer
	notifier *fakePayNotifier
	tracker  *fakeTracker
	trust    *fakeTrust
	redis    *redis.Client
}

func goodUser() *usersdomain.User {
	now := time.Now().UnixMilli()
	return &usersdomain.User{
		UID:       "pi_u1",
		Username:  "alice",
		CreatedAt: now - 90*24*time.Hour.Milliseconds(),
		Verified:  true,
		PaymentHistory: []usersdomain.PaymentRecord{
			{PaymentID: "PMT_old", Amount: 1, Timestamp: now - 48*time.Hour.Milliseconds(), Status: "completed"},
		},
	}
}

func verifiedPayment() *pi.Payment {
	return &pi.Payment{
		Identifier: "PMT_1",
		UserUID:    "pi_u1",
		Amount:     0.01,
		Status:     pi.PaymentStatus{TransactionVerified: true},
		Transaction: &pi.PaymentTransaction{
			TxID: "tx_abc", Verified: true,
		},
	}
}

func newFixture(t *testing.T, user *usersdomain.User, payment *pi.Payment) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	f := &fixture{
		gateway:  &fakeGateway{payment: payment},
		logs:     newFakeLogStore(),
		users:    newFakeUsers(user),
		purposes: newFakeConfirmer(),
		notifier: &fakePayNotifier{},
		tracker:  &fakeTracker{},
		trust:    &fakeTrust{},
		redis:    rdb,
	}
	f.svc = NewVerificationService(
		f.gateway, f.logs, f.users, f.purposes,
		f.notifier, f.tracker, f.trust, nil, rdb,
	)
	return f
}

func reservationRequest() *domain.VerifyRequest {
	return &domain.VerifyRequest{
		PaymentID:     "PMT_1",
		UserID:        "pi_u1",
		Amount:        0.01,
		Type:          domain.TypeReservation,
		ReservationID: "res_1",
	}
}

func verifyErr(t *testing.T, err error) *domain.VerifyError {
	t.Helper()
	var ve *domain.VerifyError
	require.ErrorAs(t, err, &ve)
	return ve
}

func TestVerifySuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, goodUser(), verifiedPayment())

	result, err := f.svc.Verify(ctx, reservationRequest())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "PMT_1", result.PaymentID)
	assert.Equal(t, "tx_abc", result.TxID)

	assert.Equal(t, []string{"PMT_1"}, f.gateway.approved)
	assert.Equal(t, []string{"PMT_1"}, f.gateway.completed)
	assert.Equal(t, []string{"tx_abc"}, f.gateway.completedTx)

	entry, err := f.logs.Get(ctx, "PMT_1")
	require.NoError(t, err)
	assert.Equal(t, "completed", entry.Status)
	assert.True(t, entry.Verified)
	assert.Equal(t, domain.TypeReservation, entry.Type)

	assert.Equal(t, "PMT_1", f.purposes.reservations["res_1"])
	assert.Len(t, f.users.payments["pi_u1"], 1)
	assert.Contains(t, f.tracker.counters, "transactionsCompleted")
	assert.Equal(t, 1, f.trust.completed)
	assert.Equal(t, 1, f.notifier.received)
}

func TestVerifyDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, goodUser(), verifiedPayment())

	_, err := f.svc.Verify(ctx, reservationRequest())
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, reservationRequest())
	ve := verifyErr(t, err)
	assert.Equal(t, http.StatusBadRequest, ve.Status)
	assert.True(t, ve.Duplicate)

	// No second completion reached the platform.
	assert.Len(t, f.gateway.completed, 1)
	assert.Len(t, f.users.payments["pi_u1"], 1)
}

func TestVerifyValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		mut    func(*domain.VerifyRequest)
		status int
		msg    string
	}{
		{"missing payment id", func(r *domain.VerifyRequest) { r.PaymentID = "" }, http.StatusBadRequest, "Missing required fields"},
		{"missing user id", func(r *domain.VerifyRequest) { r.UserID = "" }, http.StatusBadRequest, "Missing required fields"},
		{"zero amount", func(r *domain.VerifyRequest) { r.Amount = 0 }, http.StatusBadRequest, "Missing required fields"},
		{"bad type", func(r *domain.VerifyRequest) { r.Type = "donation" }, http.StatusBadRequest, "Missing required fields"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, goodUser(), verifiedPayment())
			req := reservationRequest()
			tc.mut(req)

			_, err := f.svc.Verify(ctx, req)
			ve := verifyErr(t, err)
			assert.Equal(t, tc.status, ve.Status)
			assert.Equal(t, tc.msg, ve.Message)
		})
	}
}

func TestVerifyRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t, goodUser(), verifiedPayment())
		req := reservationRequest()
		req.UserID = "pi_stranger"

		_, err := f.svc.Verify(ctx, req)
		ve := verifyErr(t, err)
		assert.Equal(t, http.StatusBadRequest, ve.Status)
		assert.Equal(t, "User account not found", ve.Message)
	})

	t.Run("banned user", func(t *testing.T) {
		u := goodUser()
		u.Banned = true
		f := newFixture(t, u, verifiedPayment())

		_, err := f.svc.Verify(ctx, reservationRequest())
		ve := verifyErr(t, err)
		assert.Equal(t, http.StatusForbidden, ve.Status)
	})

	t.Run("payment burst hits the hourly cap", func(t *testing.T) {
		u := goodUser()
		now := time.Now().UnixMilli()
		u.PaymentHistory = nil
		for i := 0; i < 10; i++ {
			u.PaymentHistory = append(u.PaymentHistory, usersdomain.PaymentRecord{
				PaymentID: "PMT_burst", Amount: 0.01, Timestamp: now - time.Minute.Milliseconds(), Status: "completed",
			})
		}
		f := newFixture(t, u, verifiedPayment())

		_, err := f.svc.Verify(ctx, reservationRequest())
		ve := verifyErr(t, err)
		assert.Equal(t, http.StatusTooManyRequests, ve.Status)
	})

	t.Run("platform lookup failure", func(t *testing.T) {
		f := newFixture(t, goodUser(), nil)
		f.gateway.getErr = errors.New("boom")

		_, err := f.svc.Verify(ctx, reservationRequest())
		ve := verifyErr(t, err)
		assert.Equal(t, http.StatusBadRequest, ve.Status)
		assert.Equal(t, "Payment verification failed", ve.Message)
		assert.Len(t, f.logs.failed, 1)
		assert.Equal(t, 1, f.users.failures["pi_u1"])
	})

	t.Run("payer mismatch", func(t *testing.T) {
		p := verifiedPayment()
		p.UserUID = "pi_other"
		f := newFixture(t, goodUser(), p)

		_, err := f.svc.Verify(ctx, reservationRequest())
		ve := verifyErr(t, err)
		assert.Equal(t, "User ID mismatch", ve.Message)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		p := verifiedPayment()
		p.Amount = 1.5
		f := newFixture(t, goodUser(), p)

		_, err := f.svc.Verify(ctx, reservationRequest())
		ve := verifyErr(t, err)
		assert.Equal(t, "Amount mismatch", ve.Message)
	})

	t.Run("unverified transaction", func(t *testing.T) {
		p := verifiedPayment()
		p.Status.TransactionVerified = false
		f := newFixture(t, goodUser(), p)

		_, err := f.svc.Verify(ctx, reservationRequest())
		ve := verifyErr(t, err)
		assert.Equal(t, "Payment not verified", ve.Message)
	})

	t.Run("cancelled payment", func(t *testing.T) {
		p := verifiedPayment()
		p.Status.Cancelled = true
		f := newFixture(t, goodUser(), p)

		_, err := f.svc.Verify(ctx, reservationRequest())
		ve := verifyErr(t, err)
		assert.Equal(t, "Payment was cancelled", ve.Message)
	})

	t.Run("completion failure is a server error and stays retryable", func(t *testing.T) {
		f := newFixture(t, goodUser(), verifiedPayment())
		f.gateway.completeErr = errors.New("platform down")

		_, err := f.svc.Verify(ctx, reservationRequest())
		ve := verifyErr(t, err)
		assert.Equal(t, http.StatusInternalServerError, ve.Status)

		// Nothing durable was written, so a retry can succeed.
		exists, _ := f.logs.Exists(ctx, "PMT_1")
		assert.False(t, exists)

		f.gateway.completeErr = nil
		result, err := f.svc.Verify(ctx, reservationRequest())
		require.NoError(t, err)
		assert.True(t, result.Success)
	})
}

func TestVerifyApproveFailureIsTolerated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, goodUser(), verifiedPayment())
	f.gateway.approveErr = errors.New("already approved")

	result, err := f.svc.Verify(ctx, reservationRequest())
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestVerifyBookingConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, goodUser(), verifiedPayment())

	req := reservationRequest()
	req.Type = domain.TypeServiceBooking
	req.ReservationID = ""
	req.BookingID = "bkg_1"

	_, err := f.svc.Verify(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "PMT_1", f.purposes.bookings["bkg_1"])
	assert.Empty(t, f.purposes.reservations)
}
