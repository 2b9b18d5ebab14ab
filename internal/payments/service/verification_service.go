package service

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/casaloop/casaloop-backend/internal/metrics"
	"github.com/casaloop/casaloop-backend/internal/payments/domain"
	"github.com/casaloop/casaloop-backend/internal/payments/fraud"
	"github.com/casaloop/casaloop-backend/internal/pi"
	usersdomain "github.com/casaloop/casaloop-backend/internal/users/domain"
)

const (
	// lockTTL bounds how long a crashed request can hold a payment lock.
	lockTTL = 2 * time.Minute

	// maxPaymentsPerHour caps completed payments per user per hour.
	maxPaymentsPerHour = 10
)

// PiGateway is the slice of the Pi platform client the flow needs.
type PiGateway interface {
	GetPayment(ctx context.Context, paymentID string) (*pi.Payment, error)
	ApprovePayment(ctx context.Context, paymentID string) error
	CompletePayment(ctx context.Context, paymentID, txid string) error
}

// PaymentLogStore persists idempotency and failure records.
type PaymentLogStore interface {
	Create(ctx context.Context, log *domain.PaymentLog) error
	Exists(ctx context.Context, paymentID string) (bool, error)
	Get(ctx context.Context, paymentID string) (*domain.PaymentLog, error)
	AppendFailed(ctx context.Context, fp *domain.FailedPayment) error
}

// UserStore is the slice of the user repository the flow needs.
type UserStore interface {
	Get(ctx context.Context, uid string) (*usersdomain.User, error)
	AppendPayment(ctx context.Context, uid string, rec usersdomain.PaymentRecord) error
	IncrementFailedPayments(ctx context.Context, uid string) error
}

// PurposeConfirmer marks the reservation or booking paid on success.
type PurposeConfirmer interface {
	ConfirmReservation(ctx context.Context, reservationID, paymentID string, paidAt int64) error
	ConfirmBooking(ctx context.Context, bookingID, paymentID string, paidAt int64) error
}

// Notifier fans out the payment-received notification.
type Notifier interface {
	NotifyPaymentReceived(ctx context.Context, userID string, amount float64, reference string)
}

// QuestTracker records quest progress for completed transactions.
type QuestTracker interface {
	Track(ctx context.Context, uid, counter string)
}

// TrustRecorder feeds the trust model's transaction history.
type TrustRecorder interface {
	RecordCompletedTransaction(ctx context.Context, userID string) error
}

// AnalyticsSink mirrors transaction outcomes to the analytics store.
// Implementations must tolerate being a no-op.
type AnalyticsSink interface {
	LogTransaction(ctx context.Context, paymentID, userID string, amount float64, status string)
	LogFailedPayment(ctx context.Context, paymentID, userID string, amount float64, reason string)
}

// VerificationService confirms client-asserted payments against the Pi
// platform and atomically marks them processed.
type VerificationService struct {
	gateway   PiGateway
	logs      PaymentLogStore
	users     UserStore
	purposes  PurposeConfirmer
	notifier  Notifier
	quests    QuestTracker
	trust     TrustRecorder
	analytics AnalyticsSink
	redis     *redis.Client
}

// NewVerificationService wires the verification flow.
func NewVerificationService(
	gateway PiGateway,
	logs PaymentLogStore,
	users UserStore,
	purposes PurposeConfirmer,
	notifier Notifier,
	quests QuestTracker,
	trust TrustRecorder,
	analytics AnalyticsSink,
	redisClient *redis.Client,
) *VerificationService {
	return &VerificationService{
		gateway:   gateway,
		logs:      logs,
		users:     users,
		purposes:  purposes,
		notifier:  notifier,
		quests:    quests,
		trust:     trust,
		analytics: analytics,
		redis:     redisClient,
	}
}

// Verify runs the full verification flow. Failures are returned as
// *domain.VerifyError with their HTTP mapping; anything else is a 500.
func (s *VerificationService) Verify(ctx context.Context, req *domain.VerifyRequest) (*domain.VerifyResult, error) {
	start := time.Now()
	result, err := s.verify(ctx, req)
	metrics.ObservePaymentVerification(time.Since(start), err)
	return result, err
}

func (s *VerificationService) verify(ctx context.Context, req *domain.VerifyRequest) (*domain.VerifyResult, error) {
	if req.PaymentID == "" || req.UserID == "" || req.Amount <= 0 || !req.ValidType() {
		return nil, domain.NewVerifyError(http.StatusBadRequest, "Missing required fields")
	}

	log.Printf("[payments] verification request payment_id=%s user_id=%s amount=%f type=%s",
		req.PaymentID, req.UserID, req.Amount, req.Type)

	user, err := s.users.Get(ctx, req.UserID)
	if err == usersdomain.ErrUserNotFound {
		return nil, domain.NewVerifyError(http.StatusBadRequest, "User account not found")
	}
	if err != nil {
		return nil, err
	}
	if user.Banned {
		return nil, domain.NewVerifyError(http.StatusForbidden, "Account is banned")
	}

	now := time.Now().UnixMilli()
	if fraud.RecentPayments(user, now, time.Hour) >= maxPaymentsPerHour {
		return nil, domain.NewVerifyError(http.StatusTooManyRequests,
			"Too many transactions. Please wait before making another payment.")
	}

	// Close the concurrent-replay window: only one in-flight verification
	// per payment id. The durable guard is the log document below.
	if s.redis != nil {
		acquired, lockErr := s.redis.SetNX(ctx, "paylock:"+req.PaymentID, req.UserID, lockTTL).Result()
		if lockErr != nil {
			log.Printf("[payments] payment lock unavailable: %v", lockErr)
		} else if !acquired {
			return nil, &domain.VerifyError{
				Status:    http.StatusBadRequest,
				Message:   "Payment already processed",
				Duplicate: true,
			}
		} else {
			defer s.redis.Del(context.WithoutCancel(ctx), "paylock:"+req.PaymentID)
		}
	}

	exists, err := s.logs.Exists(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.VerifyError{
			Status:    http.StatusBadRequest,
			Message:   "Payment already processed",
			Duplicate: true,
		}
	}

	payment, err := s.gateway.GetPayment(ctx, req.PaymentID)
	if err != nil {
		log.Printf("[payments] platform lookup failed payment_id=%s: %v", req.PaymentID, err)
		s.recordFailure(ctx, req, "platform lookup failed")
		return nil, domain.NewVerifyError(http.StatusBadRequest, "Payment verification failed")
	}

	if payment.UserUID != req.UserID {
		s.recordFailure(ctx, req, "user id mismatch")
		return nil, domain.NewVerifyError(http.StatusBadRequest, "User ID mismatch")
	}
	if payment.Amount != req.Amount {
		s.recordFailure(ctx, req, "amount mismatch")
		return nil, domain.NewVerifyError(http.StatusBadRequest, "Amount mismatch")
	}
	if !payment.Status.TransactionVerified {
		s.recordFailure(ctx, req, "transaction not verified")
		return nil, domain.NewVerifyError(http.StatusBadRequest, "Payment not verified")
	}
	if payment.Status.Cancelled || payment.Status.UserCancelled {
		s.recordFailure(ctx, req, "payment cancelled")
		return nil, domain.NewVerifyError(http.StatusBadRequest, "Payment was cancelled")
	}

	if err := s.gateway.ApprovePayment(ctx, req.PaymentID); err != nil {
		// The platform treats a repeated approve as a no-op; completion
		// below is the authoritative step.
		log.Printf("[payments] approve failed payment_id=%s: %v", req.PaymentID, err)
	}

	txid := payment.TxID()
	if err := s.gateway.CompletePayment(ctx, req.PaymentID, txid); err != nil {
		log.Printf("[payments] complete failed payment_id=%s: %v", req.PaymentID, err)
		s.recordFailure(ctx, req, "platform completion failed")
		return nil, domain.NewVerifyError(http.StatusInternalServerError, "Failed to complete payment")
	}

	entry := &domain.PaymentLog{
		PaymentID:     req.PaymentID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		Type:          req.Type,
		PropertyID:    req.PropertyID,
		ServiceID:     req.ServiceID,
		ReservationID: req.ReservationID,
		BookingID:     req.BookingID,
		Status:        "completed",
		Timestamp:     now,
		TxID:          txid,
		FromAddress:   payment.FromAddress,
		ToAddress:     payment.ToAddress,
		Verified:      true,
		FraudScore:    fraud.Score(user, now),
		UserAgent:     req.UserAgent,
		IPAddress:     req.IPAddress,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		if err == domain.ErrDuplicatePayment {
			return nil, &domain.VerifyError{
				Status:    http.StatusBadRequest,
				Message:   "Payment already processed",
				Duplicate: true,
			}
		}
		return nil, err
	}

	s.applySideEffects(ctx, req, txid, now)

	log.Printf("[payments] verified and completed payment_id=%s txid=%s", req.PaymentID, txid)

	return &domain.VerifyResult{
		Success:   true,
		PaymentID: req.PaymentID,
		TxID:      txid,
		Message:   "Payment verified and completed successfully",
	}, nil
}

// applySideEffects runs the best-effort bookkeeping after the log write.
// The payment is already durable; failures here are logged, not fatal.
func (s *VerificationService) applySideEffects(ctx context.Context, req *domain.VerifyRequest, txid string, now int64) {
	if req.ReservationID != "" {
		if err := s.purposes.ConfirmReservation(ctx, req.ReservationID, req.PaymentID, now); err != nil {
			log.Printf("[payments] reservation confirm failed reservation_id=%s: %v", req.ReservationID, err)
		}
	}
	if req.BookingID != "" {
		if err := s.purposes.ConfirmBooking(ctx, req.BookingID, req.PaymentID, now); err != nil {
			log.Printf("[payments] booking confirm failed booking_id=%s: %v", req.BookingID, err)
		}
	}

	rec := usersdomain.PaymentRecord{
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Timestamp: now,
		Status:    "completed",
	}
	if err := s.users.AppendPayment(ctx, req.UserID, rec); err != nil {
		log.Printf("[payments] payment history update failed user_id=%s: %v", req.UserID, err)
	}

	s.quests.Track(ctx, req.UserID, "transactionsCompleted")
	if err := s.trust.RecordCompletedTransaction(ctx, req.UserID); err != nil {
		log.Printf("[payments] trust update failed user_id=%s: %v", req.UserID, err)
	}

	reference := req.PropertyID
	if reference == "" {
		reference = req.ServiceID
	}
	s.notifier.NotifyPaymentReceived(ctx, req.UserID, req.Amount, reference)

	if s.analytics != nil {
		s.analytics.LogTransaction(ctx, req.PaymentID, req.UserID, req.Amount, "success")
	}
}

// Status returns the processed payment record for a payment id.
func (s *VerificationService) Status(ctx context.Context, paymentID string) (*domain.PaymentLog, error) {
	return s.logs.Get(ctx, paymentID)
}

func (s *VerificationService) recordFailure(ctx context.Context, req *domain.VerifyRequest, reason string) {
	fp := &domain.FailedPayment{
		PaymentID: req.PaymentID,
		UserID:    req.UserID,
		Amount:    req.Amount,
		Type:      req.Type,
		Reason:    reason,
		Timestamp: time.Now().UnixMilli(),
		UserAgent: req.UserAgent,
	}
	if err := s.logs.AppendFailed(ctx, fp); err != nil {
		log.Printf("[payments] failed-payment log error: %v", err)
	}
	if err := s.users.IncrementFailedPayments(ctx, req.UserID); err != nil {
		log.Printf("[payments] failed-payment counter error: %v", err)
	}
	if s.analytics != nil {
		s.analytics.LogFailedPayment(ctx, req.PaymentID, req.UserID, req.Amount, reason)
	}
}
