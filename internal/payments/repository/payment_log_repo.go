package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/casaloop/casaloop-backend/internal/payments/domain"
)

const (
	paymentLogsCollection    = "paymentLogs"
	failedPaymentsCollection = "failed_payments"
)

// PaymentLogRepository persists the per-payment idempotency records.
type PaymentLogRepository struct {
	client *firestore.Client
}

// NewPaymentLogRepository creates a new PaymentLogRepository.
func NewPaymentLogRepository(client *firestore.Client) *PaymentLogRepository {
	return &PaymentLogRepository{client: client}
}

// Create writes the payment log with create-if-absent semantics. A log
// that already exists surfaces as ErrDuplicatePayment, which is the
// idempotency guarantee of the verification flow.
func (r *PaymentLogRepository) Create(ctx context.Context, log *domain.PaymentLog) error {
	_, err := r.client.Collection(paymentLogsCollection).Doc(log.PaymentID).Create(ctx, log)
	if status.Code(err) == codes.AlreadyExists {
		return domain.ErrDuplicatePayment
	}
	if err != nil {
		return fmt.Errorf("failed to create payment log: %w", err)
	}
	return nil
}

// Exists reports whether a payment log is already present.
func (r *PaymentLogRepository) Exists(ctx context.Context, paymentID string) (bool, error) {
	_, err := r.client.Collection(paymentLogsCollection).Doc(paymentID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check payment log: %w", err)
	}
	return true, nil
}

// Get retrieves a payment log by id.
func (r *PaymentLogRepository) Get(ctx context.Context, paymentID string) (*domain.PaymentLog, error) {
	snap, err := r.client.Collection(paymentLogsCollection).Doc(paymentID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrPaymentLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment log: %w", err)
	}

	var log domain.PaymentLog
	if err := snap.DataTo(&log); err != nil {
		return nil, fmt.Errorf("failed to decode payment log: %w", err)
	}
	return &log, nil
}

// AppendFailed records a failed verification for fraud monitoring.
func (r *PaymentLogRepository) AppendFailed(ctx context.Context, fp *domain.FailedPayment) error {
	_, _, err := r.client.Collection(failedPaymentsCollection).Add(ctx, fp)
	if err != nil {
		return fmt.Errorf("failed to append failed payment: %w", err)
	}
	return nil
}
