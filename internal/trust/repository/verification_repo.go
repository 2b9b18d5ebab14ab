package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/casaloop/casaloop-backend/internal/trust/domain"
)

const verificationsCollection = "verifications"

// VerificationRepository handles Firestore operations for verification
// records, keyed by user id.
type VerificationRepository struct {
	client *firestore.Client
}

// NewVerificationRepository creates a new VerificationRepository.
func NewVerificationRepository(client *firestore.Client) *VerificationRepository {
	return &VerificationRepository{client: client}
}

func (r *VerificationRepository) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection(verificationsCollection).Doc(userID)
}

// Get retrieves the verification record for a user.
func (r *VerificationRepository) Get(ctx context.Context, userID string) (*domain.UserVerification, error) {
	snap, err := r.doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrVerificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}

	var v domain.UserVerification
	if err := snap.DataTo(&v); err != nil {
		return nil, fmt.Errorf("failed to decode verification: %w", err)
	}

	return &v, nil
}

// Set stores the full verification record.
func (r *VerificationRepository) Set(ctx context.Context, v *domain.UserVerification) error {
	if _, err := r.doc(v.UserID).Set(ctx, v); err != nil {
		return fmt.Errorf("failed to set verification: %w", err)
	}
	return nil
}

// IncrementCounter bumps one of the penalty or history counters
// (flaggedCount, reportedCount, completedTransactions, ...).
func (r *VerificationRepository) IncrementCounter(ctx context.Context, userID, counter string) error {
	_, err := r.doc(userID).Update(ctx, []firestore.Update{
		{Path: counter, Value: firestore.Increment(1)},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrVerificationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", counter, err)
	}
	return nil
}
