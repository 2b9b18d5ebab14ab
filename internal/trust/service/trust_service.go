package service

import (
	"context"
	"time"

	"github.com/casaloop/casaloop-backend/internal/trust"
	"github.com/casaloop/casaloop-backend/internal/trust/domain"
)

// VerificationStore is the persistence used by the trust service.
type VerificationStore interface {
	Get(ctx context.Context, userID string) (*domain.UserVerification, error)
	Set(ctx context.Context, v *domain.UserVerification) error
	IncrementCounter(ctx context.Context, userID, counter string) error
}

// Evaluation is the full trust read-out for a user.
type Evaluation struct {
	UserID   string           `json:"userId"`
	Score    int              `json:"score"`
	Level    domain.TrustLevel `json:"level"`
	RedFlags []string         `json:"redFlags"`
}

// TrustService evaluates trust scores and gates listing creation.
type TrustService struct {
	store VerificationStore
}

// NewTrustService creates a new TrustService.
func NewTrustService(store VerificationStore) *TrustService {
	return &TrustService{store: store}
}

// Evaluate computes the score, level and red flags for a user.
func (s *TrustService) Evaluate(ctx context.Context, userID string) (*Evaluation, error) {
	v, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	score := trust.Score(v, now)

	return &Evaluation{
		UserID:   userID,
		Score:    score,
		Level:    trust.Level(score),
		RedFlags: trust.RedFlags(v, now),
	}, nil
}

// CanList reports whether the user may publish listings. Users without a
// verification record have not entered the verification program and are
// allowed to list as new sellers; the gate applies once a record exists.
func (s *TrustService) CanList(ctx context.Context, userID string) (bool, error) {
	eval, err := s.Evaluate(ctx, userID)
	if err == domain.ErrVerificationNotFound {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return eval.Level.CanList, nil
}

// RecordFlag bumps the flagged counter after a report against the user.
func (s *TrustService) RecordFlag(ctx context.Context, userID string) error {
	err := s.store.IncrementCounter(ctx, userID, "flaggedCount")
	if err == domain.ErrVerificationNotFound {
		return nil
	}
	return err
}

// RecordReport bumps the reported counter after a filed report.
func (s *TrustService) RecordReport(ctx context.Context, userID string) error {
	err := s.store.IncrementCounter(ctx, userID, "reportedCount")
	if err == domain.ErrVerificationNotFound {
		return nil
	}
	return err
}

// RecordCompletedTransaction feeds the transaction-history term.
func (s *TrustService) RecordCompletedTransaction(ctx context.Context, userID string) error {
	err := s.store.IncrementCounter(ctx, userID, "completedTransactions")
	if err == domain.ErrVerificationNotFound {
		return nil
	}
	return err
}
