package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/casaloop/casaloop-backend/internal/reviews/domain"
)

const (
	reviewsCollection = "reviews"
	reportsCollection = "reports"
)

// ReviewRepository handles Firestore operations for reviews and reports.
type ReviewRepository struct {
	client *firestore.Client
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(client *firestore.Client) *ReviewRepository {
	return &ReviewRepository{client: client}
}

// CreateReview appends a review and returns it with its id set.
func (r *ReviewRepository) CreateReview(ctx context.Context, rev *domain.Review) (*domain.Review, error) {
	id := uuid.NewString()
	if _, err := r.client.Collection(reviewsCollection).Doc(id).Create(ctx, rev); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	rev.ID = id
	return rev, nil
}

// ListByTarget returns the reviews for one listing or service, newest
// first.
func (r *ReviewRepository) ListByTarget(ctx context.Context, targetType, targetID string) ([]*domain.Review, error) {
	iter := r.client.Collection(reviewsCollection).
		Where("targetType", "==", targetType).
		Where("targetId", "==", targetID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var items []*domain.Review
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews: %w", err)
		}

		var rev domain.Review
		if err := snap.DataTo(&rev); err != nil {
			return nil, fmt.Errorf("failed to decode review: %w", err)
		}
		rev.ID = snap.Ref.ID
		items = append(items, &rev)
	}
	return items, nil
}

// HasReviewed reports whether the reviewer already rated the target.
func (r *ReviewRepository) HasReviewed(ctx context.Context, reviewerID, targetType, targetID string) (bool, error) {
	iter := r.client.Collection(reviewsCollection).
		Where("reviewerId", "==", reviewerID).
		Where("targetType", "==", targetType).
		Where("targetId", "==", targetID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return true, nil
}

// CreateReport appends a moderation report.
func (r *ReviewRepository) CreateReport(ctx context.Context, rep *domain.Report) (*domain.Report, error) {
	id := uuid.NewString()
	if _, err := r.client.Collection(reportsCollection).Doc(id).Create(ctx, rep); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	rep.ID = id
	return rep, nil
}
