package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/casaloop/casaloop-backend/internal/reviews/domain"
)

// ErrAlreadyReviewed rejects a second review of the same target.
var ErrAlreadyReviewed = errors.New("target already reviewed")

// ReviewStore is the repository surface the service needs.
type ReviewStore interface {
	CreateReview(ctx context.Context, rev *domain.Review) (*domain.Review, error)
	ListByTarget(ctx context.Context, targetType, targetID string) ([]*domain.Review, error)
	HasReviewed(ctx context.Context, reviewerID, targetType, targetID string) (bool, error)
	CreateReport(ctx context.Context, rep *domain.Report) (*domain.Report, error)
}

// RatingApplier folds a new rating into the target's running average.
type RatingApplier interface {
	ApplyReview(ctx context.Context, targetID string, rating int) error
}

// Notifier announces a new review to the target's owner.
type Notifier interface {
	NotifyNewReview(ctx context.Context, ownerID, reviewerName string, rating int, targetID string)
}

// QuestTracker records quest progress for written reviews.
type QuestTracker interface {
	Track(ctx context.Context, uid, counter string)
}

// TrustRecorder feeds moderation events into the trust model.
type TrustRecorder interface {
	RecordReport(ctx context.Context, userID string) error
	RecordFlag(ctx context.Context, userID string) error
}

// ReviewService implements reviews and moderation reports.
type ReviewService struct {
	store      ReviewStore
	properties RatingApplier
	services   RatingApplier
	notifier   Notifier
	quests     QuestTracker
	trust      TrustRecorder
	now        func() int64
}

// NewReviewService creates a ReviewService. properties and services
// apply rating averages to their respective targets.
func NewReviewService(store ReviewStore, properties, services RatingApplier, notifier Notifier, quests QuestTracker, trust TrustRecorder) *ReviewService {
	return &ReviewService{
		store:      store,
		properties: properties,
		services:   services,
		notifier:   notifier,
		quests:     quests,
		trust:      trust,
		now:        func() int64 { return time.Now().UnixMilli() },
	}
}

// WithClock overrides the time source, for tests.
func (s *ReviewService) WithClock(now func() int64) *ReviewService {
	s.now = now
	return s
}

// Submit validates and appends a review, then updates the target's
// running average and notifies the owner.
func (s *ReviewService) Submit(ctx context.Context, rev *domain.Review) (*domain.Review, error) {
	if rev.Rating < 1 || rev.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}
	if rev.ReviewerID == rev.OwnerID {
		return nil, domain.ErrSelfReview
	}

	already, err := s.store.HasReviewed(ctx, rev.ReviewerID, rev.TargetType, rev.TargetID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyReviewed
	}

	rev.CreatedAt = s.now()
	rev, err = s.store.CreateReview(ctx, rev)
	if err != nil {
		return nil, err
	}

	applier := s.properties
	if rev.TargetType == domain.TargetService {
		applier = s.services
	}
	if err := applier.ApplyReview(ctx, rev.TargetID, rev.Rating); err != nil {
		log.Printf("[reviews] rating average update failed target_id=%s: %v", rev.TargetID, err)
	}

	s.quests.Track(ctx, rev.ReviewerID, "reviewsLeft")
	s.notifier.NotifyNewReview(ctx, rev.OwnerID, rev.ReviewerName, rev.Rating, rev.TargetID)

	return rev, nil
}

// ListByTarget returns the reviews of one listing or service.
func (s *ReviewService) ListByTarget(ctx context.Context, targetType, targetID string) ([]*domain.Review, error) {
	return s.store.ListByTarget(ctx, targetType, targetID)
}

// Report appends a moderation report and penalizes the reported user's
// trust standing.
func (s *ReviewService) Report(ctx context.Context, rep *domain.Report) (*domain.Report, error) {
	rep.CreatedAt = s.now()
	rep, err := s.store.CreateReport(ctx, rep)
	if err != nil {
		return nil, err
	}

	if rep.ReportedUser != "" {
		if err := s.trust.RecordReport(ctx, rep.ReportedUser); err != nil {
			log.Printf("[reviews] trust report update failed user_id=%s: %v", rep.ReportedUser, err)
		}
	}

	log.Printf("[reviews] report filed target=%s/%s reason=%s", rep.TargetType, rep.TargetID, rep.Reason)
	return rep, nil
}
