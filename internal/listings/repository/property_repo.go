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

	"github.com/casaloop/casaloop-backend/internal/listings/domain"
)

const listingsCollection = "listings"

// PropertyRepository handles Firestore operations for listings.
type PropertyRepository struct {
	client *firestore.Client
}

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository(client *firestore.Client) *PropertyRepository {
	return &PropertyRepository{client: client}
}

func (r *PropertyRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(listingsCollection).Doc(id)
}

// Create stores a new listing and fills in id, status and timestamps.
func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UnixMilli()
	}
	if p.Status == "" {
		p.Status = domain.StatusActive
	}

	if _, err := r.doc(p.ID).Create(ctx, p); err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// Get retrieves a listing by id.
func (r *PropertyRepository) Get(ctx context.Context, id string) (*domain.Property, error) {
	snap, err := r.doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	var p domain.Property
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	p.ID = snap.Ref.ID

	return &p, nil
}

// ListActive returns all active listings, newest first. Filtering and
// pagination happen in memory in the service layer.
func (r *PropertyRepository) ListActive(ctx context.Context) ([]*domain.Property, error) {
	iter := r.client.Collection(listingsCollection).
		Where("status", "==", domain.StatusActive).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	return collect(iter)
}

// ListByOwner returns every listing owned by the user, newest first.
func (r *PropertyRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Property, error) {
	iter := r.client.Collection(listingsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	return collect(iter)
}

// Update applies field updates to a listing.
func (r *PropertyRepository) Update(ctx context.Context, id string, updates []firestore.Update) error {
	_, err := r.doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return domain.ErrPropertyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	return nil
}

// Delete removes a listing document.
func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter and returns the new count.
func (r *PropertyRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	if _, err := r.doc(id).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	}); err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, domain.ErrPropertyNotFound
		}
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}

	p, err := r.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Views, nil
}

// ApplyReview updates the denormalized rating and review count after a
// new review: rating is the running average over reviewCount+1 entries.
func (r *PropertyRepository) ApplyReview(ctx context.Context, id string, rating int) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(r.doc(id))
		if status.Code(err) == codes.NotFound {
			return domain.ErrPropertyNotFound
		}
		if err != nil {
			return err
		}

		var p domain.Property
		if err := snap.DataTo(&p); err != nil {
			return fmt.Errorf("failed to decode listing: %w", err)
		}

		newCount := p.ReviewCount + 1
		newRating := (p.Rating*float64(p.ReviewCount) + float64(rating)) / float64(newCount)

		return tx.Update(r.doc(id), []firestore.Update{
			{Path: "rating", Value: newRating},
			{Path: "reviewCount", Value: newCount},
		})
	})
}

func collect(iter *firestore.DocumentIterator) ([]*domain.Property, error) {
	defer iter.Stop()

	var out []*domain.Property
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list listings: %w", err)
		}

		var p domain.Property
		if err := snap.DataTo(&p); err != nil {
			return nil, fmt.Errorf("failed to decode listing: %w", err)
		}
		p.ID = snap.Ref.ID
		out = append(out, &p)
	}

	return out, nil
}
